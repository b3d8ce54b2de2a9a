package gekko

import (
	"fmt"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/gekko3d/scenegraph/nav"
	"github.com/gekko3d/scenegraph/render"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelObject draws a preloaded model asset, one draw per primitive, and
// plays its skeletal animations.
type ModelObject struct {
	*ObjectBase

	Model       assets.AssetId
	CastShadows bool
	Player      AnimationPlayer

	joints     []mgl32.Mat4
	skinBroken bool
}

func NewModelObject(name string, model assets.AssetId) *ModelObject {
	return &ModelObject{
		ObjectBase:  NewObjectBase(name),
		Model:       model,
		CastShadows: true,
		Player:      NewAnimationPlayer(),
	}
}

func (m *ModelObject) model(fw *Framework) (*assets.ModelAsset, bool) {
	model, ok := fw.Assets.Model(m.Model)
	if !ok {
		fw.WarnOnce("model:"+string(m.Model), "model %s of %q is not loaded", m.Model, m.Name())
	}
	return model, ok
}

// EnableNavMesh registers the model's first mesh as navigation islands.
func (m *ModelObject) EnableNavMesh(fw *Framework) []*nav.IslandBuild {
	return m.SetNavigation(fw, nav.StaticMesh(m.Model))
}

func (m *ModelObject) Play(fw *Framework, animation string, loop bool) bool {
	model, ok := m.model(fw)
	if !ok {
		return false
	}
	if err := m.Player.Play(model, animation, loop, fw.Time.ElapsedSeconds()); err != nil {
		fw.Logger().Warnf("%s: %v", m.Name(), err)
		return false
	}
	return true
}

// Joints returns the skinning matrices computed in the last update.
func (m *ModelObject) Joints() []mgl32.Mat4 { return m.joints }

func (m *ModelObject) Update(fw *Framework) {
	model, ok := m.model(fw)
	if !ok || len(model.Joints) == 0 {
		m.joints = nil
		return
	}
	pose := m.Player.samplePose(model, fw.Time.ElapsedSeconds(), fw.Config.MaxSkeletonJoints)
	if pose.truncated {
		fw.WarnOnce("joints:"+string(m.Model), "model %s has %d joints, only %d are supported",
			m.Model, len(model.Joints), fw.Config.MaxSkeletonJoints)
	}
	m.skinBroken = pose.missingNode >= 0
	if m.skinBroken {
		fw.WarnOnce(fmt.Sprintf("node:%s:%d", m.Model, pose.missingNode),
			"model %s references missing node %d, skinned primitives are skipped", m.Model, pose.missingNode)
	}
	m.joints = pose.joints
}

// eachPrimitive yields the draw data of every primitive that can be drawn
// this frame.
func (m *ModelObject) eachPrimitive(fw *Framework, fn func(prim *assets.Primitive, data render.ModelData)) {
	model, ok := m.model(fw)
	if !ok {
		return
	}
	matrix := m.GlobalTransform().Matrix()
	for mi := range model.Meshes {
		for pi := range model.Meshes[mi].Primitives {
			prim := &model.Meshes[mi].Primitives[pi]
			skinned := len(prim.Joints) > 0
			if skinned && m.skinBroken {
				continue
			}
			tex := prim.Texture
			if _, ok := fw.Assets.Texture(tex); !ok {
				tex = fw.Assets.DefaultTextureId()
			}
			data := render.ModelData{
				ObjectId:  uint64(m.Id()),
				Model:     m.Model,
				Mesh:      mi,
				Primitive: pi,
				Transform: matrix,
				Texture:   tex,
			}
			if skinned {
				data.Joints = m.joints
			}
			fn(prim, data)
		}
	}
}

func (m *ModelObject) Render(fw *Framework) {
	m.eachPrimitive(fw, func(prim *assets.Primitive, data render.ModelData) {
		if prim.Transparent {
			fw.Render.AddTransparentModel(data)
			return
		}
		fw.Render.AddOpaqueModel(data)
	})
}

func (m *ModelObject) ShadowRender(fw *Framework) {
	if !m.CastShadows {
		return
	}
	m.eachPrimitive(fw, func(prim *assets.Primitive, data render.ModelData) {
		if !prim.Transparent {
			fw.Render.AddShadowCaster(data)
		}
	})
}

func (m *ModelObject) Call(fw *Framework, name string, args []string) (string, bool) {
	switch name {
	case "play":
		if len(args) == 0 {
			return "", false
		}
		loop := len(args) > 1 && args[1] == "loop"
		return "", m.Play(fw, args[0], loop)
	case "stop":
		m.Player.Stop()
		return "", true
	case "is_playing":
		return formatBool(m.Player.Playing()), true
	}
	return "", false
}

func (m *ModelObject) Release(fw *Framework) {
	m.joints = nil
}
