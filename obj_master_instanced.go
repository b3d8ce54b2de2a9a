package gekko

import (
	"fmt"

	"github.com/gekko3d/scenegraph/assets"
)

// MasterInstancedModelObject draws its model once per child. Children carry
// only transforms; every primitive gets one instance buffer filled with the
// children's global matrices.
type MasterInstancedModelObject struct {
	*ObjectBase

	Model    assets.AssetId
	Instance string
}

func NewMasterInstancedModelObject(name string, model assets.AssetId) *MasterInstancedModelObject {
	return &MasterInstancedModelObject{
		ObjectBase: NewObjectBase(name),
		Model:      model,
		Instance:   name,
	}
}

// InstanceKey names the instance buffer of one primitive.
func (m *MasterInstancedModelObject) InstanceKey(mesh, primitive int) string {
	return fmt.Sprintf("%s/%d/%d", m.Instance, mesh, primitive)
}

func (m *MasterInstancedModelObject) Render(fw *Framework) {
	model, ok := fw.Assets.Model(m.Model)
	if !ok {
		fw.WarnOnce("model:"+string(m.Model), "model %s of %q is not loaded", m.Model, m.Name())
		return
	}
	children := m.Children()
	if len(children) == 0 {
		return
	}
	for mi := range model.Meshes {
		for pi := range model.Meshes[mi].Primitives {
			key := m.InstanceKey(mi, pi)
			for _, c := range children {
				fw.Render.AddInstancePosition(key, c.Base().GlobalTransform().Matrix())
			}
		}
	}
}
