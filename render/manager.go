package render

import (
	"github.com/gekko3d/scenegraph/assets"
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeAmbient     LightType = 3
)

// PointLight is one light submitted for the current frame.
type PointLight struct {
	Type      LightType
	Position  mgl32.Vec3
	Color     [3]float32
	Intensity float32
	Range     float32
}

// ModelData is a single primitive draw. Objects submit one per visible
// primitive every frame; anything not submitted is not drawn.
type ModelData struct {
	ObjectId  uint64
	Model     assets.AssetId
	Mesh      int
	Primitive int
	Transform mgl32.Mat4
	Texture   assets.AssetId
	Joints    []mgl32.Mat4
}

// Manager is the renderer as seen from the scene graph. Rotation is Euler
// XYZ in degrees.
type Manager interface {
	BeginFrame()
	SetCameraPosition(pos mgl32.Vec3)
	SetCameraRotation(rot mgl32.Vec3)
	AddOpaqueModel(data ModelData)
	AddTransparentModel(data ModelData)
	AddShadowCaster(data ModelData)
	AddInstancePosition(instance string, transform mgl32.Mat4)
	AddPointLight(light PointLight)
}
