package gekko

import (
	"github.com/gekko3d/scenegraph/mathx"
	"github.com/gekko3d/scenegraph/nav"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a pose with Euler XYZ rotation in degrees.
type Transform struct {
	Position mgl32.Vec3 `yaml:"position"`
	Rotation mgl32.Vec3 `yaml:"rotation"`
	Scale    mgl32.Vec3 `yaml:"scale"`
}

func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Add composes two transforms component-wise. Parent/child composition in
// the scene graph is additive for all three components, which is exact for
// translation offsets only.
func (t Transform) Add(o Transform) Transform {
	return Transform{
		Position: t.Position.Add(o.Position),
		Rotation: t.Rotation.Add(o.Rotation),
		Scale:    t.Scale.Add(o.Scale),
	}
}

// ComposeTransform returns local placed under parent, or local itself for roots.
func ComposeTransform(local Transform, parent *Transform) Transform {
	if parent == nil {
		return local
	}
	return local.Add(*parent)
}

func (t Transform) Quat() mgl32.Quat {
	return mathx.EulerToQuat(t.Rotation)
}

// Matrix is translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Quat().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Forward rotates a local direction into the transform's frame.
func (t Transform) Forward(local mgl32.Vec3) mgl32.Vec3 {
	return mathx.RotateDeg(local, t.Rotation)
}

func (t Transform) navTransform() nav.Transform {
	return nav.Transform{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}
