package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ShapeKind int

const (
	ShapeCuboid ShapeKind = iota
	ShapeBall
	ShapeCapsule
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCuboid:
		return "cuboid"
	case ShapeBall:
		return "ball"
	case ShapeCapsule:
		return "capsule"
	}
	return "unknown"
}

// Shape describes collider geometry in the collider's local frame.
// Capsules are aligned with the local Y axis.
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3 // Cuboid
	Radius      float32    // Ball, Capsule
	HalfHeight  float32    // Capsule: half length of the cylinder part
}

func Cuboid(hx, hy, hz float32) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

func Ball(radius float32) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

func Capsule(halfHeight, radius float32) Shape {
	return Shape{Kind: ShapeCapsule, HalfHeight: halfHeight, Radius: radius}
}

// Scaled applies an object scale to the shape. Round shapes take the largest
// component so they never shrink below what is rendered.
func (s Shape) Scaled(scale mgl32.Vec3) Shape {
	abs := mgl32.Vec3{absf(scale.X()), absf(scale.Y()), absf(scale.Z())}
	maxS := float32(math.Max(float64(abs.X()), math.Max(float64(abs.Y()), float64(abs.Z()))))
	switch s.Kind {
	case ShapeCuboid:
		s.HalfExtents = mgl32.Vec3{
			s.HalfExtents.X() * abs.X(),
			s.HalfExtents.Y() * abs.Y(),
			s.HalfExtents.Z() * abs.Z(),
		}
	case ShapeBall:
		s.Radius *= maxS
	case ShapeCapsule:
		s.Radius *= float32(math.Max(float64(abs.X()), float64(abs.Z())))
		s.HalfHeight *= abs.Y()
	}
	return s
}

// aabbHalfExtents returns the half extents of the world-space bounding box of
// the shape under rotation rot.
func (s Shape) aabbHalfExtents(rot mgl32.Quat) mgl32.Vec3 {
	switch s.Kind {
	case ShapeBall:
		return mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	case ShapeCapsule:
		axis := rot.Rotate(mgl32.Vec3{0, s.HalfHeight, 0})
		return mgl32.Vec3{
			absf(axis.X()) + s.Radius,
			absf(axis.Y()) + s.Radius,
			absf(axis.Z()) + s.Radius,
		}
	default:
		m := rot.Mat4()
		var out mgl32.Vec3
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				out[row] += absf(m.At(row, col)) * s.HalfExtents[col]
			}
		}
		return out
	}
}

// segment returns the core segment of a round shape in world space.
// A ball's segment is degenerate.
func (s Shape) segment(pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Vec3) {
	if s.Kind != ShapeCapsule {
		return pos, pos
	}
	axis := rot.Rotate(mgl32.Vec3{0, s.HalfHeight, 0})
	return pos.Sub(axis), pos.Add(axis)
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
