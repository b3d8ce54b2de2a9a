package mathx

import "github.com/go-gl/mathgl/mgl32"

// XZ drops the Y component. Navigation works on the ground plane.
func XZ(v mgl32.Vec3) mgl32.Vec2 {
	return mgl32.Vec2{v.X(), v.Z()}
}

// FromXZ lifts a ground plane point back into 3D at height y.
func FromXZ(p mgl32.Vec2, y float32) mgl32.Vec3 {
	return mgl32.Vec3{p.X(), y, p.Y()}
}

// SwapYZ converts between the engine's Y-up convention and the navigation
// mesh's Z-up convention. It is its own inverse.
func SwapYZ(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), v.Z(), v.Y()}
}

// Cross2 is the z component of the 3D cross product of a and b.
func Cross2(a, b mgl32.Vec2) float32 {
	return a.X()*b.Y() - a.Y()*b.X()
}
