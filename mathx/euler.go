package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EulerToQuat converts XYZ Euler angles in degrees into a rotation quaternion.
func EulerToQuat(deg mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(deg.X()),
		mgl32.DegToRad(deg.Y()),
		mgl32.DegToRad(deg.Z()),
		mgl32.XYZ,
	).Normalize()
}

// QuatToEuler is the inverse of EulerToQuat. The result is in degrees.
//
// The rotation matrix of an XYZ sequence is Rx*Ry*Rz, so m02 = sin(y).
// Near the poles x absorbs the whole twist and z is reported as 0.
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	sy := clamp(float64(m.At(0, 2)), -1, 1)
	y := math.Asin(sy)

	var x, z float64
	if math.Abs(sy) < 0.99999 {
		x = math.Atan2(-float64(m.At(1, 2)), float64(m.At(2, 2)))
		z = math.Atan2(-float64(m.At(0, 1)), float64(m.At(0, 0)))
	} else {
		x = math.Atan2(float64(m.At(2, 1)), float64(m.At(1, 1)))
		z = 0
	}

	return mgl32.Vec3{
		mgl32.RadToDeg(float32(x)),
		mgl32.RadToDeg(float32(y)),
		mgl32.RadToDeg(float32(z)),
	}
}

// RotateDeg rotates v by XYZ Euler angles in degrees.
func RotateDeg(v, deg mgl32.Vec3) mgl32.Vec3 {
	return EulerToQuat(deg).Rotate(v)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
