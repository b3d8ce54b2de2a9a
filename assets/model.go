package assets

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Primitive is one draw unit of a mesh. Indices form triangles; Polygons, when
// set, keep the authored faces (used for navigation meshes).
type Primitive struct {
	Positions   []mgl32.Vec3
	Normals     []mgl32.Vec3
	UVs         []mgl32.Vec2
	Joints      [][4]uint16
	Weights     []mgl32.Vec4
	Indices     []uint32
	Polygons    [][]uint32
	Texture     AssetId
	Transparent bool
}

// Faces returns the authored polygons, falling back to the triangle list.
func (p *Primitive) Faces() [][]uint32 {
	if len(p.Polygons) > 0 {
		return p.Polygons
	}
	faces := make([][]uint32, 0, len(p.Indices)/3)
	for i := 0; i+2 < len(p.Indices); i += 3 {
		faces = append(faces, []uint32{p.Indices[i], p.Indices[i+1], p.Indices[i+2]})
	}
	return faces
}

type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Node is a skeleton/scene node in its rest pose. Parent is -1 for roots.
type Node struct {
	Name        string
	Parent      int
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

func (n Node) LocalMatrix() mgl32.Mat4 {
	return TRS(n.Translation, n.Rotation, n.Scale)
}

type ChannelPath int

const (
	PathTranslation ChannelPath = iota
	PathRotation
	PathScale
)

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline stores (in-tangent, value, out-tangent)
	// triplets per keyframe.
	InterpolationCubicSpline
)

// Channel animates one property of one node. Vec3 values use XYZ of Values;
// rotations are stored as (x, y, z, w).
type Channel struct {
	Node          int
	Path          ChannelPath
	Interpolation Interpolation
	Times         []float32
	Values        []mgl32.Vec4
}

type Animation struct {
	Name     string
	Channels []Channel
}

// Duration is the time of the last keyframe across all channels.
func (a *Animation) Duration() float32 {
	var d float32
	for i := range a.Channels {
		if n := len(a.Channels[i].Times); n > 0 && a.Channels[i].Times[n-1] > d {
			d = a.Channels[i].Times[n-1]
		}
	}
	return d
}

// ModelAsset is a preloaded mesh hierarchy with optional skin and animations.
// Joints lists skin joints as node indices, InverseBind matches it one to one.
type ModelAsset struct {
	Meshes      []Mesh
	Nodes       []Node
	Joints      []int
	InverseBind []mgl32.Mat4
	Animations  []Animation
}

// Sample evaluates the channel at time t, clamped to the keyframe range.
func (c *Channel) Sample(t float32) (mgl32.Vec4, bool) {
	n := len(c.Times)
	if n == 0 {
		return mgl32.Vec4{}, false
	}
	stride := 1
	if c.Interpolation == InterpolationCubicSpline {
		stride = 3
	}
	if len(c.Values) < n*stride {
		return mgl32.Vec4{}, false
	}
	value := func(i int) mgl32.Vec4 {
		if stride == 3 {
			return c.Values[i*3+1]
		}
		return c.Values[i]
	}

	if t <= c.Times[0] {
		return value(0), true
	}
	if t >= c.Times[n-1] {
		return value(n - 1), true
	}

	k := 0
	for k+1 < n && c.Times[k+1] <= t {
		k++
	}
	t0, t1 := c.Times[k], c.Times[k+1]
	span := t1 - t0
	u := float32(0)
	if span > 0 {
		u = (t - t0) / span
	}

	var out mgl32.Vec4
	switch c.Interpolation {
	case InterpolationStep:
		out = value(k)
	case InterpolationCubicSpline:
		p0 := c.Values[k*3+1]
		m0 := c.Values[k*3+2].Mul(span)
		p1 := c.Values[(k+1)*3+1]
		m1 := c.Values[(k+1)*3].Mul(span)
		u2 := u * u
		u3 := u2 * u
		out = p0.Mul(2*u3 - 3*u2 + 1).
			Add(m0.Mul(u3 - 2*u2 + u)).
			Add(p1.Mul(-2*u3 + 3*u2)).
			Add(m1.Mul(u3 - u2))
	default:
		if c.Path == PathRotation {
			q := mgl32.QuatSlerp(vecToQuat(value(k)), vecToQuat(value(k+1)), u)
			return quatToVec(q), true
		}
		out = value(k).Mul(1 - u).Add(value(k + 1).Mul(u))
	}
	if c.Path == PathRotation {
		return quatToVec(vecToQuat(out).Normalize()), true
	}
	return out, true
}

func vecToQuat(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v.W(), V: v.Vec3()}
}

func quatToVec(q mgl32.Quat) mgl32.Vec4 {
	return mgl32.Vec4{q.V.X(), q.V.Y(), q.V.Z(), q.W}
}

// QuatValue converts a sampled rotation back to a quaternion.
func QuatValue(v mgl32.Vec4) mgl32.Quat {
	q := vecToQuat(v)
	if q.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}

func RotationValue(q mgl32.Quat) mgl32.Vec4 {
	return quatToVec(q)
}

func TRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// Bounds returns the axis-aligned bounds of every primitive in the model.
func (m *ModelAsset) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(math.Inf(1))
	lo := mgl32.Vec3{inf, inf, inf}
	hi := lo.Mul(-1)
	seen := false
	for _, mesh := range m.Meshes {
		for _, prim := range mesh.Primitives {
			for _, p := range prim.Positions {
				seen = true
				for i := 0; i < 3; i++ {
					lo[i] = float32(math.Min(float64(lo[i]), float64(p[i])))
					hi[i] = float32(math.Max(float64(hi[i]), float64(p[i])))
				}
			}
		}
	}
	if !seen {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	return lo, hi
}
