package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RayHit is the closest collider hit by a ray.
type RayHit struct {
	Collider ColliderHandle
	Toi      float32
	Point    mgl32.Vec3
}

// CastRay returns the closest collider hit within maxToi along dir.
// Sensors are skipped unless includeSensors is set.
func (w *World) CastRay(origin, dir mgl32.Vec3, maxToi float32, groups InteractionGroups, includeSensors bool, exclude ...ColliderHandle) (RayHit, bool) {
	if dir.LenSqr() < 1e-12 {
		return RayHit{}, false
	}
	dir = dir.Normalize()
	if groups == (InteractionGroups{}) {
		groups = AllGroups
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seg := aabb{min: origin, max: origin}.expand(dir.Mul(maxToi))
	best := RayHit{Toi: maxToi}
	found := false

	for _, h := range w.candidatesLocked(seg) {
		if containsHandle(exclude, h) {
			continue
		}
		col := w.colliders.get(h.Index, h.Generation)
		if col == nil || (col.sensor && !includeSensors) || !groups.Test(col.groups) {
			continue
		}
		toi, ok := rayShape(origin, dir, w.posedLocked(col))
		if !ok || toi > best.Toi {
			continue
		}
		best = RayHit{Collider: h, Toi: toi, Point: origin.Add(dir.Mul(toi))}
		found = true
	}
	return best, found
}

// MoveShape sweeps shape from pos by desired and returns the translation that
// can be applied without penetrating solid colliders. The sweep runs one axis
// at a time in small steps, Y first, so that walking along a floor still
// slides. Sensors never block.
func (w *World) MoveShape(shape Shape, pos, desired mgl32.Vec3, groups InteractionGroups, exclude ...ColliderHandle) mgl32.Vec3 {
	if groups == (InteractionGroups{}) {
		groups = AllGroups
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	cur := pos
	for _, axis := range [3]int{1, 0, 2} {
		cur = w.sweepAxisLocked(shape, cur, desired[axis], axis, groups, exclude)
	}
	return cur.Sub(pos)
}

func (w *World) sweepAxisLocked(shape Shape, pos mgl32.Vec3, dist float32, axis int, groups InteractionGroups, exclude []ColliderHandle) mgl32.Vec3 {
	if absf(dist) < 1e-6 {
		return pos
	}
	stepSize := float32(0.05)
	if r := shapeMinExtent(shape) * 0.5; r > 0 && r < stepSize {
		stepSize = r
	}
	sign := float32(1)
	if dist < 0 {
		sign = -1
	}
	remaining := absf(dist)

	// A step is blocked only when it digs deeper than where the shape already
	// is, so a shape resting on a floor can still slide along it.
	allowed := w.penetrationLocked(shape, pos, groups, exclude)
	if allowed < 1e-4 {
		allowed = 1e-4
	}

	for iter := 0; remaining > 0 && iter < 400; iter++ {
		move := stepSize
		if remaining < move {
			move = remaining
		}
		test := pos
		test[axis] += sign * move
		if w.penetrationLocked(shape, test, groups, exclude) > allowed+1e-5 {
			break
		}
		pos = test
		remaining -= move
	}
	return pos
}

// penetrationLocked is the deepest overlap of shape at pos with any solid
// collider.
func (w *World) penetrationLocked(shape Shape, pos mgl32.Vec3, groups InteractionGroups, exclude []ColliderHandle) float32 {
	probe := posedShape{shape: shape, pos: pos, rot: mgl32.QuatIdent()}
	half := shape.aabbHalfExtents(probe.rot)
	box := aabb{min: pos.Sub(half), max: pos.Add(half)}

	var deepest float32
	for _, h := range w.candidatesLocked(box) {
		if containsHandle(exclude, h) {
			continue
		}
		col := w.colliders.get(h.Index, h.Generation)
		if col == nil || col.sensor || !groups.Test(col.groups) {
			continue
		}
		if c, ok := overlap(probe, w.posedLocked(col)); ok && c.depth > deepest {
			deepest = c.depth
		}
	}
	return deepest
}

func shapeMinExtent(s Shape) float32 {
	switch s.Kind {
	case ShapeBall, ShapeCapsule:
		return s.Radius
	default:
		return float32(math.Min(float64(s.HalfExtents.X()), math.Min(float64(s.HalfExtents.Y()), float64(s.HalfExtents.Z()))))
	}
}

func containsHandle(list []ColliderHandle, h ColliderHandle) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}

func rayShape(origin, dir mgl32.Vec3, s posedShape) (float32, bool) {
	switch s.shape.Kind {
	case ShapeBall:
		return raySphere(origin, dir, s.pos, s.shape.Radius)
	case ShapeCapsule:
		return rayCapsule(origin, dir, s)
	default:
		return rayOBB(origin, dir, s)
	}
}

func raySphere(origin, dir, center mgl32.Vec3, r float32) (float32, bool) {
	m := origin.Sub(center)
	b := m.Dot(dir)
	c := m.Dot(m) - r*r
	if c > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - float32(math.Sqrt(float64(disc)))
	if t < 0 {
		t = 0
	}
	return t, true
}

func rayOBB(origin, dir mgl32.Vec3, s posedShape) (float32, bool) {
	axes := s.axes()
	rel := origin.Sub(s.pos)
	tMin := float32(0)
	tMax := float32(math.MaxFloat32)

	for i := 0; i < 3; i++ {
		e := axes[i].Dot(rel)
		f := axes[i].Dot(dir)
		h := s.shape.HalfExtents[i]
		if absf(f) < 1e-8 {
			if e < -h || e > h {
				return 0, false
			}
			continue
		}
		t1 := (-h - e) / f
		t2 := (h - e) / f
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// rayCapsule intersects the ray with the capsule's cylinder and both caps and
// keeps the nearest hit.
func rayCapsule(origin, dir mgl32.Vec3, s posedShape) (float32, bool) {
	a, b := s.shape.segment(s.pos, s.rot)
	r := s.shape.Radius
	best := float32(math.MaxFloat32)
	hit := false

	if t, ok := raySphere(origin, dir, a, r); ok && t < best {
		best, hit = t, true
	}
	if t, ok := raySphere(origin, dir, b, r); ok && t < best {
		best, hit = t, true
	}

	ab := b.Sub(a)
	abLen := ab.Len()
	if abLen > 1e-6 {
		axis := ab.Mul(1 / abLen)
		ao := origin.Sub(a)
		dPerp := dir.Sub(axis.Mul(dir.Dot(axis)))
		oPerp := ao.Sub(axis.Mul(ao.Dot(axis)))
		qa := dPerp.Dot(dPerp)
		qb := 2 * dPerp.Dot(oPerp)
		qc := oPerp.Dot(oPerp) - r*r
		if qa > 1e-12 {
			disc := qb*qb - 4*qa*qc
			if disc >= 0 {
				t := (-qb - float32(math.Sqrt(float64(disc)))) / (2 * qa)
				if t < 0 && qc <= 0 {
					t = 0
				}
				if t >= 0 {
					along := ao.Add(dir.Mul(t)).Dot(axis)
					if along >= 0 && along <= abLen && t < best {
						best, hit = t, true
					}
				}
			}
		}
	}
	return best, hit
}
