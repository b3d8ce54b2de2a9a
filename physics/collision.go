package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// posedShape is a shape placed in world space.
type posedShape struct {
	shape Shape
	pos   mgl32.Vec3
	rot   mgl32.Quat
}

func (p posedShape) axes() [3]mgl32.Vec3 {
	m := p.rot.Mat4()
	return [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
}

// contact describes how far and in which direction a must move to separate
// from b.
type contact struct {
	normal mgl32.Vec3
	depth  float32
}

func overlap(a, b posedShape) (contact, bool) {
	aRound := a.shape.Kind != ShapeCuboid
	bRound := b.shape.Kind != ShapeCuboid

	switch {
	case !aRound && !bRound:
		return overlapOBB(a, b)
	case aRound && bRound:
		return overlapRound(a, b)
	case aRound && !bRound:
		return overlapRoundBox(a, b)
	default:
		c, ok := overlapRoundBox(b, a)
		c.normal = c.normal.Mul(-1)
		return c, ok
	}
}

// overlapOBB runs the separating axis test over face and edge axes.
func overlapOBB(a, b posedShape) (contact, bool) {
	axesA := a.axes()
	axesB := b.axes()
	l := b.pos.Sub(a.pos)

	testAxes := make([]mgl32.Vec3, 0, 15)
	for i := 0; i < 3; i++ {
		testAxes = append(testAxes, axesA[i], axesB[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := axesA[i].Cross(axesB[j])
			if cross.LenSqr() > 0.0001 {
				testAxes = append(testAxes, cross.Normalize())
			}
		}
	}

	minOverlap := float32(math.MaxFloat32)
	var normal mgl32.Vec3
	for _, axis := range testAxes {
		var projA, projB float32
		for i := 0; i < 3; i++ {
			projA += absf(axesA[i].Dot(axis)) * a.shape.HalfExtents[i]
			projB += absf(axesB[i].Dot(axis)) * b.shape.HalfExtents[i]
		}
		o := projA + projB - absf(l.Dot(axis))
		if o <= 0 {
			return contact{}, false
		}
		if o < minOverlap {
			minOverlap = o
			normal = axis
		}
	}

	// Point the normal from b towards a.
	if l.Dot(normal) > 0 {
		normal = normal.Mul(-1)
	}
	return contact{normal: normal, depth: minOverlap}, true
}

func overlapRound(a, b posedShape) (contact, bool) {
	a0, a1 := a.shape.segment(a.pos, a.rot)
	b0, b1 := b.shape.segment(b.pos, b.rot)
	pa, pb := closestSegmentSegment(a0, a1, b0, b1)

	d := pa.Sub(pb)
	dist := d.Len()
	r := a.shape.Radius + b.shape.Radius
	if dist >= r {
		return contact{}, false
	}
	normal := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		normal = d.Mul(1 / dist)
	}
	return contact{normal: normal, depth: r - dist}, true
}

// overlapRoundBox tests a ball or capsule a against a cuboid b.
func overlapRoundBox(a, b posedShape) (contact, bool) {
	s0, s1 := a.shape.segment(a.pos, a.rot)
	// The segment point nearest the box centre is a good enough probe for
	// capsules that are short relative to the box.
	probe := closestPointSegment(b.pos, s0, s1)

	axes := b.axes()
	rel := probe.Sub(b.pos)
	var local, clamped mgl32.Vec3
	inside := true
	for i := 0; i < 3; i++ {
		local[i] = rel.Dot(axes[i])
		h := b.shape.HalfExtents[i]
		clamped[i] = local[i]
		if clamped[i] > h {
			clamped[i] = h
			inside = false
		} else if clamped[i] < -h {
			clamped[i] = -h
			inside = false
		}
	}

	if inside {
		// Push out through the nearest face.
		best := float32(math.MaxFloat32)
		var normal mgl32.Vec3
		for i := 0; i < 3; i++ {
			dist := b.shape.HalfExtents[i] - absf(local[i])
			if dist < best {
				best = dist
				sign := float32(1)
				if local[i] < 0 {
					sign = -1
				}
				normal = axes[i].Mul(sign)
			}
		}
		return contact{normal: normal, depth: best + a.shape.Radius}, true
	}

	closest := b.pos
	for i := 0; i < 3; i++ {
		closest = closest.Add(axes[i].Mul(clamped[i]))
	}
	d := probe.Sub(closest)
	dist := d.Len()
	if dist >= a.shape.Radius {
		return contact{}, false
	}
	normal := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		normal = d.Mul(1 / dist)
	}
	return contact{normal: normal, depth: a.shape.Radius - dist}, true
}

func closestPointSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom < 1e-12 {
		return a
	}
	t := p.Sub(a).Dot(ab) / denom
	t = clampf(t, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestSegmentSegment returns the closest pair of points between segments
// p1-q1 and p2-q2.
func closestSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	const eps = 1e-9
	var s, t float32
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		s = 0
		t = clampf(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			t = 0
			s = clampf(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clampf((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clampf(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clampf((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
