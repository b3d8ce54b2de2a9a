package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// pairKey is an unordered collider pair.
type pairKey struct {
	a, b ColliderHandle
}

func makePair(a, b ColliderHandle) pairKey {
	if b.Index < a.Index || (b.Index == a.Index && b.Generation < a.Generation) {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

func (k pairKey) has(h ColliderHandle) bool { return k.a == h || k.b == h }

// Step advances the simulation by dt seconds: integrate, resolve contacts
// for dynamic bodies, then refresh the contact and intersection sets.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.integrateLocked(dt)
	w.gridDirty = true
	w.resolveLocked()
	w.gridDirty = true
	w.narrowPhaseLocked()
}

func (w *World) integrateLocked(dt float32) {
	damping := float32(math.Max(0, float64(1-w.LinearDamping)))

	w.bodies.each(func(_, _ uint32, b *rigidBody) bool {
		switch b.kind {
		case Fixed, KinematicPositionBased:
			return true
		case KinematicVelocityBased:
			b.pos = b.pos.Add(b.linVel.Mul(dt))
			stepRotation(b, dt)
			return true
		}
		if b.sleeping {
			return true
		}

		if b.gravityScale != 0 {
			b.linVel = b.linVel.Add(w.Gravity.Mul(b.gravityScale * dt))
		}
		b.linVel = b.linVel.Mul(damping)

		disp := b.linVel.Mul(dt)
		if l := float64(disp.Len()); math.IsNaN(l) || math.IsInf(l, 0) {
			b.linVel = mgl32.Vec3{}
			return true
		}
		b.pos = b.pos.Add(disp)
		stepRotation(b, dt)

		if b.linVel.Len() < w.SleepThreshold && b.angVel.Len() < w.SleepThreshold && b.gravityScale == 0 {
			b.idleTime += dt
			if b.idleTime > w.SleepTime {
				b.sleeping = true
				b.linVel = mgl32.Vec3{}
				b.angVel = mgl32.Vec3{}
			}
		} else {
			b.idleTime = 0
		}
		return true
	})
}

func stepRotation(b *rigidBody, dt float32) {
	if b.angVel.Len() == 0 {
		return
	}
	spin := mgl32.Quat{W: 0, V: b.angVel.Mul(0.5 * dt)}
	b.rot = b.rot.Add(spin.Mul(b.rot)).Normalize()
}

// contactSlop is the penetration left in place so resting contacts stay
// detectable by the narrow phase.
const contactSlop = 0.005

// resolveLocked pushes dynamic bodies out of solid colliders and removes the
// approaching velocity component.
func (w *World) resolveLocked() {
	w.colliders.each(func(idx, gen uint32, col *collider) bool {
		if col.sensor {
			return true
		}
		body := w.bodies.get(col.parent.Index, col.parent.Generation)
		if body == nil || body.kind != Dynamic || body.sleeping {
			return true
		}
		self := ColliderHandle{Index: idx, Generation: gen}

		for _, other := range w.candidatesLocked(w.colliderAABBLocked(col)) {
			if other == self {
				continue
			}
			oc := w.colliders.get(other.Index, other.Generation)
			if oc == nil || oc.sensor || oc.parent == col.parent || !col.groups.Test(oc.groups) {
				continue
			}
			c, ok := overlap(w.posedLocked(col), w.posedLocked(oc))
			if !ok {
				continue
			}

			otherBody := w.bodies.get(oc.parent.Index, oc.parent.Generation)
			share := float32(1)
			push := c.depth - contactSlop
			if otherBody != nil && otherBody.kind == Dynamic {
				share = 0.5
				if push > 0 {
					otherBody.pos = otherBody.pos.Sub(c.normal.Mul(push * share))
				}
				otherBody.wake()
			}
			if push > 0 {
				body.pos = body.pos.Add(c.normal.Mul(push * share))
			}

			var otherVel mgl32.Vec3
			if otherBody != nil {
				otherVel = otherBody.linVel
			}
			rel := body.linVel.Sub(otherVel)
			along := rel.Dot(c.normal)
			if along >= 0 {
				continue
			}
			restitution := (col.restitution + oc.restitution) * 0.5
			body.linVel = body.linVel.Sub(c.normal.Mul((1 + restitution) * along))

			friction := (col.friction + oc.friction) * 0.5
			if friction > 0 {
				tangent := rel.Sub(c.normal.Mul(along))
				body.linVel = body.linVel.Sub(tangent.Mul(clampf(friction, 0, 1)))
			}
		}
		return true
	})
}

func (w *World) narrowPhaseLocked() {
	clear(w.contacts)
	clear(w.intersections)

	w.colliders.each(func(idx, gen uint32, col *collider) bool {
		self := ColliderHandle{Index: idx, Generation: gen}
		for _, other := range w.candidatesLocked(w.colliderAABBLocked(col)) {
			if other == self {
				continue
			}
			oc := w.colliders.get(other.Index, other.Generation)
			if oc == nil || (oc.parent.Valid() && oc.parent == col.parent) || !col.groups.Test(oc.groups) {
				continue
			}
			if col.sensor && oc.sensor {
				continue
			}
			key := makePair(self, other)
			if _, ok := w.intersections[key]; ok {
				continue
			}
			if _, ok := w.contacts[key]; ok {
				continue
			}
			if _, ok := overlap(w.posedLocked(col), w.posedLocked(oc)); !ok {
				continue
			}
			if col.sensor || oc.sensor {
				w.intersections[key] = struct{}{}
			} else if w.isDynamicLocked(col) || w.isDynamicLocked(oc) {
				w.contacts[key] = struct{}{}
			}
		}
		return true
	})
}

func (w *World) isDynamicLocked(col *collider) bool {
	body := w.bodies.get(col.parent.Index, col.parent.Generation)
	return body != nil && body.kind == Dynamic
}

func (w *World) posedLocked(col *collider) posedShape {
	pos, rot := w.colliderPoseLocked(col)
	return posedShape{shape: col.shape, pos: pos, rot: rot}
}

// IntersectionCount is the number of colliders overlapping the given sensor
// (or the sensors overlapping the given collider) after the last step.
func (w *World) IntersectionCount(h ColliderHandle) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for key := range w.intersections {
		if key.has(h) {
			n++
		}
	}
	return n
}

// ContactCount is the number of solid contacts involving h after the last step.
func (w *World) ContactCount(h ColliderHandle) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for key := range w.contacts {
		if key.has(h) {
			n++
		}
	}
	return n
}
