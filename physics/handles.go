package physics

// RigidBodyHandle is a generational index into the world's body storage.
// The zero value is never issued and reports !Valid().
type RigidBodyHandle struct {
	Index      uint32
	Generation uint32
}

func (h RigidBodyHandle) Valid() bool { return h.Generation != 0 }

// ColliderHandle is a generational index into the world's collider storage.
type ColliderHandle struct {
	Index      uint32
	Generation uint32
}

func (h ColliderHandle) Valid() bool { return h.Generation != 0 }

// BodyParameters is the handle bundle an object keeps for its physics body.
// The world owns the memory behind both handles; the bundle only refers to it.
type BodyParameters struct {
	RigidBody RigidBodyHandle
	Collider  ColliderHandle

	// RenderCollider is the shape used for debug drawing, if any.
	RenderCollider *Shape
}

// HasBody reports whether the bundle still refers to a rigid body.
func (p *BodyParameters) HasBody() bool {
	return p != nil && p.RigidBody.Valid()
}

type arenaSlot[T any] struct {
	generation uint32
	value      *T
}

// arena is a slot allocator with generation counters so that a handle to a
// freed slot never resolves to a newer occupant.
type arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(v *T) (uint32, uint32) {
	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		slot := &a.slots[idx]
		slot.generation++
		slot.value = v
		return idx, slot.generation
	}
	a.slots = append(a.slots, arenaSlot[T]{generation: 1, value: v})
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) get(idx, gen uint32) *T {
	if gen == 0 || int(idx) >= len(a.slots) {
		return nil
	}
	slot := &a.slots[idx]
	if slot.generation != gen || slot.value == nil {
		return nil
	}
	return slot.value
}

func (a *arena[T]) remove(idx, gen uint32) *T {
	v := a.get(idx, gen)
	if v == nil {
		return nil
	}
	a.slots[idx].value = nil
	a.free = append(a.free, idx)
	a.live--
	return v
}

// each visits live slots in index order.
func (a *arena[T]) each(fn func(idx, gen uint32, v *T) bool) {
	for i := range a.slots {
		slot := &a.slots[i]
		if slot.value == nil {
			continue
		}
		if !fn(uint32(i), slot.generation, slot.value) {
			return
		}
	}
}

func (a *arena[T]) len() int { return a.live }
