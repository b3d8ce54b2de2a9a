package gekko

import (
	"slices"
	"sync"
)

// ObjectRegistry maps live object ids back to their objects so that physics
// user data can be resolved to names, groups and properties.
type ObjectRegistry struct {
	mu      sync.RWMutex
	objects map[ObjectId]Object
}

func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{objects: make(map[ObjectId]Object)}
}

func (r *ObjectRegistry) add(obj Object) {
	r.mu.Lock()
	r.objects[obj.Base().Id()] = obj
	r.mu.Unlock()
}

func (r *ObjectRegistry) remove(id ObjectId) {
	r.mu.Lock()
	delete(r.objects, id)
	r.mu.Unlock()
}

func (r *ObjectRegistry) Lookup(id ObjectId) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	return obj, ok
}

func (r *ObjectRegistry) Name(id ObjectId) (string, bool) {
	obj, ok := r.Lookup(id)
	if !ok {
		return "", false
	}
	return obj.Base().Name(), true
}

func (r *ObjectRegistry) Groups(id ObjectId) ([]ObjectGroup, bool) {
	obj, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}
	return slices.Clone(obj.Base().Groups()), true
}

func (r *ObjectRegistry) Properties(id ObjectId) (map[string][]SystemValue, bool) {
	obj, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}
	return obj.Base().Properties(), true
}

// InGroup returns the live objects tagged with group, ordered by id.
func (r *ObjectRegistry) InGroup(group ObjectGroup) []Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Object
	for _, obj := range r.objects {
		if obj.Base().InGroup(group) {
			out = append(out, obj)
		}
	}
	slices.SortFunc(out, func(a, b Object) int {
		return compareIds(a.Base().Id(), b.Base().Id())
	})
	return out
}

func (r *ObjectRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

func compareIds(a, b ObjectId) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
