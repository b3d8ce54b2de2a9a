package gekko

import "slices"

// System owns a flat list of root objects. Its id is unique within a
// Framework.
type System struct {
	id    string
	roots []Object

	// OnUpdate runs before the system's objects update.
	OnUpdate func(fw *Framework, s *System)
	// OnMessage receives messages sent to this system, one tick late.
	OnMessage func(fw *Framework, s *System, msg Message)

	fw *Framework
}

func NewSystem(id string) *System {
	return &System{id: id}
}

func (s *System) Id() string { return s.id }

func (s *System) Objects() []Object { return s.roots }

// AddObject makes obj a root of the system. It starts immediately when the
// system is installed in a framework.
func (s *System) AddObject(obj Object) {
	s.roots = append(s.roots, obj)
	if s.fw != nil {
		s.fw.attach(obj)
	}
}

// RemoveObject removes the root with id and releases its whole subtree.
func (s *System) RemoveObject(id ObjectId) bool {
	for i, obj := range s.roots {
		if obj.Base().Id() != id {
			continue
		}
		s.roots = slices.Delete(s.roots, i, i+1)
		if s.fw != nil {
			s.fw.detach(obj)
		}
		return true
	}
	return false
}

// FindObject searches every root tree depth-first, pre-order.
func (s *System) FindObject(name string) (Object, bool) {
	for _, root := range s.roots {
		if root.Base().Name() == name {
			return root, true
		}
		if found, ok := root.Base().FindObject(name); ok {
			return found, true
		}
	}
	return nil, false
}

func (s *System) FindObjectById(id ObjectId) (Object, bool) {
	for _, root := range s.roots {
		if root.Base().Id() == id {
			return root, true
		}
		if found, ok := root.Base().FindObjectById(id); ok {
			return found, true
		}
	}
	return nil, false
}

// RemoveObjectAnywhere removes the object with id wherever it sits in the
// system's trees.
func (s *System) RemoveObjectAnywhere(id ObjectId) bool {
	if s.RemoveObject(id) {
		return true
	}
	var walk func(objs []Object) bool
	walk = func(objs []Object) bool {
		for _, obj := range objs {
			if obj.Base().RemoveChild(s.fw, id) {
				return true
			}
			if walk(obj.Base().Children()) {
				return true
			}
		}
		return false
	}
	return walk(s.roots)
}

func (s *System) update(fw *Framework) {
	if s.OnUpdate != nil {
		s.OnUpdate(fw, s)
	}
	for _, root := range slices.Clone(s.roots) {
		rb := root.Base()
		if !rb.live {
			continue
		}
		root.Update(fw)
		if !rb.live {
			continue
		}
		rb.UpdateChildren(fw)
	}
}

// walk visits every object of the system in pre-order.
func (s *System) walk(fn func(Object)) {
	var visit func(obj Object)
	visit = func(obj Object) {
		fn(obj)
		for _, c := range obj.Base().Children() {
			visit(c)
		}
	}
	for _, root := range s.roots {
		visit(root)
	}
}
