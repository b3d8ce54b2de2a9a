package gekko

import (
	"slices"
	"sync/atomic"

	"github.com/gekko3d/scenegraph/nav"
	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectId is process-unique and never reused.
type ObjectId uint64

var lastObjectId atomic.Uint64

func nextObjectId() ObjectId {
	return ObjectId(lastObjectId.Add(1))
}

// ObjectGroup tags an object for external queries such as ray hits.
type ObjectGroup string

// Object is a node of the scene graph. Variants embed *ObjectBase, which
// supplies the shared state and no-op defaults for every hook, and override
// the hooks they need.
type Object interface {
	Base() *ObjectBase

	// Start runs once each time the object becomes reachable from a system
	// root. Removing the object pairs it with Release, so an object added
	// back after removal starts again.
	Start(fw *Framework)
	// Update runs once per tick before the object's children update. It
	// must not recurse into children.
	Update(fw *Framework)
	Render(fw *Framework)
	ShadowRender(fw *Framework)
	// Call is the string RPC surface used by scripts.
	Call(fw *Framework, name string, args []string) (string, bool)
	// SetBodyParameters adopts a physics body. Variants that cannot own a
	// body report an error and return false.
	SetBodyParameters(fw *Framework, params physics.BodyParameters) bool
	// Release frees variant-owned resources when the object leaves the tree.
	Release(fw *Framework)
}

// ObjectBase holds the state every object shares.
type ObjectBase struct {
	name       string
	id         ObjectId
	local      Transform
	parent     *Transform
	children   []Object
	body       *physics.BodyParameters
	groups     []ObjectGroup
	properties map[string][]SystemValue

	nav           *nav.ObjectData
	pastTransform *Transform

	live    bool
	started bool
}

func NewObjectBase(name string) *ObjectBase {
	return &ObjectBase{
		name:       name,
		id:         nextObjectId(),
		local:      NewTransform(),
		properties: make(map[string][]SystemValue),
	}
}

func (b *ObjectBase) Base() *ObjectBase { return b }

func (b *ObjectBase) Start(fw *Framework)        {}
func (b *ObjectBase) Update(fw *Framework)       {}
func (b *ObjectBase) Render(fw *Framework)       {}
func (b *ObjectBase) ShadowRender(fw *Framework) {}
func (b *ObjectBase) Release(fw *Framework)      {}

func (b *ObjectBase) Call(fw *Framework, name string, args []string) (string, bool) {
	return "", false
}

// SetBodyParameters replaces the current body, releasing the old one.
func (b *ObjectBase) SetBodyParameters(fw *Framework, params physics.BodyParameters) bool {
	if b.body != nil && fw != nil {
		fw.Physics.RemoveRigidBody(b.body)
	}
	b.body = &params
	return true
}

func (b *ObjectBase) Id() ObjectId     { return b.id }
func (b *ObjectBase) Name() string     { return b.name }
func (b *ObjectBase) SetName(n string) { b.name = n }

// Live reports whether the object is reachable from a system root.
func (b *ObjectBase) Live() bool { return b.live }

func (b *ObjectBase) LocalTransform() Transform     { return b.local }
func (b *ObjectBase) SetLocalTransform(t Transform) { b.local = t }

// ParentTransform is the parent's global transform as of the last
// propagation, or false for roots.
func (b *ObjectBase) ParentTransform() (Transform, bool) {
	if b.parent == nil {
		return Transform{}, false
	}
	return *b.parent, true
}

func (b *ObjectBase) setParentTransform(t Transform) {
	if b.parent == nil {
		b.parent = new(Transform)
	}
	*b.parent = t
}

// GlobalTransform is recomputed from the local and parent transforms on
// every call.
func (b *ObjectBase) GlobalTransform() Transform {
	return ComposeTransform(b.local, b.parent)
}

// SetPosition moves the object. With syncBody the new global position is
// also written to the physics body.
func (b *ObjectBase) SetPosition(fw *Framework, pos mgl32.Vec3, syncBody bool) {
	b.local.Position = pos
	if syncBody && b.body.HasBody() && fw != nil {
		fw.Physics.SetBodyPosition(*b.body, b.GlobalTransform().Position)
	}
}

// SetRotation sets the Euler rotation in degrees; see SetPosition.
func (b *ObjectBase) SetRotation(fw *Framework, rot mgl32.Vec3, syncBody bool) {
	b.local.Rotation = rot
	if syncBody && b.body.HasBody() && fw != nil {
		fw.Physics.SetBodyRotation(*b.body, b.GlobalTransform().Rotation)
	}
}

func (b *ObjectBase) SetScale(scale mgl32.Vec3) {
	b.local.Scale = scale
}

func (b *ObjectBase) Children() []Object { return b.children }

// AddChild transfers ownership of child to b. The child's parent transform
// is stamped immediately; it starts now if b is live, otherwise when b
// becomes live.
func (b *ObjectBase) AddChild(fw *Framework, child Object) {
	cb := child.Base()
	cb.setParentTransform(b.GlobalTransform())
	b.children = append(b.children, child)
	if b.live && fw != nil {
		fw.attach(child)
	}
}

// RemoveChild detaches the first direct child with id and releases its
// whole subtree.
func (b *ObjectBase) RemoveChild(fw *Framework, id ObjectId) bool {
	for i, c := range b.children {
		if c.Base().id != id {
			continue
		}
		b.children = slices.Delete(b.children, i, i+1)
		if fw != nil {
			fw.detach(c)
		}
		return true
	}
	return false
}

// RemoveChildByName removes the first direct child called name.
func (b *ObjectBase) RemoveChildByName(fw *Framework, name string) bool {
	for _, c := range b.children {
		if c.Base().name == name {
			return b.RemoveChild(fw, c.Base().id)
		}
	}
	return false
}

// FindObject searches the subtree below b depth-first, pre-order, and returns
// the first object called name.
func (b *ObjectBase) FindObject(name string) (Object, bool) {
	for _, c := range b.children {
		if c.Base().name == name {
			return c, true
		}
		if found, ok := c.Base().FindObject(name); ok {
			return found, true
		}
	}
	return nil, false
}

func (b *ObjectBase) FindObjectById(id ObjectId) (Object, bool) {
	for _, c := range b.children {
		if c.Base().id == id {
			return c, true
		}
		if found, ok := c.Base().FindObjectById(id); ok {
			return found, true
		}
	}
	return nil, false
}

// UpdateChildren stamps b's global transform on every child, then updates
// each child followed by its own subtree, in insertion order. The children
// present when the pass starts are the ones updated: a child removed by an
// earlier sibling is skipped, a child added during the pass waits for the
// next tick.
func (b *ObjectBase) UpdateChildren(fw *Framework) {
	global := b.GlobalTransform()
	for _, child := range slices.Clone(b.children) {
		cb := child.Base()
		if b.live && !cb.live {
			continue
		}
		cb.setParentTransform(global)
		child.Update(fw)
		if b.live && !cb.live {
			continue
		}
		cb.UpdateChildren(fw)
	}
}

func (b *ObjectBase) Groups() []ObjectGroup { return b.groups }

func (b *ObjectBase) AddGroup(g ObjectGroup) {
	if !slices.Contains(b.groups, g) {
		b.groups = append(b.groups, g)
	}
}

func (b *ObjectBase) RemoveGroup(g ObjectGroup) {
	if i := slices.Index(b.groups, g); i >= 0 {
		b.groups = slices.Delete(b.groups, i, i+1)
	}
}

func (b *ObjectBase) InGroup(g ObjectGroup) bool {
	return slices.Contains(b.groups, g)
}

func (b *ObjectBase) SetProperty(key string, values ...SystemValue) {
	b.properties[key] = values
}

func (b *ObjectBase) Property(key string) ([]SystemValue, bool) {
	v, ok := b.properties[key]
	return v, ok
}

func (b *ObjectBase) DeleteProperty(key string) {
	delete(b.properties, key)
}

// Properties returns a copy of the property bag.
func (b *ObjectBase) Properties() map[string][]SystemValue {
	out := make(map[string][]SystemValue, len(b.properties))
	for k, v := range b.properties {
		out[k] = slices.Clone(v)
	}
	return out
}

// SaveProperties copies the named properties into the save state under
// "<name>.<key>". Only the first value of each property is persisted.
func (b *ObjectBase) SaveProperties(state *SaveState, keys ...string) {
	for _, k := range keys {
		if v, ok := b.properties[k]; ok && len(v) > 0 {
			state.Set(b.name+"."+k, v[0])
		}
	}
}

// LoadProperties is the inverse of SaveProperties.
func (b *ObjectBase) LoadProperties(state *SaveState, keys ...string) {
	for _, k := range keys {
		if v, ok := state.Get(b.name + "." + k); ok {
			b.properties[k] = []SystemValue{v}
		}
	}
}
