package gekko

import (
	"github.com/gekko3d/scenegraph/physics"
)

// Trigger is a fixed sensor volume. It reports overlap only and never owns a
// rigid body.
type Trigger struct {
	*ObjectBase

	shape    physics.Shape
	groups   physics.InteractionGroups
	collider physics.ColliderHandle
}

func NewTrigger(name string, shape physics.Shape) *Trigger {
	return &Trigger{
		ObjectBase: NewObjectBase(name),
		shape:      shape,
		groups:     physics.AllGroups,
	}
}

// SetGroups must be called before the trigger starts.
func (t *Trigger) SetGroups(groups physics.InteractionGroups) {
	t.groups = groups
}

func (t *Trigger) Collider() physics.ColliderHandle { return t.collider }

func (t *Trigger) Start(fw *Framework) {
	global := t.GlobalTransform()
	t.collider = fw.Physics.AddCollider(physics.ColliderDesc{
		Position: global.Position,
		Rotation: global.Rotation,
		Shape:    t.shape.Scaled(t.local.Scale),
		Groups:   t.groups,
		Sensor:   true,
		UserData: uint64(t.Id()),
	})
}

// Update keeps the sensor on the trigger's global position.
func (t *Trigger) Update(fw *Framework) {
	if !t.collider.Valid() {
		return
	}
	pos := t.GlobalTransform().Position
	if cur, ok := fw.Physics.ColliderPosition(t.collider); ok && cur == pos {
		return
	}
	fw.Physics.SetColliderPosition(t.collider, pos)
}

// IsColliding reports whether anything overlapped the sensor in the last
// physics step.
func (t *Trigger) IsColliding(fw *Framework) bool {
	if !t.collider.Valid() {
		return false
	}
	return fw.Physics.IntersectionCount(t.collider) > 0 || fw.Physics.ContactCount(t.collider) > 0
}

func (t *Trigger) SetBodyParameters(fw *Framework, params physics.BodyParameters) bool {
	fw.Logger().Errorf("trigger %q cannot own a rigid body", t.Name())
	return false
}

func (t *Trigger) Call(fw *Framework, name string, args []string) (string, bool) {
	switch name {
	case "is_colliding":
		return formatBool(t.IsColliding(fw)), true
	}
	return "", false
}

func (t *Trigger) Release(fw *Framework) {
	if t.collider.Valid() {
		fw.Physics.RemoveCollider(t.collider)
		t.collider = physics.ColliderHandle{}
	}
}
