package gekko

import (
	"github.com/gekko3d/scenegraph/physics"
)

// RigidBodySpec requests a physics body for an object. The body is seeded
// with the object's current global transform and its user data is the
// object id.
type RigidBodySpec struct {
	Type         physics.BodyType
	Shape        physics.Shape
	Mass         float32
	// GravityScale multiplies world gravity; zero means 1. NoGravity opts
	// the body out of gravity entirely.
	GravityScale float32
	NoGravity    bool
	Membership   physics.Group
	Filter       physics.Group
	Sensor       bool
	Friction     float32
	Restitution  float32
}

// BuildObjectRigidBody creates a body for obj, or releases its body when spec
// is nil. It returns false when the variant refuses bodies.
func BuildObjectRigidBody(fw *Framework, obj Object, spec *RigidBodySpec) bool {
	b := obj.Base()
	if spec == nil {
		b.releaseBody(fw)
		return true
	}

	global := b.GlobalTransform()
	groups := physics.AllGroups
	if spec.Membership != physics.GroupNone || spec.Filter != physics.GroupNone {
		groups = physics.InteractionGroups{Memberships: spec.Membership, Filter: spec.Filter}
	}
	params := fw.Physics.NewRigidBody(physics.BodyDesc{
		Type:         spec.Type,
		Position:     global.Position,
		Rotation:     global.Rotation,
		Scale:        b.local.Scale,
		Shape:        spec.Shape,
		Mass:         spec.Mass,
		GravityScale: spec.GravityScale,
		NoGravity:    spec.NoGravity,
		Groups:       groups,
		Sensor:       spec.Sensor,
		Friction:     spec.Friction,
		Restitution:  spec.Restitution,
		UserData:     uint64(b.id),
	})
	if !obj.SetBodyParameters(fw, params) {
		fw.Physics.RemoveRigidBody(&params)
		return false
	}
	return true
}

// BodyParameters returns the object's physics handles, or nil.
func (b *ObjectBase) BodyParameters() *physics.BodyParameters {
	if !b.body.HasBody() {
		return nil
	}
	return b.body
}

func (b *ObjectBase) releaseBody(fw *Framework) {
	if b.body == nil {
		return
	}
	if fw != nil {
		fw.Physics.RemoveRigidBody(b.body)
	}
	b.body = nil
}

// UpdateTransform pulls the simulated pose of a dynamic or kinematic body
// into the local transform. Nothing is written back to physics.
func (b *ObjectBase) UpdateTransform(fw *Framework) {
	if !b.body.HasBody() {
		return
	}
	kind, ok := fw.Physics.BodyType(*b.body)
	if ok && !kind.Simulated() {
		return
	}
	pos, rot, ok := fw.Physics.BodyTransform(*b.body)
	if !ok {
		return
	}
	if b.parent != nil {
		pos = pos.Sub(b.parent.Position)
		rot = rot.Sub(b.parent.Rotation)
	}
	b.local.Position = pos
	b.local.Rotation = rot
}
