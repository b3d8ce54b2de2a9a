package gekko

import (
	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray answers intersection queries along its global forward direction. Each
// query casts a fresh ray; nothing is kept in the physics world.
type Ray struct {
	*ObjectBase

	// Direction is in the object's local frame.
	Direction   mgl32.Vec3
	MaxDistance float32
	Groups      physics.InteractionGroups
	// HitSensors includes sensor colliders such as triggers.
	HitSensors bool
}

func NewRay(name string, direction mgl32.Vec3, maxDistance float32) *Ray {
	return &Ray{
		ObjectBase:  NewObjectBase(name),
		Direction:   direction,
		MaxDistance: maxDistance,
		Groups:      physics.AllGroups,
	}
}

// WorldDirection is Direction rotated by the global rotation.
func (r *Ray) WorldDirection() mgl32.Vec3 {
	return r.GlobalTransform().Forward(r.Direction)
}

func (r *Ray) cast(fw *Framework) (physics.RayHit, bool) {
	var exclude []physics.ColliderHandle
	if params := r.BodyParameters(); params != nil {
		exclude = append(exclude, params.Collider)
	}
	return fw.Physics.CastRay(r.GlobalTransform().Position, r.WorldDirection(), r.MaxDistance, r.Groups, r.HitSensors, exclude...)
}

// hitObject resolves the collider hit through its user data to a live object.
func (r *Ray) hitObject(fw *Framework) (Object, bool) {
	hit, ok := r.cast(fw)
	if !ok {
		return nil, false
	}
	owner, ok := fw.Physics.ColliderUserData(hit.Collider)
	if !ok || owner == 0 {
		return nil, false
	}
	obj, ok := fw.Registry.Lookup(ObjectId(owner))
	if !ok {
		fw.Logger().Debugf("ray %q hit unregistered object %d", r.Name(), owner)
	}
	return obj, ok
}

func (r *Ray) IsIntersecting(fw *Framework) bool {
	_, ok := r.cast(fw)
	return ok
}

func (r *Ray) IntersectionPosition(fw *Framework) (mgl32.Vec3, bool) {
	hit, ok := r.cast(fw)
	return hit.Point, ok
}

func (r *Ray) IntersectionObjectName(fw *Framework) (string, bool) {
	obj, ok := r.hitObject(fw)
	if !ok {
		return "", false
	}
	return obj.Base().Name(), true
}

func (r *Ray) IntersectionObjectGroups(fw *Framework) ([]ObjectGroup, bool) {
	obj, ok := r.hitObject(fw)
	if !ok {
		return nil, false
	}
	return fw.Registry.Groups(obj.Base().Id())
}

func (r *Ray) IntersectionObjectProperties(fw *Framework) (map[string][]SystemValue, bool) {
	obj, ok := r.hitObject(fw)
	if !ok {
		return nil, false
	}
	return fw.Registry.Properties(obj.Base().Id())
}

func (r *Ray) Call(fw *Framework, name string, args []string) (string, bool) {
	switch name {
	case "is_intersecting":
		return formatBool(r.IsIntersecting(fw)), true
	case "intersection_position":
		pos, ok := r.IntersectionPosition(fw)
		if !ok {
			return "", true
		}
		return formatVec3(pos), true
	case "intersection_object_name":
		n, _ := r.IntersectionObjectName(fw)
		return n, true
	}
	return "", false
}
