package gekko

import (
	"testing"

	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayResolvesHitObjectGroups(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	enemy := NewEmptyObject("orc")
	enemy.SetPosition(fw, mgl32.Vec3{0, 0, -5}, false)
	enemy.AddGroup("enemy")
	enemy.SetProperty("health", NumberValue(30))
	s.AddObject(enemy)
	require.True(t, BuildObjectRigidBody(fw, enemy, &RigidBodySpec{Type: physics.Fixed, Shape: physics.Cuboid(0.5, 0.5, 0.5)}))

	ray := NewRay("sight", mgl32.Vec3{0, 0, -1}, 100)
	s.AddObject(ray)

	assert.True(t, ray.IsIntersecting(fw))
	pos, ok := ray.IntersectionPosition(fw)
	require.True(t, ok)
	assert.InDelta(t, -4.5, pos.Z(), 1e-3)

	groups, ok := ray.IntersectionObjectGroups(fw)
	require.True(t, ok)
	assert.Contains(t, groups, ObjectGroup("enemy"))

	name, ok := ray.IntersectionObjectName(fw)
	require.True(t, ok)
	assert.Equal(t, "orc", name)

	props, ok := ray.IntersectionObjectProperties(fw)
	require.True(t, ok)
	hp, _ := props["health"][0].AsNumber()
	assert.Equal(t, 30.0, hp)
}

func TestRayFollowsGlobalRotation(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	target := NewEmptyObject("target")
	target.SetPosition(fw, mgl32.Vec3{5, 0, 0}, false)
	s.AddObject(target)
	require.True(t, BuildObjectRigidBody(fw, target, &RigidBodySpec{Type: physics.Fixed, Shape: physics.Ball(1)}))

	turret := NewEmptyObject("turret")
	ray := NewRay("barrel", mgl32.Vec3{0, 0, -1}, 20)
	turret.AddChild(fw, ray)
	s.AddObject(turret)
	assert.False(t, ray.IsIntersecting(fw))

	// Turning the parent turns the ray once the transform propagates.
	turret.SetRotation(fw, mgl32.Vec3{0, -90, 0}, false)
	fw.Tick(tick)
	name, ok := ray.IntersectionObjectName(fw)
	require.True(t, ok)
	assert.Equal(t, "target", name)
}

func TestRayMissAndSensors(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	zone := NewTrigger("zone", physics.Ball(1))
	zone.SetPosition(fw, mgl32.Vec3{0, 0, -3}, false)
	s.AddObject(zone)

	ray := NewRay("probe", mgl32.Vec3{0, 0, -1}, 10)
	s.AddObject(ray)
	assert.False(t, ray.IsIntersecting(fw))
	out, ok := ray.Call(fw, "intersection_object_name", nil)
	require.True(t, ok)
	assert.Empty(t, out)

	ray.HitSensors = true
	name, ok := ray.IntersectionObjectName(fw)
	require.True(t, ok)
	assert.Equal(t, "zone", name)

	ray.MaxDistance = 1
	assert.False(t, ray.IsIntersecting(fw))
}
