package gekko

import (
	"testing"

	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// floatingBody is a dynamic body with no forces acting on it.
func floatingBody() *RigidBodySpec {
	return &RigidBodySpec{Type: physics.Dynamic, Shape: physics.Ball(0.5), Mass: 1, NoGravity: true}
}

func TestBodyPoseRoundTrip(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("probe")
	s.AddObject(obj)
	require.True(t, BuildObjectRigidBody(fw, obj, floatingBody()))

	targets := []mgl32.Vec3{{3, 4, 5}, {-2, 0.5, 10}, {0, 0, 0}}
	for _, p := range targets {
		obj.SetPosition(fw, p, true)
		fw.Tick(tick)
		got := obj.LocalTransform().Position
		for i := 0; i < 3; i++ {
			assert.InDelta(t, p[i], got[i], 1e-3)
		}
	}
}

func TestBodyIsSeededWithGlobalTransform(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	parent := NewEmptyObject("parent")
	parent.SetPosition(fw, mgl32.Vec3{10, 0, 0}, false)
	child := NewEmptyObject("child")
	child.SetPosition(fw, mgl32.Vec3{0, 1, 0}, false)
	parent.AddChild(fw, child)
	s.AddObject(parent)

	require.True(t, BuildObjectRigidBody(fw, child, floatingBody()))
	pos, _, ok := fw.Physics.BodyTransform(*child.BodyParameters())
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{10, 1, 0}, pos)

	owner, ok := fw.Physics.BodyUserData(*child.BodyParameters())
	require.True(t, ok)
	assert.Equal(t, uint64(child.Id()), owner)

	// Pulling the pose back keeps the local offset.
	fw.Tick(tick)
	assert.InDelta(t, 0, child.LocalTransform().Position.X(), 1e-4)
	assert.InDelta(t, 1, child.LocalTransform().Position.Y(), 1e-4)
}

func TestDynamicBodyDrivesLocalTransform(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("crate")
	obj.SetPosition(fw, mgl32.Vec3{0, 10, 0}, false)
	s.AddObject(obj)
	require.True(t, BuildObjectRigidBody(fw, obj, &RigidBodySpec{
		Type:         physics.Dynamic,
		Shape:        physics.Cuboid(0.5, 0.5, 0.5),
		Mass:         1,
		GravityScale: 1,
	}))

	for i := 0; i < 10; i++ {
		fw.Tick(tick)
	}
	assert.Less(t, obj.LocalTransform().Position.Y(), float32(10))
}

func TestDefaultDynamicBodyFalls(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("rock")
	obj.SetPosition(fw, mgl32.Vec3{0, 10, 0}, false)
	s.AddObject(obj)
	require.True(t, BuildObjectRigidBody(fw, obj, &RigidBodySpec{Type: physics.Dynamic, Shape: physics.Ball(0.5), Mass: 1}))

	for i := 0; i < 60; i++ {
		fw.Tick(tick)
	}
	// Roughly g*t^2/2 over 1.2s.
	y := obj.LocalTransform().Position.Y()
	assert.Less(t, y, float32(5))
	assert.Greater(t, y, float32(2))
}

func TestFixedBodyIsNotPulled(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("wall")
	s.AddObject(obj)
	require.True(t, BuildObjectRigidBody(fw, obj, &RigidBodySpec{Type: physics.Fixed, Shape: physics.Cuboid(1, 1, 1)}))

	// Without sync the body stays behind and the object keeps its own pose.
	obj.SetPosition(fw, mgl32.Vec3{4, 0, 0}, false)
	fw.Tick(tick)
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, obj.LocalTransform().Position)
	pos, _, _ := fw.Physics.BodyTransform(*obj.BodyParameters())
	assert.Equal(t, mgl32.Vec3{}, pos)
}

func TestNilSpecReleasesBody(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("crate")
	s.AddObject(obj)

	require.True(t, BuildObjectRigidBody(fw, obj, floatingBody()))
	params := *obj.BodyParameters()
	require.True(t, BuildObjectRigidBody(fw, obj, floatingBody()))
	assert.Equal(t, 1, fw.Physics.BodyCount(), "rebuilding replaces the old body")

	require.True(t, BuildObjectRigidBody(fw, obj, nil))
	assert.Nil(t, obj.BodyParameters())
	assert.Equal(t, 0, fw.Physics.BodyCount())
	_, _, ok := fw.Physics.BodyTransform(params)
	assert.False(t, ok)
}

func TestRemovingParentReleasesChildBody(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	parent := NewEmptyObject("P")
	child := NewEmptyObject("C")
	parent.AddChild(fw, child)
	s.AddObject(parent)
	require.True(t, BuildObjectRigidBody(fw, child, floatingBody()))
	params := *child.BodyParameters()

	require.True(t, s.RemoveObject(parent.Id()))
	_, _, ok := fw.Physics.BodyTransform(params)
	assert.False(t, ok)
	assert.Equal(t, 0, fw.Physics.BodyCount())
	assert.Equal(t, 0, fw.Physics.ColliderCount())
	assert.Equal(t, 0, fw.Registry.Len())
	assert.Nil(t, child.BodyParameters())
}
