package gekko

import (
	"context"
	"testing"
	"time"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/gekko3d/scenegraph/nav"
	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterControllerArrives(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	ctrl := NewCharacterController("hero", 0.5, 0.3)
	s.AddObject(ctrl)

	ctrl.WalkTo(fw, mgl32.Vec3{10, 0, 0}, 1)
	dt := 100 * time.Millisecond

	for i := 0; i < 50; i++ {
		fw.Tick(dt)
	}
	require.NotNil(t, ctrl.Movement())
	assert.InDelta(t, 5, ctrl.LocalTransform().Position.X(), 0.01)

	for i := 0; i < 60; i++ {
		fw.Tick(dt)
	}
	assert.Nil(t, ctrl.Movement())
	pos := ctrl.LocalTransform().Position
	assert.InDelta(t, 10, pos.X(), 0.1)
	assert.InDelta(t, 0, pos.Z(), 1e-4)

	// The collider and the navigation character follow the object.
	cpos, ok := fw.Physics.ColliderPosition(ctrl.Collider())
	require.True(t, ok)
	assert.InDelta(t, pos.X(), cpos.X(), 1e-4)
	npos, ok := fw.Navigation.CharacterPosition(nav.ObjectId(ctrl.Id()))
	require.True(t, ok)
	assert.InDelta(t, pos.X(), npos.X(), 1e-4)
}

func TestCharacterControllerStopsAtWall(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	wall := NewEmptyObject("wall")
	wall.SetPosition(fw, mgl32.Vec3{3, 0, 0}, false)
	s.AddObject(wall)
	require.True(t, BuildObjectRigidBody(fw, wall, &RigidBodySpec{Type: physics.Fixed, Shape: physics.Cuboid(0.5, 2, 2)}))

	ctrl := NewCharacterController("hero", 0.5, 0.5)
	s.AddObject(ctrl)
	_, ok := ctrl.Call(fw, "walk_to", []string{"10", "0", "0", "2"})
	require.True(t, ok)

	for i := 0; i < 60; i++ {
		fw.Tick(100 * time.Millisecond)
	}
	assert.InDelta(t, 2, ctrl.LocalTransform().Position.X(), 0.06)

	out, _ := ctrl.Call(fw, "is_walking", nil)
	assert.Equal(t, "true", out, "a blocked walk keeps its order")
	_, ok = ctrl.Call(fw, "stop", nil)
	require.True(t, ok)
	assert.Nil(t, ctrl.Movement())
}

func TestCharacterControllerFollowsNavMesh(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	// A corridor of three cells along X centred on the origin.
	floor := NewModelObject("floor", fw.Assets.AddModel(assets.GridPlane(30, 10, 3, 1)))
	s.AddObject(floor)
	builds := floor.EnableNavMesh(fw)
	require.Len(t, builds, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fw.Navigation.Wait(ctx))
	require.NoError(t, builds[0].Err())

	ctrl := NewCharacterController("hero", 0.5, 0.3)
	ctrl.SetPosition(fw, mgl32.Vec3{-12, 0, 0}, false)
	s.AddObject(ctrl)
	ctrl.WalkTo(fw, mgl32.Vec3{12, 0, 0}, 5)

	for i := 0; i < 100 && ctrl.Movement() != nil; i++ {
		fw.Tick(100 * time.Millisecond)
	}
	assert.Nil(t, ctrl.Movement())
	assert.InDelta(t, 12, ctrl.LocalTransform().Position.X(), 0.1)
}

func TestCharacterControllerAgentMode(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	ctrl := NewCharacterController("hero", 0.5, 0.3)
	ctrl.UseAgent = true
	s.AddObject(ctrl)

	ctrl.WalkTo(fw, mgl32.Vec3{0, 0, 4}, 2)
	for i := 0; i < 60 && ctrl.Movement() != nil; i++ {
		fw.Tick(100 * time.Millisecond)
	}
	assert.Nil(t, ctrl.Movement())
	assert.InDelta(t, 4, ctrl.LocalTransform().Position.Z(), 0.1)
}

func TestCharacterControllerRefusesBody(t *testing.T) {
	fw, log, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	ctrl := NewCharacterController("hero", 0.5, 0.3)
	s.AddObject(ctrl)

	assert.False(t, BuildObjectRigidBody(fw, ctrl, floatingBody()))
	assert.Nil(t, ctrl.BodyParameters())
	assert.Equal(t, 0, fw.Physics.BodyCount())
	assert.Equal(t, 1, log.errorCount())

	s.RemoveObject(ctrl.Id())
	assert.Equal(t, 0, fw.Physics.ColliderCount())
	_, ok := fw.Navigation.CharacterPosition(nav.ObjectId(ctrl.Id()))
	assert.False(t, ok)
}

func TestIdleCharacterControllerColliderFollowsParent(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	cart := NewEmptyObject("cart")
	ctrl := NewCharacterController("rider", 0.5, 0.3)
	ctrl.SetPosition(fw, mgl32.Vec3{0, 1, 0}, false)
	cart.AddChild(fw, ctrl)
	s.AddObject(cart)

	cart.SetPosition(fw, mgl32.Vec3{4, 0, -2}, false)
	fw.Tick(tick)
	require.Nil(t, ctrl.Movement())
	pos, ok := fw.Physics.ColliderPosition(ctrl.Collider())
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{4, 1, -2}, pos)
}

func TestCharacterControllerRestartsWhenAddedBack(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	ctrl := NewCharacterController("hero", 0.5, 0.3)
	s.AddObject(ctrl)
	require.True(t, s.RemoveObject(ctrl.Id()))
	assert.Equal(t, 0, fw.Physics.ColliderCount())

	s.AddObject(ctrl)
	require.True(t, ctrl.Collider().Valid())
	assert.Equal(t, 1, fw.Physics.ColliderCount())
	_, ok := fw.Navigation.CharacterPosition(nav.ObjectId(ctrl.Id()))
	assert.True(t, ok)

	ctrl.WalkTo(fw, mgl32.Vec3{1, 0, 0}, 1)
	for i := 0; i < 20 && ctrl.Movement() != nil; i++ {
		fw.Tick(100 * time.Millisecond)
	}
	assert.InDelta(t, 1, ctrl.LocalTransform().Position.X(), 0.1)
}
