package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warnf(format string, _ ...any)  { l.warns = append(l.warns, format) }
func (l *recordingLogger) Errorf(format string, _ ...any) { l.errors = append(l.errors, format) }

func TestRemoveRigidBodyClearsHandles(t *testing.T) {
	w := NewWorld()
	params := w.NewRigidBody(BodyDesc{Type: Dynamic, Shape: Ball(0.5)})
	stale := params

	require.True(t, params.HasBody())
	assert.Equal(t, 1, w.BodyCount())
	assert.Equal(t, 1, w.ColliderCount())

	w.RemoveRigidBody(&params)
	assert.False(t, params.HasBody())
	assert.False(t, params.Collider.Valid())
	assert.Nil(t, params.RenderCollider)
	assert.Equal(t, 0, w.BodyCount())
	assert.Equal(t, 0, w.ColliderCount())

	// The freed slot is reused with a new generation.
	fresh := w.NewRigidBody(BodyDesc{Type: Fixed, Shape: Ball(0.5)})
	assert.Equal(t, stale.RigidBody.Index, fresh.RigidBody.Index)
	assert.NotEqual(t, stale.RigidBody.Generation, fresh.RigidBody.Generation)
}

func TestStaleHandleIsLogged(t *testing.T) {
	w := NewWorld()
	log := &recordingLogger{}
	w.SetLogger(log)

	params := w.NewRigidBody(BodyDesc{Type: Dynamic, Shape: Ball(0.5)})
	stale := params
	w.RemoveRigidBody(&params)

	_, _, ok := w.BodyTransform(stale)
	assert.False(t, ok)
	assert.False(t, w.SetBodyPosition(stale, mgl32.Vec3{1, 1, 1}))
	assert.Len(t, log.warns, 2)
}

func TestGravityPullsDynamicBodies(t *testing.T) {
	w := NewWorld()
	w.Gravity = mgl32.Vec3{0, -10, 0}
	params := w.NewRigidBody(BodyDesc{
		Type:         Dynamic,
		Position:     mgl32.Vec3{0, 10, 0},
		Shape:        Cuboid(0.5, 0.5, 0.5),
		GravityScale: 1,
	})

	for i := 0; i < 10; i++ {
		w.Step(0.1)
	}

	pos, _, ok := w.BodyTransform(params)
	require.True(t, ok)
	assert.Less(t, pos.Y(), float32(10))
	vel, _ := w.LinearVelocity(params)
	assert.Less(t, vel.Y(), float32(0))
}

func TestGravityScaleDefaultsToOne(t *testing.T) {
	w := NewWorld()
	w.Gravity = mgl32.Vec3{0, -10, 0}
	plain := w.NewRigidBody(BodyDesc{Type: Dynamic, Position: mgl32.Vec3{0, 10, 0}, Shape: Ball(0.5)})
	half := w.NewRigidBody(BodyDesc{Type: Dynamic, Position: mgl32.Vec3{5, 10, 0}, Shape: Ball(0.5), GravityScale: 0.5})
	still := w.NewRigidBody(BodyDesc{Type: Dynamic, Position: mgl32.Vec3{10, 10, 0}, Shape: Ball(0.5), NoGravity: true})

	w.Step(0.1)

	v, _ := w.LinearVelocity(plain)
	assert.InDelta(t, -1, v.Y(), 0.02)
	v, _ = w.LinearVelocity(half)
	assert.InDelta(t, -0.5, v.Y(), 0.01)
	v, _ = w.LinearVelocity(still)
	assert.Equal(t, float32(0), v.Y())
}

func TestFixedBodiesDoNotMove(t *testing.T) {
	w := NewWorld()
	params := w.NewRigidBody(BodyDesc{
		Type:         Fixed,
		Position:     mgl32.Vec3{0, 5, 0},
		Shape:        Cuboid(1, 1, 1),
		GravityScale: 1,
	})
	for i := 0; i < 10; i++ {
		w.Step(0.1)
	}
	pos, _, _ := w.BodyTransform(params)
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, pos)
}

func TestBodyPoseRoundTrip(t *testing.T) {
	w := NewWorld()
	params := w.NewRigidBody(BodyDesc{
		Type:      Dynamic,
		Position:  mgl32.Vec3{1, 2, 3},
		Rotation:  mgl32.Vec3{10, 20, 30},
		Shape:     Ball(0.5),
		NoGravity: true,
	})

	w.Step(1.0 / 60)

	pos, rot, ok := w.BodyTransform(params)
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, []float32{1, 2, 3}[i], pos[i], 1e-4)
		assert.InDelta(t, []float32{10, 20, 30}[i], rot[i], 0.05)
	}
}

func TestBallRestsOnFloor(t *testing.T) {
	w := NewWorld()
	w.NewRigidBody(BodyDesc{
		Type:     Fixed,
		Position: mgl32.Vec3{0, -0.5, 0},
		Shape:    Cuboid(10, 0.5, 10),
	})
	ball := w.NewRigidBody(BodyDesc{
		Type:         Dynamic,
		Position:     mgl32.Vec3{0, 0.5, 0},
		Shape:        Ball(0.5),
		GravityScale: 1,
	})

	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}

	pos, _, _ := w.BodyTransform(ball)
	assert.InDelta(t, 0.5, pos.Y(), 0.05)
	assert.Equal(t, 1, w.ContactCount(ball.Collider))
}

func TestCastRayHitsClosestAndReportsUserData(t *testing.T) {
	w := NewWorld()
	w.NewRigidBody(BodyDesc{Type: Fixed, Position: mgl32.Vec3{0, 0, -5}, Shape: Cuboid(0.5, 0.5, 0.5), UserData: 42})
	w.NewRigidBody(BodyDesc{Type: Fixed, Position: mgl32.Vec3{0, 0, -10}, Shape: Ball(1), UserData: 7})

	hit, ok := w.CastRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 100, AllGroups, false)
	require.True(t, ok)
	assert.InDelta(t, 4.5, hit.Toi, 1e-4)
	assert.InDelta(t, -4.5, hit.Point.Z(), 1e-4)

	owner, ok := w.ColliderUserData(hit.Collider)
	require.True(t, ok)
	assert.Equal(t, uint64(42), owner)

	_, ok = w.CastRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 4, AllGroups, false)
	assert.False(t, ok, "max distance stops short of the box")
}

func TestCastRayRespectsGroups(t *testing.T) {
	w := NewWorld()
	w.AddCollider(ColliderDesc{
		Position: mgl32.Vec3{5, 0, 0},
		Shape:    Capsule(1, 0.5),
		Groups:   InteractionGroups{Memberships: 2, Filter: GroupAll},
	})

	_, ok := w.CastRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 100, InteractionGroups{Memberships: GroupAll, Filter: 1}, false)
	assert.False(t, ok)

	hit, ok := w.CastRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 100, InteractionGroups{Memberships: GroupAll, Filter: 2}, false)
	require.True(t, ok)
	assert.InDelta(t, 4.5, hit.Toi, 1e-3)
}

func TestSensorIntersections(t *testing.T) {
	w := NewWorld()
	sensor := w.AddCollider(ColliderDesc{Shape: Ball(1), Sensor: true})
	body := w.NewRigidBody(BodyDesc{Type: Dynamic, Position: mgl32.Vec3{0.5, 0, 0}, Shape: Ball(0.5), NoGravity: true})

	w.Step(1.0 / 60)
	assert.Equal(t, 1, w.IntersectionCount(sensor))
	assert.Equal(t, 0, w.ContactCount(sensor))

	// Sensors never push bodies.
	pos, _, _ := w.BodyTransform(body)
	assert.InDelta(t, 0.5, pos.X(), 1e-4)

	w.SetBodyPosition(body, mgl32.Vec3{10, 0, 0})
	w.Step(1.0 / 60)
	assert.Equal(t, 0, w.IntersectionCount(sensor))
}

func TestMoveShapeStopsAtWall(t *testing.T) {
	w := NewWorld()
	w.AddCollider(ColliderDesc{Position: mgl32.Vec3{3, 0, 0}, Shape: Cuboid(0.5, 2, 2)})
	w.AddCollider(ColliderDesc{Position: mgl32.Vec3{0, 0, 3}, Shape: Ball(0.5), Sensor: true})

	moved := w.MoveShape(Ball(0.5), mgl32.Vec3{}, mgl32.Vec3{5, 0, 0}, AllGroups)
	assert.InDelta(t, 2.0, moved.X(), 0.06)
	assert.InDelta(t, 0, moved.Y(), 1e-6)

	// Sensors do not block.
	moved = w.MoveShape(Ball(0.5), mgl32.Vec3{}, mgl32.Vec3{0, 0, 5}, AllGroups)
	assert.InDelta(t, 5.0, moved.Z(), 1e-3)
}

func TestParentlessColliderMoves(t *testing.T) {
	w := NewWorld()
	h := w.AddCollider(ColliderDesc{Shape: Ball(1)})
	require.True(t, w.SetColliderPosition(h, mgl32.Vec3{4, 0, 0}))

	pos, ok := w.ColliderPosition(h)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, pos)

	body := w.NewRigidBody(BodyDesc{Type: Fixed, Shape: Ball(1)})
	assert.False(t, w.SetColliderPosition(body.Collider, mgl32.Vec3{1, 0, 0}))
}

func TestInteractionGroupsTest(t *testing.T) {
	a := InteractionGroups{Memberships: 1, Filter: 2}
	b := InteractionGroups{Memberships: 2, Filter: 1}
	c := InteractionGroups{Memberships: 4, Filter: GroupAll}
	assert.True(t, a.Test(b))
	assert.False(t, a.Test(c))
	assert.True(t, AllGroups.Test(c))
}
