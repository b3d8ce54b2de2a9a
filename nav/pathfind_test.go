package nav

import (
	"testing"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corridor registers a 30x10 plane split into three cells along X.
func corridor(t *testing.T, w *World, id ObjectId, at mgl32.Vec3) {
	t.Helper()
	src := assets.NewManager()
	model := src.AddModel(assets.GridPlane(30, 10, 3, 1))
	builds := w.AddObject(src, id, StaticMesh(model), Transform{Position: at, Scale: mgl32.Vec3{1, 1, 1}})
	require.Len(t, builds, 1)
	require.NoError(t, builds[0].Err())
}

func TestFindNextPathPointFollowsPortals(t *testing.T) {
	w := NewWorld()
	corridor(t, w, 1, mgl32.Vec3{})

	next, ok := w.FindNextPathPoint(mgl32.Vec2{-10, 0}, mgl32.Vec2{10, 0})
	require.True(t, ok)
	assert.InDelta(t, -5, next.X(), 1e-4)
	assert.InDelta(t, 0, next.Y(), 1e-4)

	// Standing on the first portal moves on to the second.
	next, ok = w.FindNextPathPoint(mgl32.Vec2{-5, 0}, mgl32.Vec2{10, 0})
	require.True(t, ok)
	assert.InDelta(t, 5, next.X(), 1e-4)

	next, ok = w.FindNextPathPoint(mgl32.Vec2{8, 0}, mgl32.Vec2{10, 1})
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec2{10, 1}, next)
}

func TestFindNextPathPointArrival(t *testing.T) {
	w := NewWorld()
	_, ok := w.FindNextPathPoint(mgl32.Vec2{1, 1}, mgl32.Vec2{1.01, 1})
	assert.False(t, ok)
}

func TestFindNextPathPointOpenField(t *testing.T) {
	w := NewWorld()
	next, ok := w.FindNextPathPoint(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 0})
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec2{10, 0}, next)
}

func TestFindNextPathPointDisconnectedIslands(t *testing.T) {
	w := NewWorld()
	corridor(t, w, 1, mgl32.Vec3{})
	corridor(t, w, 2, mgl32.Vec3{0, 0, 100})

	_, ok := w.FindNextPathPoint(mgl32.Vec2{0, 0}, mgl32.Vec2{0, 100})
	assert.False(t, ok)
}

func TestSetIslandTransformMovesIsland(t *testing.T) {
	w := NewWorld()
	corridor(t, w, 1, mgl32.Vec3{})

	require.True(t, w.SetIslandTransform(1, Transform{Position: mgl32.Vec3{100, 0, 0}, Scale: mgl32.Vec3{1, 1, 1}}))

	next, ok := w.FindNextPathPoint(mgl32.Vec2{90, 0}, mgl32.Vec2{110, 0})
	require.True(t, ok)
	assert.InDelta(t, 95, next.X(), 1e-4)

	assert.False(t, w.SetIslandTransform(42, unitScale))
}

func TestSteerSeek(t *testing.T) {
	v := SteerSeek(mgl32.Vec3{}, mgl32.Vec3{0, 0, 3}, 2)
	assert.InDelta(t, 2, v.Z(), 1e-5)
	assert.Equal(t, mgl32.Vec3{}, SteerSeek(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, 2))
}
