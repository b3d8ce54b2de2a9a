package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := newSpatialGrid(2)

	a := ColliderHandle{Index: 1, Generation: 1}
	boxA := aabb{min: mgl32.Vec3{0, 0, 0}, max: mgl32.Vec3{1, 1, 1}}
	b := ColliderHandle{Index: 2, Generation: 1}
	boxB := aabb{min: mgl32.Vec3{3, 3, 3}, max: mgl32.Vec3{4, 4, 4}}

	grid.insert(a, boxA)
	grid.insert(b, boxB)

	assert.Equal(t, []ColliderHandle{a}, grid.query(boxA))
	assert.Equal(t, []ColliderHandle{b}, grid.query(boxB))

	// A box spanning both cells sees each handle once.
	both := grid.query(aabb{min: mgl32.Vec3{0, 0, 0}, max: mgl32.Vec3{4, 4, 4}})
	assert.ElementsMatch(t, []ColliderHandle{a, b}, both)

	grid.clear()
	assert.Empty(t, grid.query(boxA))
}

func TestSpatialGridHugeBoxesAlwaysCandidates(t *testing.T) {
	grid := newSpatialGrid(1)
	floor := ColliderHandle{Index: 7, Generation: 3}
	grid.insert(floor, aabb{min: mgl32.Vec3{-500, -1, -500}, max: mgl32.Vec3{500, 0, 500}})

	got := grid.query(aabb{min: mgl32.Vec3{40, 0, -40}, max: mgl32.Vec3{41, 1, -39}})
	assert.Equal(t, []ColliderHandle{floor}, got)
}

func TestAABBExpandFollowsDirection(t *testing.T) {
	box := aabb{min: mgl32.Vec3{0, 0, 0}, max: mgl32.Vec3{1, 1, 1}}
	swept := box.expand(mgl32.Vec3{2, -1, 0})
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, swept.min)
	assert.Equal(t, mgl32.Vec3{3, 1, 1}, swept.max)
	assert.True(t, swept.overlaps(aabb{min: mgl32.Vec3{2.5, 0, 0}, max: mgl32.Vec3{4, 1, 1}}))
	assert.False(t, box.overlaps(aabb{min: mgl32.Vec3{2.5, 0, 0}, max: mgl32.Vec3{4, 1, 1}}))
}
