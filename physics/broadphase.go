package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type aabb struct {
	min mgl32.Vec3
	max mgl32.Vec3
}

func (a aabb) overlaps(b aabb) bool {
	return a.min.X() <= b.max.X() && a.max.X() >= b.min.X() &&
		a.min.Y() <= b.max.Y() && a.max.Y() >= b.min.Y() &&
		a.min.Z() <= b.max.Z() && a.max.Z() >= b.min.Z()
}

func (a aabb) expand(d mgl32.Vec3) aabb {
	out := a
	for i := 0; i < 3; i++ {
		if d[i] < 0 {
			out.min[i] += d[i]
		} else {
			out.max[i] += d[i]
		}
	}
	return out
}

// spatialGrid is a uniform hash grid over collider bounding boxes.
type spatialGrid struct {
	cellSize float32
	cells    map[uint64][]ColliderHandle
}

func newSpatialGrid(cellSize float32) *spatialGrid {
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]ColliderHandle),
	}
}

func (g *spatialGrid) clear() {
	clear(g.cells)
}

func (g *spatialGrid) insert(h ColliderHandle, box aabb) {
	g.visit(box, func(key uint64) {
		g.cells[key] = append(g.cells[key], h)
	})
}

// query returns each candidate once, in first-seen order.
func (g *spatialGrid) query(box aabb) []ColliderHandle {
	seen := make(map[ColliderHandle]struct{})
	var out []ColliderHandle
	g.visit(box, func(key uint64) {
		for _, h := range g.cells[key] {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	})
	return out
}

func (g *spatialGrid) visit(box aabb, fn func(key uint64)) {
	minX, maxX := g.cellIndex(box.min.X()), g.cellIndex(box.max.X())
	minY, maxY := g.cellIndex(box.min.Y()), g.cellIndex(box.max.Y())
	minZ, maxZ := g.cellIndex(box.min.Z()), g.cellIndex(box.max.Z())

	// Huge boxes (ground planes) would touch millions of cells.
	const maxCellsPerAxis = 64
	if maxX-minX > maxCellsPerAxis || maxY-minY > maxCellsPerAxis || maxZ-minZ > maxCellsPerAxis {
		fn(overflowCell)
		return
	}

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				fn(hashCell(x, y, z))
			}
		}
	}
	fn(overflowCell)
}

// overflowCell holds colliders too large to rasterize; every query visits it.
const overflowCell = math.MaxUint64

func (g *spatialGrid) cellIndex(v float32) int {
	return int(math.Floor(float64(v / g.cellSize)))
}

func hashCell(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1^y*p2^z*p3) & (math.MaxUint64 - 1)
}

func (w *World) colliderAABBLocked(col *collider) aabb {
	pos, rot := w.colliderPoseLocked(col)
	half := col.shape.aabbHalfExtents(rot)
	return aabb{min: pos.Sub(half), max: pos.Add(half)}
}

func (w *World) rebuildGridLocked() {
	if !w.gridDirty {
		return
	}
	w.grid.clear()
	w.colliders.each(func(idx, gen uint32, col *collider) bool {
		w.grid.insert(ColliderHandle{Index: idx, Generation: gen}, w.colliderAABBLocked(col))
		return true
	})
	w.gridDirty = false
}

// candidatesLocked returns the colliders whose boxes overlap box.
func (w *World) candidatesLocked(box aabb) []ColliderHandle {
	w.rebuildGridLocked()
	return w.grid.query(box)
}
