package nav

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/gekko3d/scenegraph/mathx"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrIslandAbandoned is returned by a build whose geometry could not be
// corrected within the world's correction budget.
var ErrIslandAbandoned = errors.New("nav: island abandoned")

// ErrBuildCancelled is returned by builds whose owner was removed before the
// island was published.
var ErrBuildCancelled = errors.New("nav: build cancelled")

type IslandId uint64

var nextIslandId atomic.Uint64

type portal struct {
	to   int
	a, b int
}

// Island is a navmesh region built from one primitive of a static mesh.
// Vertices are kept in the navigation convention (Z up); queries run on the
// world XZ plane under the island's current transform.
type Island struct {
	Id    IslandId
	Owner ObjectId

	verts []mgl32.Vec3
	polys [][]int
	adj   [][]portal

	world     []mgl32.Vec2
	centroids []mgl32.Vec2
	winding   []float32
}

func (is *Island) PolygonCount() int { return len(is.polys) }

// applyTransform recomputes the world-plane vertices.
func (is *Island) applyTransform(t Transform) {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	is.world = is.world[:0]
	for _, v := range is.verts {
		p := mathx.SwapYZ(v)
		p = mgl32.Vec3{p.X() * scale.X(), p.Y() * scale.Y(), p.Z() * scale.Z()}
		p = mathx.RotateDeg(p, t.Rotation).Add(t.Position)
		is.world = append(is.world, mathx.XZ(p))
	}
	is.centroids = is.centroids[:0]
	is.winding = is.winding[:0]
	for _, poly := range is.polys {
		var c mgl32.Vec2
		for _, vi := range poly {
			c = c.Add(is.world[vi])
		}
		is.centroids = append(is.centroids, c.Mul(1/float32(len(poly))))
		is.winding = append(is.winding, signedArea(is.world, poly))
	}
}

// locate returns the polygon containing p, or -1.
func (is *Island) locate(p mgl32.Vec2) int {
	const eps = 1e-4
	for pi, poly := range is.polys {
		sign := float32(1)
		if is.winding[pi] < 0 {
			sign = -1
		}
		inside := true
		for i := range poly {
			a := is.world[poly[i]]
			b := is.world[poly[(i+1)%len(poly)]]
			if mathx.Cross2(b.Sub(a), p.Sub(a))*sign < -eps {
				inside = false
				break
			}
		}
		if inside {
			return pi
		}
	}
	return -1
}

func signedArea(verts []mgl32.Vec2, poly []int) float32 {
	var area float32
	for i := range poly {
		a := verts[poly[i]]
		b := verts[poly[(i+1)%len(poly)]]
		area += a.X()*b.Y() - b.X()*a.Y()
	}
	return area * 0.5
}

// IslandBuild is the pending result of an island construction. It is
// resolved exactly once; Done is closed afterwards.
type IslandBuild struct {
	Owner     ObjectId
	Primitive int

	done        chan struct{}
	island      *Island
	err         error
	corrections int
}

func newIslandBuild(owner ObjectId, primitive int) *IslandBuild {
	return &IslandBuild{Owner: owner, Primitive: primitive, done: make(chan struct{})}
}

func (b *IslandBuild) Done() <-chan struct{} { return b.done }

// Err reports why the build produced no island. Only valid after Done.
func (b *IslandBuild) Err() error {
	<-b.done
	return b.err
}

func (b *IslandBuild) Island() *Island {
	<-b.done
	return b.island
}

// Corrections is the number of polygons dropped before validation passed.
func (b *IslandBuild) Corrections() int {
	<-b.done
	return b.corrections
}

func (b *IslandBuild) resolve(is *Island, corrections int, err error) {
	b.island = is
	b.corrections = corrections
	b.err = err
	close(b.done)
}

// extractPrimitive flips the primitive into the navigation convention and
// welds coincident vertices so neighbouring faces share edges.
func extractPrimitive(prim *assets.Primitive) ([]mgl32.Vec3, [][]int) {
	const weld = 1e-4
	type key [3]int64
	index := make(map[key]int)
	remap := make([]int, len(prim.Positions))
	var verts []mgl32.Vec3

	for i, p := range prim.Positions {
		v := mathx.SwapYZ(p)
		k := key{
			int64(math.Round(float64(v.X() / weld))),
			int64(math.Round(float64(v.Y() / weld))),
			int64(math.Round(float64(v.Z() / weld))),
		}
		if at, ok := index[k]; ok {
			remap[i] = at
			continue
		}
		index[k] = len(verts)
		remap[i] = len(verts)
		verts = append(verts, v)
	}

	var polys [][]int
	for _, face := range prim.Faces() {
		poly := make([]int, 0, len(face))
		for _, vi := range face {
			if int(vi) >= len(remap) {
				poly = append(poly, -1)
				continue
			}
			poly = append(poly, remap[vi])
		}
		polys = append(polys, poly)
	}
	return verts, polys
}

// validatePolygons returns the index of the first polygon that is not a
// usable convex navmesh face, or -1 when all pass.
func validatePolygons(verts []mgl32.Vec3, polys [][]int) int {
	for pi, poly := range polys {
		if !validPolygon(verts, poly) {
			return pi
		}
	}
	return -1
}

func validPolygon(verts []mgl32.Vec3, poly []int) bool {
	if len(poly) < 3 {
		return false
	}
	pts := make([]mgl32.Vec2, len(poly))
	for i, vi := range poly {
		if vi < 0 || vi >= len(verts) {
			return false
		}
		pts[i] = mgl32.Vec2{verts[vi].X(), verts[vi].Y()}
	}

	var area float32
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		area += a.X()*b.Y() - b.X()*a.Y()
	}
	if absf(area) < 1e-8 {
		return false
	}

	sign := float32(1)
	if area < 0 {
		sign = -1
	}
	for i := range pts {
		a, b, c := pts[i], pts[(i+1)%len(pts)], pts[(i+2)%len(pts)]
		if mathx.Cross2(b.Sub(a), c.Sub(b))*sign < -1e-6 {
			return false
		}
	}
	return true
}

// buildIsland validates the polygons, dropping one offender per pass. More
// than maxCorrections drops abandon the island.
func buildIsland(owner ObjectId, verts []mgl32.Vec3, polys [][]int, maxCorrections int) (*Island, int, error) {
	corrections := 0
	for {
		bad := validatePolygons(verts, polys)
		if bad < 0 {
			break
		}
		if corrections >= maxCorrections {
			return nil, corrections, fmt.Errorf("%w: object %d still invalid after %d corrections", ErrIslandAbandoned, owner, corrections)
		}
		polys = append(polys[:bad:bad], polys[bad+1:]...)
		corrections++
	}
	if len(polys) == 0 {
		return nil, corrections, fmt.Errorf("%w: object %d has no walkable polygons", ErrIslandAbandoned, owner)
	}

	is := &Island{
		Id:    IslandId(nextIslandId.Add(1)),
		Owner: owner,
		verts: verts,
		polys: polys,
	}
	is.adj = buildAdjacency(polys)
	return is, corrections, nil
}

func buildAdjacency(polys [][]int) [][]portal {
	type edge struct{ a, b int }
	owners := make(map[edge][]int)
	for pi, poly := range polys {
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			if a > b {
				a, b = b, a
			}
			owners[edge{a, b}] = append(owners[edge{a, b}], pi)
		}
	}

	adj := make([][]portal, len(polys))
	for pi, poly := range polys {
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			for _, other := range owners[edge{lo, hi}] {
				if other != pi {
					adj[pi] = append(adj[pi], portal{to: other, a: a, b: b})
				}
			}
		}
	}
	return adj
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
