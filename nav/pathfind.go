package nav

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"
)

// pathNode is an A* node over island polygons.
type pathNode struct {
	poly    int
	g, h, f float32
	parent  *pathNode
	via     portal
	index   int
}

type priorityQueue []*pathNode

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pathNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	item.index = -1
	*pq = old[:n-1]
	return item
}

// maxSearch bounds the number of expanded polygons per query.
const maxSearch = 10000

// findPortals returns the portals crossed walking from polygon start to goal,
// or nil when goal is unreachable.
func (is *Island) findPortals(start, goal int) ([]portal, bool) {
	if start == goal {
		return nil, true
	}
	open := &priorityQueue{}
	heap.Init(open)

	goalPos := is.centroids[goal]
	first := &pathNode{poly: start, h: is.centroids[start].Sub(goalPos).Len()}
	first.f = first.h
	heap.Push(open, first)

	visited := map[int]*pathNode{start: first}
	closed := make(map[int]bool)

	for iterations := 0; open.Len() > 0 && iterations < maxSearch; iterations++ {
		current := heap.Pop(open).(*pathNode)
		if current.poly == goal {
			var portals []portal
			for n := current; n.parent != nil; n = n.parent {
				portals = append(portals, n.via)
			}
			for i, j := 0, len(portals)-1; i < j; i, j = i+1, j-1 {
				portals[i], portals[j] = portals[j], portals[i]
			}
			return portals, true
		}
		closed[current.poly] = true

		for _, p := range is.adj[current.poly] {
			if closed[p.to] {
				continue
			}
			cost := is.centroids[current.poly].Sub(is.centroids[p.to]).Len()
			newG := current.g + cost
			node, seen := visited[p.to]
			if seen && newG >= node.g {
				continue
			}
			if !seen {
				node = &pathNode{poly: p.to}
				visited[p.to] = node
			}
			node.g = newG
			node.h = is.centroids[p.to].Sub(goalPos).Len()
			node.f = node.g + node.h
			node.parent = current
			node.via = p
			if seen {
				heap.Fix(open, node.index)
			} else {
				heap.Push(open, node)
			}
		}
	}
	return nil, false
}

func (is *Island) portalMidpoint(p portal) mgl32.Vec2 {
	return is.world[p.a].Add(is.world[p.b]).Mul(0.5)
}

// FindNextPathPoint returns the next waypoint on the XZ plane from from
// towards to. It reports false once from is within the arrival radius of to
// or when no walkable route connects them. Points outside every island are
// treated as open field and reached directly.
func (w *World) FindNextPathPoint(from, to mgl32.Vec2) (mgl32.Vec2, bool) {
	var (
		next mgl32.Vec2
		ok   bool
	)
	w.withLock(func() {
		next, ok = w.nextPathPointLocked(from, to)
	})
	return next, ok
}

func (w *World) nextPathPointLocked(from, to mgl32.Vec2) (mgl32.Vec2, bool) {
	if from.Sub(to).Len() <= w.ArrivalRadius {
		return mgl32.Vec2{}, false
	}

	fromIsland, fromPoly := w.locateLocked(from)
	toIsland, toPoly := w.locateLocked(to)
	if toIsland == nil || fromIsland == nil {
		return to, true
	}
	if fromIsland != toIsland {
		return mgl32.Vec2{}, false
	}

	portals, found := fromIsland.findPortals(fromPoly, toPoly)
	if !found {
		return mgl32.Vec2{}, false
	}
	for _, p := range portals {
		mid := fromIsland.portalMidpoint(p)
		if mid.Sub(from).Len() > w.ArrivalRadius {
			return mid, true
		}
	}
	return to, true
}

// locateLocked finds the island polygon containing p. Islands are visited in
// id order so overlapping islands resolve deterministically.
func (w *World) locateLocked(p mgl32.Vec2) (*Island, int) {
	var best *Island
	bestPoly := -1
	for _, own := range w.owners {
		for _, is := range own.islands {
			if best != nil && is.Id > best.Id {
				continue
			}
			if poly := is.locate(p); poly >= 0 {
				best, bestPoly = is, poly
			}
		}
	}
	return best, bestPoly
}

// SteerSeek returns a velocity moving from current to target at maxSpeed.
func SteerSeek(current, target mgl32.Vec3, maxSpeed float32) mgl32.Vec3 {
	desired := target.Sub(current)
	if desired.Len() < 0.001 {
		return mgl32.Vec3{}
	}
	return desired.Normalize().Mul(maxSpeed)
}
