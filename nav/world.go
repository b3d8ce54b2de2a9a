package nav

import (
	"context"
	"fmt"
	"sync"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/gekko3d/scenegraph/mathx"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// ObjectId identifies the scene object that owns a navigation registration.
type ObjectId uint64

// Transform is the pose an owner pushes into the navigation world. Rotation
// is in degrees.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

type DataKind int

const (
	KindStaticMesh DataKind = iota
	KindDynamicCapsule
)

// ObjectData is how an object is represented in the navigation world: static
// geometry becomes islands, a capsule becomes a character.
type ObjectData struct {
	Kind   DataKind
	Model  assets.AssetId
	Radius float32
}

func StaticMesh(model assets.AssetId) ObjectData {
	return ObjectData{Kind: KindStaticMesh, Model: model}
}

func DynamicCapsule(radius float32) ObjectData {
	return ObjectData{Kind: KindDynamicCapsule, Radius: radius}
}

// ModelSource resolves model assets for island extraction.
type ModelSource interface {
	Model(id assets.AssetId) (*assets.ModelAsset, bool)
}

type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type character struct {
	pos    mgl32.Vec3
	radius float32
}

type agent struct {
	pos      mgl32.Vec3
	radius   float32
	maxSpeed float32
	target   *mgl32.Vec3
	desired  mgl32.Vec3
}

// owner tracks every registration held by one object. Builds that finish
// after the owner was removed find a different (or no) entry and are dropped.
type owner struct {
	transform Transform
	islands   []*Island
	pending   []*IslandBuild
}

// World is the navigation archipelago. All state sits behind one mutex; a
// panic while it is held poisons the world until the next Update clears it.
type World struct {
	mu       sync.Mutex
	poisoned bool

	MaxCorrections int
	ArrivalRadius  float32

	owners     map[ObjectId]*owner
	characters map[ObjectId]*character
	agents     map[ObjectId]*agent

	log Logger
}

func NewWorld() *World {
	return &World{
		MaxCorrections: 1000,
		ArrivalRadius:  0.05,
		owners:         make(map[ObjectId]*owner),
		characters:     make(map[ObjectId]*character),
		agents:         make(map[ObjectId]*agent),
		log:            nopLogger{},
	}
}

func (w *World) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	w.withLock(func() { w.log = l })
}

// withLock runs fn under the world lock and marks the world poisoned if fn
// panics.
func (w *World) withLock(fn func()) {
	w.mu.Lock()
	w.guarded(fn)
}

// guarded runs fn while the caller already holds w.mu and releases it.
func (w *World) guarded(fn func()) {
	defer w.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			w.poisoned = true
			panic(r)
		}
	}()
	fn()
}

// Poisoned reports whether a previous lock holder panicked.
func (w *World) Poisoned() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.poisoned
}

// AddObject registers an object. Static meshes spawn one background build per
// primitive of the first mesh and the returned futures resolve when each
// island is published or abandoned. Capsules register a character at once.
func (w *World) AddObject(src ModelSource, id ObjectId, data ObjectData, t Transform) []*IslandBuild {
	switch data.Kind {
	case KindDynamicCapsule:
		w.AddCharacter(id, t.Position, data.Radius)
		return nil
	case KindStaticMesh:
	default:
		return nil
	}

	var model *assets.ModelAsset
	if src != nil {
		model, _ = src.Model(data.Model)
	}

	var builds []*IslandBuild
	var maxCorrections int
	var own *owner
	w.withLock(func() {
		if model == nil || len(model.Meshes) == 0 {
			w.log.Warnf("nav: object %d references missing model %s", id, data.Model)
			return
		}
		own = w.owners[id]
		if own == nil {
			own = &owner{}
			w.owners[id] = own
		}
		own.transform = t
		maxCorrections = w.MaxCorrections
		for i := range model.Meshes[0].Primitives {
			b := newIslandBuild(id, i)
			own.pending = append(own.pending, b)
			builds = append(builds, b)
		}
	})

	for _, b := range builds {
		prim := &model.Meshes[0].Primitives[b.Primitive]
		go w.runBuild(own, b, prim, maxCorrections)
	}
	return builds
}

func (w *World) runBuild(own *owner, b *IslandBuild, prim *assets.Primitive, maxCorrections int) {
	var (
		is          *Island
		corrections int
		err         error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("nav: island build for object %d panicked: %v", b.Owner, r)
			}
		}()
		verts, polys := extractPrimitive(prim)
		is, corrections, err = buildIsland(b.Owner, verts, polys, maxCorrections)
	}()

	w.mu.Lock()
	defer w.mu.Unlock()

	removePending(own, b)
	if w.owners[b.Owner] != own {
		b.resolve(nil, corrections, ErrBuildCancelled)
		return
	}
	if err != nil {
		w.log.Errorf("%v", err)
		b.resolve(nil, corrections, err)
		return
	}
	is.applyTransform(own.transform)
	own.islands = append(own.islands, is)
	b.resolve(is, corrections, nil)
}

func removePending(own *owner, b *IslandBuild) {
	for i, p := range own.pending {
		if p == b {
			own.pending = append(own.pending[:i], own.pending[i+1:]...)
			return
		}
	}
}

// RemoveObject drops every island, character and agent owned by id. Builds
// still running for id resolve with ErrBuildCancelled.
func (w *World) RemoveObject(id ObjectId) {
	w.withLock(func() {
		delete(w.owners, id)
		delete(w.characters, id)
		delete(w.agents, id)
	})
}

// SetIslandTransform moves every published island of id. Builds that finish
// later pick up the new transform.
func (w *World) SetIslandTransform(id ObjectId, t Transform) bool {
	found := false
	w.withLock(func() {
		own := w.owners[id]
		if own == nil {
			return
		}
		found = true
		own.transform = t
		for _, is := range own.islands {
			is.applyTransform(t)
		}
	})
	return found
}

// Islands returns the published islands of id. It is empty while builds are
// pending.
func (w *World) Islands(id ObjectId) []*Island {
	var out []*Island
	w.withLock(func() {
		if own := w.owners[id]; own != nil {
			out = append(out, own.islands...)
		}
	})
	return out
}

// PendingBuilds is the number of island builds not yet published.
func (w *World) PendingBuilds() int {
	n := 0
	w.withLock(func() {
		for _, own := range w.owners {
			n += len(own.pending)
		}
	})
	return n
}

// Wait blocks until every build pending at call time has resolved or ctx is
// done.
func (w *World) Wait(ctx context.Context) error {
	var builds []*IslandBuild
	w.withLock(func() {
		for _, own := range w.owners {
			builds = append(builds, own.pending...)
		}
	})

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range builds {
		g.Go(func() error {
			select {
			case <-b.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}

func (w *World) AddCharacter(id ObjectId, pos mgl32.Vec3, radius float32) {
	w.withLock(func() {
		w.characters[id] = &character{pos: pos, radius: radius}
	})
}

func (w *World) SetCharacterPosition(id ObjectId, pos mgl32.Vec3) bool {
	found := false
	w.withLock(func() {
		if c := w.characters[id]; c != nil {
			c.pos = pos
			found = true
		}
	})
	return found
}

func (w *World) CharacterPosition(id ObjectId) (mgl32.Vec3, bool) {
	var pos mgl32.Vec3
	found := false
	w.withLock(func() {
		if c := w.characters[id]; c != nil {
			pos, found = c.pos, true
		}
	})
	return pos, found
}

func (w *World) AddAgent(id ObjectId, pos mgl32.Vec3, radius, maxSpeed float32) {
	w.withLock(func() {
		w.agents[id] = &agent{pos: pos, radius: radius, maxSpeed: maxSpeed}
	})
}

// SetAgentTarget sets or, with nil, clears the agent's goal.
func (w *World) SetAgentTarget(id ObjectId, target *mgl32.Vec3) bool {
	found := false
	w.withLock(func() {
		a := w.agents[id]
		if a == nil {
			return
		}
		found = true
		if target == nil {
			a.target = nil
			a.desired = mgl32.Vec3{}
			return
		}
		t := *target
		a.target = &t
	})
	return found
}

func (w *World) SetAgentSpeed(id ObjectId, maxSpeed float32) bool {
	found := false
	w.withLock(func() {
		if a := w.agents[id]; a != nil {
			a.maxSpeed = maxSpeed
			found = true
		}
	})
	return found
}

func (w *World) SetAgentPosition(id ObjectId, pos mgl32.Vec3) bool {
	found := false
	w.withLock(func() {
		if a := w.agents[id]; a != nil {
			a.pos = pos
			found = true
		}
	})
	return found
}

// AgentDesiredVelocity is the steering output of the last Update.
func (w *World) AgentDesiredVelocity(id ObjectId) (mgl32.Vec3, bool) {
	var v mgl32.Vec3
	found := false
	w.withLock(func() {
		if a := w.agents[id]; a != nil {
			v, found = a.desired, true
		}
	})
	return v, found
}

// Update advances agent steering. It never blocks: when the lock is held
// elsewhere the tick is skipped and false is returned. A poisoned world is
// recovered with a warning before updating.
func (w *World) Update(dt float32) bool {
	if !w.mu.TryLock() {
		return false
	}
	w.guarded(func() {
		if w.poisoned {
			w.log.Warnf("nav: recovered poisoned navigation lock")
			w.poisoned = false
		}
		w.updateAgentsLocked(dt)
	})
	return true
}

func (w *World) updateAgentsLocked(dt float32) {
	for id, a := range w.agents {
		if a.target == nil {
			a.desired = mgl32.Vec3{}
			continue
		}
		next, ok := w.nextPathPointLocked(mathx.XZ(a.pos), mathx.XZ(*a.target))
		if !ok {
			a.desired = mgl32.Vec3{}
			continue
		}
		waypoint := mgl32.Vec3{next.X(), a.pos.Y(), next.Y()}
		desired := SteerSeek(a.pos, waypoint, a.maxSpeed)

		// Keep clear of characters.
		for cid, c := range w.characters {
			if cid == id {
				continue
			}
			away := mathx.XZ(a.pos).Sub(mathx.XZ(c.pos))
			gap := away.Len() - a.radius - c.radius
			if gap < 0.5 && away.Len() > 1e-4 {
				push := away.Normalize().Mul(a.maxSpeed * (0.5 - gap))
				desired = desired.Add(mgl32.Vec3{push.X(), 0, push.Y()})
			}
		}
		if l := desired.Len(); l > a.maxSpeed && l > 0 {
			desired = desired.Mul(a.maxSpeed / l)
		}
		a.desired = desired
	}
}
