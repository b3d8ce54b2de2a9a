package gekko

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/gekko3d/scenegraph/nav"
	"github.com/gekko3d/scenegraph/physics"
	"github.com/gekko3d/scenegraph/render"
)

// Message is delivered to the OnMessage hook of the system named To at the
// start of the next tick.
type Message struct {
	To   string
	Name string
	Args []SystemValue
}

// Module configures a Framework while it is being built.
type Module interface {
	Install(fw *Framework) error
}

// Framework owns every subsystem the scene graph talks to and drives the
// tick. It is passed to every object hook.
type Framework struct {
	Config     Config
	Assets     *assets.Manager
	Physics    *physics.World
	Navigation *nav.World
	// Render is nil on headless servers.
	Render    render.Manager
	Time      *Time
	Profiler  *Profiler
	Registry  *ObjectRegistry
	SaveState *SaveState

	log     Logger
	systems []*System

	physicsAcc float64
	navAcc     float64

	outbox    []Message
	despawns  []ObjectId
	lifetimes map[ObjectId]float32
	warned    map[string]bool
}

// NewFramework creates a framework with empty worlds and no renderer.
func NewFramework(cfg Config) *Framework {
	fw := &Framework{
		Config:     cfg,
		Assets:     assets.NewManager(),
		Physics:    physics.NewWorld(),
		Navigation: nav.NewWorld(),
		Time:       newTime(),
		Profiler:   NewProfiler(),
		Registry:   NewObjectRegistry(),
		SaveState:  NewSaveState(),
		warned:     make(map[string]bool),
	}
	fw.Assets.MaxTextureSize = cfg.MaxTextureSize
	fw.Physics.Gravity = cfg.GravityVec()
	fw.Navigation.MaxCorrections = cfg.NavMaxCorrections
	if cfg.NavArrivalRadius > 0 {
		fw.Navigation.ArrivalRadius = cfg.NavArrivalRadius
	}
	fw.SetLogger(NewNopLogger())
	return fw
}

// SetLogger installs l on the framework and on the physics and navigation
// worlds.
func (fw *Framework) SetLogger(l Logger) {
	if l == nil {
		l = NewNopLogger()
	}
	fw.log = l
	fw.Physics.SetLogger(l)
	fw.Navigation.SetLogger(l)
}

// Logger never returns nil.
func (fw *Framework) Logger() Logger {
	if fw == nil || fw.log == nil {
		return NewNopLogger()
	}
	return fw.log
}

// WarnOnce logs a warning the first time key is seen.
func (fw *Framework) WarnOnce(key string, format string, args ...any) {
	if fw.warned[key] {
		return
	}
	fw.warned[key] = true
	fw.log.Warnf(format, args...)
}

func (fw *Framework) AddSystem(s *System) error {
	if _, err := fw.System(s.id); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.id)
	}
	s.fw = fw
	fw.systems = append(fw.systems, s)
	for i := 0; i < len(s.roots); i++ {
		fw.attach(s.roots[i])
	}
	return nil
}

func (fw *Framework) System(id string) (*System, error) {
	for _, s := range fw.systems {
		if s.id == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSystemNotFound, id)
}

func (fw *Framework) Systems() []*System { return fw.systems }

// RemoveSystem releases every object of the system and drops it.
func (fw *Framework) RemoveSystem(id string) error {
	for i, s := range fw.systems {
		if s.id != id {
			continue
		}
		for _, root := range s.roots {
			fw.detach(root)
		}
		s.roots = nil
		s.fw = nil
		fw.systems = slices.Delete(fw.systems, i, i+1)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSystemNotFound, id)
}

// FindObject searches all systems in installation order.
func (fw *Framework) FindObject(name string) (Object, bool) {
	for _, s := range fw.systems {
		if obj, ok := s.FindObject(name); ok {
			return obj, true
		}
	}
	fw.log.Debugf("object %q not found", name)
	return nil, false
}

// Object resolves a live object by id.
func (fw *Framework) Object(id ObjectId) (Object, bool) {
	return fw.Registry.Lookup(id)
}

// Send queues msg for delivery at the start of the next tick.
func (fw *Framework) Send(msg Message) {
	fw.outbox = append(fw.outbox, msg)
}

// Despawn removes the object with id at the end of the current tick.
func (fw *Framework) Despawn(id ObjectId) {
	fw.despawns = append(fw.despawns, id)
}

// Tick advances the frame by dt.
func (fw *Framework) Tick(dt time.Duration) {
	fw.TickContext(context.Background(), dt)
}

// TickContext runs one frame: messages, object updates, physics steps at a
// fixed rate, body sync, navigation at its own rate, then render.
func (fw *Framework) TickContext(ctx context.Context, dt time.Duration) {
	fw.Time.advance(dt)
	fw.Profiler.beginTick(ctx, fw.Time.Ticks)
	defer fw.Profiler.endTick()

	fw.deliverMessages()
	if fw.Render != nil {
		fw.Render.BeginFrame()
	}

	fw.Profiler.BeginScope("update")
	for i := 0; i < len(fw.systems); i++ {
		fw.systems[i].update(fw)
	}
	fw.ageLifetimes()
	fw.Profiler.EndScope("update")

	fw.Profiler.BeginScope("physics")
	steps := fw.stepPhysics(dt.Seconds())
	fw.Profiler.EndScope("physics")
	fw.Profiler.SetCount("physics_steps", steps)

	fw.Profiler.BeginScope("sync")
	fw.walk(func(obj Object) { obj.Base().UpdateTransform(fw) })
	fw.Profiler.EndScope("sync")

	fw.Profiler.BeginScope("navigation")
	fw.updateNavigation(dt.Seconds())
	fw.Profiler.EndScope("navigation")

	if fw.Render != nil {
		fw.Profiler.BeginScope("render")
		fw.walk(func(obj Object) {
			obj.Render(fw)
			obj.ShadowRender(fw)
		})
		fw.Profiler.EndScope("render")
	}

	fw.applyDespawns()

	fw.Profiler.SetCount("objects", fw.Registry.Len())
	fw.Profiler.SetCount("bodies", fw.Physics.BodyCount())
	fw.Profiler.SetCount("colliders", fw.Physics.ColliderCount())
	fw.Profiler.SetCount("nav_pending", fw.Navigation.PendingBuilds())
}

// stepPhysics runs fixed steps for the accumulated time. Backlog beyond
// MaxSubSteps is dropped so a slow frame cannot snowball.
func (fw *Framework) stepPhysics(dt float64) int {
	fixed := 1 / fw.Config.PhysicsHz
	fw.physicsAcc += dt
	steps := 0
	for fw.physicsAcc >= fixed && steps < fw.Config.MaxSubSteps {
		fw.Physics.Step(float32(fixed))
		fw.physicsAcc -= fixed
		steps++
	}
	if fw.physicsAcc >= fixed {
		fw.physicsAcc = 0
	}
	return steps
}

func (fw *Framework) updateNavigation(dt float64) {
	fw.navAcc += dt
	if fw.navAcc < 1/fw.Config.NavHz {
		return
	}
	fw.walk(func(obj Object) { obj.Base().syncNav(fw) })
	if !fw.Navigation.Update(float32(fw.navAcc)) {
		fw.log.Debugf("navigation busy, update skipped")
		return
	}
	fw.navAcc = 0
}

func (fw *Framework) deliverMessages() {
	inbox := fw.outbox
	fw.outbox = nil
	for _, msg := range inbox {
		s, err := fw.System(msg.To)
		if err != nil {
			fw.log.Warnf("dropping message %q: %v", msg.Name, err)
			continue
		}
		if s.OnMessage != nil {
			s.OnMessage(fw, s, msg)
		}
	}
}

func (fw *Framework) applyDespawns() {
	ids := fw.despawns
	fw.despawns = nil
	for _, id := range ids {
		removed := false
		for _, s := range fw.systems {
			if s.RemoveObjectAnywhere(id) {
				removed = true
				break
			}
		}
		if !removed {
			fw.log.Warnf("despawn: object %d not found", id)
		}
	}
}

func (fw *Framework) walk(fn func(Object)) {
	for _, s := range fw.systems {
		s.walk(fn)
	}
}

// attach makes obj and its subtree live: registry, navigation, then Start,
// parents before children.
func (fw *Framework) attach(obj Object) {
	b := obj.Base()
	if b.live {
		return
	}
	b.live = true
	fw.Registry.add(obj)
	if b.nav != nil {
		b.registerNav(fw)
	}
	if !b.started {
		b.started = true
		obj.Start(fw)
	}
	for i := 0; i < len(b.children); i++ {
		fw.attach(b.children[i])
	}
}

// detach releases obj's subtree, children first: variant resources, physics
// body, navigation registrations, registry entry.
func (fw *Framework) detach(obj Object) {
	b := obj.Base()
	for _, c := range b.children {
		fw.detach(c)
	}
	if b.started {
		obj.Release(fw)
	}
	b.releaseBody(fw)
	if b.nav != nil && b.live {
		fw.Navigation.RemoveObject(nav.ObjectId(b.id))
	}
	fw.Registry.remove(b.id)
	b.live = false
	b.started = false
}

// Run ticks at Config.TickHz until ctx is cancelled.
func (fw *Framework) Run(ctx context.Context) error {
	period := time.Duration(float64(time.Second) / fw.Config.TickHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			fw.TickContext(ctx, now.Sub(last))
			last = now
		}
	}
}

// Shutdown releases every system and its objects.
func (fw *Framework) Shutdown() {
	for len(fw.systems) > 0 {
		_ = fw.RemoveSystem(fw.systems[0].id)
	}
}
