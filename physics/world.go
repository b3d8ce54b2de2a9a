package physics

import (
	"sync"

	"github.com/gekko3d/scenegraph/mathx"
	"github.com/go-gl/mathgl/mgl32"
)

type BodyType int

const (
	Dynamic BodyType = iota
	Fixed
	KinematicPositionBased
	KinematicVelocityBased
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	case KinematicPositionBased:
		return "kinematic_position"
	case KinematicVelocityBased:
		return "kinematic_velocity"
	}
	return "unknown"
}

// Simulated reports whether the body's pose is produced by the simulation and
// should be pulled back into the owning object after a step.
func (t BodyType) Simulated() bool {
	return t != Fixed
}

// Group is a bit in a collision membership/filter mask.
type Group uint32

const (
	GroupNone Group = 0
	GroupAll  Group = 0xFFFFFFFF
)

// InteractionGroups gate which colliders see each other. Two colliders
// interact when each one's memberships intersect the other's filter.
type InteractionGroups struct {
	Memberships Group
	Filter      Group
}

var AllGroups = InteractionGroups{Memberships: GroupAll, Filter: GroupAll}

func (g InteractionGroups) Test(o InteractionGroups) bool {
	return g.Memberships&o.Filter != 0 && o.Memberships&g.Filter != 0
}

// Logger is the subset of the engine logger the simulation reports through.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type rigidBody struct {
	kind         BodyType
	pos          mgl32.Vec3
	rot          mgl32.Quat
	linVel       mgl32.Vec3
	angVel       mgl32.Vec3
	mass         float32
	gravityScale float32
	userData     uint64
	sleeping     bool
	idleTime     float32
	colliders    []ColliderHandle
}

func (b *rigidBody) wake() {
	b.sleeping = false
	b.idleTime = 0
}

func (b *rigidBody) invMass() float32 {
	if b.kind != Dynamic || b.mass <= 0 {
		return 0
	}
	return 1 / b.mass
}

type collider struct {
	shape       Shape
	parent      RigidBodyHandle
	pos         mgl32.Vec3 // parentless colliders only
	rot         mgl32.Quat
	sensor      bool
	groups      InteractionGroups
	friction    float32
	restitution float32
	userData    uint64
}

// World is the stepped rigid body simulation. All bodies and colliders live
// in its arenas and are reached by handle only.
type World struct {
	mu sync.RWMutex

	Gravity        mgl32.Vec3
	SleepThreshold float32
	SleepTime      float32
	LinearDamping  float32

	bodies    arena[rigidBody]
	colliders arena[collider]

	grid          *spatialGrid
	gridDirty     bool
	contacts      map[pairKey]struct{}
	intersections map[pairKey]struct{}

	log Logger
}

func NewWorld() *World {
	return &World{
		Gravity:        mgl32.Vec3{0, -9.81, 0},
		SleepThreshold: 0.05,
		SleepTime:      1.0,
		LinearDamping:  0.01,
		grid:           newSpatialGrid(2.0),
		gridDirty:      true,
		contacts:       make(map[pairKey]struct{}),
		intersections:  make(map[pairKey]struct{}),
		log:            nopLogger{},
	}
}

func (w *World) SetLogger(l Logger) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if l == nil {
		l = nopLogger{}
	}
	w.log = l
}

// BodyDesc describes a rigid body and its single attached collider.
type BodyDesc struct {
	Type         BodyType
	Position     mgl32.Vec3
	Rotation     mgl32.Vec3 // degrees
	Scale        mgl32.Vec3
	Shape        Shape
	Mass         float32
	// GravityScale multiplies world gravity; zero means 1.
	GravityScale float32
	NoGravity    bool
	Groups       InteractionGroups
	Sensor       bool
	Friction     float32
	Restitution  float32
	UserData     uint64
}

// ColliderDesc describes a collider without a rigid body. Such colliders are
// moved only by explicit SetColliderPosition calls.
type ColliderDesc struct {
	Position    mgl32.Vec3
	Rotation    mgl32.Vec3 // degrees
	Shape       Shape
	Groups      InteractionGroups
	Sensor      bool
	Friction    float32
	Restitution float32
	UserData    uint64
}

// NewRigidBody inserts a body with one collider and returns the handle bundle.
func (w *World) NewRigidBody(desc BodyDesc) BodyParameters {
	w.mu.Lock()
	defer w.mu.Unlock()

	scale := desc.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	groups := desc.Groups
	if groups == (InteractionGroups{}) {
		groups = AllGroups
	}

	gravityScale := desc.GravityScale
	if gravityScale == 0 {
		gravityScale = 1
	}
	if desc.NoGravity {
		gravityScale = 0
	}

	body := &rigidBody{
		kind:         desc.Type,
		pos:          desc.Position,
		rot:          mathx.EulerToQuat(desc.Rotation),
		mass:         desc.Mass,
		gravityScale: gravityScale,
		userData:     desc.UserData,
	}
	if body.mass <= 0 {
		body.mass = 1
	}
	bi, bg := w.bodies.insert(body)
	bh := RigidBodyHandle{Index: bi, Generation: bg}

	shape := desc.Shape.Scaled(scale)
	col := &collider{
		shape:       shape,
		parent:      bh,
		rot:         mgl32.QuatIdent(),
		sensor:      desc.Sensor,
		groups:      groups,
		friction:    desc.Friction,
		restitution: desc.Restitution,
		userData:    desc.UserData,
	}
	ci, cg := w.colliders.insert(col)
	ch := ColliderHandle{Index: ci, Generation: cg}
	body.colliders = append(body.colliders, ch)
	w.gridDirty = true

	return BodyParameters{RigidBody: bh, Collider: ch, RenderCollider: &shape}
}

// RemoveRigidBody releases the body and every collider attached to it, then
// clears the handles in params.
func (w *World) RemoveRigidBody(params *BodyParameters) {
	if params == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	h := params.RigidBody
	body := w.bodies.remove(h.Index, h.Generation)
	if body == nil {
		if h.Valid() {
			w.log.Warnf("physics: remove of stale rigid body handle %v", h)
		}
	} else {
		for _, ch := range body.colliders {
			w.removeColliderLocked(ch)
		}
	}
	if params.Collider.Valid() {
		w.removeColliderLocked(params.Collider)
	}
	params.RigidBody = RigidBodyHandle{}
	params.Collider = ColliderHandle{}
	params.RenderCollider = nil
	w.gridDirty = true
}

// AddCollider inserts a collider that is not attached to any rigid body.
func (w *World) AddCollider(desc ColliderDesc) ColliderHandle {
	w.mu.Lock()
	defer w.mu.Unlock()

	groups := desc.Groups
	if groups == (InteractionGroups{}) {
		groups = AllGroups
	}
	col := &collider{
		shape:       desc.Shape,
		pos:         desc.Position,
		rot:         mathx.EulerToQuat(desc.Rotation),
		sensor:      desc.Sensor,
		groups:      groups,
		friction:    desc.Friction,
		restitution: desc.Restitution,
		userData:    desc.UserData,
	}
	i, g := w.colliders.insert(col)
	w.gridDirty = true
	return ColliderHandle{Index: i, Generation: g}
}

func (w *World) RemoveCollider(h ColliderHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeColliderLocked(h)
}

func (w *World) removeColliderLocked(h ColliderHandle) {
	col := w.colliders.remove(h.Index, h.Generation)
	if col == nil {
		return
	}
	if body := w.bodies.get(col.parent.Index, col.parent.Generation); body != nil {
		for i, c := range body.colliders {
			if c == h {
				body.colliders = append(body.colliders[:i], body.colliders[i+1:]...)
				break
			}
		}
	}
	for key := range w.contacts {
		if key.has(h) {
			delete(w.contacts, key)
		}
	}
	for key := range w.intersections {
		if key.has(h) {
			delete(w.intersections, key)
		}
	}
	w.gridDirty = true
}

// BodyTransform returns the body position and rotation in degrees.
// A stale handle is logged and reported as !ok.
func (w *World) BodyTransform(params BodyParameters) (mgl32.Vec3, mgl32.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		w.log.Warnf("physics: no rigid body for handle %v", params.RigidBody)
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return body.pos, mathx.QuatToEuler(body.rot), true
}

func (w *World) BodyType(params BodyParameters) (BodyType, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		return Fixed, false
	}
	return body.kind, true
}

func (w *World) SetBodyPosition(params BodyParameters, pos mgl32.Vec3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		w.log.Warnf("physics: set position on stale handle %v", params.RigidBody)
		return false
	}
	body.pos = pos
	body.wake()
	w.gridDirty = true
	return true
}

func (w *World) SetBodyRotation(params BodyParameters, rotDeg mgl32.Vec3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		w.log.Warnf("physics: set rotation on stale handle %v", params.RigidBody)
		return false
	}
	body.rot = mathx.EulerToQuat(rotDeg)
	body.wake()
	w.gridDirty = true
	return true
}

func (w *World) SetLinearVelocity(params BodyParameters, vel mgl32.Vec3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		w.log.Warnf("physics: set velocity on stale handle %v", params.RigidBody)
		return false
	}
	body.linVel = vel
	body.wake()
	return true
}

func (w *World) LinearVelocity(params BodyParameters) (mgl32.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		return mgl32.Vec3{}, false
	}
	return body.linVel, true
}

// ApplyImpulse changes the velocity of a dynamic body by impulse/mass.
func (w *World) ApplyImpulse(params BodyParameters, impulse mgl32.Vec3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		w.log.Warnf("physics: impulse on stale handle %v", params.RigidBody)
		return false
	}
	body.wake()
	body.linVel = body.linVel.Add(impulse.Mul(body.invMass()))
	return true
}

func (w *World) IsSleeping(params BodyParameters) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	return body != nil && body.sleeping
}

// SetColliderPosition moves a parentless collider.
func (w *World) SetColliderPosition(h ColliderHandle, pos mgl32.Vec3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	col := w.colliders.get(h.Index, h.Generation)
	if col == nil {
		w.log.Warnf("physics: move of stale collider handle %v", h)
		return false
	}
	if col.parent.Valid() {
		w.log.Errorf("physics: collider %v is attached to a body, move the body instead", h)
		return false
	}
	col.pos = pos
	w.gridDirty = true
	return true
}

func (w *World) ColliderPosition(h ColliderHandle) (mgl32.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	col := w.colliders.get(h.Index, h.Generation)
	if col == nil {
		return mgl32.Vec3{}, false
	}
	pos, _ := w.colliderPoseLocked(col)
	return pos, true
}

// ColliderUserData returns the owner id stamped on the collider, falling back
// to the parent body's user data.
func (w *World) ColliderUserData(h ColliderHandle) (uint64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	col := w.colliders.get(h.Index, h.Generation)
	if col == nil {
		return 0, false
	}
	if body := w.bodies.get(col.parent.Index, col.parent.Generation); body != nil {
		return body.userData, true
	}
	return col.userData, true
}

func (w *World) BodyUserData(params BodyParameters) (uint64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	body := w.bodies.get(params.RigidBody.Index, params.RigidBody.Generation)
	if body == nil {
		return 0, false
	}
	return body.userData, true
}

func (w *World) BodyCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bodies.len()
}

func (w *World) ColliderCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.colliders.len()
}

func (w *World) colliderPoseLocked(col *collider) (mgl32.Vec3, mgl32.Quat) {
	if body := w.bodies.get(col.parent.Index, col.parent.Generation); body != nil {
		return body.pos, body.rot
	}
	return col.pos, col.rot
}
