package gekko

import (
	"github.com/gekko3d/scenegraph/mathx"
	"github.com/gekko3d/scenegraph/nav"
	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// CharacterControllerMovement is an active walk order.
type CharacterControllerMovement struct {
	Target mgl32.Vec3
	Speed  float32
}

// CharacterController walks a kinematic capsule over the navigation mesh.
// The capsule is a collider without a rigid body; every move is swept
// through the physics world before it is applied.
//
// With UseAgent set the controller follows the navigation agent's steering
// output instead of querying waypoints itself.
type CharacterController struct {
	*ObjectBase

	UseAgent bool

	shape    physics.Shape
	radius   float32
	groups   physics.InteractionGroups
	collider physics.ColliderHandle

	movement *CharacterControllerMovement
	waypoint *mgl32.Vec3
}

func NewCharacterController(name string, halfHeight, radius float32) *CharacterController {
	c := &CharacterController{
		ObjectBase: NewObjectBase(name),
		shape:      physics.Capsule(halfHeight, radius),
		radius:     radius,
		groups:     physics.AllGroups,
	}
	data := nav.DynamicCapsule(radius)
	c.nav = &data
	return c
}

// SetGroups must be called before the controller starts.
func (c *CharacterController) SetGroups(groups physics.InteractionGroups) {
	c.groups = groups
}

func (c *CharacterController) Collider() physics.ColliderHandle { return c.collider }

// Movement is the active walk order, or nil when idle.
func (c *CharacterController) Movement() *CharacterControllerMovement {
	if c.movement == nil {
		return nil
	}
	m := *c.movement
	return &m
}

func (c *CharacterController) Start(fw *Framework) {
	global := c.GlobalTransform()
	c.collider = fw.Physics.AddCollider(physics.ColliderDesc{
		Position: global.Position,
		Shape:    c.shape,
		Groups:   c.groups,
		UserData: uint64(c.Id()),
	})
	if c.UseAgent {
		fw.Navigation.AddAgent(nav.ObjectId(c.Id()), global.Position, c.radius, 0)
	}
}

// WalkTo starts walking towards target. Any cached waypoint is dropped.
func (c *CharacterController) WalkTo(fw *Framework, target mgl32.Vec3, speed float32) {
	c.movement = &CharacterControllerMovement{Target: target, Speed: speed}
	c.waypoint = nil
	if c.UseAgent && c.Live() {
		id := nav.ObjectId(c.Id())
		fw.Navigation.SetAgentSpeed(id, speed)
		fw.Navigation.SetAgentTarget(id, &target)
	}
}

func (c *CharacterController) Stop(fw *Framework) {
	c.movement = nil
	c.waypoint = nil
	if c.UseAgent && c.Live() {
		fw.Navigation.SetAgentTarget(nav.ObjectId(c.Id()), nil)
	}
}

// Update walks the active order, then keeps the capsule on the controller's
// global position, idle or not.
func (c *CharacterController) Update(fw *Framework) {
	if !c.collider.Valid() {
		return
	}
	pos := c.GlobalTransform().Position
	if moved := c.walk(fw, pos); moved.LenSqr() > 0 {
		c.local.Position = c.local.Position.Add(moved)
		pos = pos.Add(moved)
	}
	if cur, ok := fw.Physics.ColliderPosition(c.collider); ok && cur == pos {
		return
	}
	fw.Physics.SetColliderPosition(c.collider, pos)
}

// walk returns this tick's displacement after sweeping it through the
// physics world.
func (c *CharacterController) walk(fw *Framework, pos mgl32.Vec3) mgl32.Vec3 {
	dt := fw.Time.DtSeconds()
	if c.movement == nil || dt <= 0 {
		return mgl32.Vec3{}
	}

	var desired mgl32.Vec3
	if c.UseAgent {
		desired = c.agentStep(fw, pos, dt)
	} else {
		desired = c.waypointStep(fw, pos, dt)
	}
	if c.movement == nil || desired.LenSqr() == 0 {
		return mgl32.Vec3{}
	}
	return fw.Physics.MoveShape(c.shape, pos, desired, c.groups, c.collider)
}

// waypointStep returns this tick's displacement towards the cached waypoint,
// querying a new one when needed. An exhausted path ends the walk.
func (c *CharacterController) waypointStep(fw *Framework, pos mgl32.Vec3, dt float32) mgl32.Vec3 {
	if c.waypoint == nil {
		next, ok := fw.Navigation.FindNextPathPoint(mathx.XZ(pos), mathx.XZ(c.movement.Target))
		if !ok {
			c.movement = nil
			return mgl32.Vec3{}
		}
		wp := mathx.FromXZ(next, pos.Y())
		c.waypoint = &wp
	}

	toward := c.waypoint.Sub(pos)
	toward[1] = 0
	dist := toward.Len()
	step := c.movement.Speed * dt
	if dist <= step {
		c.waypoint = nil
		return toward
	}
	return toward.Mul(step / dist)
}

func (c *CharacterController) agentStep(fw *Framework, pos mgl32.Vec3, dt float32) mgl32.Vec3 {
	id := nav.ObjectId(c.Id())
	fw.Navigation.SetAgentPosition(id, pos)

	toTarget := c.movement.Target.Sub(pos)
	toTarget[1] = 0
	dist := toTarget.Len()
	if dist <= fw.Navigation.ArrivalRadius {
		c.Stop(fw)
		return mgl32.Vec3{}
	}
	vel, ok := fw.Navigation.AgentDesiredVelocity(id)
	if !ok {
		fw.Logger().Warnf("navigation agent for %q is missing", c.Name())
		c.Stop(fw)
		return mgl32.Vec3{}
	}
	delta := vel.Mul(dt)
	if l := delta.Len(); l > dist {
		delta = delta.Mul(dist / l)
	}
	return delta
}

func (c *CharacterController) SetBodyParameters(fw *Framework, params physics.BodyParameters) bool {
	fw.Logger().Errorf("character controller %q cannot own a rigid body", c.Name())
	return false
}

func (c *CharacterController) Call(fw *Framework, name string, args []string) (string, bool) {
	switch name {
	case "walk_to":
		v, err := parseFloats(args, 4)
		if err != nil {
			fw.Logger().Warnf("%s.walk_to: %v", c.Name(), err)
			return "", false
		}
		c.WalkTo(fw, mgl32.Vec3{v[0], v[1], v[2]}, v[3])
		return "", true
	case "stop":
		c.Stop(fw)
		return "", true
	case "is_walking":
		return formatBool(c.movement != nil), true
	}
	return "", false
}

func (c *CharacterController) Release(fw *Framework) {
	if c.collider.Valid() {
		fw.Physics.RemoveCollider(c.collider)
		c.collider = physics.ColliderHandle{}
	}
	c.movement = nil
	c.waypoint = nil
}
