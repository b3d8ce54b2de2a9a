package gekko

import "github.com/gekko3d/scenegraph/nav"

// NavObstacle is a capsule that agents steer around. It follows its global
// position through the navigation sync pass.
type NavObstacle struct {
	*ObjectBase
}

func NewNavObstacle(name string, radius float32) *NavObstacle {
	o := &NavObstacle{ObjectBase: NewObjectBase(name)}
	data := nav.DynamicCapsule(radius)
	o.nav = &data
	return o
}

func (o *NavObstacle) Radius() float32 {
	return o.nav.Radius
}
