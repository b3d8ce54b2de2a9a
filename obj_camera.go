package gekko

// CameraPosition mounts the render camera. Every update pushes its global
// pose to the renderer; when several cameras exist the last one updated wins.
type CameraPosition struct {
	*ObjectBase
}

func NewCameraPosition(name string) *CameraPosition {
	return &CameraPosition{ObjectBase: NewObjectBase(name)}
}

func (c *CameraPosition) Update(fw *Framework) {
	if fw.Render == nil {
		return
	}
	global := c.GlobalTransform()
	fw.Render.SetCameraPosition(global.Position)
	fw.Render.SetCameraRotation(global.Rotation)
}
