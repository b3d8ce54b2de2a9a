package gekko

import "github.com/gekko3d/scenegraph/render"

type PointLightObject struct {
	*ObjectBase

	Color     [3]float32
	Intensity float32
	Range     float32
	Enabled   bool
}

func NewPointLightObject(name string, color [3]float32, intensity, lightRange float32) *PointLightObject {
	return &PointLightObject{
		ObjectBase: NewObjectBase(name),
		Color:      color,
		Intensity:  intensity,
		Range:      lightRange,
		Enabled:    true,
	}
}

func (l *PointLightObject) Render(fw *Framework) {
	if !l.Enabled {
		return
	}
	fw.Render.AddPointLight(render.PointLight{
		Type:      render.LightTypePoint,
		Position:  l.GlobalTransform().Position,
		Color:     l.Color,
		Intensity: l.Intensity,
		Range:     l.Range,
	})
}

func (l *PointLightObject) Call(fw *Framework, name string, args []string) (string, bool) {
	switch name {
	case "enable":
		l.Enabled = true
		return "", true
	case "disable":
		l.Enabled = false
		return "", true
	case "set_intensity":
		v, err := parseFloats(args, 1)
		if err != nil {
			fw.Logger().Warnf("%s.set_intensity: %v", l.Name(), err)
			return "", false
		}
		l.Intensity = v[0]
		return "", true
	case "set_color":
		v, err := parseFloats(args, 3)
		if err != nil {
			fw.Logger().Warnf("%s.set_color: %v", l.Name(), err)
			return "", false
		}
		l.Color = [3]float32{v[0], v[1], v[2]}
		return "", true
	}
	return "", false
}
