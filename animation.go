package gekko

import (
	"fmt"
	"math"

	"github.com/gekko3d/scenegraph/assets"
	"github.com/go-gl/mathgl/mgl32"
)

// AnimationPlayer samples one animation of a model against elapsed time.
type AnimationPlayer struct {
	Speed float32

	animation int
	loop      bool
	playing   bool
	finished  bool
	startedAt float32
}

func NewAnimationPlayer() AnimationPlayer {
	return AnimationPlayer{Speed: 1, animation: -1}
}

// Play starts the named animation from its first keyframe.
func (p *AnimationPlayer) Play(model *assets.ModelAsset, name string, loop bool, now float32) error {
	for i := range model.Animations {
		if model.Animations[i].Name == name {
			p.animation = i
			p.loop = loop
			p.playing = true
			p.finished = false
			p.startedAt = now
			return nil
		}
	}
	return fmt.Errorf("animation %q not found", name)
}

func (p *AnimationPlayer) Stop() {
	p.playing = false
	p.finished = false
	p.animation = -1
}

func (p *AnimationPlayer) Playing() bool { return p.playing }

// Finished reports whether a one-shot animation reached its end. The last
// pose is held.
func (p *AnimationPlayer) Finished() bool { return p.finished }

// localTime maps wall time into the animation's keyframe range.
func (p *AnimationPlayer) localTime(anim *assets.Animation, now float32) float32 {
	t := (now - p.startedAt) * p.Speed
	d := anim.Duration()
	if d <= 0 {
		return 0
	}
	if p.loop {
		return float32(math.Mod(float64(t), float64(d)))
	}
	if t >= d {
		p.playing = false
		p.finished = true
		return d
	}
	return t
}

// skinPose is the result of sampling a skeleton for one frame.
type skinPose struct {
	joints []mgl32.Mat4
	// missingNode is the first node index referenced but absent, or -1.
	missingNode int
	truncated   bool
}

// samplePose evaluates node transforms and returns the skinning matrices,
// capped at maxJoints.
func (p *AnimationPlayer) samplePose(model *assets.ModelAsset, now float32, maxJoints int) skinPose {
	pose := skinPose{missingNode: -1}

	trans := make([]mgl32.Vec3, len(model.Nodes))
	rots := make([]mgl32.Quat, len(model.Nodes))
	scales := make([]mgl32.Vec3, len(model.Nodes))
	for i, n := range model.Nodes {
		trans[i], rots[i], scales[i] = n.Translation, n.Rotation, n.Scale
	}

	animating := p.playing || p.finished
	if animating && p.animation >= 0 && p.animation < len(model.Animations) {
		anim := &model.Animations[p.animation]
		t := p.localTime(anim, now)
		for ci := range anim.Channels {
			ch := &anim.Channels[ci]
			if ch.Node < 0 || ch.Node >= len(model.Nodes) {
				if pose.missingNode < 0 {
					pose.missingNode = ch.Node
				}
				continue
			}
			v, ok := ch.Sample(t)
			if !ok {
				continue
			}
			switch ch.Path {
			case assets.PathTranslation:
				trans[ch.Node] = v.Vec3()
			case assets.PathRotation:
				rots[ch.Node] = assets.QuatValue(v)
			case assets.PathScale:
				scales[ch.Node] = v.Vec3()
			}
		}
	}

	globals := make([]mgl32.Mat4, len(model.Nodes))
	resolved := make([]bool, len(model.Nodes))
	var global func(i, depth int) mgl32.Mat4
	global = func(i, depth int) mgl32.Mat4 {
		if resolved[i] {
			return globals[i]
		}
		m := assets.TRS(trans[i], rots[i], scales[i])
		parent := model.Nodes[i].Parent
		if parent >= 0 && parent < len(model.Nodes) && depth < len(model.Nodes) {
			m = global(parent, depth+1).Mul4(m)
		}
		globals[i], resolved[i] = m, true
		return m
	}

	count := len(model.Joints)
	if maxJoints > 0 && count > maxJoints {
		count = maxJoints
		pose.truncated = true
	}
	pose.joints = make([]mgl32.Mat4, count)
	for j := 0; j < count; j++ {
		node := model.Joints[j]
		if node < 0 || node >= len(model.Nodes) {
			if pose.missingNode < 0 {
				pose.missingNode = node
			}
			pose.joints[j] = mgl32.Ident4()
			continue
		}
		m := global(node, 0)
		if j < len(model.InverseBind) {
			m = m.Mul4(model.InverseBind[j])
		}
		pose.joints[j] = m
	}
	return pose
}
