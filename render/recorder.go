package render

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is everything submitted between two BeginFrame calls.
type Frame struct {
	CameraPosition mgl32.Vec3
	CameraRotation mgl32.Vec3
	Opaque         []ModelData
	Transparent    []ModelData
	ShadowCasters  []ModelData
	Instances      map[string][]mgl32.Mat4
	Lights         []PointLight
}

// Recorder is an in-memory Manager used by headless servers and tests.
// Camera state persists across frames; draw lists do not.
type Recorder struct {
	mu     sync.Mutex
	frame  Frame
	frames int
}

func NewRecorder() *Recorder {
	return &Recorder{frame: Frame{Instances: make(map[string][]mgl32.Mat4)}}
}

func (r *Recorder) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = Frame{
		CameraPosition: r.frame.CameraPosition,
		CameraRotation: r.frame.CameraRotation,
		Instances:      make(map[string][]mgl32.Mat4),
	}
	r.frames++
}

func (r *Recorder) SetCameraPosition(pos mgl32.Vec3) {
	r.mu.Lock()
	r.frame.CameraPosition = pos
	r.mu.Unlock()
}

func (r *Recorder) SetCameraRotation(rot mgl32.Vec3) {
	r.mu.Lock()
	r.frame.CameraRotation = rot
	r.mu.Unlock()
}

func (r *Recorder) AddOpaqueModel(data ModelData) {
	r.mu.Lock()
	r.frame.Opaque = append(r.frame.Opaque, data)
	r.mu.Unlock()
}

func (r *Recorder) AddTransparentModel(data ModelData) {
	r.mu.Lock()
	r.frame.Transparent = append(r.frame.Transparent, data)
	r.mu.Unlock()
}

func (r *Recorder) AddShadowCaster(data ModelData) {
	r.mu.Lock()
	r.frame.ShadowCasters = append(r.frame.ShadowCasters, data)
	r.mu.Unlock()
}

func (r *Recorder) AddInstancePosition(instance string, transform mgl32.Mat4) {
	r.mu.Lock()
	r.frame.Instances[instance] = append(r.frame.Instances[instance], transform)
	r.mu.Unlock()
}

func (r *Recorder) AddPointLight(light PointLight) {
	r.mu.Lock()
	r.frame.Lights = append(r.frame.Lights, light)
	r.mu.Unlock()
}

// Frame returns a copy of the frame being recorded.
func (r *Recorder) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.frame
	out.Opaque = append([]ModelData(nil), r.frame.Opaque...)
	out.Transparent = append([]ModelData(nil), r.frame.Transparent...)
	out.ShadowCasters = append([]ModelData(nil), r.frame.ShadowCasters...)
	out.Lights = append([]PointLight(nil), r.frame.Lights...)
	out.Instances = make(map[string][]mgl32.Mat4, len(r.frame.Instances))
	for k, v := range r.frame.Instances {
		out.Instances[k] = append([]mgl32.Mat4(nil), v...)
	}
	return out
}

// Frames is the number of BeginFrame calls so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

var _ Manager = (*Recorder)(nil)
