package gekko

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gekko3d/scenegraph/physics"
	"github.com/gekko3d/scenegraph/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	mu     sync.Mutex
	debugs []string
	warns  []string
	errors []string
}

func (l *testLogger) DebugEnabled() bool   { return true }
func (l *testLogger) SetDebug(enabled bool) {}

func (l *testLogger) Debugf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, fmt.Sprintf(format, args...))
}

func (l *testLogger) Infof(format string, args ...any) {}

func (l *testLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *testLogger) Errorf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func (l *testLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func (l *testLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

func newTestFramework(t *testing.T) (*Framework, *testLogger, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder()
	fw, err := NewFrameworkBuilder().UseModule(RenderModule{Manager: rec}).Build()
	require.NoError(t, err)
	log := &testLogger{}
	fw.SetLogger(log)
	return fw, log, rec
}

func newTestSystem(t *testing.T, fw *Framework) *System {
	t.Helper()
	s := NewSystem("scene")
	require.NoError(t, fw.AddSystem(s))
	return s
}

// tick is one physics step long at the default rate.
const tick = 20 * time.Millisecond

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PhysicsHz = 0
	_, err := NewFrameworkBuilder().WithConfig(cfg).Build()
	require.Error(t, err)
}

func TestRenderModuleIsExclusive(t *testing.T) {
	_, err := NewFrameworkBuilder().UseModule(RenderModule{}, RenderModule{}).Build()
	require.Error(t, err)
}

func TestHeadlessSkipsRenderer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Headless = true
	fw, err := NewFrameworkBuilder().WithConfig(cfg).UseModule(RenderModule{}).Build()
	require.NoError(t, err)
	assert.Nil(t, fw.Render)

	// Render hooks are never reached without a renderer.
	s := newTestSystem(t, fw)
	s.AddObject(NewModelObject("m", "missing"))
	fw.Tick(tick)
}

func TestSystemErrors(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	newTestSystem(t, fw)

	err := fw.AddSystem(NewSystem("scene"))
	assert.True(t, errors.Is(err, ErrDuplicateSystem))

	_, err = fw.System("nope")
	assert.True(t, errors.Is(err, ErrSystemNotFound))
	assert.True(t, errors.Is(fw.RemoveSystem("nope"), ErrSystemNotFound))
}

func TestMessagesArriveNextTick(t *testing.T) {
	fw, log, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	var got []Message
	s.OnMessage = func(fw *Framework, s *System, msg Message) {
		got = append(got, msg)
	}

	fw.Send(Message{To: "scene", Name: "spawn", Args: []SystemValue{NumberValue(3)}})
	fw.Send(Message{To: "ghost", Name: "spawn"})
	assert.Empty(t, got)

	fw.Tick(tick)
	require.Len(t, got, 1)
	assert.Equal(t, "spawn", got[0].Name)
	n, ok := got[0].Args[0].AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
	assert.Equal(t, 1, log.warnCount(), "message to an unknown system is dropped with a warning")

	fw.Tick(tick)
	assert.Len(t, got, 1)
}

func TestDespawnRunsAtEndOfTick(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)

	parent := NewEmptyObject("parent")
	child := NewEmptyObject("child")
	parent.AddChild(fw, child)
	s.AddObject(parent)
	require.Equal(t, 2, fw.Registry.Len())

	fw.Despawn(child.Id())
	assert.True(t, child.Live())
	fw.Tick(tick)
	assert.False(t, child.Live())
	assert.Empty(t, parent.Children())
	assert.Equal(t, 1, fw.Registry.Len())
}

func TestDespawnAfterLifetime(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("spark")
	s.AddObject(obj)

	fw.DespawnAfter(obj.Id(), 0.05)
	fw.Tick(tick)
	fw.Tick(tick)
	assert.True(t, obj.Live())
	fw.Tick(tick)
	assert.False(t, obj.Live())
	assert.Empty(t, s.Objects())
}

func TestCallObject(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	s.AddObject(NewTrigger("zone", physics.Ball(1)))

	out, err := fw.CallObject("zone", "is_colliding")
	require.NoError(t, err)
	assert.Equal(t, "false", out)

	_, err = fw.CallObject("zone", "explode")
	assert.True(t, errors.Is(err, ErrNotImplemented))
	_, err = fw.CallObject("nobody", "is_colliding")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestShutdownReleasesEverything(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	obj := NewEmptyObject("crate")
	s.AddObject(obj)
	require.True(t, BuildObjectRigidBody(fw, obj, &RigidBodySpec{Type: physics.Dynamic, Shape: physics.Ball(0.5)}))
	s.AddObject(NewTrigger("zone", physics.Ball(1)))

	fw.Shutdown()
	assert.Equal(t, 0, fw.Physics.BodyCount())
	assert.Equal(t, 0, fw.Physics.ColliderCount())
	assert.Equal(t, 0, fw.Registry.Len())
	assert.Empty(t, fw.Systems())
}

func TestTickRecordsProfilerPhases(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	s := newTestSystem(t, fw)
	s.AddObject(NewEmptyObject("a"))

	fw.Tick(tick)
	stats := fw.Profiler.GetStatsString()
	for _, phase := range []string{"update", "physics", "sync", "navigation", "render"} {
		assert.True(t, strings.Contains(stats, phase), phase)
	}
	assert.Equal(t, 1, fw.Profiler.Counts["objects"])
	assert.Equal(t, 1, fw.Profiler.Counts["physics_steps"])
}

func TestPhysicsStepsAreCapped(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	fw.Tick(time.Second)
	assert.Equal(t, fw.Config.MaxSubSteps, fw.Profiler.Counts["physics_steps"])

	// The dropped backlog is not replayed.
	fw.Tick(tick)
	assert.Equal(t, 1, fw.Profiler.Counts["physics_steps"])
}

func TestCameraPushesPose(t *testing.T) {
	fw, _, rec := newTestFramework(t)
	s := newTestSystem(t, fw)

	rig := NewEmptyObject("rig")
	rig.SetPosition(fw, mgl32.Vec3{0, 2, 0}, false)
	cam := NewCameraPosition("camera")
	cam.SetPosition(fw, mgl32.Vec3{0, 0, 5}, false)
	cam.SetRotation(fw, mgl32.Vec3{-10, 0, 0}, false)
	rig.AddChild(fw, cam)
	s.AddObject(rig)

	fw.Tick(tick)
	frame := rec.Frame()
	assert.Equal(t, mgl32.Vec3{0, 2, 5}, frame.CameraPosition)
	assert.Equal(t, mgl32.Vec3{-10, 0, 0}, frame.CameraRotation)
}

func TestPointLightSubmitsEveryFrame(t *testing.T) {
	fw, _, rec := newTestFramework(t)
	s := newTestSystem(t, fw)
	light := NewPointLightObject("lamp", [3]float32{1, 0.5, 0}, 2, 10)
	light.SetPosition(fw, mgl32.Vec3{1, 3, 0}, false)
	s.AddObject(light)

	fw.Tick(tick)
	frame := rec.Frame()
	require.Len(t, frame.Lights, 1)
	assert.Equal(t, mgl32.Vec3{1, 3, 0}, frame.Lights[0].Position)
	assert.Equal(t, render.LightTypePoint, frame.Lights[0].Type)

	_, ok := light.Call(fw, "disable", nil)
	require.True(t, ok)
	fw.Tick(tick)
	assert.Empty(t, rec.Frame().Lights)
}
