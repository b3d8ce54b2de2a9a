package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestProfilerEmitsTickSpans(t *testing.T) {
	fw, _, _ := newTestFramework(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	fw.Profiler.EnableTracingWith(tp)

	fw.Tick(tick)

	spans := recorder.Ended()
	names := make(map[string]bool)
	var tickSpan sdktrace.ReadOnlySpan
	for _, s := range spans {
		names[s.Name()] = true
		if s.Name() == "tick" {
			tickSpan = s
		}
	}
	for _, phase := range []string{"tick", "update", "physics", "sync", "navigation", "render"} {
		assert.True(t, names[phase], phase)
	}
	require.NotNil(t, tickSpan)
	for _, s := range spans {
		if s.Name() != "tick" {
			assert.Equal(t, tickSpan.SpanContext().SpanID(), s.Parent().SpanID())
		}
	}
}

func TestProfilerStats(t *testing.T) {
	p := NewProfiler()
	p.BeginScope("b")
	p.EndScope("b")
	p.BeginScope("a")
	p.EndScope("a")
	p.BeginScope("b")
	p.EndScope("b")
	p.SetCount("objects", 4)

	assert.Equal(t, []string{"b", "a"}, p.Order)
	assert.Contains(t, p.GetStatsString(), "objects")

	p.Reset()
	assert.Zero(t, p.Scopes["a"])
}
