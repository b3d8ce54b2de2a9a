package gekko

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gekko3d/scenegraph"

// Profiler keeps the last duration of each named tick phase plus counters.
// With tracing on, every tick becomes a span and each phase a child span.
type Profiler struct {
	mu         sync.Mutex
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	tracer  trace.Tracer
	tickCtx context.Context
	tick    trace.Span
	spans   map[string]trace.Span
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
		spans:      make(map[string]trace.Span),
	}
}

// EnableTracing turns on spans using the global tracer provider.
func (p *Profiler) EnableTracing() {
	p.EnableTracingWith(otel.GetTracerProvider())
}

func (p *Profiler) EnableTracingWith(tp trace.TracerProvider) {
	p.mu.Lock()
	p.tracer = tp.Tracer(tracerName)
	p.mu.Unlock()
}

func (p *Profiler) beginTick(ctx context.Context, tick uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracer == nil {
		return
	}
	p.tickCtx, p.tick = p.tracer.Start(ctx, "tick", trace.WithAttributes(attribute.Int64("gekko.tick", int64(tick))))
}

func (p *Profiler) endTick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tick == nil {
		return
	}
	for name, c := range p.Counts {
		p.tick.SetAttributes(attribute.Int("gekko.count."+name, c))
	}
	p.tick.End()
	p.tick = nil
	p.tickCtx = nil
}

func (p *Profiler) BeginScope(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartTimes[name] = time.Now()
	found := false
	for _, n := range p.Order {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		p.Order = append(p.Order, name)
	}
	if p.tickCtx != nil {
		_, span := p.tracer.Start(p.tickCtx, name)
		p.spans[name] = span
	}
}

func (p *Profiler) EndScope(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = time.Since(start)
	}
	if span, ok := p.spans[name]; ok {
		span.End()
		delete(p.spans, name)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.mu.Lock()
	p.Counts[name] = count
	p.mu.Unlock()
}

// Reset zeroes the timings and keeps the display order.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

func (p *Profiler) GetStatsString() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}
	return sb.String()
}
