package gekko

import (
	"fmt"

	"github.com/gekko3d/scenegraph/render"
)

type FrameworkBuilder struct {
	cfg     Config
	modules []Module
}

func NewFrameworkBuilder() *FrameworkBuilder {
	return &FrameworkBuilder{cfg: DefaultConfig()}
}

func (b *FrameworkBuilder) WithConfig(cfg Config) *FrameworkBuilder {
	b.cfg = cfg
	return b
}

func (b *FrameworkBuilder) UseModule(modules ...Module) *FrameworkBuilder {
	b.modules = append(b.modules, modules...)
	return b
}

// Build validates the config and installs modules in order.
func (b *FrameworkBuilder) Build() (*Framework, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	fw := NewFramework(b.cfg)
	for _, m := range b.modules {
		if err := m.Install(fw); err != nil {
			return nil, fmt.Errorf("installing %T: %w", m, err)
		}
	}
	return fw, nil
}

// RenderModule attaches a renderer. A nil Manager installs an in-memory
// recorder. Headless configs skip rendering entirely. Only one renderer may
// be installed.
type RenderModule struct {
	Manager render.Manager
}

func (m RenderModule) Install(fw *Framework) error {
	if fw.Config.Headless {
		return nil
	}
	if fw.Render != nil {
		return fmt.Errorf("renderer %T already installed", fw.Render)
	}
	if m.Manager == nil {
		fw.Render = render.NewRecorder()
		return nil
	}
	fw.Render = m.Manager
	return nil
}

// TracingModule turns profiler phases into spans on the global tracer
// provider.
type TracingModule struct{}

func (TracingModule) Install(fw *Framework) error {
	if fw.Config.Tracing {
		fw.Profiler.EnableTracing()
	}
	return nil
}

// SystemsModule installs systems in order.
type SystemsModule struct {
	Systems []*System
}

func (m SystemsModule) Install(fw *Framework) error {
	for _, s := range m.Systems {
		if err := fw.AddSystem(s); err != nil {
			return err
		}
	}
	return nil
}
