package gekko

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a Framework. Zero values are never used
// directly: start from DefaultConfig.
type Config struct {
	// Simulation
	PhysicsHz   float64   `yaml:"physics_hz" env:"GEKKO_PHYSICS_HZ"`
	MaxSubSteps int       `yaml:"max_sub_steps" env:"GEKKO_MAX_SUB_STEPS"`
	Gravity     []float32 `yaml:"gravity" env:"GEKKO_GRAVITY" envSeparator:","`

	// Navigation
	NavHz             float64 `yaml:"nav_hz" env:"GEKKO_NAV_HZ"`
	NavMaxCorrections int     `yaml:"nav_max_corrections" env:"GEKKO_NAV_MAX_CORRECTIONS"`
	NavArrivalRadius  float32 `yaml:"nav_arrival_radius" env:"GEKKO_NAV_ARRIVAL_RADIUS"`

	// Rendering
	Headless          bool `yaml:"headless" env:"GEKKO_HEADLESS"`
	MaxSkeletonJoints int  `yaml:"max_skeleton_joints" env:"GEKKO_MAX_SKELETON_JOINTS"`
	MaxTextureSize    int  `yaml:"max_texture_size" env:"GEKKO_MAX_TEXTURE_SIZE"`

	// Server loop
	TickHz float64 `yaml:"tick_hz" env:"GEKKO_TICK_HZ"`

	// Logging
	LogPrefix string `yaml:"log_prefix" env:"GEKKO_LOG_PREFIX"`
	LogDebug  bool   `yaml:"log_debug" env:"GEKKO_LOG_DEBUG"`

	// Tracing
	Tracing      bool   `yaml:"tracing" env:"GEKKO_TRACING"`
	OtelEndpoint string `yaml:"otel_endpoint" env:"GEKKO_OTEL_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"GEKKO_SERVICE_NAME"`
}

func DefaultConfig() Config {
	return Config{
		PhysicsHz:         60,
		MaxSubSteps:       4,
		Gravity:           []float32{0, -9.81, 0},
		NavHz:             10,
		NavMaxCorrections: 1000,
		NavArrivalRadius:  0.05,
		Headless:          false,
		MaxSkeletonJoints: 128,
		MaxTextureSize:    4096,
		TickHz:            60,
		LogPrefix:         "gekko",
		ServiceName:       "gekkod",
	}
}

// LoadConfig reads a YAML config on top of the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from GEKKO_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return c.Validate()
}

func (c Config) Validate() error {
	if c.PhysicsHz <= 0 {
		return fmt.Errorf("physics_hz must be positive, got %v", c.PhysicsHz)
	}
	if c.NavHz <= 0 {
		return fmt.Errorf("nav_hz must be positive, got %v", c.NavHz)
	}
	if c.MaxSubSteps < 1 {
		return fmt.Errorf("max_sub_steps must be at least 1, got %d", c.MaxSubSteps)
	}
	if c.TickHz <= 0 {
		return fmt.Errorf("tick_hz must be positive, got %v", c.TickHz)
	}
	if len(c.Gravity) != 3 {
		return fmt.Errorf("gravity needs 3 components, got %d", len(c.Gravity))
	}
	if c.MaxTextureSize < 0 {
		return fmt.Errorf("max_texture_size must not be negative, got %d", c.MaxTextureSize)
	}
	if c.NavMaxCorrections < 0 {
		return fmt.Errorf("nav_max_corrections must not be negative, got %d", c.NavMaxCorrections)
	}
	return nil
}

func (c Config) GravityVec() mgl32.Vec3 {
	if len(c.Gravity) != 3 {
		return mgl32.Vec3{0, -9.81, 0}
	}
	return mgl32.Vec3{c.Gravity[0], c.Gravity[1], c.Gravity[2]}
}
