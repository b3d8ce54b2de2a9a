// Command gekkod runs a headless scene graph server loop over a small
// demo scene.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	gekko "github.com/gekko3d/scenegraph"
	"github.com/gekko3d/scenegraph/assets"
	"github.com/gekko3d/scenegraph/internal/telemetry"
	"github.com/gekko3d/scenegraph/physics"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", envOr("GEKKO_CONFIG", "gekko.yaml"), "path to the YAML config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("gekkod: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := gekko.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OtelEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("gekkod: flushing traces: %v", err)
		}
	}()
	if cfg.OtelEndpoint != "" {
		cfg.Tracing = true
	}

	builder := gekko.NewFrameworkBuilder().
		WithConfig(cfg).
		UseModule(
			gekko.LoggingModule{Prefix: cfg.LogPrefix, Debug: cfg.LogDebug},
			gekko.TracingModule{},
		)
	if !cfg.Headless {
		builder.UseModule(gekko.RenderModule{})
	}
	fw, err := builder.Build()
	if err != nil {
		return err
	}
	defer fw.Shutdown()

	if err := buildDemo(ctx, fw); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fw.Run(gctx)
	})
	fw.Logger().Infof("running at %v Hz", cfg.TickHz)
	return g.Wait()
}

// buildDemo lays out a floor with a navigation mesh, a walker crossing it,
// a trigger zone on its path and a ray looking down the corridor.
func buildDemo(ctx context.Context, fw *gekko.Framework) error {
	scene := gekko.NewSystem("demo")
	if err := fw.AddSystem(scene); err != nil {
		return err
	}

	floor := gekko.NewModelObject("floor", fw.Assets.AddModel(assets.GridPlane(40, 40, 8, 8)))
	scene.AddObject(floor)
	floor.EnableNavMesh(fw)
	if !gekko.BuildObjectRigidBody(fw, floor, &gekko.RigidBodySpec{
		Type:  physics.Fixed,
		Shape: physics.Cuboid(20, 0.1, 20),
	}) {
		fw.Logger().Warnf("floor has no body")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := fw.Navigation.Wait(waitCtx); err != nil {
		return err
	}

	walker := gekko.NewCharacterController("walker", 0.5, 0.3)
	walker.SetPosition(fw, mgl32.Vec3{-15, 1, -15}, false)
	scene.AddObject(walker)
	walker.WalkTo(fw, mgl32.Vec3{15, 1, 15}, 3)

	gate := gekko.NewTrigger("gate", physics.Cuboid(2, 2, 2))
	gate.SetPosition(fw, mgl32.Vec3{0, 1, 0}, false)
	scene.AddObject(gate)

	eye := gekko.NewRay("eye", mgl32.Vec3{1, 0, 1}.Normalize(), 50)
	eye.SetPosition(fw, mgl32.Vec3{-18, 0.9, -18}, false)
	scene.AddObject(eye)

	inside := false
	seen := ""
	scene.OnUpdate = func(fw *gekko.Framework, s *gekko.System) {
		if now := gate.IsColliding(fw); now != inside {
			inside = now
			fw.Logger().Infof("gate occupied: %v", inside)
		}
		if name, _ := eye.IntersectionObjectName(fw); name != seen {
			seen = name
			fw.Logger().Debugf("eye sees %q", seen)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
