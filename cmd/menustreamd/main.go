// Command menustreamd runs the menu processing service: menu submission,
// per-session SSE progress streaming, and the fan-out pipeline that calls
// the stage collaborators.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/menustream/component"
	"github.com/skillsenselab/menustream/config"
	"github.com/skillsenselab/menustream/fanout"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/menu"
	"github.com/skillsenselab/menustream/observability"
	"github.com/skillsenselab/menustream/provider"
	"github.com/skillsenselab/menustream/server"
	"github.com/skillsenselab/menustream/session"
	"github.com/skillsenselab/menustream/storage"
	"github.com/skillsenselab/menustream/stream"
	"github.com/skillsenselab/menustream/version"

	_ "github.com/skillsenselab/menustream/storage/local"
	_ "github.com/skillsenselab/menustream/storage/s3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "menustreamd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = version.Short()
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting menustream", map[string]interface{}{
		"version":     cfg.Version,
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the recorders exist before anything pushes events.
	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Name, cfg.Version, cfg.Environment, cfg.Observability)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer tp.Shutdown(context.Background())

		mp, err := observability.InitMeter(ctx, cfg.Name, cfg.Version, cfg.Environment, cfg.Observability)
		if err != nil {
			return fmt.Errorf("init meter: %w", err)
		}
		defer mp.Shutdown(context.Background())

		metrics, err = observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	var regOpts []session.RegistryOption
	var bOpts []session.BroadcasterOption
	var fanOpts []fanout.Option
	if metrics != nil {
		regOpts = append(regOpts, session.WithLifecycleRecorder(metrics))
		bOpts = append(bOpts, session.WithRecorder(metrics))
		fanOpts = append(fanOpts, fanout.WithRecorder(metrics))
	}

	sessions := session.NewRegistry(log, regOpts...)
	broadcaster := session.NewBroadcaster(sessions, log, bOpts...)
	mux := stream.NewMultiplexer(sessions, cfg.Stream, log)
	monitor := stream.NewMonitor(sessions, broadcaster, cfg.Stream, log)
	coordinator := fanout.New(cfg.Fanout, broadcaster, log, fanOpts...)

	providers := provider.NewRegistry()
	for stage, endpoint := range cfg.Providers.Endpoints {
		providers.Register(stage, provider.WithRetry(
			provider.NewHTTP(stage, endpoint, cfg.Providers.Timeout),
			cfg.Providers.Retry, log))
	}
	log.Info("Stage collaborators configured", map[string]interface{}{
		"stages": providers.Stages(),
	})

	storageComp := storage.NewComponent(cfg.Storage, log)
	uploader := storage.NewLazyUploader(storageComp.Storage, log)

	var extractor provider.Extractor
	if endpoint := cfg.Providers.Endpoints[provider.StageOCR]; endpoint != "" {
		extractor = provider.NewHTTPExtractor(provider.StageOCR, endpoint, cfg.Providers.Timeout)
	}

	pipeline := menu.NewPipeline(sessions, broadcaster, coordinator, monitor,
		providers, extractor, uploader, log)

	srv := server.New(cfg.Server, log)

	components := component.NewRegistry()
	for _, c := range []component.Component{
		storageComp,
		stream.NewComponent(sessions, cfg.Stream),
		server.NewComponent(srv),
	} {
		if err := components.Register(c); err != nil {
			return err
		}
	}

	srv.RegisterHealth(func() []component.Health {
		return components.HealthAll(context.Background())
	})
	stream.NewHandler(sessions, broadcaster, mux, log).RegisterRoutes(srv.Engine())
	menu.NewHandler(sessions, pipeline, log).RegisterRoutes(srv.Engine())

	if err := components.StartAll(ctx); err != nil {
		components.StopAll(context.Background())
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")
	return components.StopAll(context.Background())
}
