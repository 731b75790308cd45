package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/havenhealth/ops-engine/api"
	"github.com/havenhealth/ops-engine/internal/alerting"
	"github.com/havenhealth/ops-engine/internal/auth"
	"github.com/havenhealth/ops-engine/internal/engine"
	"github.com/havenhealth/ops-engine/internal/events"
	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/internal/metrics"
	"github.com/havenhealth/ops-engine/internal/resilience"
	"github.com/havenhealth/ops-engine/internal/telemetry"
	"github.com/havenhealth/ops-engine/pkg/clock"
	"github.com/havenhealth/ops-engine/pkg/config"
	"github.com/havenhealth/ops-engine/pkg/database"
	"github.com/havenhealth/ops-engine/pkg/database/queries"
	"github.com/havenhealth/ops-engine/pkg/random"
	"github.com/havenhealth/ops-engine/pkg/validation"
)

// @title Hospital Ops Engine API
// @version 1.0
// @description Resource forecasting and alerting for hospital operations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if version, err := db.GetVersion(context.Background()); err == nil {
			logger.Infof("Audit database connected: %s", version)
		} else {
			logger.Info("Audit database connection established")
		}
	} else {
		logger.Info("Audit database disabled, running in-memory only")
	}

	if *migrate {
		if db == nil {
			return fmt.Errorf("migrations require database.enabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := seedAdmin(ctx, db); err != nil {
			return fmt.Errorf("seeding admin user failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	// Event fabric
	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()
	pub := events.NewPublisher(bus)

	audit := events.NewAuditLogger(db, bus.SubscribeAll())
	audit.Start()
	defer audit.Stop()

	// Alerting and forecasting core
	clk := clock.Real()
	rnd := random.New()

	alerts := alerting.NewManager(alerting.Config{
		Capacity:          cfg.Alerting.Capacity,
		AutoResolveDelay:  cfg.Alerting.AutoResolveDelay,
		ExecutionDelay:    cfg.Alerting.ExecutionDelay,
		SweepInterval:     cfg.Alerting.SweepInterval,
		OptimizationFloor: cfg.Alerting.OptimizationFloor,
	}, clk, rnd, pub)
	defer alerts.Dispose()

	eng := engine.New(engine.Config{
		ForecastInterval:   cfg.Engine.ForecastInterval,
		HistoryRetention:   cfg.Engine.HistoryRetention,
		RegressionWindow:   cfg.Engine.RegressionWindow,
		RegressionHorizons: cfg.Engine.RegressionHorizons,
	}, alerts, pub, clk, rnd)

	// Telemetry collection
	source := buildSource(cfg.Telemetry)
	defer source.Close()

	collectCtx, collectCancel := context.WithCancel(context.Background())
	defer collectCancel()
	go collectLoop(collectCtx, source, eng, cfg.Telemetry.Interval)

	eng.Start()
	defer eng.Stop()

	alerts.StartSweep(eng.Latest)

	// Prometheus exposition
	if cfg.Prometheus.Enabled {
		metrics.StartServer(cfg.Prometheus.Port)
	}

	// REST and WebSocket surface
	server := api.NewServer(cfg.API, &cfg.WebSocket, api.Deps{
		DB:     db,
		Engine: eng,
		Alerts: alerts,
		Source: source,
		Events: bus.SubscribeAll(),
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// seedAdmin creates the first operator account on a fresh install.
// The password comes from OPSENGINE_ADMIN_PASSWORD; without it no
// account is created and login stays unavailable until seeded.
func seedAdmin(ctx context.Context, db *database.DB) error {
	users := queries.NewUserRepository(db.DB)

	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password := os.Getenv("OPSENGINE_ADMIN_PASSWORD")
	if password == "" {
		logger.Warn("No users exist and OPSENGINE_ADMIN_PASSWORD is unset, skipping admin seed")
		return nil
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := users.Create(ctx, "admin", hash); err != nil {
		return err
	}

	logger.Info("Seeded admin user")
	return nil
}

func buildSource(cfg config.TelemetryConfig) telemetry.Source {
	var inner telemetry.Source
	switch cfg.Type {
	case "mock":
		inner = telemetry.NewMockSource(telemetry.MockSourceConfig{})
	default:
		inner = telemetry.NewHTTPSource(telemetry.HTTPSourceConfig{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
		})
	}

	return telemetry.NewResilientSource(telemetry.ResilientSourceConfig{
		Source:        inner,
		MaxFailures:   cfg.CircuitBreaker.MaxFailures,
		Cooldown:      cfg.CircuitBreaker.Cooldown,
		RetryAttempts: cfg.RetryAttempts,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
			metrics.Get().SetBreakerState(name, int(to))
		},
	})
}

func collectLoop(ctx context.Context, source telemetry.Source, eng *engine.Engine, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			snap, err := source.Collect(ctx)
			if err != nil {
				metrics.Get().IncCollectionErrors()
				logger.Errorf("Snapshot collection failed: %v", err)
				continue
			}
			metrics.Get().IncSnapshots()
			metrics.Get().SetCollectionLatency(time.Since(start))
			eng.Ingest(snap)
		}
	}
}
