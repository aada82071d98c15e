package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/adapters/scheduler"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
	"github.com/factorycraft/factory-economy/internal/infrastructure/logging"
	"github.com/factorycraft/factory-economy/internal/infrastructure/pidfile"
)

func main() {
	exitCode := 0
	// registered first so it runs after the PID file and log releases
	defer func() { os.Exit(exitCode) }()

	configFlag := flag.String("config", "", "Path to config.yaml (default: search ./ and ./configs)")
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	flag.Parse()

	fmt.Println("Factory Economy Daemon v0.1.0")
	fmt.Println("=============================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
		fmt.Println("Force mode enabled - attempting to kill existing daemon...")
		if killErr := pf.KillExisting(cfg.Daemon.ShutdownTimeout); killErr != nil {
			log.Fatalf("Failed to kill existing daemon: %v", killErr)
		}
		fmt.Println("Existing daemon killed")
		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon stopped with error", "error", err)
		exitCode = 1
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	engine, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer engine.Close()
	fmt.Printf("Restored %d factories\n", len(engine.Registry.All()))

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer, err = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		metricsServer.Start()
		fmt.Printf("Metrics available at http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	sched := scheduler.New(logger,
		scheduler.TickJob(engine.Mediator, cfg.Daemon.TickInterval),
		scheduler.BillingJob(engine.Mediator, cfg.Daemon.BillingInterval),
		scheduler.CleanupJob(engine.Mediator, cfg.Daemon.CleanupInterval),
	)
	if cfg.Daemon.SnapshotPath != "" {
		sched.Add(scheduler.Job{
			Name:     "snapshot",
			Interval: cfg.Daemon.SnapshotInterval,
			Run: func(ctx context.Context) error {
				header, err := engine.Snapshots.Export(ctx, cfg.Daemon.SnapshotPath)
				if err != nil {
					return err
				}
				logger.Info("snapshot written", "path", cfg.Daemon.SnapshotPath, "factories", header.Factories)
				return nil
			},
		})
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	fmt.Println("Daemon running, press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Println("\nShutdown signal received, stopping daemon...")

	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cfg.Daemon.ShutdownTimeout):
		logger.Warn("jobs still running after shutdown timeout", "timeout", cfg.Daemon.ShutdownTimeout.String())
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}
	fmt.Println("Daemon stopped")
	return nil
}
