package main

// Package main is the entry point for the satwatch server.
//
// Responsibilities:
//   - Load and validate configuration from YAML and environment variables
//   - Initialize structured logging
//   - Start the telemetry simulator and anomaly detection pipeline
//   - Start the REST API, Prometheus metrics, and WebSocket live stream
//   - Implement graceful shutdown with context cancellation

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/config"
	"github.com/satwatch/satwatch/internal/events"
	"github.com/satwatch/satwatch/internal/logging"
	"github.com/satwatch/satwatch/internal/sched"
	"github.com/satwatch/satwatch/internal/server"
	"github.com/satwatch/satwatch/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default /etc/satwatch/config.yaml)")
	flag.Parse()

	ctx := context.Background()

	manager := config.NewManager(*configPath)
	if err := manager.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := manager.Validate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := manager.Get(ctx)

	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	clock := sched.NewWallClock()
	bus := events.NewBus()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Critical alerts also surface in the server log, independent of any
	// connected dashboard.
	bus.SubscribeCritical(func(a alert.Alert) {
		log.Error("critical alert",
			zap.String("subsystem", a.Subsystem),
			zap.String("parameter", a.Parameter),
			zap.String("message", a.Message))
	})

	simulator := sim.New(cfg, clock, bus, rng, log)
	simulator.Start()

	srv := server.New(cfg, simulator, bus, log)
	if err := srv.Start(); err != nil {
		log.Fatal("failed to start http server", zap.Error(err))
	}

	log.Info("satwatch started",
		zap.Int("port", cfg.Server.Port),
		zap.Duration("tick_interval", cfg.Simulation.TickInterval))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown error", zap.Error(err))
	}
	simulator.Stop()

	log.Info("shutdown complete")
}
