package server

// Package server exposes the REST API, the Prometheus endpoint, and the
// WebSocket live stream over the running simulator.

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/config"
	"github.com/satwatch/satwatch/internal/events"
	"github.com/satwatch/satwatch/internal/sim"
)

// Server serves the HTTP API for one simulator instance.
type Server struct {
	cfg *config.Config
	log *zap.Logger
	sim *sim.Simulator
	bus *events.Bus

	httpServer *http.Server
	wg         sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New creates a server. Start must be called before it accepts traffic.
func New(cfg *config.Config, simulator *sim.Simulator, bus *events.Bus, log *zap.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: log,
		sim: simulator,
		bus: bus,
	}
}

// Handler builds the route table. It is exposed so tests can drive the API
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/telemetry/latest", s.handleTelemetryLatest)
	mux.HandleFunc("GET /api/v1/telemetry/history", s.handleTelemetryHistory)

	mux.HandleFunc("GET /api/v1/alerts/active", s.handleAlertsActive)
	mux.HandleFunc("GET /api/v1/alerts/history", s.handleAlertsHistory)
	mux.HandleFunc("POST /api/v1/alerts/{id}/acknowledge", s.handleAlertAcknowledge)

	mux.HandleFunc("POST /api/v1/faults/{subsystem}", s.handleFaultInject)
	mux.HandleFunc("DELETE /api/v1/faults/{subsystem}", s.handleFaultClear)

	mux.HandleFunc("POST /api/v1/detectors/retrain", s.handleDetectorRetrain)

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

// Start begins listening. It returns once the listener goroutine is
// launched; ListenAndServe errors are logged, not returned.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server is already running")
	}
	s.running = true

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info("http server listening", zap.Int("port", s.cfg.Server.Port))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server error", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully stops the listener, letting in-flight requests finish
// until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()
	s.log.Info("http server stopped")
	return err
}
