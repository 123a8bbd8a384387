package sim

// Package sim owns the simulation loop: every tick it generates one
// telemetry sample, runs the anomaly pipeline over it, and publishes the
// sample and any surviving alerts on the event bus.

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/config"
	"github.com/satwatch/satwatch/internal/detect"
	"github.com/satwatch/satwatch/internal/events"
	"github.com/satwatch/satwatch/internal/metrics"
	"github.com/satwatch/satwatch/internal/sched"
	"github.com/satwatch/satwatch/internal/telemetry"
)

// ErrUnknownSubsystem is returned for fault operations naming a subsystem
// that does not accept fault injection.
var ErrUnknownSubsystem = errors.New("unknown subsystem")

// Simulator drives the telemetry generator and detection pipeline off a
// single clock. All time, including fault auto-clear and alert aging, flows
// from the injected Clock, so a simulated clock gives fully deterministic
// runs.
type Simulator struct {
	log   *zap.Logger
	clock sched.Clock
	bus   *events.Bus

	tickInterval time.Duration

	gen      *telemetry.Generator
	faults   *telemetry.FaultState
	history  *telemetry.History
	alerts   *alert.Manager
	pipeline *detect.Pipeline

	mu      sync.Mutex
	ticker  sched.Ticker
	started time.Time
	elapsed time.Duration // mission time accrued across previous runs
	running bool

	// pipeMu serializes detector access between the tick loop and
	// operator-requested retrains.
	pipeMu sync.Mutex
}

// New assembles a simulator from configuration. The rng seeds both the
// signal generator's noise and the partition forest's tree construction.
// Telemetry history is prefilled so consumers see a populated timeline
// immediately.
func New(cfg *config.Config, clock sched.Clock, bus *events.Bus, rng *rand.Rand, log *zap.Logger) *Simulator {
	faults := telemetry.NewFaultState(clock, cfg.Simulation.FaultDuration, log)
	gen := telemetry.NewGenerator(cfg.Simulation.OrbitalPeriod, faults, rng)
	history := telemetry.NewHistory(cfg.Simulation.HistoryCapacity)
	alerts := alert.NewManager(cfg.Alerting.DedupWindow, cfg.Alerting.AutoAckAfter, cfg.Alerting.HistoryCapacity, log)

	pipeline := detect.NewPipeline(detect.PipelineConfig{
		StatWindow:     cfg.Detection.StatWindow,
		StatMinSamples: cfg.Detection.StatMinSamples,
		Forest: detect.ForestConfig{
			PoolCap:       cfg.Detection.ForestPoolCap,
			Trees:         cfg.Detection.ForestTrees,
			Subsample:     cfg.Detection.ForestSubsample,
			RetrainEvery:  cfg.Detection.ForestRetrainEvery,
			RetrainMinObs: cfg.Detection.ForestRetrainMinObs,
		},
		TemporalBufferCap:    cfg.Detection.TemporalBufferCap,
		TemporalMinSamples:   cfg.Detection.TemporalMinSamples,
		TemporalRecentWindow: cfg.Detection.TemporalRecentWindow,
	}, alerts, history, rng, log)

	s := &Simulator{
		log:          log,
		clock:        clock,
		bus:          bus,
		tickInterval: cfg.Simulation.TickInterval,
		gen:          gen,
		faults:       faults,
		history:      history,
		alerts:       alerts,
		pipeline:     pipeline,
	}

	for _, sample := range gen.Prefill(clock.Now(), cfg.Simulation.PrefillPoints) {
		history.Push(sample)
	}
	log.Info("telemetry history prefilled", zap.Int("points", cfg.Simulation.PrefillPoints))

	return s
}

// Start begins ticking. Starting an already-running simulator is a no-op.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.started = s.clock.Now()
	s.running = true
	s.ticker = s.clock.TickEvery(s.tickInterval, s.tick)
	s.log.Info("simulation started", zap.Duration("tick_interval", s.tickInterval))
}

// Stop halts the tick loop. Accumulated history, alerts, model state, and
// mission elapsed time survive a stop, so a later Start resumes rather than
// resets.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	s.elapsed += s.clock.Now().Sub(s.started)
	s.running = false
	s.log.Info("simulation stopped", zap.Duration("mission_elapsed", s.elapsed))
}

// tick generates one sample, runs detection, and publishes the results.
func (s *Simulator) tick() {
	began := time.Now()

	now := s.clock.Now()
	s.mu.Lock()
	missionTime := (s.elapsed + now.Sub(s.started)).Seconds()
	s.mu.Unlock()

	sample := s.gen.Tick(now, missionTime)
	s.history.Push(sample)
	metrics.SamplesGenerated.Inc()
	s.bus.PublishSample(sample)

	s.pipeMu.Lock()
	recorded := s.pipeline.OnSample(sample)
	s.pipeMu.Unlock()
	for _, a := range recorded {
		s.bus.PublishAlert(*a)
	}

	metrics.TickDuration.Observe(time.Since(began).Seconds())
}

// InjectFault activates a fault on the named subsystem. The fault clears
// itself after the configured duration unless cleared earlier.
func (s *Simulator) InjectFault(subsystem string) error {
	c, ok := faultCategory(subsystem)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSubsystem, subsystem)
	}
	s.faults.Inject(c)
	metrics.FaultsInjected.WithLabelValues(subsystem).Inc()
	return nil
}

// ClearFault deactivates a fault on the named subsystem immediately.
func (s *Simulator) ClearFault(subsystem string) error {
	c, ok := faultCategory(subsystem)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSubsystem, subsystem)
	}
	s.faults.Clear(c)
	return nil
}

func faultCategory(subsystem string) (telemetry.Category, bool) {
	c := telemetry.Category(subsystem)
	for _, fc := range telemetry.FaultCategories() {
		if c == fc {
			return c, true
		}
	}
	return "", false
}

// RetrainDetectors rebuilds the partition forest and refits the temporal
// baseline from their current observation pools.
func (s *Simulator) RetrainDetectors() {
	s.pipeMu.Lock()
	s.pipeline.RetrainDetectors()
	s.pipeMu.Unlock()
	s.log.Info("detectors retrained on operator request")
}

// Faults reports the current fault flag per faultable subsystem.
func (s *Simulator) Faults() map[telemetry.Category]bool {
	return s.faults.Snapshot()
}

// Latest returns the most recent telemetry sample.
func (s *Simulator) Latest() (telemetry.Sample, bool) {
	return s.history.Latest()
}

// History returns the retained samples for one category no older than the
// window, oldest first.
func (s *Simulator) History(c telemetry.Category, window time.Duration) []telemetry.Sample {
	return s.history.CategorySince(c, s.clock.Now().Add(-window))
}

// ActiveAlerts returns unacknowledged alerts, newest first.
func (s *Simulator) ActiveAlerts() []*alert.Alert {
	return s.alerts.Active()
}

// AlertHistory returns retained alerts detected within the window.
func (s *Simulator) AlertHistory(window time.Duration) []*alert.Alert {
	return s.alerts.History(s.clock.Now().Add(-window))
}

// Acknowledge marks the alert acknowledged by the given operator. It
// reports false when no active alert has that id.
func (s *Simulator) Acknowledge(id, by string) bool {
	return s.alerts.Acknowledge(id, by, s.clock.Now())
}

// Running reports whether the tick loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// StartedAt returns the mission epoch of the current run. The zero time
// means the simulator has never started.
func (s *Simulator) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// MissionElapsed returns the total simulated mission time across runs.
func (s *Simulator) MissionElapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return s.elapsed
	}
	return s.elapsed + s.clock.Now().Sub(s.started)
}
