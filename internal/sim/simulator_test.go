package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/config"
	"github.com/satwatch/satwatch/internal/events"
	"github.com/satwatch/satwatch/internal/sched"
	"github.com/satwatch/satwatch/internal/telemetry"
)

func newTestSimulator(t *testing.T) (*Simulator, *sched.SimClock, *events.Bus) {
	t.Helper()
	clock := sched.NewSimClock(time.Unix(1_700_000_000, 0))
	bus := events.NewBus()
	s := New(config.DefaultConfig(), clock, bus, rand.New(rand.NewSource(7)), zap.NewNop())
	return s, clock, bus
}

func TestSimulator_PrefillsHistory(t *testing.T) {
	s, _, _ := newTestSimulator(t)

	latest, ok := s.Latest()
	require.True(t, ok, "history is populated before the first tick")
	assert.Less(t, latest.MissionTime, 0.0, "prefilled samples predate the mission epoch")
	assert.Len(t, s.History(telemetry.CategoryBattery, time.Hour), 60)
}

func TestSimulator_TicksAdvanceMissionTime(t *testing.T) {
	s, clock, _ := newTestSimulator(t)

	s.Start()
	clock.Advance(3 * time.Second)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 3.0, latest.MissionTime)
	assert.False(t, latest.Eclipse)
}

func TestSimulator_NominalRunIsQuiet(t *testing.T) {
	s, clock, _ := newTestSimulator(t)

	s.Start()
	clock.Advance(70 * time.Second)

	assert.Empty(t, s.ActiveAlerts(), "an unfaulted run raises no alerts")
	for _, active := range s.Faults() {
		assert.False(t, active)
	}

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, telemetry.StatusNormal, latest.Battery.Status)
}

func TestSimulator_FaultDetectionAndRecovery(t *testing.T) {
	s, clock, _ := newTestSimulator(t)

	s.Start()
	clock.Advance(70 * time.Second)
	require.Empty(t, s.ActiveAlerts())

	require.NoError(t, s.InjectFault("battery"))
	assert.True(t, s.Faults()[telemetry.CategoryBattery])

	clock.Advance(5 * time.Second)

	found := false
	for _, a := range s.ActiveAlerts() {
		if a.Severity == alert.SeverityCritical && a.Subsystem == "battery" && a.Parameter == "temperature" {
			found = true
		}
	}
	assert.True(t, found, "the battery fault drives temperature past the critical band within a few ticks")

	// The fault auto-clears 30 s after injection.
	clock.Advance(26 * time.Second)
	assert.False(t, s.Faults()[telemetry.CategoryBattery])

	clock.Advance(2 * time.Second)
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, telemetry.StatusNormal, latest.Battery.Status, "readings recover once the fault clears")
}

func TestSimulator_BusPublishesSamplesAndCriticalAlerts(t *testing.T) {
	s, clock, bus := newTestSimulator(t)

	var samples int
	var criticals []alert.Alert
	bus.SubscribeSamples(func(telemetry.Sample) { samples++ })
	bus.SubscribeCritical(func(a alert.Alert) { criticals = append(criticals, a) })

	s.Start()
	clock.Advance(10 * time.Second)
	assert.Equal(t, 10, samples)
	assert.Empty(t, criticals)

	require.NoError(t, s.InjectFault("battery"))
	clock.Advance(5 * time.Second)
	assert.NotEmpty(t, criticals, "critical alerts fan out on the dedicated stream")
}

func TestSimulator_AcknowledgeAlert(t *testing.T) {
	s, clock, _ := newTestSimulator(t)

	s.Start()
	require.NoError(t, s.InjectFault("battery"))
	clock.Advance(5 * time.Second)

	active := s.ActiveAlerts()
	require.NotEmpty(t, active)

	assert.True(t, s.Acknowledge(active[0].ID, "operator"))
	assert.Len(t, s.ActiveAlerts(), len(active)-1)

	assert.False(t, s.Acknowledge("no-such-id", "operator"))
}

func TestSimulator_UnknownSubsystem(t *testing.T) {
	s, _, _ := newTestSimulator(t)

	assert.ErrorIs(t, s.InjectFault("propulsion"), ErrUnknownSubsystem)
	assert.ErrorIs(t, s.ClearFault("propulsion"), ErrUnknownSubsystem)
}

func TestSimulator_ManualClear(t *testing.T) {
	s, clock, _ := newTestSimulator(t)

	s.Start()
	require.NoError(t, s.InjectFault("solar"))
	clock.Advance(2 * time.Second)
	require.True(t, s.Faults()[telemetry.CategorySolar])

	require.NoError(t, s.ClearFault("solar"))
	assert.False(t, s.Faults()[telemetry.CategorySolar])
}

func TestSimulator_StopHaltsTicking(t *testing.T) {
	s, clock, bus := newTestSimulator(t)

	var samples int
	bus.SubscribeSamples(func(telemetry.Sample) { samples++ })

	s.Start()
	assert.True(t, s.Running())
	clock.Advance(5 * time.Second)
	require.Equal(t, 5, samples)

	s.Stop()
	assert.False(t, s.Running())
	clock.Advance(10 * time.Second)
	assert.Equal(t, 5, samples, "no ticks after stop")

	// Restarting resumes mission time rather than resetting it.
	s.Start()
	clock.Advance(1 * time.Second)
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 6.0, latest.MissionTime)
	assert.Equal(t, 6*time.Second, s.MissionElapsed())
}

func TestSimulator_StartIsIdempotent(t *testing.T) {
	s, clock, bus := newTestSimulator(t)

	var samples int
	bus.SubscribeSamples(func(telemetry.Sample) { samples++ })

	s.Start()
	s.Start()
	clock.Advance(3 * time.Second)
	assert.Equal(t, 3, samples, "a second Start does not add a second ticker")
}

func TestSimulator_AlertHistoryWindow(t *testing.T) {
	s, clock, _ := newTestSimulator(t)

	s.Start()
	require.NoError(t, s.InjectFault("battery"))
	clock.Advance(5 * time.Second)

	history := s.AlertHistory(time.Hour)
	require.NotEmpty(t, history)

	// Acknowledged alerts leave the active set but stay in history.
	active := s.ActiveAlerts()
	require.True(t, s.Acknowledge(active[0].ID, "operator"))
	assert.Len(t, s.AlertHistory(time.Hour), len(history))
}
