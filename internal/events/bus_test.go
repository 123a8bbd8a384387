package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/telemetry"
)

func TestBus_SampleFanout(t *testing.T) {
	bus := NewBus()

	var got1, got2 []float64
	bus.SubscribeSamples(func(s telemetry.Sample) { got1 = append(got1, s.MissionTime) })
	bus.SubscribeSamples(func(s telemetry.Sample) { got2 = append(got2, s.MissionTime) })

	bus.PublishSample(telemetry.Sample{MissionTime: 1})
	bus.PublishSample(telemetry.Sample{MissionTime: 2})

	assert.Equal(t, []float64{1, 2}, got1)
	assert.Equal(t, []float64{1, 2}, got2)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	unsub := bus.SubscribeSamples(func(telemetry.Sample) { calls++ })
	bus.PublishSample(telemetry.Sample{})
	unsub()
	bus.PublishSample(telemetry.Sample{})

	assert.Equal(t, 1, calls)
}

func TestBus_CriticalTopicFiltersSeverity(t *testing.T) {
	bus := NewBus()

	var all, critical []alert.Severity
	bus.SubscribeAlerts(func(a alert.Alert) { all = append(all, a.Severity) })
	bus.SubscribeCritical(func(a alert.Alert) { critical = append(critical, a.Severity) })

	warn := alert.New(alert.KindThreshold, alert.SeverityWarning, "battery", "voltage", 21, time.Unix(0, 0))
	crit := alert.New(alert.KindThreshold, alert.SeverityCritical, "battery", "temperature", 48, time.Unix(0, 0))

	bus.PublishAlert(*warn)
	bus.PublishAlert(*crit)

	assert.Equal(t, []alert.Severity{alert.SeverityWarning, alert.SeverityCritical}, all)
	assert.Equal(t, []alert.Severity{alert.SeverityCritical}, critical)
}
