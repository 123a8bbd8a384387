package detect

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/telemetry"
)

func testPipelineConfig() PipelineConfig {
	return PipelineConfig{
		StatWindow:           100,
		StatMinSamples:       20,
		Forest:               DefaultForestConfig(),
		TemporalBufferCap:    200,
		TemporalMinSamples:   30,
		TemporalRecentWindow: 30,
	}
}

func newTestPipeline() (*Pipeline, *alert.Manager, *telemetry.History) {
	alerts := alert.NewManager(30*time.Second, 5*time.Minute, 1000, zap.NewNop())
	history := telemetry.NewHistory(300)
	p := NewPipeline(testPipelineConfig(), alerts, history, rand.New(rand.NewSource(1)), zap.NewNop())
	return p, alerts, history
}

func nominalSample(ts time.Time) telemetry.Sample {
	return telemetry.Sample{
		Timestamp: ts.UnixMilli(),
		Battery: telemetry.BatteryReadings{
			Voltage: 24.0, Current: 2.0, Temperature: 25.0, CapacityPct: 95.0,
			Status: telemetry.StatusNormal,
		},
		Solar: telemetry.SolarReadings{
			Power: 1380.0, Voltage: 32.0, Current: 43.0, Temperature: 38.0,
			EfficiencyPct: 92.0, Status: telemetry.StatusNormal,
		},
		Thermal: telemetry.ThermalReadings{
			Processor: 45.0, Battery: 22.0, Solar: 38.0, Radiator: -12.0,
			Status: telemetry.StatusNormal,
		},
		Comms: telemetry.CommsReadings{
			SignalStrength: -65.0, DataRate: 150.0, ErrorRate: 0.5, AntennaTemperature: 15.0,
			Status: telemetry.StatusNormal,
		},
	}
}

func TestPipeline_NominalSampleIsQuiet(t *testing.T) {
	p, alerts, _ := newTestPipeline()

	recorded := p.OnSample(nominalSample(time.Now()))
	assert.Empty(t, recorded, "cold detectors and in-range readings raise nothing")
	assert.Zero(t, alerts.ActiveCount())
}

func TestPipeline_ThresholdBreach(t *testing.T) {
	p, _, _ := newTestPipeline()

	s := nominalSample(time.Now())
	s.Battery.Voltage = 19.0

	recorded := p.OnSample(s)
	require.Len(t, recorded, 1)
	a := recorded[0]
	assert.Equal(t, alert.KindThreshold, a.Kind)
	assert.Equal(t, alert.SeverityCritical, a.Severity)
	assert.Equal(t, "battery", a.Subsystem)
	assert.Equal(t, "voltage", a.Parameter)
	assert.Equal(t, 19.0, a.Value)
	assert.NotEmpty(t, a.Message)
	assert.NotEmpty(t, a.RecommendationHint)
}

func TestPipeline_DuplicateBreachSuppressed(t *testing.T) {
	p, alerts, _ := newTestPipeline()

	base := time.Now()
	s := nominalSample(base)
	s.Battery.Voltage = 19.0
	require.Len(t, p.OnSample(s), 1)

	s2 := nominalSample(base.Add(time.Second))
	s2.Battery.Voltage = 19.1
	assert.Empty(t, p.OnSample(s2), "an identical breach on the next tick is deduplicated")
	assert.Equal(t, 1, alerts.ActiveCount())
}

func TestPipeline_StatisticalOutlier(t *testing.T) {
	p, _, _ := newTestPipeline()

	base := time.Now()
	for i := 0; i < 30; i++ {
		s := nominalSample(base.Add(time.Duration(i) * time.Second))
		// Alternate around the nominal voltage so the rolling model sees
		// real spread. A high excursion trips no fixed threshold, only
		// the statistical detector.
		if i%2 == 0 {
			s.Battery.Voltage = 23.5
		} else {
			s.Battery.Voltage = 24.5
		}
		require.Empty(t, p.OnSample(s))
	}

	s := nominalSample(base.Add(31 * time.Second))
	s.Battery.Voltage = 30.0
	recorded := p.OnSample(s)
	require.Len(t, recorded, 1)
	a := recorded[0]
	assert.Equal(t, alert.KindStatistical, a.Kind)
	assert.Equal(t, alert.SeverityCritical, a.Severity)
	assert.Equal(t, "battery", a.Subsystem)
	assert.Equal(t, "voltage", a.Parameter)
	assert.Greater(t, a.Score, 0.99)
}

func TestPipeline_VoltageStepPattern(t *testing.T) {
	p, _, history := newTestPipeline()

	base := time.Now()
	for i := 0; i < 10; i++ {
		s := nominalSample(base.Add(time.Duration(i) * time.Second))
		if i < 5 {
			s.Battery.Voltage = 25.0
		} else {
			s.Battery.Voltage = 23.5
		}
		history.Push(s)
	}

	recorded := p.OnSample(nominalSample(base.Add(10 * time.Second)))
	require.Len(t, recorded, 1)
	a := recorded[0]
	assert.Equal(t, alert.KindPattern, a.Kind)
	assert.Equal(t, alert.SeverityWarning, a.Severity)
	assert.Equal(t, "battery", a.Subsystem)
	assert.Equal(t, "voltage", a.Parameter)
}

func TestPipeline_VoltageStepCritical(t *testing.T) {
	p, _, history := newTestPipeline()

	base := time.Now()
	for i := 0; i < 10; i++ {
		s := nominalSample(base.Add(time.Duration(i) * time.Second))
		if i < 5 {
			s.Battery.Voltage = 26.0
		} else {
			s.Battery.Voltage = 23.5
		}
		history.Push(s)
	}

	recorded := p.OnSample(nominalSample(base.Add(10 * time.Second)))
	require.Len(t, recorded, 1)
	assert.Equal(t, alert.SeverityCritical, recorded[0].Severity)
}

func TestPipeline_SolarVariancePattern(t *testing.T) {
	p, _, history := newTestPipeline()

	base := time.Now()
	for i := 0; i < 10; i++ {
		s := nominalSample(base.Add(time.Duration(i) * time.Second))
		if i >= 5 && i%2 == 0 {
			s.Solar.Power = 2000.0
		} else if i >= 5 {
			s.Solar.Power = 1000.0
		}
		history.Push(s)
	}

	recorded := p.OnSample(nominalSample(base.Add(10 * time.Second)))
	require.Len(t, recorded, 1)
	a := recorded[0]
	assert.Equal(t, alert.KindPattern, a.Kind)
	assert.Equal(t, "solar", a.Subsystem)
	assert.Equal(t, "power", a.Parameter)
}

func TestPipeline_SolarVarianceSkippedInEclipse(t *testing.T) {
	p, _, history := newTestPipeline()

	base := time.Now()
	for i := 0; i < 10; i++ {
		s := nominalSample(base.Add(time.Duration(i) * time.Second))
		if i >= 5 && i%2 == 0 {
			s.Solar.Power = 2000.0
		} else if i >= 5 {
			s.Solar.Power = 1000.0
		}
		history.Push(s)
	}

	s := nominalSample(base.Add(10 * time.Second))
	s.Eclipse = true
	assert.Empty(t, p.OnSample(s), "solar variance is not judged while in shadow")
}

func TestPipeline_ModelsUpdateEveryTick(t *testing.T) {
	p, _, _ := newTestPipeline()

	base := time.Now()
	for i := 0; i < 35; i++ {
		p.OnSample(nominalSample(base.Add(time.Duration(i) * time.Second)))
	}

	assert.Equal(t, 35, p.rolling["battery.voltage"].Len())
	assert.Equal(t, 35, p.forest.PoolSize())
	assert.Equal(t, 35, p.temporal.Len())
	assert.True(t, p.temporal.Fitted())
}

func TestPipeline_RetrainDetectorsOnRequest(t *testing.T) {
	p, _, _ := newTestPipeline()

	base := time.Now()
	for i := 0; i < 35; i++ {
		p.OnSample(nominalSample(base.Add(time.Duration(i) * time.Second)))
	}
	require.False(t, p.forest.Trained(), "pool below the automatic retrain minimum")

	p.RetrainDetectors()

	assert.True(t, p.forest.Trained())
	assert.Equal(t, 35, p.forest.trainedSubsample)
	assert.True(t, p.temporal.Fitted())
}
