package detect

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/metrics"
	"github.com/satwatch/satwatch/internal/telemetry"
)

// Pattern/rate-of-change parameters: battery voltage step between the mean
// of the latest five samples and the five before them, and solar power
// variance over the latest five samples outside eclipse.
const (
	patternWindow          = 10
	patternHalf            = 5
	patternVoltageWarning  = 1.0 // V
	patternVoltageCritical = 2.0
	solarVarianceThreshold = 120000.0 // W², above any nominal illumination jitter
)

// trackedParameter is one scalar fed to a rolling statistical model.
type trackedParameter struct {
	subsystem string
	parameter string
	value     func(telemetry.Sample) float64
}

func trackedParameters() []trackedParameter {
	return []trackedParameter{
		{"battery", "voltage", func(s telemetry.Sample) float64 { return s.Battery.Voltage }},
		{"battery", "current", func(s telemetry.Sample) float64 { return s.Battery.Current }},
		{"battery", "temperature", func(s telemetry.Sample) float64 { return s.Battery.Temperature }},
		{"solar", "power", func(s telemetry.Sample) float64 { return s.Solar.Power }},
		{"solar", "temperature", func(s telemetry.Sample) float64 { return s.Solar.Temperature }},
		{"thermal", "processor", func(s telemetry.Sample) float64 { return s.Thermal.Processor }},
		{"communication", "signalStrength", func(s telemetry.Sample) float64 { return s.Comms.SignalStrength }},
		{"communication", "errorRate", func(s telemetry.Sample) float64 { return s.Comms.ErrorRate }},
	}
}

// forestFeatures builds the 8-field vector scored by the partition forest.
func forestFeatures(s telemetry.Sample) FeatureVector {
	return FeatureVector{
		s.Battery.Voltage,
		s.Battery.Current,
		s.Battery.Temperature,
		s.Solar.Power,
		s.Solar.Temperature,
		s.Thermal.Processor,
		s.Comms.SignalStrength,
		s.Comms.ErrorRate,
	}
}

// temporalFeatures builds the 5-field vector tracked by the temporal scorer.
func temporalFeatures(s telemetry.Sample) []float64 {
	return []float64{
		s.Battery.Voltage,
		s.Battery.Temperature,
		s.Solar.Power,
		s.Thermal.Processor,
		s.Comms.SignalStrength,
	}
}

// PipelineConfig carries the detector parameters.
type PipelineConfig struct {
	StatWindow           int
	StatMinSamples       int
	Forest               ForestConfig
	TemporalBufferCap    int
	TemporalMinSamples   int
	TemporalRecentWindow int
}

// Pipeline runs every detector against each telemetry sample, deduplicates
// the resulting alerts through the alert manager, and keeps all model state
// current. A detector short of data contributes a neutral score; the
// pipeline never aborts a tick.
type Pipeline struct {
	log     *zap.Logger
	alerts  *alert.Manager
	history *telemetry.History

	tracked  []trackedParameter
	rolling  map[string]*RollingModel
	forest   *ForestScorer
	temporal *TemporalScorer
}

// NewPipeline wires the detectors. The rng seeds the partition forest's
// tree construction.
func NewPipeline(cfg PipelineConfig, alerts *alert.Manager, history *telemetry.History, rng *rand.Rand, log *zap.Logger) *Pipeline {
	tracked := trackedParameters()
	rolling := make(map[string]*RollingModel, len(tracked))
	for _, tp := range tracked {
		rolling[tp.subsystem+"."+tp.parameter] = NewRollingModel(cfg.StatWindow, cfg.StatMinSamples)
	}

	return &Pipeline{
		log:      log,
		alerts:   alerts,
		history:  history,
		tracked:  tracked,
		rolling:  rolling,
		forest:   NewForestScorer(cfg.Forest, rng),
		temporal: NewTemporalScorer(cfg.TemporalBufferCap, cfg.TemporalMinSamples, cfg.TemporalRecentWindow),
	}
}

// OnSample runs all detectors against the sample and returns the alerts
// that survived deduplication. Model state is updated with the sample's
// values whether or not anything fired, and the active set is swept for
// stale alerts.
func (p *Pipeline) OnSample(s telemetry.Sample) []*alert.Alert {
	detectedAt := time.UnixMilli(s.Timestamp)

	var candidates []*alert.Alert
	candidates = append(candidates, checkThresholds(s, detectedAt)...)
	candidates = append(candidates, p.checkStatistical(s, detectedAt)...)
	if a := p.checkForest(s, detectedAt); a != nil {
		candidates = append(candidates, a)
	}
	if a := p.checkTemporal(s, detectedAt); a != nil {
		candidates = append(candidates, a)
	}
	candidates = append(candidates, p.checkPattern(s, detectedAt)...)

	var recorded []*alert.Alert
	for _, a := range candidates {
		if p.alerts.Record(a) {
			recorded = append(recorded, a)
			metrics.AlertsTotal.WithLabelValues(string(a.Kind), string(a.Severity)).Inc()
			p.log.Info("anomaly detected",
				zap.String("kind", string(a.Kind)),
				zap.String("severity", string(a.Severity)),
				zap.String("subsystem", a.Subsystem),
				zap.String("parameter", a.Parameter),
				zap.Float64("value", a.Value))
		} else {
			metrics.AlertsSuppressed.Inc()
		}
	}

	p.updateModels(s)
	p.alerts.Sweep(detectedAt)
	metrics.ActiveAlerts.Set(float64(p.alerts.ActiveCount()))

	return recorded
}

// checkStatistical scores each tracked parameter against its rolling model.
func (p *Pipeline) checkStatistical(s telemetry.Sample, detectedAt time.Time) []*alert.Alert {
	var out []*alert.Alert
	for _, tp := range p.tracked {
		model := p.rolling[tp.subsystem+"."+tp.parameter]
		v := tp.value(s)
		score := model.Score(v)
		metrics.DetectorScore.WithLabelValues("statistical").Observe(score)
		if score <= rollingWarningScore {
			continue
		}

		severity := alert.SeverityWarning
		if score > rollingCriticalScore {
			severity = alert.SeverityCritical
		}
		a := alert.New(alert.KindStatistical, severity, tp.subsystem, tp.parameter, v, detectedAt)
		a.Score = score
		a.Message = fmt.Sprintf("%s %s deviates sharply from its rolling baseline (score %.3f)",
			tp.subsystem, tp.parameter, score)
		a.Explanation = "Z-score against the rolling window mean and standard deviation."
		a.RecommendationHint = "Compare against recent trend before acting; a single spike may be noise."
		out = append(out, a)
	}
	return out
}

// checkForest scores the combined feature vector; a hit is a system-level
// alert rather than a single-subsystem one.
func (p *Pipeline) checkForest(s telemetry.Sample, detectedAt time.Time) *alert.Alert {
	score := p.forest.Score(forestFeatures(s))
	metrics.DetectorScore.WithLabelValues("partitioning").Observe(score)
	if score <= forestWarningScore {
		return nil
	}

	severity := alert.SeverityWarning
	if score > forestCriticalScore {
		severity = alert.SeverityCritical
	}
	a := alert.New(alert.KindPartitioning, severity, "system", "multivariate", score, detectedAt)
	a.Score = score
	a.Message = fmt.Sprintf("Cross-subsystem readings are easy to isolate from recent behavior (score %.3f)", score)
	a.Explanation = "Short average partition-path length across the random-split tree ensemble."
	a.RecommendationHint = "Review all subsystems together; the pattern spans multiple parameters."
	return a
}

// checkTemporal scores the recent window against the fixed baseline.
func (p *Pipeline) checkTemporal(s telemetry.Sample, detectedAt time.Time) *alert.Alert {
	score := p.temporal.Score()
	metrics.DetectorScore.WithLabelValues("temporal").Observe(score)
	if score <= temporalWarningScore {
		return nil
	}

	severity := alert.SeverityWarning
	if score > temporalCriticalScore {
		severity = alert.SeverityCritical
	}
	a := alert.New(alert.KindTemporal, severity, "system", "baseline-deviation", score, detectedAt)
	a.Score = score
	a.Message = fmt.Sprintf("Recent telemetry drifted from the mission baseline (score %.3f)", score)
	a.Explanation = "Mean of the recent window deviates from the baseline fitted at mission start."
	a.RecommendationHint = "Check for slow degradation; this detector reacts to sustained drift, not spikes."
	return a
}

// checkPattern runs the short-horizon rate-of-change checks over recent
// history.
func (p *Pipeline) checkPattern(s telemetry.Sample, detectedAt time.Time) []*alert.Alert {
	recent := p.history.Recent(patternWindow)
	if len(recent) < patternWindow {
		return nil
	}

	var out []*alert.Alert

	// Battery voltage step between the two half-windows.
	prevMean, lastMean := 0.0, 0.0
	for _, r := range recent[:patternHalf] {
		prevMean += r.Battery.Voltage
	}
	for _, r := range recent[patternHalf:] {
		lastMean += r.Battery.Voltage
	}
	prevMean /= patternHalf
	lastMean /= patternHalf

	if change := lastMean - prevMean; change > patternVoltageWarning || change < -patternVoltageWarning {
		severity := alert.SeverityWarning
		if change > patternVoltageCritical || change < -patternVoltageCritical {
			severity = alert.SeverityCritical
		}
		a := alert.New(alert.KindPattern, severity, "battery", "voltage", lastMean, detectedAt)
		a.Message = fmt.Sprintf("Battery voltage moved %.2f V between consecutive 5-sample windows", change)
		a.Explanation = "Rate-of-change check over the last ten samples."
		a.RecommendationHint = "Correlate with load switching and eclipse entry/exit."
		out = append(out, a)
	}

	// Solar power variance over the latest half-window, outside eclipse.
	if !s.Eclipse {
		mean := 0.0
		last := recent[patternHalf:]
		for _, r := range last {
			mean += r.Solar.Power
		}
		mean /= float64(len(last))
		variance := 0.0
		for _, r := range last {
			variance += (r.Solar.Power - mean) * (r.Solar.Power - mean)
		}
		variance /= float64(len(last))

		if variance > solarVarianceThreshold {
			a := alert.New(alert.KindPattern, alert.SeverityWarning, "solar", "power", mean, detectedAt)
			a.Score = 0
			a.Message = fmt.Sprintf("Solar power is unusually erratic (variance %.0f W² over 5 samples)", variance)
			a.Explanation = "Variance check over the most recent samples outside eclipse."
			a.RecommendationHint = "Inspect array tracking; rapid output swings suggest intermittent shadowing or a loose connection."
			out = append(out, a)
		}
	}

	return out
}

// updateModels feeds this tick's values into every detector's state.
func (p *Pipeline) updateModels(s telemetry.Sample) {
	for _, tp := range p.tracked {
		p.rolling[tp.subsystem+"."+tp.parameter].AddSample(tp.value(s))
	}
	p.forest.Observe(forestFeatures(s))
	p.temporal.Observe(temporalFeatures(s))
}

// RetrainDetectors rebuilds the forest ensemble and refits the temporal
// baseline from their current pools, on operator request.
func (p *Pipeline) RetrainDetectors() {
	p.forest.Retrain()
	p.temporal.Refit()
}
