package detect

import "math"

// Classification thresholds applied by the pipeline to TemporalScorer scores.
const (
	temporalWarningScore  = 0.8
	temporalCriticalScore = 0.95

	temporalEpsilon = 1e-6
)

// TemporalScorer compares the recent window of feature vectors against a
// baseline fitted once from the first full observation window. The baseline
// is deliberately never refreshed automatically; Refit exists for an
// explicit operator-driven reset.
type TemporalScorer struct {
	bufferCap    int
	minSamples   int
	recentWindow int

	buffer [][]float64

	fitted       bool
	baselineMean []float64
	baselineVar  []float64
}

// NewTemporalScorer creates an unfitted scorer.
func NewTemporalScorer(bufferCap, minSamples, recentWindow int) *TemporalScorer {
	return &TemporalScorer{
		bufferCap:    bufferCap,
		minSamples:   minSamples,
		recentWindow: recentWindow,
		buffer:       make([][]float64, 0, bufferCap),
	}
}

// Observe appends a feature vector, evicting the oldest beyond capacity.
// The baseline is fitted the first time the buffer reaches the minimum
// length.
func (t *TemporalScorer) Observe(v []float64) {
	if len(t.buffer) == t.bufferCap {
		t.buffer = append(t.buffer[:0], t.buffer[1:]...)
	}
	t.buffer = append(t.buffer, v)

	if !t.fitted && len(t.buffer) >= t.minSamples {
		t.fit()
	}
}

// fit computes the per-feature baseline mean and variance over the whole
// current buffer.
func (t *TemporalScorer) fit() {
	features := len(t.buffer[0])
	mean := make([]float64, features)
	variance := make([]float64, features)

	for _, v := range t.buffer {
		for j := 0; j < features; j++ {
			mean[j] += v[j]
		}
	}
	n := float64(len(t.buffer))
	for j := range mean {
		mean[j] /= n
	}
	for _, v := range t.buffer {
		for j := 0; j < features; j++ {
			d := v[j] - mean[j]
			variance[j] += d * d
		}
	}
	for j := range variance {
		variance[j] /= n
	}

	t.baselineMean = mean
	t.baselineVar = variance
	t.fitted = true
}

// Refit discards the baseline and fits a new one from the current buffer.
// Nothing calls this on a cadence.
func (t *TemporalScorer) Refit() {
	if len(t.buffer) >= t.minSamples {
		t.fit()
	}
}

// Score averages, over features, the normalized deviation of the recent
// window's mean from the baseline mean, then maps the deviation to [0, 1].
// Unfitted scorers return 0.
func (t *TemporalScorer) Score() float64 {
	if !t.fitted || len(t.buffer) < t.recentWindow {
		return 0
	}

	recent := t.buffer[len(t.buffer)-t.recentWindow:]
	features := len(t.baselineMean)

	totalDeviation := 0.0
	for j := 0; j < features; j++ {
		recentMean := 0.0
		for _, v := range recent {
			recentMean += v[j]
		}
		recentMean /= float64(len(recent))

		totalDeviation += math.Abs(recentMean-t.baselineMean[j]) /
			math.Sqrt(t.baselineVar[j]+temporalEpsilon)
	}
	avgDeviation := totalDeviation / float64(features)

	score := (avgDeviation - 1) / 3
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Fitted reports whether the baseline has been computed.
func (t *TemporalScorer) Fitted() bool { return t.fitted }

// Len reports the current buffer length.
func (t *TemporalScorer) Len() int { return len(t.buffer) }
