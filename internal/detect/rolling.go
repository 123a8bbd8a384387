package detect

import "math"

// Classification thresholds applied by the pipeline to RollingModel scores.
const (
	rollingWarningScore  = 0.95
	rollingCriticalScore = 0.99
)

// RollingModel tracks a bounded FIFO window of one scalar parameter and
// scores new values by their z-score against the windowed mean and
// population standard deviation.
type RollingModel struct {
	window     int
	minSamples int

	values []float64
	mean   float64
	stdDev float64
}

// NewRollingModel creates a model over the given window size. Scores stay
// neutral until minSamples values have been observed.
func NewRollingModel(window, minSamples int) *RollingModel {
	return &RollingModel{
		window:     window,
		minSamples: minSamples,
		values:     make([]float64, 0, window),
	}
}

// AddSample inserts a value, evicting the oldest when the window is full,
// and recomputes the windowed statistics.
func (m *RollingModel) AddSample(v float64) {
	if len(m.values) == m.window {
		m.values = append(m.values[:0], m.values[1:]...)
	}
	m.values = append(m.values, v)
	m.recompute()
}

func (m *RollingModel) recompute() {
	n := float64(len(m.values))
	sum := 0.0
	for _, v := range m.values {
		sum += v
	}
	m.mean = sum / n

	variance := 0.0
	for _, v := range m.values {
		variance += (v - m.mean) * (v - m.mean)
	}
	variance /= n
	m.stdDev = math.Sqrt(variance)
}

// Score maps the value's z-score to [0, 0.999): z=1 scores 0, z=3 scores
// close to 1. Below the minimum sample count, or with zero variance, the
// score is neutral.
func (m *RollingModel) Score(v float64) float64 {
	if len(m.values) < m.minSamples || m.stdDev == 0 {
		return 0
	}
	z := math.Abs(v-m.mean) / m.stdDev
	score := (z - 1) / 2
	if score < 0 {
		return 0
	}
	if score > 0.999 {
		return 0.999
	}
	return score
}

// Len reports the number of values currently in the window.
func (m *RollingModel) Len() int { return len(m.values) }
