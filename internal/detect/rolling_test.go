package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingModel_InsufficientData(t *testing.T) {
	m := NewRollingModel(100, 20)

	for i := 0; i < 19; i++ {
		m.AddSample(10.0)
	}
	assert.Equal(t, 0.0, m.Score(1000.0), "below the minimum sample count the score is neutral")
}

func TestRollingModel_ZeroVariance(t *testing.T) {
	m := NewRollingModel(100, 20)

	for i := 0; i < 50; i++ {
		m.AddSample(10.0)
	}
	assert.Equal(t, 0.0, m.Score(1000.0), "zero variance never produces a spurious extreme score")
}

func TestRollingModel_OutlierSaturates(t *testing.T) {
	m := NewRollingModel(100, 20)

	// Alternating 9/11: mean 10, population stddev 1.
	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			m.AddSample(9.0)
		} else {
			m.AddSample(11.0)
		}
	}

	// z = 5 maps past saturation.
	assert.GreaterOrEqual(t, m.Score(15.0), 0.9)
	assert.LessOrEqual(t, m.Score(15.0), 0.999)

	// z = 1 maps to zero.
	assert.Equal(t, 0.0, m.Score(11.0))

	// In-range value scores low.
	assert.Less(t, m.Score(10.5), 0.1)
}

func TestRollingModel_ScoreMapping(t *testing.T) {
	m := NewRollingModel(100, 20)
	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			m.AddSample(-1.0)
		} else {
			m.AddSample(1.0)
		}
	}
	// mean 0, stddev 1: z=3 → score 1 clamped to 0.999.
	assert.InDelta(t, 0.999, m.Score(3.0), 0.001)
	// z=2 → score 0.5.
	assert.InDelta(t, 0.5, m.Score(2.0), 0.001)
}

func TestRollingModel_WindowEviction(t *testing.T) {
	m := NewRollingModel(100, 20)

	for i := 0; i < 150; i++ {
		m.AddSample(float64(i))
	}
	assert.Equal(t, 100, m.Len(), "window never exceeds its capacity")

	// Window now holds 50..149; its mean is 99.5.
	assert.InDelta(t, 99.5, m.mean, 0.001)
}
