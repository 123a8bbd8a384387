package detect

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusteredVector(rng *rand.Rand) FeatureVector {
	return FeatureVector{
		10 + rng.NormFloat64(),
		20 + rng.NormFloat64(),
		30 + rng.NormFloat64(),
		40 + rng.NormFloat64(),
	}
}

func TestForestScorer_UntrainedIsNeutral(t *testing.T) {
	f := NewForestScorer(DefaultForestConfig(), rand.New(rand.NewSource(1)))

	for i := 0; i < 99; i++ {
		f.Observe(FeatureVector{1, 2, 3, 4})
	}
	assert.False(t, f.Trained())
	assert.Equal(t, 0.0, f.Score(FeatureVector{1000, 1000, 1000, 1000}))
}

func TestForestScorer_RetrainSkipsTinyPool(t *testing.T) {
	f := NewForestScorer(DefaultForestConfig(), rand.New(rand.NewSource(3)))

	f.Observe(FeatureVector{1, 2, 3, 4})
	f.Retrain()

	assert.False(t, f.Trained(), "a single-vector pool cannot train an ensemble")
	score := f.Score(FeatureVector{100, 200, 300, 400})
	assert.False(t, math.IsNaN(score))
	assert.Equal(t, 0.0, score)
}

func TestForestScorer_RetrainCadence(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	f := NewForestScorer(DefaultForestConfig(), rng)

	for i := 0; i < 100; i++ {
		f.Observe(clusteredVector(rng))
	}
	require.True(t, f.Trained(), "first retrain fires at the minimum pool size")
	assert.Len(t, f.trees, 10)
	assert.Equal(t, 50, f.trainedSubsample)
}

func TestForestScorer_OutlierScoresHigher(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := NewForestScorer(DefaultForestConfig(), rng)

	for i := 0; i < 200; i++ {
		f.Observe(clusteredVector(rng))
	}
	require.True(t, f.Trained())

	normal := f.Score(FeatureVector{10, 20, 30, 40})
	outlier := f.Score(FeatureVector{500, -500, 500, -500})

	assert.Greater(t, outlier, normal)
	assert.Greater(t, outlier, 0.2, "a far outlier sits on short isolation paths")
	assert.Less(t, normal, 0.2, "a point inside the cluster is hard to isolate")
	assert.LessOrEqual(t, outlier, 1.0)
}

func TestForestScorer_PoolCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	f := NewForestScorer(DefaultForestConfig(), rng)

	for i := 0; i < 700; i++ {
		f.Observe(clusteredVector(rng))
	}
	assert.Equal(t, 500, f.PoolSize())
}

func TestAvgPathLength(t *testing.T) {
	assert.Equal(t, 0.0, avgPathLength(1))
	// c(2) = 2*(ln(1)+gamma) - 2*1/2 = 2*gamma - 1
	assert.InDelta(t, 2*eulerMascheroni-1, avgPathLength(2), 1e-9)
	assert.Greater(t, avgPathLength(50), avgPathLength(10))
}
