package detect

import (
	"math"
	"math/rand"

	"github.com/satwatch/satwatch/internal/metrics"
)

// Classification thresholds applied by the pipeline to ForestScorer scores.
const (
	forestWarningScore  = 0.7
	forestCriticalScore = 0.9

	eulerMascheroni = 0.5772156649
)

// FeatureVector is one observation across the tracked subsystem readings.
type FeatureVector []float64

// partitionTree is a single random-split tree. Leaves remember the size of
// the partition they cover.
type partitionTree struct {
	splitFeature int
	splitValue   float64
	left         *partitionTree
	right        *partitionTree
	size         int
	isLeaf       bool
}

// ForestConfig parameterizes a ForestScorer.
type ForestConfig struct {
	PoolCap       int // training pool capacity, FIFO eviction
	Trees         int // ensemble size
	Subsample     int // per-tree training subsample
	RetrainEvery  int // retrain when pool size is a multiple of this
	RetrainMinObs int // and at least this large
}

// DefaultForestConfig returns the standard parameters.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		PoolCap:       500,
		Trees:         10,
		Subsample:     50,
		RetrainEvery:  50,
		RetrainMinObs: 100,
	}
}

// ForestScorer scores feature vectors by how quickly an ensemble of random
// partition trees isolates them: anomalous points sit on short paths. The
// rng is injected so tests can seed tree construction.
type ForestScorer struct {
	cfg   ForestConfig
	rng   *rand.Rand
	pool  []FeatureVector
	trees []*partitionTree
	// subsample size used for the current ensemble, needed for score
	// normalization
	trainedSubsample int
}

// NewForestScorer creates an untrained scorer.
func NewForestScorer(cfg ForestConfig, rng *rand.Rand) *ForestScorer {
	return &ForestScorer{
		cfg:  cfg,
		rng:  rng,
		pool: make([]FeatureVector, 0, cfg.PoolCap),
	}
}

// Observe adds a vector to the training pool, evicting the oldest beyond
// capacity, and retrains the ensemble at the configured cadence.
func (f *ForestScorer) Observe(v FeatureVector) {
	if len(f.pool) == f.cfg.PoolCap {
		f.pool = append(f.pool[:0], f.pool[1:]...)
	}
	f.pool = append(f.pool, v)

	if len(f.pool) >= f.cfg.RetrainMinObs && len(f.pool)%f.cfg.RetrainEvery == 0 {
		f.Retrain()
	}
}

// Retrain rebuilds the whole ensemble from the current pool. Pools smaller
// than two are skipped: Score normalizes by log2 of the trained subsample,
// which a single-vector ensemble would make zero.
func (f *ForestScorer) Retrain() {
	if len(f.pool) < 2 {
		return
	}

	subsample := f.cfg.Subsample
	if subsample > len(f.pool) {
		subsample = len(f.pool)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsample))))

	trees := make([]*partitionTree, 0, f.cfg.Trees)
	for i := 0; i < f.cfg.Trees; i++ {
		sample := f.sample(subsample)
		trees = append(trees, f.buildTree(sample, 0, maxDepth))
	}
	f.trees = trees
	f.trainedSubsample = subsample
	metrics.ForestRetrains.Inc()
}

// sample draws n vectors without replacement via Fisher-Yates.
func (f *ForestScorer) sample(n int) []FeatureVector {
	shuffled := make([]FeatureVector, len(f.pool))
	copy(shuffled, f.pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := f.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}

// buildTree recursively splits on a random feature at a uniform random
// value within that feature's observed range.
func (f *ForestScorer) buildTree(data []FeatureVector, depth, maxDepth int) *partitionTree {
	if len(data) <= 1 || depth >= maxDepth {
		return &partitionTree{size: len(data), isLeaf: true}
	}

	splitFeature := f.rng.Intn(len(data[0]))
	minVal, maxVal := featureRange(data, splitFeature)
	if minVal == maxVal {
		// Chosen feature is constant in this slice.
		return &partitionTree{size: len(data), isLeaf: true}
	}
	splitValue := minVal + f.rng.Float64()*(maxVal-minVal)

	var left, right []FeatureVector
	for _, v := range data {
		if v[splitFeature] < splitValue {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &partitionTree{size: len(data), isLeaf: true}
	}

	return &partitionTree{
		splitFeature: splitFeature,
		splitValue:   splitValue,
		left:         f.buildTree(left, depth+1, maxDepth),
		right:        f.buildTree(right, depth+1, maxDepth),
		size:         len(data),
	}
}

func featureRange(data []FeatureVector, feature int) (float64, float64) {
	minVal, maxVal := data[0][feature], data[0][feature]
	for _, v := range data {
		if v[feature] < minVal {
			minVal = v[feature]
		}
		if v[feature] > maxVal {
			maxVal = v[feature]
		}
	}
	return minVal, maxVal
}

// pathLength is the depth at which the tree isolates the vector, plus the
// expected remaining path for the leaf's partition size.
func (f *ForestScorer) pathLength(tree *partitionTree, v FeatureVector, depth int) float64 {
	if tree.isLeaf {
		return float64(depth) + avgPathLength(tree.size)
	}
	if v[tree.splitFeature] < tree.splitValue {
		return f.pathLength(tree.left, v, depth+1)
	}
	return f.pathLength(tree.right, v, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search
// over n points: c(n) = 2(ln(n−1) + γ) − 2(n−1)/n.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(float64(n-1))+eulerMascheroni) - 2*float64(n-1)/float64(n)
}

// Score normalizes the ensemble-average path length to [0, 1]; shorter
// paths score higher. An untrained scorer returns 0.
func (f *ForestScorer) Score(v FeatureVector) float64 {
	if len(f.trees) == 0 {
		return 0
	}

	total := 0.0
	for _, tree := range f.trees {
		total += f.pathLength(tree, v, 0)
	}
	avg := total / float64(len(f.trees))

	score := 1 - avg/math.Log2(float64(f.trainedSubsample))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Trained reports whether an ensemble has been built.
func (f *ForestScorer) Trained() bool { return len(f.trees) > 0 }

// PoolSize reports the current training pool size.
func (f *ForestScorer) PoolSize() int { return len(f.pool) }
