package forest

/**
* A small random forest classifier: bagged CART trees with Gini splits, per-split
* feature subsampling and per-class sample weights. Trees are grown on a bounded
* worker pool; each tree owns an RNG seeded from Config.Seed and its index so a fit
* is reproducible regardless of scheduling.
 */

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

var (
	// ErrNoSamples is returned when fitting on an empty matrix
	ErrNoSamples = errors.New("forest: no training samples")
	// ErrShape is returned when rows disagree on width or labels disagree on length
	ErrShape = errors.New("forest: inconsistent input shape")
)

// Config holds the hyper-parameters of the ensemble
type Config struct {
	Trees           int       `json:"trees" yaml:"trees"`
	MaxDepth        int       `json:"maxDepth" yaml:"maxDepth"`
	MinSamplesSplit int       `json:"minSamplesSplit" yaml:"minSamplesSplit"`
	MinSamplesLeaf  int       `json:"minSamplesLeaf" yaml:"minSamplesLeaf"`
	MaxFeatures     int       `json:"maxFeatures" yaml:"maxFeatures"` // 0 means floor(sqrt(features))
	ClassWeights    []float64 `json:"classWeights" yaml:"classWeights"`
	Bootstrap       bool      `json:"bootstrap" yaml:"bootstrap"`
	Seed            int64     `json:"seed" yaml:"seed"`
	Workers         int       `json:"-" yaml:"workers"` // 0 means runtime.NumCPU()
}

// DefaultConfig returns the ensemble used for match outcome classification:
// 500 trees of depth 10 with draws (class 1) up-weighted by half
func DefaultConfig() Config {
	return Config{
		Trees:           500,
		MaxDepth:        10,
		MinSamplesSplit: 4,
		MinSamplesLeaf:  2,
		MaxFeatures:     0,
		ClassWeights:    []float64{1.0, 1.5, 1.0},
		Bootstrap:       true,
		Seed:            42,
	}
}

// Validate ensures all hyper-parameters are usable
func (c Config) Validate() error {
	if c.Trees < 1 {
		return fmt.Errorf("Trees must be at least 1, got: %d", c.Trees)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("MaxDepth must be at least 1, got: %d", c.MaxDepth)
	}
	if c.MinSamplesSplit < 2 {
		return fmt.Errorf("MinSamplesSplit must be at least 2, got: %d", c.MinSamplesSplit)
	}
	if c.MinSamplesLeaf < 1 {
		return fmt.Errorf("MinSamplesLeaf must be at least 1, got: %d", c.MinSamplesLeaf)
	}
	if c.MaxFeatures < 0 {
		return fmt.Errorf("MaxFeatures must not be negative, got: %d", c.MaxFeatures)
	}
	for i, w := range c.ClassWeights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("class weight %d must be a positive number, got: %f", i, w)
		}
	}
	return nil
}

func (c Config) classWeights(classes int) []float64 {
	w := make([]float64, classes)
	for k := range w {
		w[k] = 1.0
		if k < len(c.ClassWeights) {
			w[k] = c.ClassWeights[k]
		}
	}
	return w
}

func (c Config) featuresPerSplit(features int) int {
	m := c.MaxFeatures
	if m == 0 {
		m = int(math.Sqrt(float64(features)))
	}
	if m < 1 {
		m = 1
	}
	if m > features {
		m = features
	}
	return m
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Forest is a fitted ensemble. It is never modified after Fit returns, so it may be
// shared between goroutines freely.
type Forest struct {
	Classes  int     `json:"classes"`
	Features int     `json:"features"`
	Trees    []*Tree `json:"trees"`
	Config   Config  `json:"config"`
}

// Fit grows cfg.Trees trees on x (rows) and y (labels in [0, classes))
func Fit(x [][]float64, y []int, classes int, cfg Config) (*Forest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrNoSamples
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrShape, len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrShape)
	}
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, expected %d", ErrShape, i, len(row), width)
		}
		if y[i] < 0 || y[i] >= classes {
			return nil, fmt.Errorf("%w: label %d at row %d outside [0,%d)", ErrShape, y[i], i, classes)
		}
	}

	trees := make([]*Tree, cfg.Trees)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < cfg.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
				trees[t] = growTree(x, y, sampleRows(len(x), cfg.Bootstrap, rng), classes, cfg, rng)
			}
		}()
	}
	for t := range trees {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	return &Forest{Classes: classes, Features: width, Trees: trees, Config: cfg}, nil
}

// sampleRows draws the rows a tree is grown on: a bootstrap sample of size n, or
// every row once when bootstrapping is disabled
func sampleRows(n int, bootstrap bool, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		if bootstrap {
			idx[i] = rng.Intn(n)
		} else {
			idx[i] = i
		}
	}
	return idx
}

// PredictProba averages the leaf distributions of every tree. Each returned row has
// Classes entries that sum to one.
func (f *Forest) PredictProba(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for r, row := range x {
		if len(row) != f.Features {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShape, r, len(row), f.Features)
		}
		p := make([]float64, f.Classes)
		for _, t := range f.Trees {
			for k, v := range t.proba(row) {
				p[k] += v
			}
		}
		sum := 0.0
		for k := range p {
			p[k] /= float64(len(f.Trees))
			sum += p[k]
		}
		// guard against accumulated rounding
		if sum > 0 {
			for k := range p {
				p[k] /= sum
			}
		}
		out[r] = p
	}
	return out, nil
}

// Predict returns the most probable class per row; ties go to the lower class index
func (f *Forest) Predict(x [][]float64) ([]int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for r, p := range proba {
		out[r] = Argmax(p)
	}
	return out, nil
}

// Argmax returns the index of the largest value, the first one on ties
func Argmax(p []float64) int {
	best := 0
	for k := 1; k < len(p); k++ {
		if p[k] > p[best] {
			best = k
		}
	}
	return best
}
