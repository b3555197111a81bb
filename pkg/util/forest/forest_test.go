package forest

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns three well separated clusters in two dimensions, one per class
func blobs(perClass int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	centres := [][]float64{{-5, -5}, {0, 5}, {5, -5}}
	var x [][]float64
	var y []int
	for c, centre := range centres {
		for i := 0; i < perClass; i++ {
			x = append(x, []float64{centre[0] + rng.NormFloat64(), centre[1] + rng.NormFloat64()})
			y = append(y, c)
		}
	}
	return x, y
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Trees = 25
	cfg.Workers = 4
	return cfg
}

func TestFitSeparatesClusters(t *testing.T) {
	x, y := blobs(30, 1)
	f, err := Fit(x, y, 3, smallConfig())
	require.NoError(t, err)

	pred, err := f.Predict(x)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, Accuracy(y, pred), 0.95)

	for _, tree := range f.Trees {
		assert.LessOrEqual(t, tree.Depth(), f.Config.MaxDepth)
	}
}

func TestPredictProbaIsADistribution(t *testing.T) {
	x, y := blobs(20, 2)
	f, err := Fit(x, y, 3, smallConfig())
	require.NoError(t, err)

	probe := [][]float64{{-5, -5}, {0, 0}, {100, 100}, {-3.2, 4.4}}
	proba, err := f.PredictProba(probe)
	require.NoError(t, err)
	for _, row := range proba {
		require.Len(t, row, 3)
		sum := 0.0
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	}
}

func TestFitIsDeterministicAcrossWorkerCounts(t *testing.T) {
	x, y := blobs(15, 3)
	a := smallConfig()
	a.Workers = 1
	b := smallConfig()
	b.Workers = 8

	fa, err := Fit(x, y, 3, a)
	require.NoError(t, err)
	fb, err := Fit(x, y, 3, b)
	require.NoError(t, err)

	pa, _ := fa.PredictProba(x)
	pb, _ := fb.PredictProba(x)
	assert.Equal(t, pa, pb)
}

func TestFitRejectsBadInput(t *testing.T) {
	_, err := Fit(nil, nil, 3, smallConfig())
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = Fit([][]float64{{1, 2}, {1}}, []int{0, 1}, 3, smallConfig())
	assert.ErrorIs(t, err, ErrShape)

	_, err = Fit([][]float64{{1}}, []int{5}, 3, smallConfig())
	assert.ErrorIs(t, err, ErrShape)

	cfg := smallConfig()
	cfg.Trees = 0
	_, err = Fit([][]float64{{1}}, []int{0}, 3, cfg)
	assert.Error(t, err)
}

func TestClassWeightsShiftLeafDistribution(t *testing.T) {
	// identical rows force a single leaf holding the weighted class mix
	x := [][]float64{{1}, {1}, {1}, {1}}
	y := []int{0, 0, 1, 1}
	cfg := smallConfig()
	cfg.Trees = 1
	cfg.Bootstrap = false
	cfg.ClassWeights = []float64{1, 3}

	f, err := Fit(x, y, 2, cfg)
	require.NoError(t, err)
	proba, err := f.PredictProba([][]float64{{1}})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, proba[0][0], 1e-9)
	assert.InDelta(t, 0.75, proba[0][1], 1e-9)
}

func TestArgmaxPrefersLowerIndexOnTie(t *testing.T) {
	assert.Equal(t, 0, Argmax([]float64{0.4, 0.4, 0.2}))
	assert.Equal(t, 2, Argmax([]float64{0.2, 0.3, 0.5}))
}

func TestValidateCatchesCorruption(t *testing.T) {
	x, y := blobs(10, 4)
	f, err := Fit(x, y, 3, smallConfig())
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	f.Trees[0].Nodes[0] = Node{Feature: 7, Left: 1, Right: 2}
	assert.ErrorIs(t, f.Validate(), ErrCorrupt)

	var empty *Forest
	assert.ErrorIs(t, empty.Validate(), ErrCorrupt)
}

func TestStratifiedSplitKeepsEveryClass(t *testing.T) {
	y := []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2}
	train, test, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i], "row %d used twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, len(y))

	trainClasses := map[int]bool{}
	for _, i := range train {
		trainClasses[y[i]] = true
	}
	assert.Len(t, trainClasses, 3)
}

func TestStratifiedSplitProportions(t *testing.T) {
	var y []int
	for i := 0; i < 50; i++ {
		y = append(y, 0)
	}
	for i := 0; i < 25; i++ {
		y = append(y, 1)
	}
	for i := 0; i < 25; i++ {
		y = append(y, 2)
	}
	_, test, err := StratifiedSplit(y, 0.2, 7)
	require.NoError(t, err)
	counts := map[int]int{}
	for _, i := range test {
		counts[y[i]]++
	}
	assert.Equal(t, map[int]int{0: 10, 1: 5, 2: 5}, counts)
}

func TestStratifiedSplitRejectsSingletonClass(t *testing.T) {
	_, _, err := StratifiedSplit([]int{0, 0, 0, 0, 0, 1, 1, 1, 1, 2}, 0.2, 1)
	assert.ErrorIs(t, err, ErrNotStratifiable)
}

func TestStratifiedKFoldCoversRowsOnce(t *testing.T) {
	_, y := blobs(10, 5)
	folds, err := StratifiedKFold(y, 5, 42)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := map[int]int{}
	for _, f := range folds {
		assert.Len(t, f, 6)
		for _, i := range f {
			seen[i]++
		}
	}
	assert.Len(t, seen, len(y))
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
}

func TestCrossValidateProducesScorePerFoldPerPass(t *testing.T) {
	x, y := blobs(10, 6)
	cfg := smallConfig()
	cfg.Trees = 10
	scores, err := CrossValidate(x, y, 3, cfg, 5, 3)
	require.NoError(t, err)
	assert.Len(t, scores, 15)
	mean, std := MeanStd(scores)
	assert.Greater(t, mean, 0.8)
	assert.GreaterOrEqual(t, std, 0.0)
}

func TestMeanStdIsPopulation(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)
}

func TestClassificationReport(t *testing.T) {
	truth := []int{0, 0, 1, 1, 2, 2}
	pred := []int{0, 1, 1, 1, 2, 0}
	r := Classification(truth, pred, []string{"away win", "draw", "home win"})

	require.Len(t, r.Classes, 3)
	assert.InDelta(t, 4.0/6.0, r.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, r.Classes[0].Precision, 1e-12)
	assert.InDelta(t, 0.5, r.Classes[0].Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, r.Classes[1].Precision, 1e-12)
	assert.InDelta(t, 1.0, r.Classes[1].Recall, 1e-12)
	assert.InDelta(t, 0.8, r.Classes[1].F1, 1e-12)
	assert.Equal(t, 2, r.Classes[2].Support)

	text := r.String()
	assert.Contains(t, text, "precision")
	assert.Contains(t, text, "home win")
	assert.Contains(t, text, "weighted avg")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestClassificationZeroDivision(t *testing.T) {
	r := Classification([]int{0, 0}, []int{0, 0}, []string{"a", "b"})
	assert.Equal(t, 0.0, r.Classes[1].Precision)
	assert.Equal(t, 0.0, r.Classes[1].Recall)
	assert.Equal(t, 0.0, r.Classes[1].F1)
}
