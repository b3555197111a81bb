package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrNotStratifiable is returned when a class has too few members to appear on both sides of a split
var ErrNotStratifiable = errors.New("forest: too few members in a class to stratify")

// StratifiedSplit partitions row indices into train and test sets so that each
// class keeps (approximately) its proportion in both. The test set has
// ceil(testRatio*n) rows. Every class needs at least two members and always
// keeps one in the training set; a rare class may be absent from a small test set.
func StratifiedSplit(y []int, testRatio float64, seed int64) (train, test []int, err error) {
	n := len(y)
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0,1), got: %f", testRatio)
	}
	byClass, classes := groupByClass(y)
	for _, c := range classes {
		if len(byClass[c]) < 2 {
			return nil, nil, fmt.Errorf("%w: class %d has %d member(s)", ErrNotStratifiable, c, len(byClass[c]))
		}
	}

	// the epsilon keeps 0.2*10 from rounding up to 3
	nTest := int(math.Ceil(testRatio*float64(n) - 1e-9))
	if n-nTest < len(classes) {
		return nil, nil, fmt.Errorf("%w: %d training rows cannot hold %d classes", ErrNotStratifiable, n-nTest, len(classes))
	}

	alloc := allocate(byClass, classes, nTest, n)
	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		members := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		test = append(test, members[:alloc[c]]...)
		train = append(train, members[alloc[c]:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// allocate shares nTest rows between classes proportionally, handing leftovers to
// the largest fractional remainders while leaving at least one row of each class
// in the training side
func allocate(byClass map[int][]int, classes []int, nTest, n int) map[int]int {
	alloc := make(map[int]int, len(classes))
	type rem struct {
		class int
		frac  float64
	}
	var rems []rem
	given := 0
	for _, c := range classes {
		exact := float64(len(byClass[c])) * float64(nTest) / float64(n)
		alloc[c] = int(math.Floor(exact))
		if alloc[c] > len(byClass[c])-1 {
			alloc[c] = len(byClass[c]) - 1
		}
		given += alloc[c]
		rems = append(rems, rem{class: c, frac: exact - math.Floor(exact)})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for given < nTest {
		progressed := false
		for _, r := range rems {
			if given == nTest {
				break
			}
			if alloc[r.class] < len(byClass[r.class])-1 {
				alloc[r.class]++
				given++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return alloc
}

// StratifiedKFold shuffles each class with seed and deals its members round-robin
// into k folds. It returns the held-out indices of each fold.
func StratifiedKFold(y []int, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("k must be at least 2, got: %d", k)
	}
	if len(y) < k {
		return nil, fmt.Errorf("%w: %d rows cannot fill %d folds", ErrNotStratifiable, len(y), k)
	}
	byClass, classes := groupByClass(y)
	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	next := 0
	for _, c := range classes {
		members := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		for _, m := range members {
			folds[next%k] = append(folds[next%k], m)
			next++
		}
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds, nil
}

// CrossValidate runs `passes` independent stratified k-fold evaluations, each with
// its own shuffle seed, and returns one accuracy per fold per pass
func CrossValidate(x [][]float64, y []int, classes int, cfg Config, k, passes int) ([]float64, error) {
	var scores []float64
	for p := 0; p < passes; p++ {
		folds, err := StratifiedKFold(y, k, cfg.Seed+int64(p))
		if err != nil {
			return nil, err
		}
		for _, held := range folds {
			trainIdx := complement(len(y), held)
			model, err := Fit(Rows(x, trainIdx), Labels(y, trainIdx), classes, cfg)
			if err != nil {
				return nil, fmt.Errorf("cross validation pass %d: %w", p, err)
			}
			pred, err := model.Predict(Rows(x, held))
			if err != nil {
				return nil, err
			}
			scores = append(scores, Accuracy(Labels(y, held), pred))
		}
	}
	return scores, nil
}

// Rows selects rows of x by index
func Rows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, r := range idx {
		out[i] = x[r]
	}
	return out
}

// Labels selects labels by index
func Labels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}

func complement(n int, held []int) []int {
	skip := make(map[int]bool, len(held))
	for _, h := range held {
		skip[h] = true
	}
	out := make([]int, 0, n-len(held))
	for i := 0; i < n; i++ {
		if !skip[i] {
			out = append(out, i)
		}
	}
	return out
}

func groupByClass(y []int) (map[int][]int, []int) {
	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return byClass, classes
}
