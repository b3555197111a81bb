package forest

import (
	"math/rand"
	"sort"
)

// leafFeature marks a node as a leaf in the flattened tree
const leafFeature = -1

// Node is one entry of a flattened decision tree. Internal nodes route a row left
// when row[Feature] <= Threshold. Leaves carry the normalised, class-weighted
// distribution of the training rows that reached them.
type Node struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t,omitempty"`
	Left      int       `json:"l,omitempty"`
	Right     int       `json:"r,omitempty"`
	Value     []float64 `json:"v,omitempty"`
}

// IsLeaf reports whether the node terminates a path
func (n *Node) IsLeaf() bool {
	return n.Feature == leafFeature
}

// Tree is a CART classification tree stored as a slice of nodes, root at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// proba walks the tree for a single row
func (t *Tree) proba(row []float64) []float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

/////////////////////////////////////////////////////////////////////////
////// Growing
/////////////////////////////////////////////////////////////////////////

type treeBuilder struct {
	x        [][]float64
	y        []int
	weights  []float64 // per class
	classes  int
	cfg      Config
	features int // features considered per split
	rng      *rand.Rand
	nodes    []Node
}

// growTree fits one tree on the given sample indices (duplicates allowed, as a bootstrap draw)
func growTree(x [][]float64, y []int, idx []int, classes int, cfg Config, rng *rand.Rand) *Tree {
	b := &treeBuilder{
		x:        x,
		y:        y,
		weights:  cfg.classWeights(classes),
		classes:  classes,
		cfg:      cfg,
		features: cfg.featuresPerSplit(len(x[0])),
		rng:      rng,
	}
	b.grow(idx, 0)
	return &Tree{Nodes: b.nodes}
}

func (b *treeBuilder) counts(idx []int) ([]float64, float64) {
	c := make([]float64, b.classes)
	total := 0.0
	for _, i := range idx {
		w := b.weights[b.y[i]]
		c[b.y[i]] += w
		total += w
	}
	return c, total
}

func (b *treeBuilder) leaf(counts []float64) int {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	v := make([]float64, len(counts))
	for k, c := range counts {
		if sum > 0 {
			v[k] = c / sum
		}
	}
	b.nodes = append(b.nodes, Node{Feature: leafFeature, Value: v})
	return len(b.nodes) - 1
}

// grow appends the subtree for idx and returns its node index
func (b *treeBuilder) grow(idx []int, depth int) int {
	counts, total := b.counts(idx)

	if depth >= b.cfg.MaxDepth || len(idx) < b.cfg.MinSamplesSplit || len(idx) < 2*b.cfg.MinSamplesLeaf || gini(counts, total) == 0 {
		return b.leaf(counts)
	}

	feature, threshold, ok := b.bestSplit(idx, counts, total)
	if !ok {
		return b.leaf(counts)
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: feature, Threshold: threshold})
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self].Left = l
	b.nodes[self].Right = r
	return self
}

// bestSplit searches a random subset of features for the split with the largest
// weighted Gini decrease that leaves at least MinSamplesLeaf rows on each side
func (b *treeBuilder) bestSplit(idx []int, counts []float64, total float64) (int, float64, bool) {
	nFeatures := len(b.x[0])
	candidates := b.rng.Perm(nFeatures)

	parent := gini(counts, total)
	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(idx))
	left := make([]float64, b.classes)
	right := make([]float64, b.classes)

	visited := 0
	for _, f := range candidates {
		// keep drawing features past the quota until at least one usable split is found
		if visited >= b.features && bestFeature >= 0 {
			break
		}
		visited++

		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })
		if b.x[sorted[0]][f] == b.x[sorted[len(sorted)-1]][f] {
			continue
		}

		for k := range left {
			left[k] = 0
			right[k] = counts[k]
		}
		leftW := 0.0

		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			w := b.weights[b.y[i]]
			left[b.y[i]] += w
			right[b.y[i]] -= w
			leftW += w

			nLeft := pos + 1
			if nLeft < b.cfg.MinSamplesLeaf {
				continue
			}
			if len(sorted)-nLeft < b.cfg.MinSamplesLeaf {
				break
			}
			v, next := b.x[i][f], b.x[sorted[pos+1]][f]
			if v == next {
				continue
			}

			rightW := total - leftW
			child := (leftW*gini(left, leftW) + rightW*gini(right, rightW)) / total
			gain := parent - child
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = v + (next-v)/2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// gini is the weighted Gini impurity of a class count vector
func gini(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	s := 1.0
	for _, c := range counts {
		p := c / total
		s -= p * p
	}
	if s < 0 {
		return 0
	}
	return s
}
