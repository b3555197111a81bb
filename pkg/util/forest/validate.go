package forest

import (
	"errors"
	"fmt"
	"math"
)

// ErrCorrupt is returned when a decoded forest is structurally unusable
var ErrCorrupt = errors.New("forest: corrupt model")

// Validate checks a forest restored from storage: node links in range, split
// features inside the input width, leaves with one probability per class.
func (f *Forest) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil forest", ErrCorrupt)
	}
	if f.Classes < 2 || f.Features < 1 {
		return fmt.Errorf("%w: %d classes over %d features", ErrCorrupt, f.Classes, f.Features)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrCorrupt)
	}
	for t, tree := range f.Trees {
		if tree == nil || len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrCorrupt, t)
		}
		for i, n := range tree.Nodes {
			if n.IsLeaf() {
				if len(n.Value) != f.Classes {
					return fmt.Errorf("%w: tree %d leaf %d has %d values", ErrCorrupt, t, i, len(n.Value))
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= f.Features {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d", ErrCorrupt, t, i, n.Feature)
			}
			// children are always appended after their parent
			if n.Left <= i || n.Right <= i || n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has invalid children", ErrCorrupt, t, i)
			}
			if math.IsNaN(n.Threshold) {
				return fmt.Errorf("%w: tree %d node %d has NaN threshold", ErrCorrupt, t, i)
			}
		}
	}
	return nil
}
