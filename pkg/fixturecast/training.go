package fixturecast

import (
	"errors"
	"fmt"
	"sort"
)

// Class labels. The order matches the columns of every probability row.
const (
	LabelAwayWin = 0
	LabelDraw    = 1
	LabelHomeWin = 2
)

// LabelNames names each class label for reports
var LabelNames = []string{"away win", "draw", "home win"}

// LabelFor maps an outcome tag to a class label. Anything but a home win or a draw is an away win.
func LabelFor(o Outcome) int {
	switch o {
	case HomeTeam:
		return LabelHomeWin
	case Draw:
		return LabelDraw
	default:
		return LabelAwayWin
	}
}

// Dataset is an aligned set of raw feature rows and labels
type Dataset struct {
	X        [][]float64
	Y        []int
	Fixtures []Match // the match each row was built from
}

// Len is the number of examples
func (d *Dataset) Len() int {
	return len(d.Y)
}

// ClassCounts counts examples per label
func (d *Dataset) ClassCounts() [3]int {
	var c [3]int
	for _, y := range d.Y {
		c[y]++
	}
	return c
}

// TrainingSet walks the finished matches in date order and builds each one's features
// from the matches played strictly before its kickoff, so no example sees its own
// result or any later one. With derived standings the table is computed from the
// earlier matches of the same season only. Matches where either side abstains are
// skipped, as are rows pairing a team with itself. An empty result returns
// ErrEmptyTrainingSet.
func (b *FeatureBuilder) TrainingSet(history []Match) (*Dataset, error) {
	finished := FinishedMatches(history)
	SortByDate(finished)

	ds := &Dataset{}
	skipped, malformed := 0, 0
	for i := range finished {
		m := finished[i]
		if m.HomeTeam == m.AwayTeam {
			malformed++
			continue
		}
		// matches sharing m's kickoff are excluded along with m itself
		cut := sort.Search(len(finished), func(j int) bool {
			return !finished[j].UTCTime.Before(m.UTCTime)
		})
		prior := finished[:cut]

		positions := b.positions
		if b.derived {
			positions = ComputeTable(sameSeason(prior, m.Season))
		}

		v, err := buildFeatures(prior, m.HomeTeam, m.AwayTeam, positions, b.stats)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				skipped++
				continue
			}
			return nil, fmt.Errorf("features for %s: %w", m.Key(), err)
		}
		ds.X = append(ds.X, v.Slice())
		ds.Y = append(ds.Y, LabelFor(m.Winner))
		ds.Fixtures = append(ds.Fixtures, m)
	}

	if malformed > 0 {
		b.log.Warn("ignored matches where a team plays itself:", malformed)
	}
	b.log.Debug("training set assembled", ds.Len(), "examples", skipped, "skipped")
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%d finished matches, none with enough history: %w", len(finished), ErrEmptyTrainingSet)
	}
	return ds, nil
}

func sameSeason(matches []Match, season int) []Match {
	var ret []Match
	for _, m := range matches {
		if m.Season == season {
			ret = append(ret, m)
		}
	}
	return ret
}
