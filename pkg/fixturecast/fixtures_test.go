package fixturecast

import (
	"fmt"
	"time"
)

var opening = time.Date(2023, 8, 12, 15, 0, 0, 0, time.UTC)

// played returns a finished match kicking off `day` days after the opening weekend
func played(day int, home, away string, hg, ag int) Match {
	return NewMatch(2023, day+1, opening.AddDate(0, 0, day), home, away).Finished(hg, ag)
}

// league plays every ordered pair of n teams once, one match per day. Stronger
// (lower numbered) teams win, except every fifth match which is drawn.
func league(n int) []Match {
	var ret []Match
	day := 0
	for h := 0; h < n; h++ {
		for a := 0; a < n; a++ {
			if h == a {
				continue
			}
			home, away := teamName(h), teamName(a)
			switch {
			case day%5 == 0:
				ret = append(ret, played(day, home, away, 1, 1))
			case h < a:
				ret = append(ret, played(day, home, away, 2, 0))
			default:
				ret = append(ret, played(day, home, away, 0, 1))
			}
			day++
		}
	}
	return ret
}

func teamName(i int) string {
	return fmt.Sprintf("Team %c", 'A'+i)
}

func quickTrainConfig() TrainConfig {
	cfg := DefaultTrainConfig()
	cfg.Forest.Trees = 15
	cfg.Forest.Workers = 2
	cfg.CVPasses = 2
	return cfg
}

// constantRows builds n feature rows whose first column encodes the label
func constantRows(labels []int) *Dataset {
	ds := &Dataset{}
	for i, y := range labels {
		row := make([]float64, FeatureCount)
		row[0] = float64(y * 10)
		row[1] = float64(i)
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, y)
	}
	return ds
}
