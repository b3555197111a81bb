package fixturecast

import (
	"fmt"
	"math"
)

/////////////////////////////////////////////////////////////////////////
////// Poisson scoreline baseline
/////////////////////////////////////////////////////////////////////////

// ScoreForecast is the scoreline view of a fixture: goal expectancies, the most
// likely score and the outcome probabilities implied by the score matrix
type ScoreForecast struct {
	Probabilities
	HomeExpected    float64 `json:"homeExpected"`
	AwayExpected    float64 `json:"awayExpected"`
	LikelyHomeGoals int     `json:"likelyHomeGoals"`
	LikelyAwayGoals int     `json:"likelyAwayGoals"`
	Over2p5         float64 `json:"over2p5"`
}

// minExpectancy keeps a team that has never scored from collapsing the matrix onto 0 goals
const minExpectancy = 0.05

// PoissonForecast scores home vs away with independent Poisson goal counts. Each
// side's expectancy is its attack rate times the opponent's defensive rate over the
// league's goals per team per game. Low scores get the Dixon-Coles correction.
// It abstains exactly when the feature builder would.
func PoissonForecast(history []Match, home, away string, stats StatsConfig, cfg BaselineConfig) (ScoreForecast, error) {
	if err := cfg.Validate(); err != nil {
		return ScoreForecast{}, fmt.Errorf("invalid baseline config: %w", err)
	}
	if err := stats.Validate(); err != nil {
		return ScoreForecast{}, fmt.Errorf("invalid stats config: %w", err)
	}
	if home == away {
		return ScoreForecast{}, fmt.Errorf("a team cannot play itself: %s", home)
	}
	hs, err := ComputeTeamStatistics(history, home, nil, stats)
	if err != nil {
		return ScoreForecast{}, fmt.Errorf("home side: %w", err)
	}
	as, err := ComputeTeamStatistics(history, away, nil, stats)
	if err != nil {
		return ScoreForecast{}, fmt.Errorf("away side: %w", err)
	}
	perTeam := Summarise(history).GoalsPerGame / 2
	if perTeam == 0 {
		return ScoreForecast{}, fmt.Errorf("no goals in history: %w", ErrInsufficientData)
	}

	f := ScoreForecast{
		HomeExpected: math.Max(hs.AvgGoalsFor*as.AvgGoalsAgainst/perTeam, minExpectancy),
		AwayExpected: math.Max(as.AvgGoalsFor*hs.AvgGoalsAgainst/perTeam, minExpectancy),
	}
	f.HomeTeam, f.AwayTeam = home, away

	matrix := scoreMatrix(f.HomeExpected, f.AwayExpected, cfg.MaxGoals, cfg.Rho)
	best := -1.0
	for h, row := range matrix {
		for a, p := range row {
			switch {
			case h > a:
				f.HomeWin += p
			case h < a:
				f.AwayWin += p
			default:
				f.Draw += p
			}
			if h+a > 2 {
				f.Over2p5 += p
			}
			if p > best {
				best = p
				f.LikelyHomeGoals, f.LikelyAwayGoals = h, a
			}
		}
	}
	return f, nil
}

// scoreMatrix returns P(home scores h, away scores a) for h, a < n, renormalised
// to sum to 1 after the truncation and the low score correction
func scoreMatrix(homeExpected, awayExpected float64, n int, rho float64) [][]float64 {
	hp, ap := poissonPMF(homeExpected, n), poissonPMF(awayExpected, n)
	matrix := make([][]float64, n)
	total := 0.0
	for h := range matrix {
		matrix[h] = make([]float64, n)
		for a := range matrix[h] {
			matrix[h][a] = hp[h] * ap[a] * tau(h, a, homeExpected, awayExpected, rho)
			total += matrix[h][a]
		}
	}
	for h := range matrix {
		for a := range matrix[h] {
			matrix[h][a] /= total
		}
	}
	return matrix
}

// poissonPMF returns P(X = k) for k < n
func poissonPMF(lambda float64, n int) []float64 {
	pmf := make([]float64, n)
	pmf[0] = math.Exp(-lambda)
	for k := 1; k < n; k++ {
		pmf[k] = pmf[k-1] * lambda / float64(k)
	}
	return pmf
}

// tau is the Dixon-Coles dependence factor; only 0-0, 1-0, 0-1 and 1-1 are adjusted
func tau(h, a int, lambda1, lambda2, rho float64) float64 {
	switch {
	case h == 0 && a == 0:
		return 1 - lambda1*lambda2*rho
	case h == 0 && a == 1:
		return 1 + lambda1*rho
	case h == 1 && a == 0:
		return 1 + lambda2*rho
	case h == 1 && a == 1:
		return 1 - rho
	}
	return 1
}
