package fixturecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoissonPMF(t *testing.T) {
	pmf := poissonPMF(1.5, 4)
	assert.InDelta(t, math.Exp(-1.5), pmf[0], 1e-12)
	assert.InDelta(t, 1.5*1.5/2*math.Exp(-1.5), pmf[2], 1e-12)
}

func TestScoreMatrixSumsToOne(t *testing.T) {
	m := scoreMatrix(1.4, 1.1, 9, -0.03)
	total := 0.0
	for _, row := range m {
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			total += p
		}
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	// a negative rho inflates draws at 0-0 and 1-1
	plain := scoreMatrix(1.4, 1.1, 9, 0)
	assert.Greater(t, m[0][0], plain[0][0])
	assert.Greater(t, m[1][1], plain[1][1])
}

func TestPoissonForecast(t *testing.T) {
	history := league(6)
	cfg := DefaultConfig()

	f, err := PoissonForecast(history, teamName(0), teamName(5), cfg.Stats, cfg.Baseline)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f.HomeWin+f.Draw+f.AwayWin, 1e-9)
	assert.Greater(t, f.HomeExpected, f.AwayExpected)
	assert.Greater(t, f.HomeWin, f.AwayWin)
	assert.GreaterOrEqual(t, f.LikelyHomeGoals, f.LikelyAwayGoals)
	assert.Equal(t, teamName(0), f.HomeTeam)

	_, err = PoissonForecast(history, teamName(0), "Unknown", cfg.Stats, cfg.Baseline)
	assert.ErrorIs(t, err, ErrInsufficientData)

	goalless := []Match{
		played(0, "A", "B", 0, 0),
		played(1, "B", "A", 0, 0),
		played(2, "A", "B", 0, 0),
	}
	_, err = PoissonForecast(goalless, "A", "B", cfg.Stats, cfg.Baseline)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPoissonForecastRejectsInvalidConfig(t *testing.T) {
	history := league(6)
	cfg := DefaultConfig()

	_, err := PoissonForecast(history, teamName(0), teamName(5), cfg.Stats, BaselineConfig{})
	assert.ErrorContains(t, err, "MaxGoals")

	stats := cfg.Stats
	stats.FormWeights = stats.FormWeights[:2]
	_, err = PoissonForecast(history, teamName(0), teamName(5), stats, cfg.Baseline)
	assert.ErrorContains(t, err, "form weight")
}
