package fixturecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentFormWeightsLatestGameHighest(t *testing.T) {
	// newest first A takes 3, 0, 3, 1, 3 points
	history := []Match{
		played(0, "A", "B", 2, 0),
		played(7, "B", "A", 1, 1),
		played(14, "A", "B", 3, 1),
		played(21, "B", "A", 1, 0),
		played(28, "A", "B", 2, 1),
	}

	s, err := ComputeTeamStatistics(history, "A", nil, DefaultStatsConfig())
	require.NoError(t, err)
	assert.InDelta(t, 5.8/3.0, s.RecentForm, 1e-9)
}

func TestRecentFormChronologicalScenario(t *testing.T) {
	history := []Match{
		played(0, "A", "B", 2, 0),
		played(7, "B", "A", 1, 0),
		played(14, "A", "B", 3, 1),
		played(21, "B", "A", 1, 1),
		played(28, "A", "B", 2, 1),
	}

	s, err := ComputeTeamStatistics(history, "A", nil, DefaultStatsConfig())
	require.NoError(t, err)
	// newest first: 3, 1, 3, 0, 3
	assert.InDelta(t, 6.2/3.0, s.RecentForm, 1e-9)
	assert.Equal(t, 3, s.HomeWins)
	assert.Equal(t, 0, s.AwayWins)
	assert.Equal(t, 1, s.AwayDraws)
	assert.Equal(t, 1, s.AwayLosses)
	assert.InDelta(t, 1.0, s.HomePointsPct, 1e-9)
	assert.InDelta(t, 1.0/6.0, s.AwayPointsPct, 1e-9)
}

func TestAbstainsBelowThreeGames(t *testing.T) {
	cfg := DefaultStatsConfig()
	history := []Match{
		played(0, "A", "B", 1, 0),
		played(7, "C", "A", 2, 2),
	}

	_, err := ComputeTeamStatistics(history, "A", nil, cfg)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.True(t, IsAbstention(err))

	history = append(history, played(14, "A", "D", 0, 3))
	s, err := ComputeTeamStatistics(history, "A", nil, cfg)
	require.NoError(t, err)
	// weights 1.0, 0.8, 0.6 over points 0, 1, 3
	assert.InDelta(t, (0+0.8+1.8)/2.4, s.RecentForm, 1e-9)
}

func TestUnfinishedMatchesAreIgnored(t *testing.T) {
	history := []Match{
		played(0, "A", "B", 1, 0),
		played(7, "A", "C", 1, 0),
		NewMatch(2023, 3, opening.AddDate(0, 0, 14), "A", "D"),
	}
	_, err := ComputeTeamStatistics(history, "A", nil, DefaultStatsConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestGoalAveragesWeighLegsEqually(t *testing.T) {
	// one home game, three away games
	history := []Match{
		played(0, "A", "B", 4, 0),
		played(7, "B", "A", 1, 0),
		played(14, "C", "A", 1, 0),
		played(21, "D", "A", 1, 0),
	}

	s, err := ComputeTeamStatistics(history, "A", nil, DefaultStatsConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, s.HomeGames)
	assert.Equal(t, 3, s.AwayGames)
	assert.InDelta(t, (4.0+0.0)/2, s.AvgGoalsFor, 1e-9)
	assert.InDelta(t, (0.0+1.0)/2, s.AvgGoalsAgainst, 1e-9)
}

func TestEmptyLegContributesZero(t *testing.T) {
	history := []Match{
		played(0, "A", "B", 2, 1),
		played(7, "A", "C", 2, 1),
		played(14, "A", "D", 2, 1),
	}
	s, err := ComputeTeamStatistics(history, "A", nil, DefaultStatsConfig())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.AvgGoalsFor, 1e-9)
	assert.InDelta(t, 0.5, s.AvgGoalsAgainst, 1e-9)
	assert.Zero(t, s.AwayPointsPct)
	assert.InDelta(t, 1.0, s.HomePointsPct, 1e-9)
}

func TestPositionLookupAndDefaults(t *testing.T) {
	history := league(4)
	table := Standings{
		{Team: teamName(0), Position: 1},
		{Team: teamName(1), Position: 2},
		{Team: "Elsewhere", Position: 3},
		{Team: "Nowhere", Position: 4},
	}
	cfg := DefaultStatsConfig()

	s, err := ComputeTeamStatistics(history, teamName(1), table, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Position)

	// absent from the table: its midpoint
	s, err = ComputeTeamStatistics(history, teamName(3), table, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Position)

	// no table at all: the configured default
	s, err = ComputeTeamStatistics(history, teamName(3), nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Position)

	s, err = ComputeTeamStatistics(history, teamName(3), Standings{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Position)
}

func TestStatsConfigValidate(t *testing.T) {
	cfg := DefaultStatsConfig()
	assert.NoError(t, cfg.Validate())

	cfg.FormWeights = cfg.FormWeights[:3]
	assert.Error(t, cfg.Validate())

	cfg = DefaultStatsConfig()
	cfg.MinGames = 6
	assert.Error(t, cfg.Validate())
}
