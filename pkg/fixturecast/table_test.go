package fixturecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTable(t *testing.T) {
	matches := []Match{
		played(0, "A", "B", 2, 0),
		played(1, "C", "A", 1, 1),
		played(2, "B", "C", 3, 0),
		played(3, "D", "B", 0, 0),
		NewMatch(2023, 5, opening.AddDate(0, 0, 4), "A", "D"),
	}

	table := ComputeTable(matches)
	require.Len(t, table, 4)
	require.NoError(t, table.Validate())

	// A 4pts +2, B 4pts +1, C 1pt -3 gf 1, D 1pt 0 gf 0
	assert.Equal(t, []string{"A", "B", "D", "C"}, []string{table[0].Team, table[1].Team, table[2].Team, table[3].Team})
	a := table[0]
	assert.Equal(t, StandingsEntry{Season: 2023, Team: "A", Position: 1, Points: 4, Played: 2, Won: 1, Draw: 1, GoalsFor: 3, GoalsAgainst: 1, GoalDifference: 2}, a)

	pos, ok := table.Position("D")
	assert.True(t, ok)
	assert.Equal(t, 3, pos)
	_, ok = table.Position("E")
	assert.False(t, ok)
	assert.Equal(t, 2, table.DefaultPosition())
}

func TestStandingsValidate(t *testing.T) {
	assert.NoError(t, Standings{}.Validate())
	assert.Error(t, Standings{{Team: "A", Position: 1}, {Team: "B", Position: 1}}.Validate())
	assert.Error(t, Standings{{Team: "A", Position: 1}, {Team: "A", Position: 2}}.Validate())
	assert.Error(t, Standings{{Team: "A", Position: 0}}.Validate())
	assert.Equal(t, 1, Standings{{Team: "A", Position: 1}}.DefaultPosition())
}

func TestMatchHelpers(t *testing.T) {
	m := NewMatch(2023, 1, opening, "A", "B")
	assert.Equal(t, -1, m.HomeGoals)
	assert.False(t, m.IsFinished())
	assert.Equal(t, "v", m.ScoreString())
	assert.Equal(t, "A|B|2023-08-12", m.Key())

	f := m.Finished(0, 2)
	assert.True(t, f.IsFinished())
	assert.Equal(t, AwayTeam, f.Winner)
	assert.Equal(t, "0 - 2", f.ScoreString())
	assert.Equal(t, 0, f.PointsFor("A"))
	assert.Equal(t, 3, f.PointsFor("B"))
	assert.Equal(t, Loss, f.ResultFor("A"))
	assert.Equal(t, Win, f.ResultFor("B"))

	d := m.Finished(1, 1)
	assert.Equal(t, 1, d.PointsFor("A"))
	assert.Equal(t, DrawResult, d.ResultFor("B"))

	f.Status = "finished"
	assert.True(t, f.IsFinished())
}

func TestUpcomingAndTeams(t *testing.T) {
	now := opening.AddDate(0, 0, 10)
	history := []Match{
		played(0, "A", "B", 1, 0),
		NewMatch(2023, 3, now.Add(48*time.Hour), "C", "A"),
		NewMatch(2023, 2, now.Add(24*time.Hour), "B", "C"),
		NewMatch(2023, 1, now.Add(-time.Hour), "D", "A"),
	}
	up := Upcoming(history, now)
	require.Len(t, up, 2)
	assert.Equal(t, "B", up[0].HomeTeam)
	assert.Equal(t, "C", up[1].HomeTeam)

	assert.Equal(t, []string{"A", "B", "C", "D"}, Teams(history))
}

func TestRecentFormAndHeadToHead(t *testing.T) {
	history := []Match{
		played(0, "A", "B", 2, 0),
		played(1, "C", "A", 0, 0),
		played(2, "B", "A", 2, 1),
		played(3, "A", "C", 0, 1),
		played(4, "A", "B", 3, 3),
		NewMatch(2023, 6, opening.AddDate(0, 0, 5), "B", "A"),
	}

	assert.Equal(t, "DLLDW", FormString(RecentForm(history, "A", 5)))
	assert.Equal(t, "DL", FormString(RecentForm(history, "A", 2)))
	assert.Empty(t, RecentForm(history, "Z", 5))

	h2h := HeadToHead(history, "A", "B", 2)
	require.Len(t, h2h, 2)
	assert.Equal(t, "3 - 3", h2h[0].ScoreString())
	assert.Equal(t, "2 - 1", h2h[1].ScoreString())
}

func TestSummarise(t *testing.T) {
	history := []Match{
		played(0, "A", "B", 2, 0),
		played(1, "C", "A", 1, 1),
		played(2, "B", "C", 0, 3),
		played(3, "D", "B", 1, 0),
		NewMatch(2023, 5, opening.AddDate(0, 0, 4), "A", "D"),
	}
	s := Summarise(history)
	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 8, s.Goals)
	assert.InDelta(t, 2.0, s.GoalsPerGame, 1e-9)
	assert.InDelta(t, 0.5, s.HomeWinRate, 1e-9)
	assert.InDelta(t, 0.25, s.DrawRate, 1e-9)
	assert.InDelta(t, 0.25, s.AwayWinRate, 1e-9)

	assert.Equal(t, LeagueSummary{}, Summarise(nil))
}

func TestScaler(t *testing.T) {
	x := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s := &Scaler{}

	_, err := s.Transform(x)
	assert.ErrorIs(t, err, ErrScalerNotFitted)

	out, err := s.FitTransform(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5}, s.Mean)
	assert.InDelta(t, 1.632993, s.Scale[0], 1e-6)
	assert.Equal(t, 1.0, s.Scale[1])
	assert.InDelta(t, -1.224745, out[0][0], 1e-6)
	assert.InDelta(t, 0.0, out[1][0], 1e-9)
	assert.Equal(t, 0.0, out[2][1])

	// transform reuses the fitted parameters
	again, err := s.Transform([][]float64{{3, 7}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, again[0][0], 1e-9)
	assert.InDelta(t, 2.0, again[0][1], 1e-9)

	_, err = s.Transform([][]float64{{1}})
	assert.Error(t, err)
	assert.ErrorIs(t, s.Fit(nil), ErrInsufficientData)
}
