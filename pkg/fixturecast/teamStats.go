package fixturecast

import "fmt"

// TeamStatistics is a team's standing, scoring and form as of a given match history.
// It is derived on demand and never persisted.
type TeamStatistics struct {
	Team            string  `json:"team"`
	Position        int     `json:"position"`
	AvgGoalsFor     float64 `json:"avgGoalsFor"`
	AvgGoalsAgainst float64 `json:"avgGoalsAgainst"`
	RecentForm      float64 `json:"recentForm"` // weighted points per game, 0 to 3
	HomeWins        int     `json:"homeWins"`
	AwayWins        int     `json:"awayWins"`
	HomeDraws       int     `json:"homeDraws"`
	AwayDraws       int     `json:"awayDraws"`
	HomeLosses      int     `json:"homeLosses"`
	AwayLosses      int     `json:"awayLosses"`
	HomeGames       int     `json:"homeGames"`
	AwayGames       int     `json:"awayGames"`
	HomePointsPct   float64 `json:"homePointsPct"`
	AwayPointsPct   float64 `json:"awayPointsPct"`
}

// legTotals accumulates one leg (home or away games) of a team's record
type legTotals struct {
	games, wins, draws, losses int
	scored, conceded           int
}

func (l legTotals) meanScored() float64 {
	if l.games == 0 {
		return 0
	}
	return float64(l.scored) / float64(l.games)
}

func (l legTotals) meanConceded() float64 {
	if l.games == 0 {
		return 0
	}
	return float64(l.conceded) / float64(l.games)
}

func (l legTotals) pointsPct() float64 {
	if l.games == 0 {
		return 0
	}
	return float64(l.wins*3+l.draws) / float64(l.games*3)
}

// ComputeTeamStatistics derives a team's statistics from the finished matches in history.
//
// Recent form is the weighted mean of points over the latest cfg.Window games, most
// recent weighted highest. Goal averages and points percentages use every finished home
// and away game in history. The home leg mean and the away leg mean are averaged with
// equal weight whatever their sample sizes, and an empty leg contributes 0.
//
// Fewer than cfg.MinGames recent games returns ErrInsufficientData. A team missing
// from the lookup takes the lookup's midpoint, or cfg.DefaultPosition.
func ComputeTeamStatistics(history []Match, team string, positions PositionLookup, cfg StatsConfig) (TeamStatistics, error) {
	recent := teamMatchesDesc(history, team)
	if len(recent) > cfg.Window {
		recent = recent[:cfg.Window]
	}
	if len(recent) < cfg.MinGames {
		return TeamStatistics{}, fmt.Errorf("%s has %d recent games, need %d: %w", team, len(recent), cfg.MinGames, ErrInsufficientData)
	}

	var weighted, weights float64
	for i := range recent {
		w := cfg.FormWeights[i]
		weighted += w * float64(recent[i].PointsFor(team))
		weights += w
	}
	form := 0.0
	if weights > 0 {
		form = weighted / weights
	}

	var home, away legTotals
	for i := range history {
		m := &history[i]
		if !m.IsFinished() {
			continue
		}
		switch team {
		case m.HomeTeam:
			home.games++
			home.scored += m.HomeGoals
			home.conceded += m.AwayGoals
			switch m.Winner {
			case HomeTeam:
				home.wins++
			case AwayTeam:
				home.losses++
			case Draw:
				home.draws++
			}
		case m.AwayTeam:
			away.games++
			away.scored += m.AwayGoals
			away.conceded += m.HomeGoals
			switch m.Winner {
			case AwayTeam:
				away.wins++
			case HomeTeam:
				away.losses++
			case Draw:
				away.draws++
			}
		}
	}

	return TeamStatistics{
		Team:            team,
		Position:        resolvePosition(positions, team, cfg),
		AvgGoalsFor:     (home.meanScored() + away.meanScored()) / 2,
		AvgGoalsAgainst: (home.meanConceded() + away.meanConceded()) / 2,
		RecentForm:      form,
		HomeWins:        home.wins,
		AwayWins:        away.wins,
		HomeDraws:       home.draws,
		AwayDraws:       away.draws,
		HomeLosses:      home.losses,
		AwayLosses:      away.losses,
		HomeGames:       home.games,
		AwayGames:       away.games,
		HomePointsPct:   home.pointsPct(),
		AwayPointsPct:   away.pointsPct(),
	}, nil
}

// resolvePosition never fails: an absent team is placed mid-table
func resolvePosition(positions PositionLookup, team string, cfg StatsConfig) int {
	if positions != nil {
		if p, ok := positions.Position(team); ok {
			return p
		}
		if p := positions.DefaultPosition(); p > 0 {
			return p
		}
	}
	return cfg.DefaultPosition
}
