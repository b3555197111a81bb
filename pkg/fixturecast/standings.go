package fixturecast

import (
	"fmt"
	"sort"
)

// Compile-time check to ensure StandingsEntry implements Persistable interface
var _ Persistable = (*StandingsEntry)(nil)

// StandingsEntry is one row of a league table snapshot
type StandingsEntry struct {
	Season         int    `json:"season" column:"season" dbtype:"INTEGER" primary:"true"`
	Team           string `json:"team" column:"team" dbtype:"TEXT NOT NULL" primary:"true"`
	Position       int    `json:"position" column:"position" dbtype:"INTEGER"`
	Points         int    `json:"points" column:"points" dbtype:"INTEGER"`
	Played         int    `json:"playedGames" column:"played" dbtype:"INTEGER"`
	Won            int    `json:"won" column:"won" dbtype:"INTEGER"`
	Draw           int    `json:"draw" column:"draw" dbtype:"INTEGER"`
	Lost           int    `json:"lost" column:"lost" dbtype:"INTEGER"`
	GoalsFor       int    `json:"goalsFor" column:"goalsFor" dbtype:"INTEGER"`
	GoalsAgainst   int    `json:"goalsAgainst" column:"goalsAgainst" dbtype:"INTEGER"`
	GoalDifference int    `json:"goalDifference" column:"goalDifference" dbtype:"INTEGER"`
}

// GetTableName returns the table name for standings
func (s *StandingsEntry) GetTableName() string {
	return "standings"
}

// GetPrimaryKey returns the compound (season, team) key
func (s *StandingsEntry) GetPrimaryKey() map[string]any {
	return map[string]any{"season": s.Season, "team": s.Team}
}

// BeforeSave keeps the goal difference consistent with the goal columns
func (s *StandingsEntry) BeforeSave() error {
	if s.Team == "" {
		return fmt.Errorf("standings entry must name a team")
	}
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	return nil
}

// PositionLookup resolves a team's league position by name
type PositionLookup interface {
	// Position returns the team's position and whether it was found
	Position(team string) (int, bool)
	// DefaultPosition is the neutral position used for an absent team, 0 if unknown
	DefaultPosition() int
}

// Standings is a league table snapshot, one entry per team
type Standings []StandingsEntry

var _ PositionLookup = Standings(nil)

// Position implements PositionLookup
func (s Standings) Position(team string) (int, bool) {
	for _, e := range s {
		if e.Team == team {
			return e.Position, true
		}
	}
	return 0, false
}

// DefaultPosition is the table midpoint, or 0 for an empty snapshot
func (s Standings) DefaultPosition() int {
	if len(s) == 0 {
		return 0
	}
	return max(len(s)/2, 1)
}

// Validate checks that positions are unique and positive and teams appear once
func (s Standings) Validate() error {
	positions := make(map[int]string, len(s))
	teams := make(map[string]bool, len(s))
	for _, e := range s {
		if e.Position < 1 {
			return fmt.Errorf("team %s has invalid position %d", e.Team, e.Position)
		}
		if other, ok := positions[e.Position]; ok {
			return fmt.Errorf("position %d held by both %s and %s", e.Position, other, e.Team)
		}
		if teams[e.Team] {
			return fmt.Errorf("team %s appears more than once", e.Team)
		}
		positions[e.Position] = e.Team
		teams[e.Team] = true
	}
	return nil
}

// Sorted returns a copy ordered by position
func (s Standings) Sorted() Standings {
	ret := append(Standings(nil), s...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Position < ret[j].Position })
	return ret
}
