package fixturecast

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Compile-time check to ensure Match implements Persistable interface
var _ Persistable = (*Match)(nil)

// Outcome is the result tag of a match as published upstream
type Outcome string

const (
	HomeTeam Outcome = "HOME_TEAM"
	AwayTeam Outcome = "AWAY_TEAM"
	Draw     Outcome = "DRAW"
)

// StatusFinished is the only status whose result the statistics engine trusts
const StatusFinished = "FINISHED"

// Match is a single league fixture, played or not. The core never mutates one.
type Match struct {
	ID        string    `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	Season    int       `json:"season" column:"season" dbtype:"INTEGER" index:"true"`
	Round     int       `json:"round" column:"round" dbtype:"INTEGER"`
	UTCTime   time.Time `json:"utcTime" column:"utcTime" dbtype:"DATETIME" index:"true"`
	Status    string    `json:"status" column:"status" dbtype:"TEXT"`
	HomeTeam  string    `json:"homeTeam" column:"homeTeam" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam  string    `json:"awayTeam" column:"awayTeam" dbtype:"TEXT NOT NULL" index:"true"`
	HomeGoals int       `json:"homeGoals" column:"homeGoals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals int       `json:"awayGoals" column:"awayGoals" dbtype:"INTEGER DEFAULT -1"`
	Winner    Outcome   `json:"winner" column:"winner" dbtype:"TEXT"`
}

// NewMatch returns an unplayed fixture. Goals default to -1 to distinguish them from a 0-0.
func NewMatch(season, round int, kickoff time.Time, home, away string) Match {
	m := Match{
		Season:    season,
		Round:     round,
		UTCTime:   kickoff.UTC(),
		Status:    "SCHEDULED",
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: -1,
		AwayGoals: -1,
	}
	m.ID = m.Key()
	return m
}

// Finished returns a copy of m with the final score recorded and the winner derived
func (m Match) Finished(homeGoals, awayGoals int) Match {
	m.Status = StatusFinished
	m.HomeGoals = homeGoals
	m.AwayGoals = awayGoals
	m.Winner = WinnerFromScore(homeGoals, awayGoals)
	return m
}

// WinnerFromScore derives the outcome tag from a final score
func WinnerFromScore(homeGoals, awayGoals int) Outcome {
	switch {
	case homeGoals > awayGoals:
		return HomeTeam
	case homeGoals < awayGoals:
		return AwayTeam
	default:
		return Draw
	}
}

// Key identifies a match by (home team, away team, kickoff date)
func (m *Match) Key() string {
	return fmt.Sprintf("%s|%s|%s", m.HomeTeam, m.AwayTeam, m.UTCTime.UTC().Format("2006-01-02"))
}

// IsFinished checks if the match is finished
func (m *Match) IsFinished() bool {
	return strings.EqualFold(m.Status, StatusFinished)
}

// Involves reports whether team played in the match
func (m *Match) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// PointsFor returns 3, 1 or 0 from team's perspective. A missing outcome tag counts as a loss.
func (m *Match) PointsFor(team string) int {
	switch {
	case m.Winner == Draw:
		return 1
	case m.Winner == HomeTeam && m.HomeTeam == team, m.Winner == AwayTeam && m.AwayTeam == team:
		return 3
	}
	return 0
}

// ResultFor returns W, D or L from team's perspective. A match with no decisive tag is a draw.
func (m *Match) ResultFor(team string) Result {
	home := m.HomeTeam == team
	switch m.Winner {
	case HomeTeam:
		if home {
			return Win
		}
		return Loss
	case AwayTeam:
		if home {
			return Loss
		}
		return Win
	default:
		return DrawResult
	}
}

// ScoreString renders the result as "2 - 1", or "v" when unplayed
func (m *Match) ScoreString() string {
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return "v"
	}
	return fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for matches
func (m *Match) GetTableName() string {
	return "matches"
}

// GetPrimaryKey returns the primary key as a map
func (m *Match) GetPrimaryKey() map[string]any {
	return map[string]any{"id": m.ID}
}

// BeforeSave derives the identity and winner when they are missing
func (m *Match) BeforeSave() error {
	if m.HomeTeam == "" || m.AwayTeam == "" {
		return fmt.Errorf("match must name both teams")
	}
	if m.ID == "" {
		m.ID = m.Key()
	}
	if m.IsFinished() && m.Winner == "" && m.HomeGoals >= 0 && m.AwayGoals >= 0 {
		m.Winner = WinnerFromScore(m.HomeGoals, m.AwayGoals)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Collection helpers
/////////////////////////////////////////////////////////////////////////

// FinishedMatches returns the finished matches of history in their original order
func FinishedMatches(history []Match) []Match {
	ret := make([]Match, 0, len(history))
	for _, m := range history {
		if m.IsFinished() {
			ret = append(ret, m)
		}
	}
	return ret
}

// SortByDate orders matches ascending by kickoff. Ties fall back to round and
// then team names so repeated runs agree.
func SortByDate(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matchBefore(&matches[i], &matches[j])
	})
}

func matchBefore(a, b *Match) bool {
	if !a.UTCTime.Equal(b.UTCTime) {
		return a.UTCTime.Before(b.UTCTime)
	}
	if a.Round != b.Round {
		return a.Round < b.Round
	}
	if a.HomeTeam != b.HomeTeam {
		return a.HomeTeam < b.HomeTeam
	}
	return a.AwayTeam < b.AwayTeam
}

// Teams returns the sorted, unique team names appearing in matches
func Teams(matches []Match) []string {
	seen := make(map[string]bool)
	var ret []string
	for _, m := range matches {
		for _, t := range []string{m.HomeTeam, m.AwayTeam} {
			if t != "" && !seen[t] {
				seen[t] = true
				ret = append(ret, t)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// Upcoming returns unfinished matches kicking off at or after now, earliest first
func Upcoming(history []Match, now time.Time) []Match {
	var ret []Match
	for _, m := range history {
		if !m.IsFinished() && !m.UTCTime.Before(now) {
			ret = append(ret, m)
		}
	}
	SortByDate(ret)
	return ret
}
