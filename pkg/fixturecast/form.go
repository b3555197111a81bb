package fixturecast

import (
	"sort"
	"strings"
)

// Result is a single game outcome from one team's point of view
type Result string

const (
	Win        Result = "W"
	DrawResult Result = "D"
	Loss       Result = "L"
)

// teamMatchesDesc returns the finished matches involving team, most recent first
func teamMatchesDesc(history []Match, team string) []Match {
	var ret []Match
	for _, m := range history {
		if m.IsFinished() && m.Involves(team) {
			ret = append(ret, m)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return matchBefore(&ret[j], &ret[i])
	})
	return ret
}

// RecentForm returns up to n results for team, most recent first
func RecentForm(history []Match, team string, n int) []Result {
	games := teamMatchesDesc(history, team)
	if len(games) > n {
		games = games[:n]
	}
	ret := make([]Result, 0, len(games))
	for i := range games {
		ret = append(ret, games[i].ResultFor(team))
	}
	return ret
}

// FormString joins results as e.g. "WWDLW"
func FormString(results []Result) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(string(r))
	}
	return sb.String()
}

// HeadToHead returns up to n finished meetings of a and b at either venue, most recent first
func HeadToHead(history []Match, a, b string, n int) []Match {
	var ret []Match
	for _, m := range teamMatchesDesc(history, a) {
		if m.Involves(b) {
			ret = append(ret, m)
			if len(ret) == n {
				break
			}
		}
	}
	return ret
}

// LeagueSummary aggregates every finished match in a history
type LeagueSummary struct {
	Games        int     `json:"games"`
	Goals        int     `json:"goals"`
	GoalsPerGame float64 `json:"goalsPerGame"`
	HomeWinRate  float64 `json:"homeWinRate"`
	DrawRate     float64 `json:"drawRate"`
	AwayWinRate  float64 `json:"awayWinRate"`
}

// Summarise computes league wide scoring and outcome rates
func Summarise(history []Match) LeagueSummary {
	var s LeagueSummary
	var home, draw, away int
	for _, m := range history {
		if !m.IsFinished() {
			continue
		}
		s.Games++
		s.Goals += max(m.HomeGoals, 0) + max(m.AwayGoals, 0)
		switch m.Winner {
		case HomeTeam:
			home++
		case Draw:
			draw++
		case AwayTeam:
			away++
		}
	}
	if s.Games == 0 {
		return s
	}
	g := float64(s.Games)
	s.GoalsPerGame = float64(s.Goals) / g
	s.HomeWinRate = float64(home) / g
	s.DrawRate = float64(draw) / g
	s.AwayWinRate = float64(away) / g
	return s
}
