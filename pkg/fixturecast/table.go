package fixturecast

import "sort"

// ComputeTable builds a league table from the finished matches given.
// Teams are ordered by points, then goal difference, then goals scored, then name.
func ComputeTable(matches []Match) Standings {
	rows := make(map[string]*StandingsEntry)
	entry := func(team string, season int) *StandingsEntry {
		e, ok := rows[team]
		if !ok {
			e = &StandingsEntry{Team: team, Season: season}
			rows[team] = e
		}
		return e
	}

	for i := range matches {
		m := &matches[i]
		if !m.IsFinished() || m.HomeGoals < 0 || m.AwayGoals < 0 {
			continue
		}
		home, away := entry(m.HomeTeam, m.Season), entry(m.AwayTeam, m.Season)
		home.Played++
		away.Played++
		home.GoalsFor += m.HomeGoals
		home.GoalsAgainst += m.AwayGoals
		away.GoalsFor += m.AwayGoals
		away.GoalsAgainst += m.HomeGoals

		switch WinnerFromScore(m.HomeGoals, m.AwayGoals) {
		case HomeTeam:
			home.Won++
			home.Points += 3
			away.Lost++
		case AwayTeam:
			away.Won++
			away.Points += 3
			home.Lost++
		default:
			home.Draw++
			away.Draw++
			home.Points++
			away.Points++
		}
	}

	table := make(Standings, 0, len(rows))
	for _, e := range rows {
		e.GoalDifference = e.GoalsFor - e.GoalsAgainst
		table = append(table, *e)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
	for i := range table {
		table[i].Position = i + 1
	}
	return table
}
