package fixturecast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/richard-senior/fixturecast/pkg/transport"
)

// Fetcher retrieves a document; *transport.Client satisfies it
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

var _ Fetcher = (*transport.Client)(nil)

// FootballDataSource reads matches and standings from the football-data.org v4 API
type FootballDataSource struct {
	BaseURL string
	APIKey  string
	fetch   Fetcher
	log     Logger
}

// NewFootballDataSource returns a source for cfg.BaseURL authenticated with cfg.APIKey
func NewFootballDataSource(cfg SourceConfig, fetch Fetcher, log Logger) *FootballDataSource {
	return &FootballDataSource{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:  cfg.APIKey,
		fetch:   fetch,
		log:     orDiscard(log),
	}
}

type fdTeam struct {
	Name string `json:"name"`
}

type fdMatch struct {
	Matchday int    `json:"matchday"`
	UTCDate  string `json:"utcDate"`
	Status   string `json:"status"`
	HomeTeam fdTeam `json:"homeTeam"`
	AwayTeam fdTeam `json:"awayTeam"`
	Score    struct {
		Winner   *string `json:"winner"`
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

type fdStandings struct {
	Standings []struct {
		Type  string `json:"type"`
		Table []struct {
			Position       int    `json:"position"`
			Team           fdTeam `json:"team"`
			PlayedGames    int    `json:"playedGames"`
			Won            int    `json:"won"`
			Draw           int    `json:"draw"`
			Lost           int    `json:"lost"`
			Points         int    `json:"points"`
			GoalsFor       int    `json:"goalsFor"`
			GoalsAgainst   int    `json:"goalsAgainst"`
			GoalDifference int    `json:"goalDifference"`
		} `json:"table"`
	} `json:"standings"`
}

func (f *FootballDataSource) get(ctx context.Context, path string, season int) ([]byte, error) {
	url := fmt.Sprintf("%s/%s?season=%d", f.BaseURL, path, season)
	body, err := f.fetch.Get(ctx, url, map[string]string{"X-Auth-Token": f.APIKey})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamData, err)
	}
	return body, nil
}

// Matches returns every fixture of a competition season, played or not
func (f *FootballDataSource) Matches(ctx context.Context, competition string, season int) ([]Match, error) {
	body, err := f.get(ctx, "competitions/"+competition+"/matches", season)
	if err != nil {
		return nil, err
	}
	matches, err := ParseFootballDataMatches(body, season)
	if err != nil {
		return nil, err
	}
	f.log.Info("Fetched matches", len(matches), "for competition", competition, "season", season)
	return matches, nil
}

// Standings returns the total league table of a competition season
func (f *FootballDataSource) Standings(ctx context.Context, competition string, season int) (Standings, error) {
	body, err := f.get(ctx, "competitions/"+competition+"/standings", season)
	if err != nil {
		return nil, err
	}
	return ParseFootballDataStandings(body, season)
}

// ParseFootballDataMatches decodes a /matches payload. A payload without a matches
// array or with an unreadable kickoff is upstream data error.
func ParseFootballDataMatches(body []byte, season int) ([]Match, error) {
	var payload struct {
		Matches *[]fdMatch `json:"matches"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, upstreamError("cannot decode matches: %v", err)
	}
	if payload.Matches == nil {
		return nil, upstreamError("payload has no matches")
	}

	ret := make([]Match, 0, len(*payload.Matches))
	for i, fm := range *payload.Matches {
		kickoff, err := time.Parse(time.RFC3339, fm.UTCDate)
		if err != nil {
			return nil, upstreamError("match %d has bad utcDate %q", i, fm.UTCDate)
		}
		if fm.HomeTeam.Name == "" || fm.AwayTeam.Name == "" {
			return nil, upstreamError("match %d is missing a team name", i)
		}
		m := NewMatch(season, fm.Matchday, kickoff, fm.HomeTeam.Name, fm.AwayTeam.Name)
		m.Status = fm.Status
		if fm.Score.FullTime.Home != nil && fm.Score.FullTime.Away != nil {
			m.HomeGoals = *fm.Score.FullTime.Home
			m.AwayGoals = *fm.Score.FullTime.Away
		}
		if fm.Score.Winner != nil {
			m.Winner = Outcome(*fm.Score.Winner)
		}
		ret = append(ret, m)
	}
	return ret, nil
}

// ParseFootballDataStandings decodes a /standings payload, taking the TOTAL table
// (or the first one when none is labelled)
func ParseFootballDataStandings(body []byte, season int) (Standings, error) {
	var payload fdStandings
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, upstreamError("cannot decode standings: %v", err)
	}
	if len(payload.Standings) == 0 {
		return nil, upstreamError("payload has no standings")
	}
	chosen := 0
	for i, s := range payload.Standings {
		if s.Type == "TOTAL" {
			chosen = i
			break
		}
	}

	var table Standings
	for _, row := range payload.Standings[chosen].Table {
		table = append(table, StandingsEntry{
			Season:         season,
			Team:           row.Team.Name,
			Position:       row.Position,
			Points:         row.Points,
			Played:         row.PlayedGames,
			Won:            row.Won,
			Draw:           row.Draw,
			Lost:           row.Lost,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
		})
	}
	if err := table.Validate(); err != nil {
		return nil, upstreamError("standings: %v", err)
	}
	return table, nil
}
