package fixturecast

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/fixturecast/pkg/util"
)

// FotmobSource scrapes league fixtures from fotmob league overview pages
type FotmobSource struct {
	BaseURL string
	fetch   Fetcher
	log     Logger
}

// NewFotmobSource returns a scraper rooted at cfg.FotmobURL
func NewFotmobSource(cfg SourceConfig, fetch Fetcher, log Logger) *FotmobSource {
	return &FotmobSource{
		BaseURL: strings.TrimRight(cfg.FotmobURL, "/"),
		fetch:   fetch,
		log:     orDiscard(log),
	}
}

var fotmobSeason = regexp.MustCompile(`^(\d{4})/\d{4}$`)

// Matches fetches a league season ("yyyy/yyyy") and extracts its fixtures
func (f *FotmobSource) Matches(ctx context.Context, leagueID int, season string) ([]Match, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("must supply a valid leagueID")
	}
	parts := fotmobSeason.FindStringSubmatch(season)
	if parts == nil {
		return nil, fmt.Errorf("season must be in the format 'yyyy/yyyy'")
	}
	firstYear, _ := util.GetAsInteger(parts[1])

	url := fmt.Sprintf("%s/en-GB/leagues/%d/overview?season=%s", f.BaseURL, leagueID, season)
	f.log.Info("Loading fotmob data for league", leagueID, "season", season)
	html, err := f.fetch.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch data from Fotmob: %w", ErrUpstreamData, err)
	}
	return ParseFotmobPage(html, firstYear)
}

// ParseFotmobPage pulls the __NEXT_DATA__ JSON out of a league page and converts
// props.pageProps.matches.allMatches into matches of the given season
func ParseFotmobPage(html []byte, season int) ([]Match, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, upstreamError("error parsing HTML: %v", err)
	}
	scriptData := doc.Find("script#__NEXT_DATA__").First().Text()
	if scriptData == "" {
		return nil, upstreamError("could not find __NEXT_DATA__ script tag")
	}

	var data struct {
		Props struct {
			PageProps struct {
				Matches struct {
					AllMatches []map[string]any `json:"allMatches"`
				} `json:"matches"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(scriptData), &data); err != nil {
		return nil, upstreamError("error parsing JSON data: %v", err)
	}

	var matches []Match
	for i, raw := range data.Props.PageProps.Matches.AllMatches {
		m, err := fotmobMatch(raw, season)
		if err != nil {
			return nil, upstreamError("match %d: %v", i, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// fotmobMatch converts one allMatches entry. Fotmob sends round as a string or a number.
func fotmobMatch(data map[string]any, season int) (Match, error) {
	home, _ := data["home"].(map[string]any)
	away, _ := data["away"].(map[string]any)
	homeName, _ := home["name"].(string)
	awayName, _ := away["name"].(string)
	if homeName == "" || awayName == "" {
		return Match{}, fmt.Errorf("missing team names")
	}

	status, _ := data["status"].(map[string]any)
	utc, _ := status["utcTime"].(string)
	kickoff, err := time.Parse(time.RFC3339, utc)
	if err != nil {
		return Match{}, fmt.Errorf("bad utcTime %q", utc)
	}

	round := 0
	if r, ok := data["round"]; ok && r != nil {
		if round, err = util.GetAsInteger(r); err != nil {
			return Match{}, fmt.Errorf("bad round: %w", err)
		}
	}

	m := NewMatch(season, round, kickoff, homeName, awayName)
	if cancelled, _ := status["cancelled"].(bool); cancelled {
		m.Status = "CANCELLED"
		return m, nil
	}
	if finished, _ := status["finished"].(bool); finished {
		scoreStr, _ := status["scoreStr"].(string)
		h, a, err := parseScoreString(scoreStr)
		if err != nil {
			return Match{}, err
		}
		return m.Finished(h, a), nil
	}
	if started, _ := status["started"].(bool); started {
		m.Status = "IN_PLAY"
	}
	return m, nil
}

// parseScoreString extracts goals from score string like "2 - 1", "2-1" or "2:1"
func parseScoreString(scoreStr string) (int, int, error) {
	s := strings.ReplaceAll(scoreStr, " ", "")
	s = strings.ReplaceAll(s, ":", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unreadable score %q", scoreStr)
	}
	home, err := util.GetAsInteger(parts[0])
	if err != nil {
		return 0, 0, err
	}
	away, err := util.GetAsInteger(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return home, away, nil
}
