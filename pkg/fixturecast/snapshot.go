package fixturecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/fixturecast/pkg/util"
)

/////////////////////////////////////////////////////////////////////////
////// CSV snapshots of the repository
/////////////////////////////////////////////////////////////////////////

var matchHeader = []string{"season", "round", "utc_time", "status", "home_team", "away_team", "home_goals", "away_goals", "winner"}

var standingsHeader = []string{"season", "position", "team", "points", "played", "won", "draw", "lost", "goals_for", "goals_against", "goal_difference"}

// WriteMatchesCSV writes matches with a header row
func WriteMatchesCSV(w io.Writer, matches []Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(matchHeader); err != nil {
		return err
	}
	for _, m := range matches {
		row := []string{
			itoa(m.Season), itoa(m.Round), m.UTCTime.UTC().Format(time.RFC3339), m.Status,
			m.HomeTeam, m.AwayTeam, itoa(m.HomeGoals), itoa(m.AwayGoals), string(m.Winner),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMatchesCSV parses a file written by WriteMatchesCSV. Columns are located by
// header name so their order may vary.
func ReadMatchesCSV(r io.Reader) ([]Match, error) {
	rows, err := readCSV(r, matchHeader)
	if err != nil {
		return nil, err
	}
	ret := make([]Match, 0, len(rows))
	for i, row := range rows {
		kickoff, err := time.Parse(time.RFC3339, row["utc_time"])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad utc_time: %w", i+2, err)
		}
		ints, err := atois(row, "season", "round", "home_goals", "away_goals")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		m := NewMatch(ints[0], ints[1], kickoff, row["home_team"], row["away_team"])
		m.Status = row["status"]
		m.HomeGoals, m.AwayGoals = ints[2], ints[3]
		m.Winner = Outcome(row["winner"])
		ret = append(ret, m)
	}
	return ret, nil
}

// WriteStandingsCSV writes a table snapshot with a header row
func WriteStandingsCSV(w io.Writer, table Standings) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(standingsHeader); err != nil {
		return err
	}
	for _, e := range table.Sorted() {
		row := []string{
			itoa(e.Season), itoa(e.Position), e.Team, itoa(e.Points), itoa(e.Played), itoa(e.Won),
			itoa(e.Draw), itoa(e.Lost), itoa(e.GoalsFor), itoa(e.GoalsAgainst), itoa(e.GoalDifference),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadStandingsCSV parses a file written by WriteStandingsCSV
func ReadStandingsCSV(r io.Reader) (Standings, error) {
	rows, err := readCSV(r, standingsHeader)
	if err != nil {
		return nil, err
	}
	var table Standings
	for i, row := range rows {
		ints, err := atois(row, "season", "position", "points", "played", "won", "draw", "lost", "goals_for", "goals_against", "goal_difference")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		table = append(table, StandingsEntry{
			Season: ints[0], Position: ints[1], Team: row["team"], Points: ints[2], Played: ints[3],
			Won: ints[4], Draw: ints[5], Lost: ints[6], GoalsFor: ints[7], GoalsAgainst: ints[8], GoalDifference: ints[9],
		})
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Snapshot bundles the repository files kept in one directory
type Snapshot struct {
	Dir string
}

func (s Snapshot) matchesPath() string   { return filepath.Join(s.Dir, "matches.csv") }
func (s Snapshot) standingsPath() string { return filepath.Join(s.Dir, "standings.csv") }

// Save writes matches.csv and standings.csv
func (s Snapshot) Save(matches []Match, table Standings) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := writeFile(s.matchesPath(), func(w io.Writer) error { return WriteMatchesCSV(w, matches) }); err != nil {
		return err
	}
	return writeFile(s.standingsPath(), func(w io.Writer) error { return WriteStandingsCSV(w, table) })
}

// Load reads both files. A missing standings file yields an empty table; a missing
// matches file is insufficient data. Unreadable rows are ErrUpstreamData.
func (s Snapshot) Load() ([]Match, Standings, error) {
	mf, err := os.Open(s.matchesPath())
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("no match snapshot in %s: %w", s.Dir, ErrInsufficientData)
	}
	if err != nil {
		return nil, nil, err
	}
	defer mf.Close()
	matches, err := ReadMatchesCSV(mf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: matches snapshot: %w", ErrUpstreamData, err)
	}

	sf, err := os.Open(s.standingsPath())
	if os.IsNotExist(err) {
		return matches, Standings{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer sf.Close()
	table, err := ReadStandingsCSV(sf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: standings snapshot: %w", ErrUpstreamData, err)
	}
	return matches, table, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// readCSV maps each data row by header name, requiring every name in want
func readCSV(r io.Reader, want []string) ([]map[string]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff") // Remove BOM
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	for _, w := range want {
		if _, ok := index[w]; !ok {
			return nil, fmt.Errorf("CSV is missing column %q", w)
		}
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(want))
		for _, w := range want {
			if i := index[w]; i < len(record) {
				row[w] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func atois(row map[string]string, names ...string) ([]int, error) {
	ret := make([]int, len(names))
	for i, n := range names {
		v, err := util.GetAsInteger(row[n])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", n, err)
		}
		ret[i] = v
	}
	return ret, nil
}
