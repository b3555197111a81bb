package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/richard-senior/fixturecast/internal/config"
	"github.com/richard-senior/fixturecast/internal/logger"
	"github.com/richard-senior/fixturecast/pkg/fixturecast"
	"github.com/richard-senior/fixturecast/pkg/transport"
)

const usage = `usage: fixturecast [-config file] <command> [arguments]

commands:
  update              fetch the configured season and store it
  train               build the training set, train, report and persist the model
  predict HOME AWAY   predict a single fixture
  predict -upcoming   predict every unplayed fixture
  form TEAM [OTHER]   recent results of a team, and head to head with OTHER
  table               league table and scoring summary
`

func main() {
	configPath := flag.String("config", "", "YAML configuration file (default $FIXTURECAST_CONFIG or ./fixturecast.yaml)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fixturecast:", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fixturecast:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &app{cfg: cfg, log: log}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if fixturecast.IsAbstention(err) {
			log.Warn("Not enough data:", err)
			os.Exit(3)
		}
		log.Error("Command failed:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.LogFile == "" {
		return logger.New(cfg.Level(), os.Stderr), nil
	}
	if err := logger.SetLogOutput('f', cfg.LogFile); err != nil {
		return nil, err
	}
	l := logger.Default()
	l.SetLevel(cfg.Level())
	l.SetShowDateTime(true)
	return l, nil
}

type app struct {
	cfg *config.Config
	log *logger.Logger
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	db, err := fixturecast.OpenSQLStore(ctx, a.cfg.Store.Driver, a.cfg.Store.DSN, a.log)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "update":
		return a.update(ctx, db, args)
	case "train":
		return a.train(ctx, db)
	case "predict":
		return a.predict(ctx, db, args)
	case "form":
		return a.form(ctx, db, args)
	case "table":
		return a.table(ctx, db, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

/////////////////////////////////////////////////////////////////////////
////// update
/////////////////////////////////////////////////////////////////////////

func (a *app) update(ctx context.Context, db *fixturecast.SQLStore, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	useFotmob := fs.Bool("fotmob", false, "scrape fotmob instead of calling football-data.org")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src := a.cfg.Source
	client := transport.NewClient(time.Duration(src.TimeoutSecs)*time.Second, a.log)

	var matches []fixturecast.Match
	var table fixturecast.Standings
	var err error
	if *useFotmob {
		season := fmt.Sprintf("%d/%d", src.Season, src.Season+1)
		matches, err = fixturecast.NewFotmobSource(src, client, a.log).Matches(ctx, src.FotmobLeague, season)
		if err != nil {
			return err
		}
		table = fixturecast.ComputeTable(matches)
	} else {
		if src.APIKey == "" {
			return errors.New("no API key: set source.apiKey or FOOTBALL_API_KEY")
		}
		fd := fixturecast.NewFootballDataSource(src, client, a.log)
		if matches, err = fd.Matches(ctx, src.Competition, src.Season); err != nil {
			return err
		}
		if table, err = fd.Standings(ctx, src.Competition, src.Season); err != nil {
			return err
		}
	}

	if err := db.SaveMatches(ctx, matches); err != nil {
		return err
	}
	if err := db.SaveStandings(ctx, src.Season, table); err != nil {
		return err
	}
	if a.cfg.Store.Snapshots != "" {
		if err := (fixturecast.Snapshot{Dir: a.cfg.Store.Snapshots}).Save(matches, table); err != nil {
			return err
		}
	}
	finished := len(fixturecast.FinishedMatches(matches))
	fmt.Printf("stored %d matches (%d finished) and %d table rows for season %d\n", len(matches), finished, len(table), src.Season)
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// train / predict
/////////////////////////////////////////////////////////////////////////

// history returns every stored match, falling back to the CSV snapshot when the
// database is empty, and the configured season's table
func (a *app) history(ctx context.Context, db *fixturecast.SQLStore) ([]fixturecast.Match, fixturecast.Standings, error) {
	matches, err := db.Matches(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	table, err := db.Standings(ctx, a.cfg.Source.Season)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 && a.cfg.Store.Snapshots != "" {
		a.log.Info("Database is empty, reading snapshot", a.cfg.Store.Snapshots)
		return fixturecast.Snapshot{Dir: a.cfg.Store.Snapshots}.Load()
	}
	return matches, table, nil
}

func (a *app) artifacts(ctx context.Context, db *fixturecast.SQLStore) (fixturecast.ArtifactStore, func(), error) {
	switch {
	case a.cfg.Store.RedisURL != "":
		rs, err := fixturecast.OpenRedisStore(ctx, a.cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	case a.cfg.Store.ModelDir != "":
		fs, err := fixturecast.NewFileStore(a.cfg.Store.ModelDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	default:
		return db, func() {}, nil
	}
}

func (a *app) train(ctx context.Context, db *fixturecast.SQLStore) error {
	history, table, err := a.history(ctx, db)
	if err != nil {
		return err
	}
	builder := fixturecast.NewFeatureBuilder(&a.cfg.Config, table, a.log)
	ds, err := builder.TrainingSet(history)
	if err != nil {
		return err
	}
	counts := ds.ClassCounts()
	a.log.Info("Training set", ds.Len(), "examples; away/draw/home", counts[0], counts[1], counts[2])

	store, closeStore, err := a.artifacts(ctx, db)
	if err != nil {
		return err
	}
	defer closeStore()

	p := fixturecast.NewPredictor(store, a.log)
	eval, err := p.Train(ds, a.cfg.Train, a.cfg.Stats)
	if err != nil {
		return err
	}
	fmt.Println(eval.String())
	return p.Persist(ctx, a.cfg.Store.ModelName)
}

func (a *app) predict(ctx context.Context, db *fixturecast.SQLStore, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	upcoming := fs.Bool("upcoming", false, "predict every unplayed fixture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*upcoming && fs.NArg() != 2 {
		return errors.New("predict needs HOME and AWAY team names")
	}

	history, table, err := a.history(ctx, db)
	if err != nil {
		return err
	}
	store, closeStore, err := a.artifacts(ctx, db)
	if err != nil {
		return err
	}
	defer closeStore()
	p := fixturecast.NewPredictor(store, a.log)
	if err := p.Restore(ctx, a.cfg.Store.ModelName); err != nil {
		return err
	}

	var preds []fixturecast.Probabilities
	if *upcoming {
		if preds, err = p.PredictUpcoming(history, fixturecast.Upcoming(history, time.Now()), table); err != nil {
			return err
		}
	} else {
		teams := fixturecast.Teams(history)
		home, err := fixturecast.ResolveTeam(fs.Arg(0), teams)
		if err != nil {
			return err
		}
		away, err := fixturecast.ResolveTeam(fs.Arg(1), teams)
		if err != nil {
			return err
		}
		prob, err := p.PredictFixture(history, table, home, away)
		if err != nil {
			return err
		}
		preds = append(preds, prob)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOME\tAWAY\tHOME WIN\tDRAW\tAWAY WIN\tLIKELY\tXG\tSCORE")
	for _, pr := range preds {
		xg, score := "-", "-"
		if f, err := fixturecast.PoissonForecast(history, pr.HomeTeam, pr.AwayTeam, a.cfg.Stats, a.cfg.Baseline); err == nil {
			xg = fmt.Sprintf("%.2f-%.2f", f.HomeExpected, f.AwayExpected)
			score = fmt.Sprintf("%d-%d", f.LikelyHomeGoals, f.LikelyAwayGoals)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.1f%%\t%.1f%%\t%s\t%s\t%s\n", pr.HomeTeam, pr.AwayTeam,
			pr.HomeWin*100, pr.Draw*100, pr.AwayWin*100, pr.Likely(), xg, score)
	}
	return w.Flush()
}

/////////////////////////////////////////////////////////////////////////
////// form / table
/////////////////////////////////////////////////////////////////////////

func (a *app) form(ctx context.Context, db *fixturecast.SQLStore, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("form needs a TEAM and optionally an OTHER team")
	}
	history, table, err := a.history(ctx, db)
	if err != nil {
		return err
	}
	teams := fixturecast.Teams(history)
	team, err := fixturecast.ResolveTeam(args[0], teams)
	if err != nil {
		return err
	}

	window := a.cfg.Stats.Window
	fmt.Printf("%s form (last %d, newest first): %s\n", team, window,
		fixturecast.FormString(fixturecast.RecentForm(history, team, window)))
	if stats, err := fixturecast.ComputeTeamStatistics(history, team, table, a.cfg.Stats); err == nil {
		fmt.Printf("position %d, weighted form %.2f, goals %.2f for / %.2f against, points %.0f%% home / %.0f%% away\n",
			stats.Position, stats.RecentForm, stats.AvgGoalsFor, stats.AvgGoalsAgainst,
			stats.HomePointsPct*100, stats.AwayPointsPct*100)
	} else if !fixturecast.IsAbstention(err) {
		return err
	}

	if len(args) == 2 {
		other, err := fixturecast.ResolveTeam(args[1], teams)
		if err != nil {
			return err
		}
		fmt.Printf("\nlast meetings of %s and %s:\n", team, other)
		for _, m := range fixturecast.HeadToHead(history, team, other, window) {
			fmt.Printf("  %s  %s %s %s\n", m.UTCTime.Format("2006-01-02"), m.HomeTeam, m.ScoreString(), m.AwayTeam)
		}
	}
	return nil
}

func (a *app) table(ctx context.Context, db *fixturecast.SQLStore, args []string) error {
	fs := flag.NewFlagSet("table", flag.ContinueOnError)
	derived := fs.Bool("derived", false, "compute the table from stored results instead of the stored snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	history, table, err := a.history(ctx, db)
	if err != nil {
		return err
	}
	if *derived || len(table) == 0 {
		var season []fixturecast.Match
		for _, m := range history {
			if m.Season == a.cfg.Source.Season {
				season = append(season, m)
			}
		}
		table = fixturecast.ComputeTable(season)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tTEAM\tP\tW\tD\tL\tGF\tGA\tGD\tPTS\t")
	for _, e := range table.Sorted() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n", e.Position, e.Team, e.Played,
			e.Won, e.Draw, e.Lost, e.GoalsFor, e.GoalsAgainst, e.GoalDifference, e.Points)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := fixturecast.Summarise(history)
	fmt.Printf("\n%d games, %.2f goals per game, home %s / draw %s / away %s\n", s.Games, s.GoalsPerGame,
		percent(s.HomeWinRate), percent(s.DrawRate), percent(s.AwayWinRate))
	return nil
}

func percent(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v*100), ".0") + "%"
}
