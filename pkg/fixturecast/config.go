package fixturecast

import (
	"fmt"

	"github.com/richard-senior/fixturecast/pkg/util/forest"
)

// Config contains every parameter that influences features, training and I/O.
// It is passed explicitly to each component; there is no package level instance.
type Config struct {
	Stats  StatsConfig  `yaml:"stats"`
	Train  TrainConfig  `yaml:"train"`
	Source SourceConfig `yaml:"source"`
	Store  StoreConfig  `yaml:"store"`

	Baseline BaselineConfig `yaml:"baseline"`

	// DerivedStandings makes the training walk look positions up in a table computed
	// from the strictly earlier matches instead of the supplied snapshot
	DerivedStandings bool `yaml:"derivedStandings"`
}

// StatsConfig controls the team statistics engine
type StatsConfig struct {
	Window          int       `json:"window" yaml:"window"`                   // recent games considered (default: 5)
	MinGames        int       `json:"minGames" yaml:"minGames"`               // fewer recent games than this abstains (default: 3)
	FormWeights     []float64 `json:"formWeights" yaml:"formWeights"`         // most recent first (default: 1.0 .. 0.2)
	DefaultPosition int       `json:"defaultPosition" yaml:"defaultPosition"` // used when neither the team nor a table midpoint is known (default: 10)
}

// TrainConfig controls the outcome classifier
type TrainConfig struct {
	Forest      forest.Config `yaml:"forest"`
	TestRatio   float64       `yaml:"testRatio"`   // held out share (default: 0.2)
	CVFolds     int           `yaml:"cvFolds"`     // folds per cross validation pass (default: 5)
	CVPasses    int           `yaml:"cvPasses"`    // independent reshuffled passes (default: 5)
	MinExamples int           `yaml:"minExamples"` // fewer examples than this abstains (default: 10)
}

// SourceConfig locates the upstream match and standings data
type SourceConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	APIKey       string `yaml:"apiKey"`
	Competition  string `yaml:"competition"`
	Season       int    `yaml:"season"`
	FotmobURL    string `yaml:"fotmobUrl"`
	FotmobLeague int    `yaml:"fotmobLeague"`
	TimeoutSecs  int    `yaml:"timeoutSecs"`
}

// StoreConfig locates match storage and model artifacts
type StoreConfig struct {
	Driver    string `yaml:"driver"` // sqlite or postgres
	DSN       string `yaml:"dsn"`
	ModelDir  string `yaml:"modelDir"` // empty keeps models in the database
	RedisURL  string `yaml:"redisUrl"`
	ModelName string `yaml:"modelName"`
	Snapshots string `yaml:"snapshots"` // directory for CSV snapshots
}

// BaselineConfig controls the Poisson scoreline baseline
type BaselineConfig struct {
	MaxGoals int     `yaml:"maxGoals"` // scorelines 0..MaxGoals-1 per side (default: 9)
	Rho      float64 `yaml:"rho"`      // Dixon-Coles low score correlation (default: -0.03)
}

// DefaultStatsConfig returns the five game window with linearly decaying weights
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		Window:          5,
		MinGames:        3,
		FormWeights:     []float64{1.0, 0.8, 0.6, 0.4, 0.2},
		DefaultPosition: 10,
	}
}

// DefaultTrainConfig returns an 80/20 split with 5 passes of 5 fold cross validation
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Forest:      forest.DefaultConfig(),
		TestRatio:   0.2,
		CVFolds:     5,
		CVPasses:    5,
		MinExamples: 10,
	}
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *Config {
	return &Config{
		Stats: DefaultStatsConfig(),
		Train: DefaultTrainConfig(),
		Source: SourceConfig{
			BaseURL:      "https://api.football-data.org/v4",
			Competition:  "2013",
			Season:       2023,
			FotmobURL:    "https://www.fotmob.com",
			FotmobLeague: 268,
			TimeoutSecs:  30,
		},
		Baseline: BaselineConfig{MaxGoals: 9, Rho: -0.03},
		Store: StoreConfig{
			Driver:    "sqlite",
			DSN:       "fixturecast.db",
			ModelName: "outcome",
			Snapshots: "data",
		},
	}
}

// Validate ensures all configuration values are within reasonable ranges
func (c *Config) Validate() error {
	if err := c.Stats.Validate(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if err := c.Train.Validate(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("store driver must be sqlite or postgres, got: %q", c.Store.Driver)
	}
	if err := c.Baseline.Validate(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if c.Source.TimeoutSecs < 0 {
		return fmt.Errorf("source timeout must not be negative, got: %d", c.Source.TimeoutSecs)
	}
	return nil
}

// Validate checks the statistics window against its weights
func (c StatsConfig) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("Window must be at least 1, got: %d", c.Window)
	}
	if c.MinGames < 1 || c.MinGames > c.Window {
		return fmt.Errorf("MinGames must be between 1 and Window (%d), got: %d", c.Window, c.MinGames)
	}
	if len(c.FormWeights) < c.Window {
		return fmt.Errorf("need a form weight for each of the %d games in the window, got: %d", c.Window, len(c.FormWeights))
	}
	for i, w := range c.FormWeights {
		if w < 0 {
			return fmt.Errorf("form weight %d must not be negative, got: %f", i, w)
		}
	}
	if c.DefaultPosition < 1 {
		return fmt.Errorf("DefaultPosition must be at least 1, got: %d", c.DefaultPosition)
	}
	return nil
}

// Validate checks the score matrix size and the low score correction
func (c BaselineConfig) Validate() error {
	if c.MaxGoals < 3 {
		return fmt.Errorf("MaxGoals should be at least 3 to capture realistic scores, got: %d", c.MaxGoals)
	}
	if c.Rho > 0 || c.Rho < -0.1 {
		return fmt.Errorf("Rho should be between -0.1 and 0, got: %f", c.Rho)
	}
	return nil
}

// Validate checks the split and cross validation parameters
func (c TrainConfig) Validate() error {
	if err := c.Forest.Validate(); err != nil {
		return err
	}
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		return fmt.Errorf("TestRatio must be between 0 and 1, got: %f", c.TestRatio)
	}
	if c.CVFolds < 2 {
		return fmt.Errorf("CVFolds must be at least 2, got: %d", c.CVFolds)
	}
	if c.CVPasses < 0 {
		return fmt.Errorf("CVPasses must not be negative, got: %d", c.CVPasses)
	}
	if c.MinExamples < c.CVFolds {
		return fmt.Errorf("MinExamples must be at least CVFolds (%d), got: %d", c.CVFolds, c.MinExamples)
	}
	return nil
}
