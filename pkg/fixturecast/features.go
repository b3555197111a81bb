package fixturecast

import "fmt"

// FeatureCount is the width of a feature vector
const FeatureCount = 11

// FeatureVector holds the raw, unscaled features of a fixture in the order of FeatureNames.
// Training and inference must agree on this order.
type FeatureVector [FeatureCount]float64

// FeatureNames labels each FeatureVector slot
var FeatureNames = []string{
	"home_position",
	"home_avg_goals_for",
	"home_avg_goals_against",
	"home_recent_form",
	"home_points_pct",
	"away_position",
	"away_avg_goals_for",
	"away_avg_goals_against",
	"away_recent_form",
	"away_points_pct",
	"position_difference",
}

// Slice returns the vector as a row for the classifier
func (v FeatureVector) Slice() []float64 {
	row := make([]float64, FeatureCount)
	copy(row, v[:])
	return row
}

// NewFeatureVector lays out two teams' statistics. The home side contributes its home
// points percentage, the away side its away one.
func NewFeatureVector(home, away TeamStatistics) FeatureVector {
	return FeatureVector{
		float64(home.Position),
		home.AvgGoalsFor,
		home.AvgGoalsAgainst,
		home.RecentForm,
		home.HomePointsPct,
		float64(away.Position),
		away.AvgGoalsFor,
		away.AvgGoalsAgainst,
		away.RecentForm,
		away.AwayPointsPct,
		float64(away.Position - home.Position),
	}
}

// FeatureBuilder turns match histories into feature vectors
type FeatureBuilder struct {
	stats     StatsConfig
	positions PositionLookup
	derived   bool
	log       Logger
}

// NewFeatureBuilder returns a builder that looks positions up in the given snapshot.
// A nil log discards diagnostics.
func NewFeatureBuilder(cfg *Config, positions PositionLookup, log Logger) *FeatureBuilder {
	return &FeatureBuilder{
		stats:     cfg.Stats,
		positions: positions,
		derived:   cfg.DerivedStandings,
		log:       orDiscard(log),
	}
}

// Build computes the raw feature vector of home vs away from history.
// Either side lacking recent games returns ErrInsufficientData; no defaults are substituted.
func (b *FeatureBuilder) Build(history []Match, home, away string) (FeatureVector, error) {
	return buildFeatures(history, home, away, b.positions, b.stats)
}

func buildFeatures(history []Match, home, away string, positions PositionLookup, cfg StatsConfig) (FeatureVector, error) {
	if home == away {
		return FeatureVector{}, fmt.Errorf("a team cannot play itself: %s", home)
	}
	hs, err := ComputeTeamStatistics(history, home, positions, cfg)
	if err != nil {
		return FeatureVector{}, fmt.Errorf("home side: %w", err)
	}
	as, err := ComputeTeamStatistics(history, away, positions, cfg)
	if err != nil {
		return FeatureVector{}, fmt.Errorf("away side: %w", err)
	}
	return NewFeatureVector(hs, as), nil
}
