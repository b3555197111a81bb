package fixturecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/fixturecast/pkg/util/forest"
)

// Model is a fitted outcome classifier: the forest, the scaler fitted alongside it, and
// the statistics settings its features were built with. It is never modified after
// Train or UnmarshalModel returns, so one value may serve many goroutines.
type Model struct {
	ID           uuid.UUID      `json:"id"`
	TrainedAt    time.Time      `json:"trainedAt"`
	FeatureNames []string       `json:"featureNames"`
	Labels       []string       `json:"labels"`
	Stats        StatsConfig    `json:"stats"`
	Scaler       *Scaler        `json:"scaler"`
	Forest       *forest.Forest `json:"forest"`
}

// Evaluation summarises how a model generalises
type Evaluation struct {
	Examples  int           `json:"examples"`
	TrainSize int           `json:"trainSize"`
	TestSize  int           `json:"testSize"`
	Accuracy  float64       `json:"accuracy"` // on the held out split
	CVScores  []float64     `json:"cvScores"`
	CVMean    float64       `json:"cvMean"`
	CVStd     float64       `json:"cvStd"`
	Report    forest.Report `json:"report"`
}

// String renders the evaluation for a terminal
func (e *Evaluation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "examples: %d (train %d, test %d)\n", e.Examples, e.TrainSize, e.TestSize)
	fmt.Fprintf(&sb, "held out accuracy: %.3f\n", e.Accuracy)
	fmt.Fprintf(&sb, "cross validation: %.3f (+/- %.3f) over %d folds\n\n", e.CVMean, e.CVStd*2, len(e.CVScores))
	sb.WriteString(e.Report.String())
	return sb.String()
}

// Train fits a scaler and forest on a stratified training split of ds and evaluates the
// result on the held out split and by repeated stratified k-fold cross validation.
// Fewer than cfg.MinExamples examples returns ErrInsufficientData.
// stats records how ds was built so fixtures are later featurised identically.
func Train(ds *Dataset, cfg TrainConfig, stats StatsConfig, log Logger) (*Model, *Evaluation, error) {
	log = orDiscard(log)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid training config: %w", err)
	}
	if err := stats.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid stats config: %w", err)
	}
	if ds == nil || ds.Len() < cfg.MinExamples {
		n := 0
		if ds != nil {
			n = ds.Len()
		}
		return nil, nil, fmt.Errorf("%d examples, need at least %d: %w", n, cfg.MinExamples, ErrInsufficientData)
	}
	if len(ds.X) != len(ds.Y) {
		return nil, nil, fmt.Errorf("dataset has %d rows but %d labels", len(ds.X), len(ds.Y))
	}

	trainIdx, testIdx, err := forest.StratifiedSplit(ds.Y, cfg.TestRatio, cfg.Forest.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split dataset: %w", err)
	}

	scaler := &Scaler{}
	xTrain, err := scaler.FitTransform(forest.Rows(ds.X, trainIdx))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit scaler: %w", err)
	}
	yTrain := forest.Labels(ds.Y, trainIdx)

	log.Info("training forest", cfg.Forest.Trees, "trees on", len(trainIdx), "examples")
	f, err := forest.Fit(xTrain, yTrain, len(LabelNames), cfg.Forest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit forest: %w", err)
	}

	m := &Model{
		ID:           uuid.New(),
		TrainedAt:    time.Now().UTC(),
		FeatureNames: append([]string(nil), FeatureNames...),
		Labels:       append([]string(nil), LabelNames...),
		Stats:        stats,
		Scaler:       scaler,
		Forest:       f,
	}

	yTest := forest.Labels(ds.Y, testIdx)
	pred, err := m.Predict(forest.Rows(ds.X, testIdx))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to score held out split: %w", err)
	}

	// per-feature affine scaling cannot change a tree's splits, so the whole dataset is
	// scaled once with the training parameters
	xAll, err := scaler.Transform(ds.X)
	if err != nil {
		return nil, nil, err
	}
	scores, err := forest.CrossValidate(xAll, ds.Y, len(LabelNames), cfg.Forest, cfg.CVFolds, cfg.CVPasses)
	if err != nil {
		return nil, nil, fmt.Errorf("cross validation failed: %w", err)
	}
	mean, std := forest.MeanStd(scores)

	eval := &Evaluation{
		Examples:  ds.Len(),
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
		Accuracy:  forest.Accuracy(yTest, pred),
		CVScores:  scores,
		CVMean:    mean,
		CVStd:     std,
		Report:    forest.Classification(yTest, pred, LabelNames),
	}
	log.Info("model trained", m.ID.String(), "held out accuracy", eval.Accuracy, "cv mean", mean)
	return m, eval, nil
}

// PredictProba scales raw feature rows and returns [away win, draw, home win] per row
func (m *Model) PredictProba(x [][]float64) ([][]float64, error) {
	scaled, err := m.Scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	return m.Forest.PredictProba(scaled)
}

// Predict returns the most likely label per raw feature row
func (m *Model) Predict(x [][]float64) ([]int, error) {
	scaled, err := m.Scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	return m.Forest.Predict(scaled)
}

// Probabilities is the predicted outcome distribution of one fixture
type Probabilities struct {
	HomeTeam string  `json:"homeTeam"`
	AwayTeam string  `json:"awayTeam"`
	AwayWin  float64 `json:"awayWin"`
	Draw     float64 `json:"draw"`
	HomeWin  float64 `json:"homeWin"`
}

// Likely returns the outcome with the highest probability
func (p Probabilities) Likely() Outcome {
	switch forest.Argmax([]float64{p.AwayWin, p.Draw, p.HomeWin}) {
	case LabelHomeWin:
		return HomeTeam
	case LabelDraw:
		return Draw
	default:
		return AwayTeam
	}
}

// PredictFixture featurises home vs away from history the way the model was trained
// and returns the outcome distribution. Abstention surfaces as ErrInsufficientData.
func (m *Model) PredictFixture(history []Match, positions PositionLookup, home, away string) (Probabilities, error) {
	v, err := buildFeatures(history, home, away, positions, m.Stats)
	if err != nil {
		return Probabilities{}, err
	}
	proba, err := m.PredictProba([][]float64{v.Slice()})
	if err != nil {
		return Probabilities{}, err
	}
	return Probabilities{
		HomeTeam: home,
		AwayTeam: away,
		AwayWin:  proba[0][LabelAwayWin],
		Draw:     proba[0][LabelDraw],
		HomeWin:  proba[0][LabelHomeWin],
	}, nil
}

/////////////////////////////////////////////////////////////////////////
////// Serialisation
/////////////////////////////////////////////////////////////////////////

// MarshalBinary encodes the model, scaler included, as JSON
func (m *Model) MarshalBinary() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalModel decodes and validates a model produced by MarshalBinary
func UnmarshalModel(data []byte) (*Model, error) {
	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if err := m.Forest.Validate(); err != nil {
		return nil, err
	}
	if m.Forest.Features != FeatureCount || m.Forest.Classes != len(LabelNames) {
		return nil, fmt.Errorf("model shape %dx%d does not match %d features and %d classes",
			m.Forest.Features, m.Forest.Classes, FeatureCount, len(LabelNames))
	}
	if err := m.Scaler.validate(FeatureCount); err != nil {
		return nil, err
	}
	if err := m.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("model statistics settings: %w", err)
	}
	return m, nil
}
