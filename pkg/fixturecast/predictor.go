package fixturecast

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/richard-senior/fixturecast/pkg/util"
)

// Predictor holds the current model behind a read/write lock so fixtures can be
// predicted while a retrained model is swapped in
type Predictor struct {
	mu    sync.RWMutex
	model *Model
	store ArtifactStore
	log   Logger
}

// NewPredictor returns a predictor with no model loaded. store may be nil when the
// model is only ever trained in process.
func NewPredictor(store ArtifactStore, log Logger) *Predictor {
	return &Predictor{store: store, log: orDiscard(log)}
}

// Model returns the loaded model or ErrModelNotFound
func (p *Predictor) Model() (*Model, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return nil, fmt.Errorf("no model loaded: %w", ErrModelNotFound)
	}
	return p.model, nil
}

// Replace swaps in m
func (p *Predictor) Replace(m *Model) {
	p.mu.Lock()
	p.model = m
	p.mu.Unlock()
}

// Train fits a new model on ds and makes it current
func (p *Predictor) Train(ds *Dataset, cfg TrainConfig, stats StatsConfig) (*Evaluation, error) {
	m, eval, err := Train(ds, cfg, stats, p.log)
	if err != nil {
		return nil, err
	}
	p.Replace(m)
	return eval, nil
}

// Persist saves the current model under name
func (p *Predictor) Persist(ctx context.Context, name string) error {
	if p.store == nil {
		return fmt.Errorf("predictor has no artifact store")
	}
	m, err := p.Model()
	if err != nil {
		return err
	}
	if err := p.store.Save(ctx, name, m); err != nil {
		return fmt.Errorf("failed to persist model %s: %w", name, err)
	}
	p.log.Info("Persisted model", m.ID.String(), "as", name)
	return nil
}

// Restore loads the named model and makes it current
func (p *Predictor) Restore(ctx context.Context, name string) error {
	if p.store == nil {
		return fmt.Errorf("predictor has no artifact store")
	}
	m, err := p.store.Load(ctx, name)
	if err != nil {
		return err
	}
	p.Replace(m)
	p.log.Info("Restored model", m.ID.String(), "trained at", m.TrainedAt)
	return nil
}

// PredictFixture predicts one fixture with the current model
func (p *Predictor) PredictFixture(history []Match, positions PositionLookup, home, away string) (Probabilities, error) {
	m, err := p.Model()
	if err != nil {
		return Probabilities{}, err
	}
	return m.PredictFixture(history, positions, home, away)
}

// PredictUpcoming predicts each fixture in upcoming from history. Fixtures the model
// abstains on are skipped.
func (p *Predictor) PredictUpcoming(history []Match, upcoming []Match, positions PositionLookup) ([]Probabilities, error) {
	m, err := p.Model()
	if err != nil {
		return nil, err
	}
	var ret []Probabilities
	for _, f := range upcoming {
		prob, err := m.PredictFixture(history, positions, f.HomeTeam, f.AwayTeam)
		if IsAbstention(err) {
			p.log.Debug("Abstaining on", f.HomeTeam, "v", f.AwayTeam, err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, prob)
	}
	return ret, nil
}

/////////////////////////////////////////////////////////////////////////
////// Team name resolution
/////////////////////////////////////////////////////////////////////////

// minNameSimilarity is the lowest whole name score ResolveTeam accepts
const minNameSimilarity = 0.6

// ResolveTeam maps a user supplied name onto one of teams. An exact (case insensitive)
// name or unique substring wins, otherwise the most similar whole name scoring at
// least minNameSimilarity.
func ResolveTeam(query string, teams []string) (string, error) {
	q := util.NormaliseName(query)
	if q == "" {
		return "", fmt.Errorf("empty team name")
	}
	var contains []string
	for _, t := range teams {
		lt := util.NormaliseName(t)
		if lt == q {
			return t, nil
		}
		if strings.Contains(lt, q) {
			contains = append(contains, t)
		}
	}
	if len(contains) == 1 {
		return contains[0], nil
	}

	best, bestScore := "", 0.0
	for _, t := range teams {
		if s := util.NameSimilarity(q, t); s > bestScore {
			best, bestScore = t, s
		}
	}
	if bestScore >= minNameSimilarity {
		return best, nil
	}
	if len(contains) > 1 {
		sort.Strings(contains)
		return "", fmt.Errorf("%q is ambiguous: %s", query, strings.Join(contains, ", "))
	}
	return "", fmt.Errorf("no team matches %q", query)
}
