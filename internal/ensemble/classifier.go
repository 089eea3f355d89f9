package ensemble

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karanvs/fintrail/internal/model"
)

// Distribution is a category-probability distribution over the fixed
// taxonomy, keyed by category ID.
type Distribution map[string]float64

// Scorer is one voting member of the ensemble. Implementations consume the
// fixed feature vector and return a distribution plus their own confidence.
type Scorer interface {
	Name() string
	Score(ctx context.Context, features FeatureVector) (Distribution, float64, error)
}

// Default scorer weights. The two slots are the shell's named members;
// real trained models plug into them without changing the combiner.
const (
	PrimaryScorerName   = "primary-text-model"
	SecondaryScorerName = "secondary-structured-model"

	PrimaryWeight   = 0.7
	SecondaryWeight = 0.3
)

type member struct {
	scorer Scorer
	weight float64
}

// Classifier combines registered scorers via weighted voting.
type Classifier struct {
	members []member
}

// NewClassifier creates an empty ensemble. With no scorers registered,
// Score returns nil and callers fall back to the pattern classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Register adds a scorer with the given weight. Weights are normalized at
// scoring time, so they only need to be proportional.
func (c *Classifier) Register(s Scorer, weight float64) error {
	if s == nil {
		return fmt.Errorf("scorer cannot be nil")
	}
	if weight <= 0 {
		return fmt.Errorf("scorer %s: weight must be positive, got %v", s.Name(), weight)
	}
	c.members = append(c.members, member{scorer: s, weight: weight})
	return nil
}

// Len returns the number of registered scorers.
func (c *Classifier) Len() int {
	return len(c.members)
}

// Score builds the weighted-average distribution across all scorers and
// returns the arg-max category with its combined probability as the
// confidence. A nil result (with nil error) means no scorers are loaded.
func (c *Classifier) Score(ctx context.Context, text string, fctx Context) (*model.ClassificationResult, error) {
	if len(c.members) == 0 {
		return nil, nil //nolint:nilnil // empty ensemble is a valid bypass signal
	}

	features := BuildFeatures(text, fctx)

	var totalWeight float64
	combined := make(Distribution, len(model.Categories()))

	for _, m := range c.members {
		dist, conf, err := m.scorer.Score(ctx, features)
		if err != nil {
			slog.Warn("Ensemble scorer failed, skipping vote",
				"scorer", m.scorer.Name(),
				"error", err)
			continue
		}
		if len(dist) == 0 {
			continue
		}

		// Confidence scales the vote inside the scorer's weight.
		w := m.weight * clamp(conf, 0, 1)
		if w <= 0 {
			continue
		}
		totalWeight += w
		for category, p := range dist {
			combined[category] += w * p
		}
	}

	if totalWeight == 0 {
		return nil, nil //nolint:nilnil // every vote abstained
	}

	bestCategory := ""
	bestProb := 0.0
	// Iterate the taxonomy, not the map, so equal probabilities resolve
	// deterministically.
	for _, cat := range model.Categories() {
		p := combined[cat.ID] / totalWeight
		if p > bestProb {
			bestCategory, bestProb = cat.ID, p
		}
	}

	if bestCategory == "" {
		return nil, nil //nolint:nilnil
	}

	direction := fctx.Direction
	if direction == "" {
		direction = model.DirectionExpense
	}
	if bestCategory == model.CategoryIncome {
		direction = model.DirectionIncome
	}

	return &model.ClassificationResult{
		CategoryID: bestCategory,
		Direction:  direction,
		Confidence: bestProb,
		Method:     model.MethodEnsemble,
		Merchant:   fctx.Merchant,
		Description: fmt.Sprintf("%s (ensemble of %d scorers)",
			model.CategoryName(bestCategory), len(c.members)),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
