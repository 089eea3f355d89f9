package ensemble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanvs/fintrail/internal/model"
)

type stubScorer struct {
	name string
	dist Distribution
	conf float64
	err  error
}

func (s *stubScorer) Name() string { return s.name }

func (s *stubScorer) Score(_ context.Context, _ FeatureVector) (Distribution, float64, error) {
	return s.dist, s.conf, s.err
}

func TestScoreEmptyEnsembleReturnsNil(t *testing.T) {
	c := NewClassifier()

	res, err := c.Score(context.Background(), "rs.500 debited", Context{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestScoreWeightedVoting(t *testing.T) {
	c := NewClassifier()

	// Primary votes Shopping, secondary votes Food. With the default
	// 0.7/0.3 split and equal confidences, Shopping must win.
	require.NoError(t, c.Register(&stubScorer{
		name: PrimaryScorerName,
		dist: Distribution{model.CategoryShopping: 0.8, model.CategoryFood: 0.2},
		conf: 1.0,
	}, PrimaryWeight))
	require.NoError(t, c.Register(&stubScorer{
		name: SecondaryScorerName,
		dist: Distribution{model.CategoryFood: 0.9, model.CategoryShopping: 0.1},
		conf: 1.0,
	}, SecondaryWeight))

	res, err := c.Score(context.Background(), "purchase", Context{Direction: model.DirectionExpense})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, model.CategoryShopping, res.CategoryID)
	assert.Equal(t, model.MethodEnsemble, res.Method)
	// 0.7*0.8 + 0.3*0.1 = 0.59
	assert.InDelta(t, 0.59, res.Confidence, 1e-9)
}

func TestScoreSkipsFailingScorer(t *testing.T) {
	c := NewClassifier()

	require.NoError(t, c.Register(&stubScorer{
		name: PrimaryScorerName,
		err:  errors.New("model not loaded"),
	}, PrimaryWeight))
	require.NoError(t, c.Register(&stubScorer{
		name: SecondaryScorerName,
		dist: Distribution{model.CategoryUtilities: 1.0},
		conf: 0.8,
	}, SecondaryWeight))

	res, err := c.Score(context.Background(), "bill", Context{Direction: model.DirectionExpense})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.CategoryUtilities, res.CategoryID)
}

func TestScoreAllScorersAbstainReturnsNil(t *testing.T) {
	c := NewClassifier()

	require.NoError(t, c.Register(&stubScorer{
		name: PrimaryScorerName,
		err:  errors.New("unavailable"),
	}, PrimaryWeight))

	res, err := c.Score(context.Background(), "text", Context{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestScoreIncomeCategoryForcesIncomeDirection(t *testing.T) {
	c := NewClassifier()

	require.NoError(t, c.Register(&stubScorer{
		name: PrimaryScorerName,
		dist: Distribution{model.CategoryIncome: 1.0},
		conf: 1.0,
	}, PrimaryWeight))

	res, err := c.Score(context.Background(), "salary credited", Context{Direction: model.DirectionExpense})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.DirectionIncome, res.Direction)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	c := NewClassifier()

	assert.Error(t, c.Register(nil, 1))
	assert.Error(t, c.Register(&stubScorer{name: "x"}, 0))
	assert.Error(t, c.Register(&stubScorer{name: "x"}, -0.5))
	assert.Equal(t, 0, c.Len())
}

func TestBuildFeatures(t *testing.T) {
	at := time.Date(2025, 6, 14, 13, 30, 0, 0, time.UTC) // a Saturday

	v := BuildFeatures("rs.1500 debited from account xx1234 icici", Context{
		OccurredAt: at,
		Amount:     decimal.NewFromInt(1500),
		Direction:  model.DirectionExpense,
		Merchant:   "Amazon",
	})

	assert.Equal(t, 1.0, v[FeatHasAmountPattern])
	assert.Equal(t, 1.0, v[FeatHasAccountPattern])
	assert.Equal(t, 1.0, v[FeatHasBankCode])
	assert.Equal(t, 1.0, v[FeatWeekend])
	assert.Equal(t, 1.0, v[FeatBusinessHours])
	assert.Equal(t, 1.0, v[FeatMerchantScore])
	assert.Equal(t, -1.0, v[FeatDirectionSign])
	assert.Greater(t, v[FeatAmountMagnitude], 0.0)
	assert.LessOrEqual(t, v[FeatAmountMagnitude], 1.0)
	assert.InDelta(t, 13.0/23.0, v[FeatHour], 1e-9)

	// Placeholder slots stay zero.
	assert.Zero(t, v[FeatTFIDFBucket])
	assert.Zero(t, v[FeatLocationScore])
	assert.Zero(t, v[FeatPaymentMethodScore])
	assert.Zero(t, v[FeatUrgencyScore])
}
