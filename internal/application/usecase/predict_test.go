package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/service"
)

type tagEnricher struct{}

func (tagEnricher) Enrich(_ context.Context, raw feature.RawRecord) feature.RawRecord {
	out := feature.RawRecord{"blacklist_match_flag": "1"}
	for k, v := range raw {
		out[k] = v
	}
	return out
}

func TestPredict_Execute(t *testing.T) {
	t.Run("scores a valid record", func(t *testing.T) {
		metrics := newMockMetrics()
		uc := usecase.NewPredict(service.NewRuleScorer(), service.SourceRules, nil, metrics)

		resp, err := uc.Execute(context.Background(), feature.RawRecord{"amount": 150000})
		require.NoError(t, err)

		assert.InDelta(t, 0.4, resp.Probability, 1e-9)
		assert.Equal(t, "Normal", resp.Label)
		assert.Equal(t, []string{"High amount"}, resp.Reasons)
		assert.Equal(t, "placeholder", resp.Model)
		assert.Equal(t, 1, metrics.predictions["Normal/placeholder"])
	})

	t.Run("rejects an invalid record with every problem", func(t *testing.T) {
		uc := usecase.NewPredict(service.NewRuleScorer(), service.SourceRules, nil, nil)

		_, err := uc.Execute(context.Background(), feature.RawRecord{"amount": "", "user_age": "old"})

		var verr *feature.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Missing amount, Invalid user_age", err.Error())
	})

	t.Run("applies the enricher", func(t *testing.T) {
		uc := usecase.NewPredict(service.NewRuleScorer(), service.SourceRules, tagEnricher{}, nil)

		resp, err := uc.Execute(context.Background(), feature.RawRecord{"amount": 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"Insider flag"}, resp.Reasons)
	})

	assert.Equal(t, "joblib-model", usecase.NewPredict(service.NewRuleScorer(), service.SourceTrainedModel, nil, nil).Source())
}
