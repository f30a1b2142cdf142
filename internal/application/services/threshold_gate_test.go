package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
)

func dataWithConfidence(c float64) *entities.ExtractedPolicyData {
	name := "Acme Silver"
	return &entities.ExtractedPolicyData{PolicyName: &name, ExtractionConfidence: c}
}

func TestEvaluateGate_LowConfidenceNeedsManualEntry(t *testing.T) {
	thresholds, err := config.NewWorkflowThresholds(0.5, 0.3)
	require.NoError(t, err)

	outcome := services.EvaluateGate(dataWithConfidence(0.25), "policy.pdf", thresholds)

	assert.Equal(t, entities.GateNeedsManualEntry, outcome)
}

func TestEvaluateGate_Bands(t *testing.T) {
	thresholds, err := config.NewWorkflowThresholds(0.5, 0.3)
	require.NoError(t, err)

	tests := []struct {
		confidence float64
		want       entities.GateOutcome
	}{
		{0.0, entities.GateNeedsManualEntry},
		{0.29, entities.GateNeedsManualEntry},
		{0.3, entities.GateReadyForReview},
		{0.49, entities.GateReadyForReview},
		{0.5, entities.GateAutoCreate},
		{1.0, entities.GateAutoCreate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, services.EvaluateGate(dataWithConfidence(tt.confidence), "", thresholds), "confidence %v", tt.confidence)
	}
}

func TestEvaluateGate_Monotonic(t *testing.T) {
	rank := map[entities.GateOutcome]int{
		entities.GateNeedsManualEntry: 0,
		entities.GateReadyForReview:   1,
		entities.GateAutoCreate:       2,
	}
	pairs := [][2]float64{{0.7, 0.4}, {0.5, 0.3}, {0.9, 0.1}, {1, 0}}

	for _, pair := range pairs {
		thresholds, err := config.NewWorkflowThresholds(pair[0], pair[1])
		require.NoError(t, err)

		prev := -1
		for i := 0; i <= 100; i++ {
			c := float64(i) / 100
			outcome := services.EvaluateGate(dataWithConfidence(c), "doc.pdf", thresholds)
			assert.GreaterOrEqual(t, rank[outcome], prev, "thresholds %v at %v", pair, c)
			prev = rank[outcome]

			switch {
			case c < thresholds.ReviewRequired():
				assert.Equal(t, entities.GateNeedsManualEntry, outcome)
			case c < thresholds.AutoCreate():
				assert.Equal(t, entities.GateReadyForReview, outcome)
			default:
				assert.Equal(t, entities.GateAutoCreate, outcome)
			}
		}
	}
}

func TestEvaluateGate_RequiresMinimalData(t *testing.T) {
	data := &entities.ExtractedPolicyData{ExtractionConfidence: 0.95}

	assert.Equal(t, entities.GateNeedsManualEntry, services.EvaluateGate(data, "", config.DefaultWorkflowThresholds()))
	assert.Equal(t, entities.GateAutoCreate, services.EvaluateGate(data, "plan.pdf", config.DefaultWorkflowThresholds()))
	assert.Equal(t, entities.GateNeedsManualEntry, services.EvaluateGate(nil, "plan.pdf", config.DefaultWorkflowThresholds()))
}

func TestEvaluateGate_ZeroThresholdsUseDefaults(t *testing.T) {
	assert.Equal(t, entities.GateReadyForReview, services.EvaluateGate(dataWithConfidence(0.5), "", config.WorkflowThresholds{}))
}
