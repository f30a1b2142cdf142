package services

import (
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
)

// EvaluateGate decides what happens to extracted data. It has no state:
// identical inputs always give the same outcome. Zero thresholds fall back to
// config.DefaultWorkflowThresholds.
func EvaluateGate(data *entities.ExtractedPolicyData, filename string, thresholds config.WorkflowThresholds) entities.GateOutcome {
	if thresholds.IsZero() {
		thresholds = config.DefaultWorkflowThresholds()
	}
	if data == nil || !data.HasMinimalData(filename) {
		return entities.GateNeedsManualEntry
	}

	c := entities.ClampConfidence(data.ExtractionConfidence)
	switch {
	case c >= thresholds.AutoCreate():
		return entities.GateAutoCreate
	case c >= thresholds.ReviewRequired():
		return entities.GateReadyForReview
	default:
		return entities.GateNeedsManualEntry
	}
}

// AutoCreationStatusFor maps a non-creating gate outcome to the document status.
func AutoCreationStatusFor(outcome entities.GateOutcome) entities.AutoCreationStatus {
	switch outcome {
	case entities.GateReadyForReview:
		return entities.AutoCreationReadyForReview
	case entities.GateNeedsManualEntry:
		return entities.AutoCreationNeedsManualEntry
	}
	return entities.AutoCreationNone
}
