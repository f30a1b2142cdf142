package config

import "fmt"

// Default workflow thresholds.
const (
	DefaultAutoCreateThreshold     = 0.7
	DefaultReviewRequiredThreshold = 0.4
)

// WorkflowThresholds holds the confidence thresholds that gate automatic policy
// creation. Values are fixed at construction; use NewWorkflowThresholds.
type WorkflowThresholds struct {
	autoCreate     float64
	reviewRequired float64
}

// NewWorkflowThresholds validates and builds thresholds.
// Both values must lie in [0,1] and review must be strictly below auto.
func NewWorkflowThresholds(autoCreate, reviewRequired float64) (WorkflowThresholds, error) {
	if autoCreate < 0 || autoCreate > 1 {
		return WorkflowThresholds{}, fmt.Errorf("auto_create_threshold must be within [0,1], got %v", autoCreate)
	}
	if reviewRequired < 0 || reviewRequired > 1 {
		return WorkflowThresholds{}, fmt.Errorf("review_required_threshold must be within [0,1], got %v", reviewRequired)
	}
	if reviewRequired >= autoCreate {
		return WorkflowThresholds{}, fmt.Errorf(
			"review_required_threshold (%v) must be below auto_create_threshold (%v)",
			reviewRequired, autoCreate,
		)
	}
	return WorkflowThresholds{autoCreate: autoCreate, reviewRequired: reviewRequired}, nil
}

// DefaultWorkflowThresholds returns the built-in thresholds.
func DefaultWorkflowThresholds() WorkflowThresholds {
	return WorkflowThresholds{
		autoCreate:     DefaultAutoCreateThreshold,
		reviewRequired: DefaultReviewRequiredThreshold,
	}
}

// AutoCreate is the minimum confidence for automatic creation.
func (t WorkflowThresholds) AutoCreate() float64 { return t.autoCreate }

// ReviewRequired is the minimum confidence for the review queue.
func (t WorkflowThresholds) ReviewRequired() float64 { return t.reviewRequired }

// IsZero reports whether t was never constructed.
func (t WorkflowThresholds) IsZero() bool {
	return t.autoCreate == 0 && t.reviewRequired == 0
}
