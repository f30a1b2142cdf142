package providers

import (
	"context"
	"errors"
)

// ErrAIUnavailable is returned when the AI provider has no usable credential.
var ErrAIUnavailable = errors.New("ai extraction provider unavailable")

// AIExtractionResult is the structured answer of a generative-AI extraction call.
// Values in Fields are raw JSON values (string, float64, nil).
type AIExtractionResult struct {
	Fields     map[string]any `json:"fields"`
	Confidence float64        `json:"confidence"`
	Model      string         `json:"model"`
}

// PolicyExtractionProvider asks an external model for the target policy fields.
type PolicyExtractionProvider interface {
	ExtractPolicyFields(ctx context.Context, rawText string, fields []string) (*AIExtractionResult, error)
}
