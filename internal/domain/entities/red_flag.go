package entities

import "time"

// RedFlag is a detected clause that is risky for the policyholder.
// It is written once and never updated.
type RedFlag struct {
	ID              string      `json:"id" db:"id"`
	PolicyID        string      `json:"policy_id" db:"policy_id"`
	RuleID          string      `json:"rule_id" db:"rule_id"`
	FlagType        RedFlagType `json:"flag_type" db:"flag_type"`
	Severity        Severity    `json:"severity" db:"severity"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description" db:"description"`
	SourceText      string      `json:"source_text" db:"source_text"`
	Recommendation  *string     `json:"recommendation,omitempty" db:"recommendation"`
	ConfidenceScore float64     `json:"confidence_score" db:"confidence_score"`
	DetectedBy      string      `json:"detected_by" db:"detected_by"`
	SpanStart       int         `json:"span_start" db:"span_start"`
	SpanEnd         int         `json:"span_end" db:"span_end"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// Overlaps reports whether the source spans of f and other intersect.
func (f *RedFlag) Overlaps(other *RedFlag) bool {
	return f.SpanStart < other.SpanEnd && other.SpanStart < f.SpanEnd
}

// CategorizedRedFlag is a red flag with its display category.
type CategorizedRedFlag struct {
	RedFlag
	Category CategoryAssignment `json:"category"`
}
