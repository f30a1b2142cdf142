package evaluation

import (
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// Difficulty grades how hard a golden case is for the extractor.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid checks if the difficulty is one of the defined constants.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GoldenCase is a labeled policy text with the fields and flag types a
// correct run should produce.
type GoldenCase struct {
	ID                string                 `json:"id"`
	Text              string                 `json:"text"`
	ExpectedFields    map[string]string      `json:"expected_fields"`
	ExpectedFlagTypes []entities.RedFlagType `json:"expected_flag_types"`
	Difficulty        Difficulty             `json:"difficulty"`
}

// CaseResult holds the evaluation outcome for a single case.
type CaseResult struct {
	CaseID            string                 `json:"case_id"`
	Difficulty        Difficulty             `json:"difficulty"`
	FieldAccuracy     float64                `json:"field_accuracy"`
	MismatchedFields  []string               `json:"mismatched_fields,omitempty"`
	FlagPrecision     float64                `json:"flag_precision"`
	FlagRecall        float64                `json:"flag_recall"`
	DetectedFlagTypes []entities.RedFlagType `json:"detected_flag_types"`
	Confidence        float64                `json:"extraction_confidence"`
	Latency           time.Duration          `json:"latency_ns"`
}

// Summary holds aggregate metrics across all golden cases.
type Summary struct {
	TotalCases       int                             `json:"total_cases"`
	AvgFieldAccuracy float64                         `json:"avg_field_accuracy"`
	AvgFlagPrecision float64                         `json:"avg_flag_precision"`
	AvgFlagRecall    float64                         `json:"avg_flag_recall"`
	AvgLatency       time.Duration                   `json:"avg_latency_ns"`
	PerfectCases     int                             `json:"perfect_cases"`
	ByDifficulty     map[Difficulty]*DifficultyStats `json:"by_difficulty"`
	Cases            []CaseResult                    `json:"cases"`
}

// DifficultyStats holds metrics grouped by difficulty.
type DifficultyStats struct {
	Count            int     `json:"count"`
	AvgFieldAccuracy float64 `json:"avg_field_accuracy"`
	AvgFlagPrecision float64 `json:"avg_flag_precision"`
	AvgFlagRecall    float64 `json:"avg_flag_recall"`
}
