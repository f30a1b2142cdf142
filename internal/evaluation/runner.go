package evaluation

import (
	"context"
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// PolicyExtractor turns raw policy text into candidate fields.
type PolicyExtractor interface {
	Extract(ctx context.Context, rawText string) *entities.ExtractedPolicyData
}

// FlagDetector finds red flags in raw policy text.
type FlagDetector interface {
	Detect(text string) []entities.RedFlag
}

// Runner runs evaluation across a set of golden cases.
type Runner struct {
	extractor PolicyExtractor
	detector  FlagDetector
}

func NewRunner(extractor PolicyExtractor, detector FlagDetector) *Runner {
	return &Runner{extractor: extractor, detector: detector}
}

// Run evaluates every case in order. It stops early only when ctx is done.
func (r *Runner) Run(ctx context.Context, cases []GoldenCase) (*Summary, error) {
	summary := &Summary{
		ByDifficulty: make(map[Difficulty]*DifficultyStats),
		Cases:        make([]CaseResult, 0, len(cases)),
	}

	for _, gc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.updateSummary(summary, r.evaluate(ctx, gc))
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) evaluate(ctx context.Context, gc GoldenCase) CaseResult {
	start := time.Now()
	data := r.extractor.Extract(ctx, gc.Text)
	flags := r.detector.Detect(gc.Text)
	duration := time.Since(start)

	detected := make([]entities.RedFlagType, 0, len(flags))
	seen := make(map[entities.RedFlagType]struct{}, len(flags))
	for _, f := range flags {
		if _, ok := seen[f.FlagType]; ok {
			continue
		}
		seen[f.FlagType] = struct{}{}
		detected = append(detected, f.FlagType)
	}

	accuracy, mismatched := FieldAccuracy(gc.ExpectedFields, data)
	result := CaseResult{
		CaseID:            gc.ID,
		Difficulty:        gc.Difficulty,
		FieldAccuracy:     accuracy,
		MismatchedFields:  mismatched,
		FlagPrecision:     FlagPrecision(gc.ExpectedFlagTypes, detected),
		FlagRecall:        FlagRecall(gc.ExpectedFlagTypes, detected),
		DetectedFlagTypes: detected,
		Latency:           duration,
	}
	if data != nil {
		result.Confidence = data.ExtractionConfidence
	}
	return result
}

func (r *Runner) updateSummary(s *Summary, res CaseResult) {
	s.TotalCases++
	s.AvgFieldAccuracy += res.FieldAccuracy
	s.AvgFlagPrecision += res.FlagPrecision
	s.AvgFlagRecall += res.FlagRecall
	s.AvgLatency += res.Latency
	if res.FieldAccuracy == 1 && res.FlagPrecision == 1 && res.FlagRecall == 1 {
		s.PerfectCases++
	}
	s.Cases = append(s.Cases, res)

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultyStats{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	ds.AvgFieldAccuracy += res.FieldAccuracy
	ds.AvgFlagPrecision += res.FlagPrecision
	ds.AvgFlagRecall += res.FlagRecall
}

func (r *Runner) finalizeSummary(s *Summary) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.AvgFieldAccuracy /= n
		s.AvgFlagPrecision /= n
		s.AvgFlagRecall /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.AvgFieldAccuracy /= n
			ds.AvgFlagPrecision /= n
			ds.AvgFlagRecall /= n
		}
	}
}
