package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

// RedFlagService detects, stores and lists red flags.
type RedFlagService struct {
	repo        repositories.RedFlagRepository
	detector    *RedFlagDetector
	categorizer *CategorizationService
}

// NewRedFlagService creates a new red flag service.
func NewRedFlagService(repo repositories.RedFlagRepository, detector *RedFlagDetector, categorizer *CategorizationService) *RedFlagService {
	if detector == nil {
		detector = NewRedFlagDetector()
	}
	if categorizer == nil {
		categorizer = NewCategorizationService()
	}
	return &RedFlagService{repo: repo, detector: detector, categorizer: categorizer}
}

// AnalyzePolicy detects flags in text and stores them under policyID.
func (s *RedFlagService) AnalyzePolicy(ctx context.Context, policyID, text string) ([]*entities.RedFlag, error) {
	if policyID == "" {
		return nil, apperrors.NewValidationError("policy ID is required")
	}

	candidates := s.detector.Detect(text)
	if len(candidates) == 0 {
		return []*entities.RedFlag{}, nil
	}

	now := time.Now().UTC()
	flags := make([]*entities.RedFlag, len(candidates))
	for i := range candidates {
		f := candidates[i]
		f.ID = uuid.New().String()
		f.PolicyID = policyID
		f.CreatedAt = now
		flags[i] = &f
	}

	if err := s.repo.CreateBatch(ctx, flags); err != nil {
		return nil, fmt.Errorf("failed to save red flags: %w", err)
	}

	for _, f := range flags {
		observability.RecordRedFlag(ctx, string(f.FlagType), string(f.Severity))
	}
	return flags, nil
}

// ListForPolicy returns a policy's stored flags with display categories.
func (s *RedFlagService) ListForPolicy(ctx context.Context, policyID string) ([]entities.CategorizedRedFlag, error) {
	if policyID == "" {
		return nil, apperrors.NewValidationError("policy ID is required")
	}

	flags, err := s.repo.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list red flags: %w", err)
	}

	out := make([]entities.CategorizedRedFlag, 0, len(flags))
	for _, f := range flags {
		out = append(out, entities.CategorizedRedFlag{RedFlag: *f, Category: s.categorizer.CategorizeRedFlag(*f)})
	}
	return out, nil
}

// Preview runs detection without storing anything.
func (s *RedFlagService) Preview(text string) []entities.CategorizedRedFlag {
	candidates := s.detector.Detect(text)
	out := make([]entities.CategorizedRedFlag, 0, len(candidates))
	for _, f := range candidates {
		out = append(out, entities.CategorizedRedFlag{RedFlag: f, Category: s.categorizer.CategorizeRedFlag(f)})
	}
	return out
}
