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

// PolicyService creates and reads structured policies.
type PolicyService struct {
	repo     repositories.InsurancePolicyRepository
	redFlags *RedFlagService
}

// NewPolicyService creates a new policy service. redFlags may be nil to skip
// red flag analysis after creation.
func NewPolicyService(repo repositories.InsurancePolicyRepository, redFlags *RedFlagService) *PolicyService {
	return &PolicyService{repo: repo, redFlags: redFlags}
}

// CreateFromExtraction validates and persists a policy built from data, then
// runs red flag analysis on the document text. Validation problems are
// returned without attempting creation; red flag failures are warnings.
func (s *PolicyService) CreateFromExtraction(
	ctx context.Context,
	doc *entities.PolicyDocument,
	data *entities.ExtractedPolicyData,
	createdBy entities.PolicyCreator,
) *entities.PolicyCreationResult {
	logger := observability.LoggerFromContext(ctx)

	policy := entities.PolicyFromExtraction(doc, data, createdBy)
	if problems := policy.Validate(); len(problems) > 0 {
		return &entities.PolicyCreationResult{Success: false, Errors: problems}
	}

	now := time.Now().UTC()
	policy.ID = uuid.New().String()
	policy.CreatedAt = now
	policy.UpdatedAt = now

	if err := s.repo.Create(ctx, policy); err != nil {
		logger.Error().Err(err).Str("document_id", doc.ID).Msg("failed to save policy")
		return &entities.PolicyCreationResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("failed to save policy: %v", err)},
		}
	}

	result := &entities.PolicyCreationResult{Success: true, PolicyID: &policy.ID}

	if s.redFlags != nil && doc.Text() != "" {
		flags, err := s.redFlags.AnalyzePolicy(ctx, policy.ID, doc.Text())
		if err != nil {
			logger.Warn().Err(err).Str("policy_id", policy.ID).Msg("red flag analysis failed")
			result.Warnings = append(result.Warnings, fmt.Sprintf("red flag analysis failed: %v", err))
		} else {
			result.RedFlagsDetected = len(flags)
		}
	}

	logger.Info().
		Str("document_id", doc.ID).
		Str("policy_id", policy.ID).
		Str("created_by", string(createdBy)).
		Int("red_flags", result.RedFlagsDetected).
		Msg("policy created")
	return result
}

// GetByID retrieves a policy.
func (s *PolicyService) GetByID(ctx context.Context, id string) (*entities.InsurancePolicy, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("policy ID is required")
	}
	return s.repo.GetByID(ctx, id)
}
