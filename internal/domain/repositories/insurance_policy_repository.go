package repositories

import (
	"context"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// InsurancePolicyRepository defines the interface for structured policy operations
type InsurancePolicyRepository interface {
	// Create creates a new policy
	Create(ctx context.Context, policy *entities.InsurancePolicy) error

	// GetByID retrieves a policy by ID
	GetByID(ctx context.Context, id string) (*entities.InsurancePolicy, error)

	// GetByDocumentID retrieves the policies created from a document, oldest first
	GetByDocumentID(ctx context.Context, documentID string) ([]*entities.InsurancePolicy, error)
}
