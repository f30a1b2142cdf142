package repositories

import (
	"context"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// RedFlagRepository defines the interface for red flag operations.
// Flags are immutable so there is no update.
type RedFlagRepository interface {
	// CreateBatch stores all flags in one statement
	CreateBatch(ctx context.Context, flags []*entities.RedFlag) error

	// ListByPolicy retrieves a policy's flags ordered by span
	ListByPolicy(ctx context.Context, policyID string) ([]*entities.RedFlag, error)
}
