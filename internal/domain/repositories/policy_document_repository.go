package repositories

import (
	"context"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// PolicyDocumentRepository defines the interface for uploaded document operations
type PolicyDocumentRepository interface {
	// Create creates a new document record
	Create(ctx context.Context, doc *entities.PolicyDocument) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*entities.PolicyDocument, error)

	// Update writes the processing and creation state of a document
	Update(ctx context.Context, doc *entities.PolicyDocument) error

	// List retrieves documents with filters
	List(ctx context.Context, filter DocumentFilter) ([]*entities.PolicyDocument, error)
}

// DocumentFilter defines filters for listing documents
type DocumentFilter struct {
	UserID           string
	ProcessingStatus entities.DocumentStatus
	Limit            int
	Offset           int
}
