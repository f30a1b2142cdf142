package providers

import (
	"context"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// TextExtractor converts a stored file into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, path, mimeType string) (*entities.ExtractedText, error)
}
