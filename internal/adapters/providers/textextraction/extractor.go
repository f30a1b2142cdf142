// Package textextraction turns stored upload files into plain text.
package textextraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/utils"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

// Extractor dispatches to a format-specific reader by MIME type.
type Extractor struct {
	pdf   *PDFExtractor
	plain *PlainTextExtractor
}

// NewTextExtractor creates the default extractor for PDF and plain text files.
func NewTextExtractor(workDir string) providers.TextExtractor {
	return &Extractor{
		pdf:   NewPDFExtractor(workDir),
		plain: NewPlainTextExtractor(),
	}
}

// ExtractText reads the file at path.
func (e *Extractor) ExtractText(ctx context.Context, path, mimeType string) (*entities.ExtractedText, error) {
	switch normalizeMime(mimeType) {
	case mimePDF:
		return e.pdf.ExtractText(ctx, path, mimeType)
	case mimeText:
		return e.plain.ExtractText(ctx, path, mimeType)
	}
	return nil, fmt.Errorf("unsupported mime type %q", mimeType)
}

func normalizeMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

// textConfidence scores how much of the text is readable; scanned PDFs
// without a text layer produce mostly control bytes or nothing.
func textConfidence(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return entities.ClampConfidence(utils.PrintableRatio(text))
}
