package textextraction

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// PlainTextExtractor reads UTF-8 text files.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// ExtractText reads the whole file. Invalid UTF-8 sequences are replaced.
func (e *PlainTextExtractor) ExtractText(ctx context.Context, path, _ string) (*entities.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(raw)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	text = strings.TrimPrefix(text, "\ufeff")

	return &entities.ExtractedText{
		Text:            text,
		ConfidenceScore: textConfidence(text),
		PageCount:       1,
	}, nil
}
