package textextraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
)

// PDFExtractor pulls the text layer out of a PDF. Page content streams are
// dumped with pdfcpu and their text-showing operators decoded.
type PDFExtractor struct {
	workDir string
}

// NewPDFExtractor creates a PDF extractor. Temporary content dumps go under
// workDir, or the system temp dir when empty.
func NewPDFExtractor(workDir string) *PDFExtractor {
	return &PDFExtractor{workDir: workDir}
}

// ExtractText returns the concatenated page text with one blank line between pages.
func (e *PDFExtractor) ExtractText(ctx context.Context, path, _ string) (*entities.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := observability.LoggerFromContext(ctx)

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	outDir, err := os.MkdirTemp(e.workDir, "pdftext-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract pdf content: %w", err)
	}

	files, err := contentFiles(outDir)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read content stream: %w", err)
		}
		if page := strings.TrimSpace(DecodeContentStream(raw)); page != "" {
			pages = append(pages, page)
		}
	}

	text := strings.Join(pages, "\n\n")
	logger.Debug().
		Str("path", path).
		Int("pages", pageCount).
		Int("pages_with_text", len(pages)).
		Int("chars", len(text)).
		Msg("pdf text extracted")

	return &entities.ExtractedText{
		Text:            text,
		ConfidenceScore: textConfidence(text),
		PageCount:       pageCount,
	}, nil
}

// contentFiles lists dumped content streams in page order.
func contentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list content streams: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})
	return files, nil
}

// pageNumber reads the trailing page number from names like
// "plan_Content_page_12.txt".
func pageNumber(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	i := strings.LastIndexByte(base, '_')
	n := 0
	for _, r := range base[i+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
