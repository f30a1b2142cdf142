package services

import (
	"context"
	"fmt"

	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const redFlagSheet = "Red Flags"

var redFlagExportHeaders = []string{
	"Severity", "Type", "Category", "Title", "Description", "Source Text", "Recommendation", "Confidence",
}

// RedFlagExportService renders a policy's red flags as a spreadsheet.
type RedFlagExportService struct {
	redFlags *RedFlagService
}

// NewRedFlagExportService creates a new export service.
func NewRedFlagExportService(redFlags *RedFlagService) *RedFlagExportService {
	return &RedFlagExportService{redFlags: redFlags}
}

// ExportPolicyRedFlags builds an xlsx workbook with one row per flag.
func (s *RedFlagExportService) ExportPolicyRedFlags(ctx context.Context, policyID string) ([]byte, error) {
	flags, err := s.redFlags.ListForPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if _, err := f.NewSheet(redFlagSheet); err != nil {
		return nil, apperrors.NewInternalError("failed to create sheet", err)
	}
	index, _ := f.GetSheetIndex(redFlagSheet)
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range redFlagExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(redFlagSheet, cell, h)
	}

	for r, flag := range flags {
		recommendation := ""
		if flag.Recommendation != nil {
			recommendation = *flag.Recommendation
		}
		values := []any{
			string(flag.Severity),
			string(flag.FlagType),
			flag.Category.DisplayName,
			flag.Title,
			flag.Description,
			flag.SourceText,
			recommendation,
			flag.ConfidenceScore,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(redFlagSheet, cell, v)
		}
	}

	_ = f.SetColWidth(redFlagSheet, "A", "B", 20)
	_ = f.SetColWidth(redFlagSheet, "C", "D", 28)
	_ = f.SetColWidth(redFlagSheet, "E", "G", 60)
	_ = f.SetColWidth(redFlagSheet, "H", "H", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to write workbook for policy %s", policyID), err)
	}
	return buf.Bytes(), nil
}
