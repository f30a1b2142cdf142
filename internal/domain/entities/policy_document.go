package entities

import (
	"fmt"
	"time"

	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

// DocumentStatus tracks text extraction for an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// IsValid checks if the status is one of the defined constants.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

// AutoCreationStatus tracks the policy creation pipeline. The empty value means
// the pipeline has not produced an outcome yet.
type AutoCreationStatus string

const (
	AutoCreationNone             AutoCreationStatus = ""
	AutoCreationReadyForReview   AutoCreationStatus = "ready_for_review"
	AutoCreationNeedsManualEntry AutoCreationStatus = "needs_manual_entry"
	AutoCreationCompleted        AutoCreationStatus = "completed"
	AutoCreationFailed           AutoCreationStatus = "failed"
)

// IsValid checks if the status is one of the defined constants.
func (s AutoCreationStatus) IsValid() bool {
	switch s {
	case AutoCreationNone, AutoCreationReadyForReview, AutoCreationNeedsManualEntry, AutoCreationCompleted, AutoCreationFailed:
		return true
	}
	return false
}

// PolicyDocument is an uploaded policy file and its processing state.
type PolicyDocument struct {
	ID                     string               `json:"id" db:"id"`
	UserID                 string               `json:"user_id" db:"user_id"`
	OriginalFilename       string               `json:"original_filename" db:"original_filename"`
	FilePath               string               `json:"-" db:"file_path"`
	MimeType               string               `json:"mime_type" db:"mime_type"`
	FileSizeBytes          int64                `json:"file_size_bytes" db:"file_size_bytes"`
	PageCount              int                  `json:"page_count" db:"page_count"`
	ExtractedText          *string              `json:"-" db:"extracted_text"`
	TextConfidence         *float64             `json:"text_confidence,omitempty" db:"text_confidence"`
	ProcessingStatus       DocumentStatus       `json:"processing_status" db:"processing_status"`
	ProcessingError        *string              `json:"processing_error,omitempty" db:"processing_error"`
	ExtractedPolicyData    *ExtractedPolicyData `json:"extracted_policy_data,omitempty" db:"extracted_policy_data"`
	AutoCreationStatus     AutoCreationStatus   `json:"auto_creation_status,omitempty" db:"auto_creation_status"`
	AutoCreationConfidence *float64             `json:"auto_creation_confidence,omitempty" db:"auto_creation_confidence"`
	PolicyID               *string              `json:"policy_id,omitempty" db:"policy_id"`
	CreatedAt              time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at" db:"updated_at"`
	ProcessedAt            *time.Time           `json:"processed_at,omitempty" db:"processed_at"`
}

// StartProcessing moves a pending or failed document into processing.
// Failed documents may be restarted by an explicit caller.
func (d *PolicyDocument) StartProcessing() error {
	return d.StartProcessingAt(time.Time{}, 0)
}

// StartProcessingAt also reclaims a document that has sat in processing for
// at least staleAfter, which happens when a run dies before its last save.
// A zero staleAfter never reclaims.
func (d *PolicyDocument) StartProcessingAt(now time.Time, staleAfter time.Duration) error {
	switch {
	case d.ProcessingStatus == DocumentStatusPending, d.ProcessingStatus == DocumentStatusFailed:
	case d.IsStale(now, staleAfter):
	default:
		return apperrors.NewConflictError(fmt.Sprintf("document %s cannot start processing from status %s", d.ID, d.ProcessingStatus))
	}
	d.ProcessingStatus = DocumentStatusProcessing
	d.ProcessingError = nil
	d.AutoCreationStatus = AutoCreationNone
	d.AutoCreationConfidence = nil
	d.ExtractedPolicyData = nil
	return nil
}

// IsStale reports a processing document not updated for staleAfter.
func (d *PolicyDocument) IsStale(now time.Time, staleAfter time.Duration) bool {
	if d.ProcessingStatus != DocumentStatusProcessing || staleAfter <= 0 || d.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(d.UpdatedAt) >= staleAfter
}

// MarkSaveFailed records that the run's state could not be stored. Content
// fields are dropped so the smaller record can still be written; a linked
// policy is kept.
func (d *PolicyDocument) MarkSaveFailed(message string, at time.Time) {
	d.ProcessingStatus = DocumentStatusFailed
	d.ProcessingError = &message
	d.ExtractedText = nil
	d.TextConfidence = nil
	d.ExtractedPolicyData = nil
	d.ProcessedAt = &at
	if d.PolicyID == nil {
		d.AutoCreationStatus = AutoCreationNone
		d.AutoCreationConfidence = nil
	}
}

// CompleteTextExtraction records successful text extraction.
func (d *PolicyDocument) CompleteTextExtraction(text string, confidence float64, pageCount int, at time.Time) error {
	if d.ProcessingStatus != DocumentStatusProcessing {
		return apperrors.NewConflictError(fmt.Sprintf("document %s is not processing", d.ID))
	}
	c := ClampConfidence(confidence)
	d.ExtractedText = &text
	d.TextConfidence = &c
	if pageCount > 0 {
		d.PageCount = pageCount
	}
	d.ProcessingStatus = DocumentStatusCompleted
	d.ProcessedAt = &at
	return nil
}

// FailProcessing marks text extraction as failed. This is terminal for the
// automated path.
func (d *PolicyDocument) FailProcessing(message string, at time.Time) error {
	if d.ProcessingStatus != DocumentStatusProcessing {
		return apperrors.NewConflictError(fmt.Sprintf("document %s is not processing", d.ID))
	}
	d.ProcessingStatus = DocumentStatusFailed
	d.ProcessingError = &message
	d.ProcessedAt = &at
	return nil
}

// SetAutoCreation records the outcome of the creation pipeline. Text extraction
// must have completed.
func (d *PolicyDocument) SetAutoCreation(status AutoCreationStatus, data *ExtractedPolicyData) error {
	if d.ProcessingStatus != DocumentStatusCompleted {
		return apperrors.NewConflictError(fmt.Sprintf("document %s has no extracted text", d.ID))
	}
	if !status.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid auto creation status %q", status))
	}
	d.AutoCreationStatus = status
	if data != nil {
		d.ExtractedPolicyData = data
		c := ClampConfidence(data.ExtractionConfidence)
		d.AutoCreationConfidence = &c
	}
	return nil
}

// RecordCreationFailure marks creation failed and keeps the error message.
func (d *PolicyDocument) RecordCreationFailure(message string) {
	d.AutoCreationStatus = AutoCreationFailed
	d.ProcessingError = &message
}

// LinkPolicy attaches the created policy and completes the creation pipeline.
func (d *PolicyDocument) LinkPolicy(policyID string) {
	d.PolicyID = &policyID
	d.AutoCreationStatus = AutoCreationCompleted
	d.ProcessingError = nil
}

// Text returns the extracted text or "".
func (d *PolicyDocument) Text() string {
	if d.ExtractedText == nil {
		return ""
	}
	return *d.ExtractedText
}
