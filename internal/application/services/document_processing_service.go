package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

// DefaultMinTextLength is the shortest trimmed text accepted from the text extractor.
const DefaultMinTextLength = 50

// DefaultStaleProcessingAfter is how long a document may sit in processing
// before another run may reclaim it.
const DefaultStaleProcessingAfter = 15 * time.Minute

// Outcome labels used in logs and metrics.
const (
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeStructuringError = "structuring_failed"
	OutcomeCreationFailed   = "creation_failed"
	OutcomePersistFailed    = "persist_failed"
)

var supportedMimeTypes = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
}

// DocumentProcessingConfig configures the processing workflow.
type DocumentProcessingConfig struct {
	UploadDir     string
	MinTextLength int
	Thresholds    config.WorkflowThresholds
	StaleAfter    time.Duration
}

// UploadInput describes an uploaded file.
type UploadInput struct {
	UserID   string
	Filename string
	MimeType string
	Content  io.Reader
}

// ReviewSubmission is a reviewer's decision on a document. A nil Data confirms
// the stored candidate. Force allows creating another policy for a document
// that already has one.
type ReviewSubmission struct {
	Data  *entities.ExtractedPolicyData `json:"data,omitempty"`
	Force bool                          `json:"force"`
}

// DocumentProcessingService drives a document from upload to policy.
type DocumentProcessingService struct {
	docs          repositories.PolicyDocumentRepository
	textExtractor providers.TextExtractor
	extractor     *PolicyDataExtractor
	policies      *PolicyService
	events        providers.EventBus
	cfg           DocumentProcessingConfig
	now           func() time.Time
}

// NewDocumentProcessingService creates the workflow. events may be nil.
func NewDocumentProcessingService(
	docs repositories.PolicyDocumentRepository,
	textExtractor providers.TextExtractor,
	extractor *PolicyDataExtractor,
	policies *PolicyService,
	events providers.EventBus,
	cfg DocumentProcessingConfig,
) *DocumentProcessingService {
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	if cfg.Thresholds.IsZero() {
		cfg.Thresholds = config.DefaultWorkflowThresholds()
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleProcessingAfter
	}
	return &DocumentProcessingService{
		docs:          docs,
		textExtractor: textExtractor,
		extractor:     extractor,
		policies:      policies,
		events:        events,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the file and creates a pending document.
func (s *DocumentProcessingService) Upload(ctx context.Context, in UploadInput) (*entities.PolicyDocument, error) {
	name := filepath.Base(strings.TrimSpace(in.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apperrors.NewValidationError("filename is required")
	}
	if in.Content == nil {
		return nil, apperrors.NewValidationError("file content is required")
	}

	ext := strings.ToLower(filepath.Ext(name))
	expected, ok := supportedMimeTypes[ext]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported file type %q", ext), "only .pdf and .txt files are accepted")
	}
	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(in.MimeType, ";")[0]))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = expected
	}
	if mimeType != expected {
		return nil, apperrors.NewValidationError(fmt.Sprintf("mime type %q does not match file extension %q", mimeType, ext))
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o750); err != nil {
		return nil, apperrors.NewInternalError("failed to create upload directory", err)
	}

	id := uuid.New().String()
	path := filepath.Join(s.cfg.UploadDir, id+ext)
	size, err := writeFile(path, in.Content)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store uploaded file", err)
	}
	if size == 0 {
		_ = os.Remove(path)
		return nil, apperrors.NewValidationError("uploaded file is empty")
	}

	now := s.now()
	doc := &entities.PolicyDocument{
		ID:               id,
		UserID:           in.UserID,
		OriginalFilename: name,
		FilePath:         path,
		MimeType:         mimeType,
		FileSizeBytes:    size,
		ProcessingStatus: entities.DocumentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.publish(ctx, doc, entities.DocumentEventUploaded, "")
	return doc, nil
}

// Get retrieves a document.
func (s *DocumentProcessingService) Get(ctx context.Context, id string) (*entities.PolicyDocument, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("document ID is required")
	}
	return s.docs.GetByID(ctx, id)
}

// ListPending returns documents that were uploaded but never processed.
func (s *DocumentProcessingService) ListPending(ctx context.Context, limit int) ([]*entities.PolicyDocument, error) {
	return s.docs.List(ctx, repositories.DocumentFilter{
		ProcessingStatus: entities.DocumentStatusPending,
		Limit:            limit,
	})
}

// ListStale returns documents left in processing past the stale window.
func (s *DocumentProcessingService) ListStale(ctx context.Context, limit int) ([]*entities.PolicyDocument, error) {
	docs, err := s.docs.List(ctx, repositories.DocumentFilter{
		ProcessingStatus: entities.DocumentStatusProcessing,
		Limit:            limit,
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	stale := docs[:0]
	for _, doc := range docs {
		if doc.IsStale(now, s.cfg.StaleAfter) {
			stale = append(stale, doc)
		}
	}
	return stale, nil
}

// Process runs text extraction, structuring, the confidence gate and, when the
// gate allows it, policy creation. Every failure is recorded on the document
// and reported in the result; Process itself never fails.
func (s *DocumentProcessingService) Process(ctx context.Context, documentID string) *entities.ProcessingResult {
	logger := observability.LoggerFromContext(ctx).With().Str("document_id", documentID).Logger()
	result := &entities.ProcessingResult{DocumentID: documentID}

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := doc.StartProcessingAt(s.now(), s.cfg.StaleAfter); err != nil {
		result.Status = doc.ProcessingStatus
		result.AutoCreationStatus = doc.AutoCreationStatus
		result.PolicyID = doc.PolicyID
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	doc.UpdatedAt = s.now()
	if err := s.docs.Update(ctx, doc); err != nil {
		return s.persistFailure(ctx, result, doc, err)
	}

	text, ok := s.extractText(ctx, doc, result)
	if !ok {
		if err := s.docs.Update(ctx, doc); err != nil {
			return s.persistFailure(ctx, result, doc, err)
		}
		result.Status = doc.ProcessingStatus
		observability.RecordDocumentProcessed(ctx, OutcomeExtractionFailed)
		logger.Warn().Strs("errors", result.Errors).Msg("text extraction failed")
		s.publish(ctx, doc, entities.DocumentEventFailed, strings.Join(result.Errors, "; "))
		return result
	}

	outcome := s.structure(ctx, doc, text, result)

	doc.UpdatedAt = s.now()
	if err := s.docs.Update(ctx, doc); err != nil {
		return s.persistFailure(ctx, result, doc, err)
	}

	result.Status = doc.ProcessingStatus
	result.AutoCreationStatus = doc.AutoCreationStatus
	result.PolicyID = doc.PolicyID
	result.Success = doc.AutoCreationStatus != entities.AutoCreationFailed

	observability.RecordDocumentProcessed(ctx, outcome)
	logger.Info().
		Str("method", string(result.ExtractionMethod)).
		Float64("confidence", result.Confidence).
		Str("outcome", outcome).
		Str("auto_creation_status", string(doc.AutoCreationStatus)).
		Msg("document processed")

	s.publish(ctx, doc, entities.DocumentEventProcessed, outcome)
	return result
}

// extractText moves doc to completed or failed. It reports false when the
// automated path must stop.
func (s *DocumentProcessingService) extractText(ctx context.Context, doc *entities.PolicyDocument, result *entities.ProcessingResult) (string, bool) {
	extracted, err := s.textExtractor.ExtractText(ctx, doc.FilePath, doc.MimeType)
	if err != nil {
		msg := fmt.Sprintf("text extraction failed: %v", err)
		_ = doc.FailProcessing(msg, s.now())
		result.Errors = append(result.Errors, msg)
		return "", false
	}

	text := ""
	if extracted != nil {
		text = extracted.Text
	}
	if len(strings.TrimSpace(text)) < s.cfg.MinTextLength {
		msg := fmt.Sprintf("insufficient text extracted (%d characters, minimum %d)", len(strings.TrimSpace(text)), s.cfg.MinTextLength)
		_ = doc.FailProcessing(msg, s.now())
		result.Errors = append(result.Errors, msg)
		return "", false
	}

	_ = doc.CompleteTextExtraction(text, extracted.ConfidenceScore, extracted.PageCount, s.now())
	return text, true
}

// structure runs the extractor and the gate and applies the outcome to doc.
func (s *DocumentProcessingService) structure(ctx context.Context, doc *entities.PolicyDocument, text string, result *entities.ProcessingResult) string {
	data, err := s.safeExtract(ctx, text)
	if err != nil {
		_ = doc.SetAutoCreation(entities.AutoCreationNeedsManualEntry, nil)
		result.GateOutcome = entities.GateNeedsManualEntry
		result.Warnings = append(result.Warnings, err.Error())
		return OutcomeStructuringError
	}

	result.ExtractionMethod = data.ExtractionMethod
	result.Confidence = data.ExtractionConfidence
	result.Warnings = append(result.Warnings, data.ExtractionErrors...)

	outcome := EvaluateGate(data, doc.OriginalFilename, s.cfg.Thresholds)
	result.GateOutcome = outcome

	if outcome != entities.GateAutoCreate {
		_ = doc.SetAutoCreation(AutoCreationStatusFor(outcome), data)
		return string(outcome)
	}

	created := s.policies.CreateFromExtraction(ctx, doc, data, entities.PolicyCreatedAuto)
	result.RedFlagsDetected = created.RedFlagsDetected
	result.Warnings = append(result.Warnings, created.Warnings...)
	if !created.Success {
		_ = doc.SetAutoCreation(entities.AutoCreationFailed, data)
		doc.RecordCreationFailure(strings.Join(created.Errors, "; "))
		result.Errors = append(result.Errors, created.Errors...)
		return OutcomeCreationFailed
	}

	_ = doc.SetAutoCreation(entities.AutoCreationCompleted, data)
	doc.LinkPolicy(*created.PolicyID)
	return string(outcome)
}

func (s *DocumentProcessingService) safeExtract(ctx context.Context, text string) (data *entities.ExtractedPolicyData, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("policy data extraction failed: %v", r)
		}
	}()

	if s.extractor == nil {
		return nil, errors.New("policy data extraction failed: no extractor configured")
	}
	data = s.extractor.Extract(ctx, text)
	if data == nil {
		return nil, errors.New("policy data extraction failed: no result")
	}
	return data, nil
}

// Review creates a policy from reviewer-approved data.
func (s *DocumentProcessingService) Review(ctx context.Context, documentID string, sub ReviewSubmission) *entities.PolicyCreationResult {
	logger := observability.LoggerFromContext(ctx).With().Str("document_id", documentID).Logger()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return &entities.PolicyCreationResult{Errors: []string{err.Error()}}
	}
	if doc.ProcessingStatus != entities.DocumentStatusCompleted {
		return &entities.PolicyCreationResult{Errors: []string{
			fmt.Sprintf("document %s has no extracted text (status %s)", doc.ID, doc.ProcessingStatus),
		}}
	}
	if doc.PolicyID != nil && !sub.Force {
		return &entities.PolicyCreationResult{
			PolicyID: doc.PolicyID,
			Errors:   []string{fmt.Sprintf("document %s already has policy %s; set force to create another", doc.ID, *doc.PolicyID)},
		}
	}

	data := sub.Data
	if data == nil {
		data = doc.ExtractedPolicyData
	}
	if data == nil {
		return &entities.PolicyCreationResult{Errors: []string{"no extracted data to confirm; submit policy data"}}
	}

	result := s.policies.CreateFromExtraction(ctx, doc, data, entities.PolicyCreatedReviewer)
	if !result.Success {
		logger.Info().Strs("errors", result.Errors).Msg("review submission rejected")
		return result
	}

	_ = doc.SetAutoCreation(entities.AutoCreationCompleted, data)
	doc.LinkPolicy(*result.PolicyID)
	doc.UpdatedAt = s.now()
	if err := s.docs.Update(ctx, doc); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("policy created but document update failed: %v", err))
	}

	logger.Info().Str("policy_id", *result.PolicyID).Bool("force", sub.Force).Msg("review accepted")
	s.publish(ctx, doc, entities.DocumentEventReviewed, "")
	return result
}

// persistFailure makes one best-effort write marking the document failed, so
// a run whose save was rejected does not leave it in processing.
func (s *DocumentProcessingService) persistFailure(ctx context.Context, result *entities.ProcessingResult, doc *entities.PolicyDocument, err error) *entities.ProcessingResult {
	logger := observability.LoggerFromContext(ctx)
	logger.Error().Err(err).Str("document_id", doc.ID).Msg("failed to save document state")
	observability.RecordDocumentProcessed(ctx, OutcomePersistFailed)

	msg := fmt.Sprintf("failed to save document: %v", err)
	now := s.now()
	doc.MarkSaveFailed(msg, now)
	doc.UpdatedAt = now
	if ferr := s.docs.Update(ctx, doc); ferr != nil {
		logger.Error().Err(ferr).Str("document_id", doc.ID).Msg("failed to record save failure")
		result.Warnings = append(result.Warnings, fmt.Sprintf("failure could not be recorded: %v", ferr))
	}

	result.Success = false
	result.Status = doc.ProcessingStatus
	result.AutoCreationStatus = doc.AutoCreationStatus
	result.PolicyID = doc.PolicyID
	result.Errors = append(result.Errors, msg)
	return result
}

func (s *DocumentProcessingService) publish(ctx context.Context, doc *entities.PolicyDocument, eventType entities.DocumentEventType, message string) {
	if s.events == nil {
		return
	}
	event := &entities.DocumentEvent{
		ID:                 uuid.New().String(),
		DocumentID:         doc.ID,
		EventType:          eventType,
		ProcessingStatus:   doc.ProcessingStatus,
		AutoCreationStatus: doc.AutoCreationStatus,
		PolicyID:           doc.PolicyID,
		Message:            message,
		Timestamp:          s.now(),
	}
	for _, channel := range []string{providers.GetDocumentChannel(doc.ID), providers.EventChannelDocumentUpdates} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish document event")
		}
	}
}

func writeFile(path string, content io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(f, content)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(path)
		return 0, copyErr
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return 0, closeErr
	}
	return n, nil
}
