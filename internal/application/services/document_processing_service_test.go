package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type processingFixture struct {
	docs      *MockPolicyDocumentRepository
	policies  *MockInsurancePolicyRepository
	flags     *MockRedFlagRepository
	text      *MockTextExtractor
	ai        *MockExtractionProvider
	events    *MockEventBus
	service   *services.DocumentProcessingService
	uploadDir string
}

func newProcessingFixture(t *testing.T, aiEnabled bool) *processingFixture {
	f := &processingFixture{
		docs:      new(MockPolicyDocumentRepository),
		policies:  new(MockInsurancePolicyRepository),
		flags:     new(MockRedFlagRepository),
		text:      new(MockTextExtractor),
		ai:        new(MockExtractionProvider),
		events:    new(MockEventBus),
		uploadDir: t.TempDir(),
	}
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	extractor := services.NewPolicyDataExtractor(f.ai, services.PolicyExtractorConfig{AIEnabled: aiEnabled})
	policyService := services.NewPolicyService(f.policies, services.NewRedFlagService(f.flags, nil, nil))
	f.service = services.NewDocumentProcessingService(f.docs, f.text, extractor, policyService, f.events, services.DocumentProcessingConfig{
		UploadDir: f.uploadDir,
	})
	return f
}

func pendingDocument(id string) *entities.PolicyDocument {
	return &entities.PolicyDocument{
		ID:               id,
		UserID:           "user-1",
		OriginalFilename: "plan.pdf",
		FilePath:         "/uploads/" + id + ".pdf",
		MimeType:         "application/pdf",
		ProcessingStatus: entities.DocumentStatusPending,
		CreatedAt:        fixedTime,
	}
}

func (f *processingFixture) expectDocument(doc *entities.PolicyDocument, text string) {
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.docs.On("Update", mock.Anything, doc).Return(nil)
	f.text.On("ExtractText", mock.Anything, doc.FilePath, doc.MimeType).
		Return(&entities.ExtractedText{Text: text, ConfidenceScore: 0.9, PageCount: 3}, nil)
}

func TestProcess_ShortTextFails(t *testing.T) {
	f := newProcessingFixture(t, true)
	doc := pendingDocument("doc-short")
	f.expectDocument(doc, "Page 1 of 1. Scanned image.")

	result := f.service.Process(context.Background(), doc.ID)

	assert.False(t, result.Success)
	assert.Equal(t, entities.DocumentStatusFailed, result.Status)
	assert.Equal(t, entities.DocumentStatusFailed, doc.ProcessingStatus)
	require.NotNil(t, doc.ProcessingError)
	assert.Contains(t, *doc.ProcessingError, "insufficient text")
	assert.Nil(t, result.PolicyID)
	f.ai.AssertNotCalled(t, "ExtractPolicyFields", mock.Anything, mock.Anything, mock.Anything)
	f.policies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.events.AssertCalled(t, "Publish", mock.Anything, providers.GetDocumentChannel(doc.ID), mock.MatchedBy(func(e *entities.DocumentEvent) bool {
		return e.EventType == entities.DocumentEventFailed
	}))
}

func TestProcess_TextExtractorError(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-err")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.docs.On("Update", mock.Anything, doc).Return(nil)
	f.text.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("encrypted pdf"))

	result := f.service.Process(context.Background(), doc.ID)

	assert.Equal(t, entities.DocumentStatusFailed, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "encrypted pdf")
}

func TestProcess_AutoCreatesPolicy(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-full")
	f.expectDocument(doc, fullPolicyText)
	f.policies.On("Create", mock.Anything, mock.MatchedBy(func(p *entities.InsurancePolicy) bool {
		return p.DocumentID == doc.ID && p.CreatedBy == entities.PolicyCreatedAuto
	})).Return(nil)
	f.flags.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	result := f.service.Process(context.Background(), doc.ID)

	require.True(t, result.Success, result.Errors)
	assert.Equal(t, entities.GateAutoCreate, result.GateOutcome)
	assert.Equal(t, entities.AutoCreationCompleted, result.AutoCreationStatus)
	assert.Equal(t, entities.ExtractionMethodPatternFallback, result.ExtractionMethod)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, 2, result.RedFlagsDetected)
	require.NotNil(t, result.PolicyID)
	assert.Equal(t, result.PolicyID, doc.PolicyID)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, fullPolicyText, doc.Text())
	f.events.AssertCalled(t, "Publish", mock.Anything, providers.EventChannelDocumentUpdates, mock.Anything)
}

func TestProcess_ReadyForReview(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-partial")
	f.expectDocument(doc, partialPolicyText)

	result := f.service.Process(context.Background(), doc.ID)

	assert.True(t, result.Success)
	assert.Equal(t, entities.GateReadyForReview, result.GateOutcome)
	assert.Equal(t, entities.AutoCreationReadyForReview, doc.AutoCreationStatus)
	require.NotNil(t, doc.ExtractedPolicyData)
	require.NotNil(t, doc.AutoCreationConfidence)
	assert.InDelta(t, 6.0/13.0, *doc.AutoCreationConfidence, 1e-9)
	assert.Nil(t, doc.PolicyID)
	f.policies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_LowConfidenceNeedsManualEntry(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-low")
	f.expectDocument(doc, scenarioOneText)

	result := f.service.Process(context.Background(), doc.ID)

	assert.Equal(t, entities.GateNeedsManualEntry, result.GateOutcome)
	assert.Equal(t, entities.AutoCreationNeedsManualEntry, result.AutoCreationStatus)
	assert.Equal(t, entities.DocumentStatusCompleted, result.Status)
	f.policies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_AIFailureFallsBack(t *testing.T) {
	f := newProcessingFixture(t, true)
	doc := pendingDocument("doc-ai")
	f.expectDocument(doc, partialPolicyText)
	f.ai.On("ExtractPolicyFields", mock.Anything, partialPolicyText, services.TargetFields).
		Return(nil, providers.ErrAIUnavailable)

	result := f.service.Process(context.Background(), doc.ID)

	assert.Equal(t, entities.ExtractionMethodPatternFallback, result.ExtractionMethod)
	assert.Equal(t, entities.GateReadyForReview, result.GateOutcome)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "ai extraction failed")
}

func TestProcess_CreationFailure(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-fail")
	f.expectDocument(doc, fullPolicyText)
	f.policies.On("Create", mock.Anything, mock.Anything).Return(errors.New("unique violation"))

	result := f.service.Process(context.Background(), doc.ID)

	assert.False(t, result.Success)
	assert.Equal(t, entities.AutoCreationFailed, result.AutoCreationStatus)
	assert.Equal(t, entities.DocumentStatusCompleted, doc.ProcessingStatus)
	require.NotNil(t, doc.ProcessingError)
	assert.Contains(t, *doc.ProcessingError, "unique violation")
	require.NotNil(t, doc.ExtractedPolicyData)
}

func TestProcess_DocumentNotFound(t *testing.T) {
	f := newProcessingFixture(t, false)
	f.docs.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("document not found"))

	result := f.service.Process(context.Background(), "missing")

	assert.False(t, result.Success)
	assert.Equal(t, []string{"document not found"}, result.Errors)
	f.text.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_AlreadyProcessing(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-busy")
	doc.ProcessingStatus = entities.DocumentStatusProcessing
	doc.UpdatedAt = time.Now().UTC().Add(-time.Minute)
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	result := f.service.Process(context.Background(), doc.ID)

	assert.False(t, result.Success)
	assert.Equal(t, entities.DocumentStatusProcessing, result.Status)
	f.docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProcess_ReclaimsStaleDocument(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-stale")
	doc.ProcessingStatus = entities.DocumentStatusProcessing
	doc.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	f.expectDocument(doc, partialPolicyText)

	result := f.service.Process(context.Background(), doc.ID)

	assert.True(t, result.Success, result.Errors)
	assert.Equal(t, entities.DocumentStatusCompleted, doc.ProcessingStatus)
	assert.Equal(t, entities.GateReadyForReview, result.GateOutcome)
}

func TestProcess_UpdateFailure(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-db")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.docs.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

	result := f.service.Process(context.Background(), doc.ID)

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "failed to save document")
	assert.Equal(t, entities.DocumentStatusFailed, result.Status)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "failure could not be recorded")
	f.text.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_FinalSaveFailureMarksDocumentFailed(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-utf8")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.docs.On("Update", mock.Anything, doc).Return(nil).Once()
	f.docs.On("Update", mock.Anything, doc).Return(errors.New("invalid byte sequence for encoding UTF8")).Once()
	f.docs.On("Update", mock.Anything, doc).Return(nil)
	f.text.On("ExtractText", mock.Anything, doc.FilePath, doc.MimeType).
		Return(&entities.ExtractedText{Text: partialPolicyText, ConfidenceScore: 0.9, PageCount: 1}, nil)

	result := f.service.Process(context.Background(), doc.ID)

	assert.False(t, result.Success)
	assert.Equal(t, entities.DocumentStatusFailed, result.Status)
	assert.Equal(t, entities.DocumentStatusFailed, doc.ProcessingStatus)
	require.NotNil(t, doc.ProcessingError)
	assert.Contains(t, *doc.ProcessingError, "invalid byte sequence")
	assert.Nil(t, doc.ExtractedText)
	assert.Nil(t, doc.ExtractedPolicyData)
	assert.Empty(t, result.Warnings)
	f.docs.AssertNumberOfCalls(t, "Update", 3)

	retry := f.service.Process(context.Background(), doc.ID)

	assert.True(t, retry.Success, retry.Errors)
	assert.Equal(t, entities.DocumentStatusCompleted, doc.ProcessingStatus)
}

func TestProcess_FinalSaveFailureKeepsCreatedPolicy(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-linked")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.docs.On("Update", mock.Anything, doc).Return(nil).Once()
	f.docs.On("Update", mock.Anything, doc).Return(errors.New("connection reset")).Once()
	f.docs.On("Update", mock.Anything, doc).Return(nil).Once()
	f.text.On("ExtractText", mock.Anything, doc.FilePath, doc.MimeType).
		Return(&entities.ExtractedText{Text: fullPolicyText, ConfidenceScore: 0.9, PageCount: 3}, nil)
	f.policies.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.flags.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	result := f.service.Process(context.Background(), doc.ID)

	assert.False(t, result.Success)
	assert.Equal(t, entities.DocumentStatusFailed, doc.ProcessingStatus)
	require.NotNil(t, doc.PolicyID)
	assert.Equal(t, doc.PolicyID, result.PolicyID)
	assert.Equal(t, entities.AutoCreationCompleted, result.AutoCreationStatus)
	f.docs.AssertExpectations(t)
}

func reviewableDocument(id string) *entities.PolicyDocument {
	doc := pendingDocument(id)
	_ = doc.StartProcessing()
	_ = doc.CompleteTextExtraction(partialPolicyText, 0.9, 1, fixedTime)
	_ = doc.SetAutoCreation(entities.AutoCreationReadyForReview, services.ExtractWithPatterns(partialPolicyText))
	return doc
}

func TestReview_ConfirmsStoredCandidate(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := reviewableDocument("doc-review")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.docs.On("Update", mock.Anything, doc).Return(nil)
	f.policies.On("Create", mock.Anything, mock.MatchedBy(func(p *entities.InsurancePolicy) bool {
		return p.CreatedBy == entities.PolicyCreatedReviewer &&
			p.PolicyName == "Bright Dental Basic" &&
			p.PolicyType == entities.PolicyTypeDental
	})).Return(nil)

	result := f.service.Review(context.Background(), doc.ID, services.ReviewSubmission{})

	require.True(t, result.Success, result.Errors)
	assert.Equal(t, entities.AutoCreationCompleted, doc.AutoCreationStatus)
	assert.Equal(t, result.PolicyID, doc.PolicyID)
	f.events.AssertCalled(t, "Publish", mock.Anything, providers.GetDocumentChannel(doc.ID), mock.MatchedBy(func(e *entities.DocumentEvent) bool {
		return e.EventType == entities.DocumentEventReviewed
	}))
}

func TestReview_ExistingPolicyRequiresForce(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := reviewableDocument("doc-linked")
	doc.LinkPolicy("pol-existing")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	result := f.service.Review(context.Background(), doc.ID, services.ReviewSubmission{})

	assert.False(t, result.Success)
	assert.Equal(t, "pol-existing", *result.PolicyID)
	f.policies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	f.docs.On("Update", mock.Anything, doc).Return(nil)
	f.policies.On("Create", mock.Anything, mock.Anything).Return(nil)

	forced := f.service.Review(context.Background(), doc.ID, services.ReviewSubmission{Force: true})

	require.True(t, forced.Success, forced.Errors)
	assert.NotEqual(t, "pol-existing", *doc.PolicyID)
}

func TestReview_RejectsInvalidData(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := reviewableDocument("doc-bad")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	negative := -1.0
	result := f.service.Review(context.Background(), doc.ID, services.ReviewSubmission{
		Data: &entities.ExtractedPolicyData{PremiumMonthly: &negative},
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors, "monthly premium cannot be negative")
	assert.Equal(t, entities.AutoCreationReadyForReview, doc.AutoCreationStatus)
}

func TestReview_RequiresExtractedText(t *testing.T) {
	f := newProcessingFixture(t, false)
	doc := pendingDocument("doc-pending")
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	result := f.service.Review(context.Background(), doc.ID, services.ReviewSubmission{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "no extracted text")
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores file and creates pending document", func(t *testing.T) {
		f := newProcessingFixture(t, false)
		f.docs.On("Create", mock.Anything, mock.AnythingOfType("*entities.PolicyDocument")).Return(nil)

		doc, err := f.service.Upload(ctx, services.UploadInput{
			UserID:   "user-1",
			Filename: "../../etc/My Plan.TXT",
			MimeType: "text/plain; charset=utf-8",
			Content:  strings.NewReader(fullPolicyText),
		})

		require.NoError(t, err)
		assert.Equal(t, "My Plan.TXT", doc.OriginalFilename)
		assert.Equal(t, entities.DocumentStatusPending, doc.ProcessingStatus)
		assert.Equal(t, "text/plain", doc.MimeType)
		assert.Equal(t, int64(len(fullPolicyText)), doc.FileSizeBytes)
		assert.Equal(t, f.uploadDir, filepath.Dir(doc.FilePath))

		stored, err := os.ReadFile(doc.FilePath)
		require.NoError(t, err)
		assert.Equal(t, fullPolicyText, string(stored))
		f.events.AssertCalled(t, "Publish", mock.Anything, providers.EventChannelDocumentUpdates, mock.MatchedBy(func(e *entities.DocumentEvent) bool {
			return e.EventType == entities.DocumentEventUploaded
		}))
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		f := newProcessingFixture(t, false)

		_, err := f.service.Upload(ctx, services.UploadInput{Filename: "plan.docx", Content: strings.NewReader("x")})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		f.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects mismatched mime type", func(t *testing.T) {
		f := newProcessingFixture(t, false)

		_, err := f.service.Upload(ctx, services.UploadInput{Filename: "plan.pdf", MimeType: "text/plain", Content: strings.NewReader("x")})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects empty file", func(t *testing.T) {
		f := newProcessingFixture(t, false)

		_, err := f.service.Upload(ctx, services.UploadInput{Filename: "plan.pdf", Content: strings.NewReader("")})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		entries, _ := os.ReadDir(f.uploadDir)
		assert.Empty(t, entries)
	})

	t.Run("removes file when document create fails", func(t *testing.T) {
		f := newProcessingFixture(t, false)
		f.docs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := f.service.Upload(ctx, services.UploadInput{Filename: "plan.pdf", Content: strings.NewReader("%PDF-1.7")})

		assert.Error(t, err)
		entries, _ := os.ReadDir(f.uploadDir)
		assert.Empty(t, entries)
	})
}

func TestListPending(t *testing.T) {
	f := newProcessingFixture(t, false)
	f.docs.On("List", mock.Anything, mock.MatchedBy(func(filter repositories.DocumentFilter) bool {
		return filter.ProcessingStatus == entities.DocumentStatusPending && filter.Limit == 10
	})).
		Return([]*entities.PolicyDocument{pendingDocument("a")}, nil)

	docs, err := f.service.ListPending(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestListStale(t *testing.T) {
	f := newProcessingFixture(t, false)
	stale := pendingDocument("stale")
	stale.ProcessingStatus = entities.DocumentStatusProcessing
	stale.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	fresh := pendingDocument("fresh")
	fresh.ProcessingStatus = entities.DocumentStatusProcessing
	fresh.UpdatedAt = time.Now().UTC()
	f.docs.On("List", mock.Anything, mock.MatchedBy(func(filter repositories.DocumentFilter) bool {
		return filter.ProcessingStatus == entities.DocumentStatusProcessing && filter.Limit == 10
	})).
		Return([]*entities.PolicyDocument{stale, fresh}, nil)

	docs, err := f.service.ListStale(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "stale", docs[0].ID)
}
