package entities

import "time"

// GateOutcome is the decision of the confidence gate.
type GateOutcome string

const (
	GateAutoCreate       GateOutcome = "auto_create"
	GateReadyForReview   GateOutcome = "ready_for_review"
	GateNeedsManualEntry GateOutcome = "needs_manual_entry"
)

// ProcessingResult is returned for every processing run. It is never replaced by
// a Go error so the request layer can always render a state.
type ProcessingResult struct {
	Success            bool               `json:"success"`
	DocumentID         string             `json:"document_id"`
	Status             DocumentStatus     `json:"status"`
	AutoCreationStatus AutoCreationStatus `json:"auto_creation_status,omitempty"`
	GateOutcome        GateOutcome        `json:"gate_outcome,omitempty"`
	ExtractionMethod   ExtractionMethod   `json:"extraction_method,omitempty"`
	Confidence         float64            `json:"confidence"`
	PolicyID           *string            `json:"policy_id,omitempty"`
	RedFlagsDetected   int                `json:"red_flags_detected"`
	Errors             []string           `json:"errors,omitempty"`
	Warnings           []string           `json:"warnings,omitempty"`
}

// PolicyCreationResult is returned by the policy creator.
type PolicyCreationResult struct {
	Success          bool     `json:"success"`
	PolicyID         *string  `json:"policy_id,omitempty"`
	RedFlagsDetected int      `json:"red_flags_detected"`
	Errors           []string `json:"errors,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// DocumentEventType identifies a document lifecycle event.
type DocumentEventType string

const (
	DocumentEventUploaded  DocumentEventType = "document_uploaded"
	DocumentEventProcessed DocumentEventType = "document_processed"
	DocumentEventFailed    DocumentEventType = "document_failed"
	DocumentEventReviewed  DocumentEventType = "document_reviewed"
)

// DocumentEvent is published on the event bus when a document changes state.
type DocumentEvent struct {
	ID                 string             `json:"id"`
	DocumentID         string             `json:"document_id"`
	EventType          DocumentEventType  `json:"event_type"`
	ProcessingStatus   DocumentStatus     `json:"processing_status"`
	AutoCreationStatus AutoCreationStatus `json:"auto_creation_status,omitempty"`
	PolicyID           *string            `json:"policy_id,omitempty"`
	Message            string             `json:"message,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
}

// ExtractedText is what a text extractor returns for one file.
type ExtractedText struct {
	Text            string  `json:"text"`
	ConfidenceScore float64 `json:"confidence_score"`
	PageCount       int     `json:"page_count"`
}
