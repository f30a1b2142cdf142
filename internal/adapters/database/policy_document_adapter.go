package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

const policyDocumentsTable = "policy_documents"

var policyDocumentColumns = []any{
	"id", "user_id", "original_filename", "file_path", "mime_type",
	"file_size_bytes", "page_count", "extracted_text", "text_confidence",
	"processing_status", "processing_error", "extracted_policy_data",
	"auto_creation_status", "auto_creation_confidence", "policy_id",
	"created_at", "updated_at", "processed_at",
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PolicyDocumentAdapter implements PolicyDocumentRepository
type PolicyDocumentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPolicyDocumentAdapter creates a new policy document adapter
func NewPolicyDocumentAdapter(client *postgres.Client) repositories.PolicyDocumentRepository {
	return &PolicyDocumentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new document record
func (a *PolicyDocumentAdapter) Create(ctx context.Context, doc *entities.PolicyDocument) error {
	record, err := documentRecord(doc)
	if err != nil {
		return err
	}
	record["id"] = doc.ID
	record["user_id"] = nullString(doc.UserID)
	record["original_filename"] = doc.OriginalFilename
	record["file_path"] = doc.FilePath
	record["mime_type"] = doc.MimeType
	record["file_size_bytes"] = doc.FileSizeBytes
	record["created_at"] = doc.CreatedAt

	query, args, err := a.db.Insert(policyDocumentsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create policy document", err)
	}
	return nil
}

// GetByID retrieves a document by ID
func (a *PolicyDocumentAdapter) GetByID(ctx context.Context, id string) (*entities.PolicyDocument, error) {
	query, args, err := a.db.Select(policyDocumentColumns...).
		From(policyDocumentsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doc, err := scanPolicyDocument(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("policy document with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get policy document", err)
	}
	return doc, nil
}

// Update writes the processing and creation state of a document
func (a *PolicyDocumentAdapter) Update(ctx context.Context, doc *entities.PolicyDocument) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	record, err := documentRecord(doc)
	if err != nil {
		return err
	}

	query, args, err := a.db.Update(policyDocumentsTable).
		Set(record).
		Where(goqu.Ex{"id": doc.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update policy document", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("policy document with id %s not found", doc.ID))
	}
	return nil
}

// List retrieves documents, newest first
func (a *PolicyDocumentAdapter) List(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.PolicyDocument, error) {
	ds := a.db.Select(policyDocumentColumns...).From(policyDocumentsTable)

	if filter.UserID != "" {
		ds = ds.Where(goqu.Ex{"user_id": filter.UserID})
	}
	if filter.ProcessingStatus != "" {
		ds = ds.Where(goqu.Ex{"processing_status": string(filter.ProcessingStatus)})
	}

	ds = ds.Order(goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list policy documents", err)
	}
	defer rows.Close()

	docs := []*entities.PolicyDocument{}
	for rows.Next() {
		doc, err := scanPolicyDocument(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan policy document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate policy documents", err)
	}
	return docs, nil
}

// documentRecord holds the columns that change after upload.
func documentRecord(doc *entities.PolicyDocument) (goqu.Record, error) {
	var extracted sql.NullString
	if doc.ExtractedPolicyData != nil {
		raw, err := json.Marshal(doc.ExtractedPolicyData)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to encode extracted policy data", err)
		}
		extracted = sql.NullString{String: string(raw), Valid: true}
	}

	return goqu.Record{
		"page_count":               doc.PageCount,
		"extracted_text":           doc.ExtractedText,
		"text_confidence":          doc.TextConfidence,
		"processing_status":        string(doc.ProcessingStatus),
		"processing_error":         doc.ProcessingError,
		"extracted_policy_data":    extracted,
		"auto_creation_status":     nullString(string(doc.AutoCreationStatus)),
		"auto_creation_confidence": doc.AutoCreationConfidence,
		"policy_id":                doc.PolicyID,
		"updated_at":               doc.UpdatedAt,
		"processed_at":             doc.ProcessedAt,
	}, nil
}

func scanPolicyDocument(row rowScanner) (*entities.PolicyDocument, error) {
	doc := &entities.PolicyDocument{}
	var (
		userID, autoStatus sql.NullString
		status             string
		extracted          []byte
	)

	err := row.Scan(
		&doc.ID,
		&userID,
		&doc.OriginalFilename,
		&doc.FilePath,
		&doc.MimeType,
		&doc.FileSizeBytes,
		&doc.PageCount,
		&doc.ExtractedText,
		&doc.TextConfidence,
		&status,
		&doc.ProcessingError,
		&extracted,
		&autoStatus,
		&doc.AutoCreationConfidence,
		&doc.PolicyID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.UserID = userID.String
	doc.ProcessingStatus = entities.DocumentStatus(status)
	doc.AutoCreationStatus = entities.AutoCreationStatus(autoStatus.String)

	if len(extracted) > 0 {
		data := &entities.ExtractedPolicyData{}
		if err := json.Unmarshal(extracted, data); err != nil {
			return nil, fmt.Errorf("failed to decode extracted policy data: %w", err)
		}
		doc.ExtractedPolicyData = data
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
