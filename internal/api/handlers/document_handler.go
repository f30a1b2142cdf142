package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// DefaultMaxUploadBytes caps an upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 20 << 20

// DocumentWorkflow is the document lifecycle used by the handler.
type DocumentWorkflow interface {
	Upload(ctx context.Context, in services.UploadInput) (*entities.PolicyDocument, error)
	Get(ctx context.Context, id string) (*entities.PolicyDocument, error)
	Process(ctx context.Context, documentID string) *entities.ProcessingResult
	Review(ctx context.Context, documentID string, sub services.ReviewSubmission) *entities.PolicyCreationResult
}

// DocumentHandler handles policy document requests
type DocumentHandler struct {
	workflow       DocumentWorkflow
	maxUploadBytes int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(workflow DocumentWorkflow, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &DocumentHandler{workflow: workflow, maxUploadBytes: maxUploadBytes}
}

// UploadDocument handles POST /api/documents
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	doc, err := h.workflow.Upload(r.Context(), services.UploadInput{
		UserID:   r.FormValue("user_id"),
		Filename: header.Filename,
		MimeType: mimeType,
		Content:  file,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, doc)
}

// GetDocument handles GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	doc, err := h.workflow.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doc)
}

// ProcessDocument handles POST /api/documents/{id}/process. Processing runs in
// the request; a failed run still answers 200 with the structured result.
func (h *DocumentHandler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if _, err := h.workflow.Get(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.workflow.Process(r.Context(), id))
}

// ReviewDocument handles POST /api/documents/{id}/review
func (h *DocumentHandler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var sub services.ReviewSubmission
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &sub) {
			return
		}
	}

	result := h.workflow.Review(r.Context(), id, sub)
	status := http.StatusCreated
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	respondWithJSON(w, status, result)
}
