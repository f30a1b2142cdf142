package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxPreviewChars bounds the text accepted by the red-flag preview.
const maxPreviewChars = 200000

// PolicyReader loads stored policies.
type PolicyReader interface {
	GetByID(ctx context.Context, id string) (*entities.InsurancePolicy, error)
}

// RedFlagReader lists and previews red flags.
type RedFlagReader interface {
	ListForPolicy(ctx context.Context, policyID string) ([]entities.CategorizedRedFlag, error)
	Preview(text string) []entities.CategorizedRedFlag
}

// RedFlagExporter renders a policy's red flags as a workbook.
type RedFlagExporter interface {
	ExportPolicyRedFlags(ctx context.Context, policyID string) ([]byte, error)
}

// PolicyHandler handles insurance policy and red flag requests
type PolicyHandler struct {
	policies PolicyReader
	redFlags RedFlagReader
	exporter RedFlagExporter
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policies PolicyReader, redFlags RedFlagReader, exporter RedFlagExporter) *PolicyHandler {
	return &PolicyHandler{policies: policies, redFlags: redFlags, exporter: exporter}
}

// GetPolicy handles GET /api/policies/{id}
func (h *PolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, ok := h.loadPolicy(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, policy)
}

// ListRedFlags handles GET /api/policies/{id}/red-flags
func (h *PolicyHandler) ListRedFlags(w http.ResponseWriter, r *http.Request) {
	policy, ok := h.loadPolicy(w, r)
	if !ok {
		return
	}

	flags, err := h.redFlags.ListForPolicy(r.Context(), policy.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"policy_id": policy.ID,
		"red_flags": flags,
		"count":     len(flags),
	})
}

// ExportRedFlags handles GET /api/policies/{id}/red-flags/export
func (h *PolicyHandler) ExportRedFlags(w http.ResponseWriter, r *http.Request) {
	policy, ok := h.loadPolicy(w, r)
	if !ok {
		return
	}

	data, err := h.exporter.ExportPolicyRedFlags(r.Context(), policy.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="red-flags-%s.xlsx"`, policy.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type previewRequest struct {
	Text string `json:"text"`
}

// PreviewRedFlags handles POST /api/red-flags/preview. Nothing is stored.
func (h *PolicyHandler) PreviewRedFlags(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxPreviewChars {
		respondWithError(w, http.StatusRequestEntityTooLarge, "text too long")
		return
	}

	flags := h.redFlags.Preview(req.Text)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"red_flags": flags,
		"count":     len(flags),
	})
}

func (h *PolicyHandler) loadPolicy(w http.ResponseWriter, r *http.Request) (*entities.InsurancePolicy, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "policy ID is required")
		return nil, false
	}

	policy, err := h.policies.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return nil, false
	}
	return policy, true
}
