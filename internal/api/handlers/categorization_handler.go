package handlers

import (
	"net/http"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// Categorizer assigns display categories.
type Categorizer interface {
	CategorizeBenefit(b entities.CoverageBenefit) entities.CategoryAssignment
	Taxonomy() []entities.CategoryInfo
}

// CategorizationHandler serves the category taxonomy
type CategorizationHandler struct {
	categorizer Categorizer
}

// NewCategorizationHandler creates a new categorization handler
func NewCategorizationHandler(categorizer Categorizer) *CategorizationHandler {
	return &CategorizationHandler{categorizer: categorizer}
}

// CategorizeBenefit handles POST /api/categorize/benefit
func (h *CategorizationHandler) CategorizeBenefit(w http.ResponseWriter, r *http.Request) {
	var benefit entities.CoverageBenefit
	if !decodeJSON(w, r, &benefit) {
		return
	}
	if strings.TrimSpace(benefit.Name+benefit.Category+benefit.Description+benefit.CoverageDetails) == "" {
		respondWithError(w, http.StatusBadRequest, "benefit name or description is required")
		return
	}

	respondWithJSON(w, http.StatusOK, h.categorizer.CategorizeBenefit(benefit))
}

// ListCategories handles GET /api/categories
func (h *CategorizationHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.categorizer.Taxonomy()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}
