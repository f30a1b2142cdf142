package handlers

import (
	"context"
	"net/http"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
)

// Authenticator logs a user in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*providers.AuthToken, error)
}

// AuthHandler handles the login proxy
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, token)
}
