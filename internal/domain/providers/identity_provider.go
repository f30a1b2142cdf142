package providers

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned by an IdentityProvider when the user or
// password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthToken is the result of a successful login.
type AuthToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IdentityProvider authenticates users against the external identity service.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*AuthToken, error)
}
