// Package identity proxies user logins to an OAuth2 identity provider using
// the resource owner password grant.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
	"golang.org/x/oauth2"
)

// Client implements providers.IdentityProvider.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewClient creates an identity client. The token URL and client id are required.
func NewClient(cfg *config.IdentityConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, errors.New("identity provider token url and client id are required")
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Authenticate exchanges the user's credentials for a token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*providers.AuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && isCredentialRejection(retrieveErr) {
			return nil, providers.ErrInvalidCredentials
		}
		log.Warn().Err(err).Msg("identity provider token request failed")
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}

	return &providers.AuthToken{
		AccessToken:  token.AccessToken,
		TokenType:    token.Type(),
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

func isCredentialRejection(err *oauth2.RetrieveError) bool {
	if err.ErrorCode == "invalid_grant" {
		return true
	}
	if err.Response == nil {
		return false
	}
	return err.Response.StatusCode == http.StatusBadRequest || err.Response.StatusCode == http.StatusUnauthorized
}
