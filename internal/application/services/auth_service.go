package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	apperrors "github.com/svasikarla/USInsuranceDetails-sub001/pkg/errors"
)

const loginKeyPrefix = "login:attempts:"

// AuthService proxies logins to the identity provider behind a rate limiter.
type AuthService struct {
	identity providers.IdentityProvider
	limiter  *RateLimiter
}

// NewAuthService creates a new auth service.
func NewAuthService(identity providers.IdentityProvider, limiter *RateLimiter) *AuthService {
	return &AuthService{identity: identity, limiter: limiter}
}

// Login authenticates email and password. Locked keys are rejected before the
// identity provider is called.
func (s *AuthService) Login(ctx context.Context, email, password string) (*providers.AuthToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}
	if s.identity == nil {
		return nil, apperrors.NewExternalError("identity provider is not configured", nil)
	}

	logger := observability.LoggerFromContext(ctx)
	key := loginKeyPrefix + email

	decision, err := s.limiter.Check(ctx, key)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check login attempts", err)
	}
	if !decision.Allowed {
		observability.RecordLoginAttempt(ctx, "locked")
		logger.Warn().
			Str("email_hash", emailHash(email)).
			Str("email_domain", emailDomain(email)).
			Time("locked_until", decision.LockedUntil).
			Msg("login rejected, key locked")
		return nil, apperrors.NewRateLimitedError("too many failed login attempts", decision.LockedUntil)
	}

	token, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, providers.ErrInvalidCredentials) {
			observability.RecordLoginAttempt(ctx, "failure")
			if recErr := s.limiter.Record(ctx, key, false); recErr != nil {
				logger.Error().Err(recErr).Msg("failed to record login attempt")
			}
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, apperrors.NewExternalError("identity provider request failed", err)
	}

	observability.RecordLoginAttempt(ctx, "success")
	if err := s.limiter.Record(ctx, key, true); err != nil {
		logger.Error().Err(err).Msg("failed to clear login attempts")
	}
	return token, nil
}

// emailHash identifies a login in logs without recording the address.
func emailHash(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:6])
}

func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
