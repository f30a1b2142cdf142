package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Workflow.MinTextLength)
	assert.Equal(t, DefaultAutoCreateThreshold, cfg.Workflow.Thresholds.AutoCreate())
	assert.Equal(t, DefaultReviewRequiredThreshold, cfg.Workflow.Thresholds.ReviewRequired())
	assert.False(t, cfg.Workflow.RedFlagDedup)
	assert.Equal(t, 30*time.Second, cfg.Workflow.AITimeout)
	assert.Equal(t, 5, cfg.RateLimit.MaxAttempts)
	assert.False(t, cfg.Identity.Enabled())
}

func TestLoad_WorkflowOverrides(t *testing.T) {
	t.Setenv("AUTO_CREATE_THRESHOLD", "0.5")
	t.Setenv("REVIEW_REQUIRED_THRESHOLD", "0.3")
	t.Setenv("AI_EXTRACTION_TIMEOUT", "5s")
	t.Setenv("RED_FLAG_DEDUP", "true")
	t.Setenv("LOGIN_LOCKOUT_DURATION", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Workflow.Thresholds.AutoCreate())
	assert.Equal(t, 0.3, cfg.Workflow.Thresholds.ReviewRequired())
	assert.Equal(t, 5*time.Second, cfg.Workflow.AITimeout)
	assert.True(t, cfg.Workflow.RedFlagDedup)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.LockoutDuration)
}

func TestLoad_RejectsInvertedThresholds(t *testing.T) {
	t.Setenv("AUTO_CREATE_THRESHOLD", "0.3")
	t.Setenv("REVIEW_REQUIRED_THRESHOLD", "0.5")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestNewWorkflowThresholds(t *testing.T) {
	tests := []struct {
		name    string
		auto    float64
		review  float64
		wantErr bool
	}{
		{"valid", 0.5, 0.3, false},
		{"zero review", 0.5, 0, false},
		{"equal", 0.5, 0.5, true},
		{"review above auto", 0.3, 0.5, true},
		{"auto above one", 1.2, 0.3, true},
		{"negative review", 0.5, -0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := NewWorkflowThresholds(tt.auto, tt.review)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, th.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.auto, th.AutoCreate())
			assert.Equal(t, tt.review, th.ReviewRequired())
		})
	}
}

func TestIdentityConfig_Scopes(t *testing.T) {
	t.Setenv("IDP_TOKEN_URL", "https://idp.example.com/oauth/token")
	t.Setenv("IDP_CLIENT_ID", "insurance-web")
	t.Setenv("IDP_SCOPES", "openid, profile ,email")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Identity.Enabled())
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.Identity.Scopes)
}
