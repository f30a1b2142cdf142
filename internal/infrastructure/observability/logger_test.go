package observability

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	otellog "go.opentelemetry.io/otel/log"
)

func TestOtelSeverity(t *testing.T) {
	assert.Equal(t, otellog.SeverityInfo, otelSeverity(zerolog.InfoLevel))
	assert.Equal(t, otellog.SeverityWarn, otelSeverity(zerolog.WarnLevel))
	assert.Equal(t, otellog.SeverityError, otelSeverity(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityFatal, otelSeverity(zerolog.PanicLevel))
	assert.Equal(t, otellog.SeverityUndefined, otelSeverity(zerolog.NoLevel))
}

func TestLoggerFromContext_NoSpan(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestPipelineMetrics_NoProvider(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDocumentProcessed(ctx, "auto_create")
		RecordExtraction(ctx, "pattern_fallback", 0.5)
		RecordRedFlag(ctx, "exclusion", "high")
		RecordLoginAttempt(ctx, "failure")
	})
}
