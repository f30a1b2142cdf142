package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	pipelineMetricsOnce sync.Once
	pipelineMetrics     struct {
		documentsProcessed metric.Int64Counter
		extractions        metric.Int64Counter
		extractionConf     metric.Float64Histogram
		redFlags           metric.Int64Counter
		loginAttempts      metric.Int64Counter
	}
)

// Instruments are created against the global meter provider on first use, so
// they are no-ops until Setup has installed a real provider.
func ensurePipelineMetrics() {
	pipelineMetricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName + "/pipeline")

		pipelineMetrics.documentsProcessed, _ = meter.Int64Counter(
			"pipeline.documents.processed",
			metric.WithDescription("Documents processed by outcome"),
		)
		pipelineMetrics.extractions, _ = meter.Int64Counter(
			"pipeline.extractions",
			metric.WithDescription("Policy data extractions by method"),
		)
		pipelineMetrics.extractionConf, _ = meter.Float64Histogram(
			"pipeline.extraction.confidence",
			metric.WithDescription("Overall extraction confidence"),
		)
		pipelineMetrics.redFlags, _ = meter.Int64Counter(
			"pipeline.red_flags.detected",
			metric.WithDescription("Red flags detected by type and severity"),
		)
		pipelineMetrics.loginAttempts, _ = meter.Int64Counter(
			"auth.login.attempts",
			metric.WithDescription("Login attempts by result"),
		)
	})
}

// RecordDocumentProcessed counts a finished processing run.
func RecordDocumentProcessed(ctx context.Context, outcome string) {
	ensurePipelineMetrics()
	if pipelineMetrics.documentsProcessed == nil {
		return
	}
	pipelineMetrics.documentsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordExtraction records the method and confidence of one extraction.
func RecordExtraction(ctx context.Context, method string, confidence float64) {
	ensurePipelineMetrics()
	attrs := metric.WithAttributes(attribute.String("method", method))
	if pipelineMetrics.extractions != nil {
		pipelineMetrics.extractions.Add(ctx, 1, attrs)
	}
	if pipelineMetrics.extractionConf != nil {
		pipelineMetrics.extractionConf.Record(ctx, confidence, attrs)
	}
}

// RecordRedFlag counts one detected red flag.
func RecordRedFlag(ctx context.Context, flagType, severity string) {
	ensurePipelineMetrics()
	if pipelineMetrics.redFlags == nil {
		return
	}
	pipelineMetrics.redFlags.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flag_type", flagType),
		attribute.String("severity", severity),
	))
}

// RecordLoginAttempt counts a login attempt. result is success, failure or locked.
func RecordLoginAttempt(ctx context.Context, result string) {
	ensurePipelineMetrics()
	if pipelineMetrics.loginAttempts == nil {
		return
	}
	pipelineMetrics.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
