package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/utils"
)

// DefaultAITimeout bounds a single AI extraction call.
const DefaultAITimeout = 30 * time.Second

// TargetFields is the ordered list of fields requested from every extraction path.
var TargetFields = entities.TargetFields

// PolicyExtractorConfig configures the AI path of the extractor.
type PolicyExtractorConfig struct {
	AIEnabled bool
	AITimeout time.Duration
}

// PolicyDataExtractor turns raw document text into candidate policy data.
type PolicyDataExtractor struct {
	provider providers.PolicyExtractionProvider
	cfg      PolicyExtractorConfig
}

// NewPolicyDataExtractor creates an extractor. A nil provider means the AI path
// is unavailable and every call uses pattern matching.
func NewPolicyDataExtractor(provider providers.PolicyExtractionProvider, cfg PolicyExtractorConfig) *PolicyDataExtractor {
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = DefaultAITimeout
	}
	return &PolicyDataExtractor{provider: provider, cfg: cfg}
}

// Extract never fails. The AI provider is tried first under a timeout; any
// error, including the timeout, falls back to pattern matching.
func (e *PolicyDataExtractor) Extract(ctx context.Context, rawText string) *entities.ExtractedPolicyData {
	logger := observability.LoggerFromContext(ctx)

	if strings.TrimSpace(rawText) == "" {
		return &entities.ExtractedPolicyData{
			ExtractionMethod:     entities.ExtractionMethodPatternFallback,
			ExtractionConfidence: 0,
			ExtractionErrors:     []string{"no text to extract from"},
		}
	}

	var aiErr error
	if e.provider != nil && e.cfg.AIEnabled {
		data, err := e.extractWithAI(ctx, rawText)
		if err == nil {
			observability.RecordExtraction(ctx, string(data.ExtractionMethod), data.ExtractionConfidence)
			return data
		}
		aiErr = err
		logger.Warn().Err(err).Msg("AI extraction failed, falling back to patterns")
	}

	data := ExtractWithPatterns(rawText)
	if aiErr != nil {
		data.ExtractionErrors = append([]string{"ai extraction failed: " + aiErr.Error()}, data.ExtractionErrors...)
	}
	observability.RecordExtraction(ctx, string(data.ExtractionMethod), data.ExtractionConfidence)
	return data
}

func (e *PolicyDataExtractor) extractWithAI(ctx context.Context, rawText string) (*entities.ExtractedPolicyData, error) {
	aiCtx, cancel := context.WithTimeout(ctx, e.cfg.AITimeout)
	defer cancel()

	result, err := e.provider.ExtractPolicyFields(aiCtx, rawText, TargetFields)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(aiCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s: %w", e.cfg.AITimeout, err)
		}
		return nil, err
	}
	if result == nil {
		return nil, errors.New("empty response")
	}

	data := newExtractedData(entities.ExtractionMethodAI)
	for _, field := range TargetFields {
		raw, ok := result.Fields[field]
		if !ok || raw == nil {
			continue
		}
		if err := assignField(data, field, aiValueString(raw)); err != nil {
			data.ExtractionErrors = append(data.ExtractionErrors, err.Error())
		}
	}

	data.ExtractionConfidence = entities.ClampConfidence(result.Confidence)
	for _, field := range TargetFields {
		if data.HasField(field) {
			data.FieldConfidences[field] = data.ExtractionConfidence
		}
	}
	return data, nil
}

// ExtractWithPatterns runs the regex fallback. It is pure: identical text
// always yields identical data.
func ExtractWithPatterns(rawText string) *entities.ExtractedPolicyData {
	data := newExtractedData(entities.ExtractionMethodPatternFallback)
	if strings.TrimSpace(rawText) == "" {
		data.ExtractionErrors = append(data.ExtractionErrors, "no text to extract from")
		return data
	}

	for _, field := range TargetFields {
		value, ok := matchField(field, rawText)
		if !ok {
			continue
		}
		if err := assignField(data, field, value); err != nil {
			data.ExtractionErrors = append(data.ExtractionErrors, err.Error())
			continue
		}
		data.FieldConfidences[field] = 1.0
	}

	data.ExtractionConfidence = entities.ClampConfidence(float64(data.FieldsFound()) / float64(len(TargetFields)))
	return data
}

func newExtractedData(method entities.ExtractionMethod) *entities.ExtractedPolicyData {
	return &entities.ExtractedPolicyData{
		ExtractionMethod: method,
		FieldConfidences: map[string]float64{},
		ExtractionErrors: []string{},
	}
}

// assignField parses value into the named field. Unparsable values leave the
// field nil and return a descriptive error.
func assignField(data *entities.ExtractedPolicyData, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	switch field {
	case entities.FieldPolicyName:
		v := utils.NormalizeWhitespace(value)
		data.PolicyName = &v
	case entities.FieldPolicyType:
		v := strings.ToLower(utils.NormalizeWhitespace(value))
		data.PolicyType = &v
	case entities.FieldPolicyNumber:
		v := strings.ToUpper(value)
		data.PolicyNumber = &v
	case entities.FieldNetworkType:
		v := strings.ToUpper(value)
		data.NetworkType = &v
	case entities.FieldPlanYear:
		year, err := strconv.Atoi(strings.TrimSuffix(value, ".0"))
		if err != nil || year < 1900 || year > 2200 {
			return fmt.Errorf("%s: unparsable year %q", field, value)
		}
		data.PlanYear = &year
	case entities.FieldEffectiveDate, entities.FieldExpirationDate:
		t, ok := utils.ParseDate(value)
		if !ok {
			return fmt.Errorf("%s: unparsable date %q", field, value)
		}
		if field == entities.FieldEffectiveDate {
			data.EffectiveDate = &t
		} else {
			data.ExpirationDate = &t
		}
	default:
		amount, ok := utils.ParseAmount(value)
		if !ok {
			return fmt.Errorf("%s: unparsable amount %q", field, value)
		}
		target := amountField(data, field)
		if target == nil {
			return fmt.Errorf("unknown field %q", field)
		}
		*target = &amount
	}
	return nil
}

func amountField(data *entities.ExtractedPolicyData, field string) **float64 {
	switch field {
	case entities.FieldDeductibleIndividual:
		return &data.DeductibleIndividual
	case entities.FieldDeductibleFamily:
		return &data.DeductibleFamily
	case entities.FieldOutOfPocketMaxIndividual:
		return &data.OutOfPocketMaxIndividual
	case entities.FieldOutOfPocketMaxFamily:
		return &data.OutOfPocketMaxFamily
	case entities.FieldPremiumMonthly:
		return &data.PremiumMonthly
	case entities.FieldPremiumAnnual:
		return &data.PremiumAnnual
	}
	return nil
}

// aiValueString renders a decoded JSON value for assignField.
func aiValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', 0, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return ""
	}
	return fmt.Sprint(v)
}
