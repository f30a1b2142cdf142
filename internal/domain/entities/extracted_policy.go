package entities

import (
	"strings"
	"time"
)

// Target field names shared by the AI prompt, the pattern table and the review form.
const (
	FieldPolicyName               = "policy_name"
	FieldPolicyType               = "policy_type"
	FieldPolicyNumber             = "policy_number"
	FieldPlanYear                 = "plan_year"
	FieldEffectiveDate            = "effective_date"
	FieldExpirationDate           = "expiration_date"
	FieldDeductibleIndividual     = "deductible_individual"
	FieldDeductibleFamily         = "deductible_family"
	FieldOutOfPocketMaxIndividual = "out_of_pocket_max_individual"
	FieldOutOfPocketMaxFamily     = "out_of_pocket_max_family"
	FieldPremiumMonthly           = "premium_monthly"
	FieldPremiumAnnual            = "premium_annual"
	FieldNetworkType              = "network_type"
)

// TargetFields is the fixed, ordered list of fields the extractor looks for.
var TargetFields = []string{
	FieldPolicyName,
	FieldPolicyType,
	FieldPolicyNumber,
	FieldPlanYear,
	FieldEffectiveDate,
	FieldExpirationDate,
	FieldDeductibleIndividual,
	FieldDeductibleFamily,
	FieldOutOfPocketMaxIndividual,
	FieldOutOfPocketMaxFamily,
	FieldPremiumMonthly,
	FieldPremiumAnnual,
	FieldNetworkType,
}

// ExtractedPolicyData is a candidate policy record produced from raw document text.
// Nil fields were not found.
type ExtractedPolicyData struct {
	PolicyName               *string    `json:"policy_name"`
	PolicyType               *string    `json:"policy_type"`
	PolicyNumber             *string    `json:"policy_number"`
	PlanYear                 *int       `json:"plan_year"`
	EffectiveDate            *time.Time `json:"effective_date"`
	ExpirationDate           *time.Time `json:"expiration_date"`
	DeductibleIndividual     *float64   `json:"deductible_individual"`
	DeductibleFamily         *float64   `json:"deductible_family"`
	OutOfPocketMaxIndividual *float64   `json:"out_of_pocket_max_individual"`
	OutOfPocketMaxFamily     *float64   `json:"out_of_pocket_max_family"`
	PremiumMonthly           *float64   `json:"premium_monthly"`
	PremiumAnnual            *float64   `json:"premium_annual"`
	NetworkType              *string    `json:"network_type"`

	ExtractionMethod     ExtractionMethod   `json:"extraction_method"`
	ExtractionConfidence float64            `json:"extraction_confidence"`
	FieldConfidences     map[string]float64 `json:"field_confidences,omitempty"`
	ExtractionErrors     []string           `json:"extraction_errors"`
}

// HasField reports whether the named target field was found.
func (d *ExtractedPolicyData) HasField(name string) bool {
	switch name {
	case FieldPolicyName:
		return d.PolicyName != nil
	case FieldPolicyType:
		return d.PolicyType != nil
	case FieldPolicyNumber:
		return d.PolicyNumber != nil
	case FieldPlanYear:
		return d.PlanYear != nil
	case FieldEffectiveDate:
		return d.EffectiveDate != nil
	case FieldExpirationDate:
		return d.ExpirationDate != nil
	case FieldDeductibleIndividual:
		return d.DeductibleIndividual != nil
	case FieldDeductibleFamily:
		return d.DeductibleFamily != nil
	case FieldOutOfPocketMaxIndividual:
		return d.OutOfPocketMaxIndividual != nil
	case FieldOutOfPocketMaxFamily:
		return d.OutOfPocketMaxFamily != nil
	case FieldPremiumMonthly:
		return d.PremiumMonthly != nil
	case FieldPremiumAnnual:
		return d.PremiumAnnual != nil
	case FieldNetworkType:
		return d.NetworkType != nil
	}
	return false
}

// FieldsFound counts found target fields.
func (d *ExtractedPolicyData) FieldsFound() int {
	n := 0
	for _, f := range TargetFields {
		if d.HasField(f) {
			n++
		}
	}
	return n
}

// HasMinimalData is true when a policy name, a policy type or the originating
// filename is present.
func (d *ExtractedPolicyData) HasMinimalData(filename string) bool {
	if d != nil {
		if d.PolicyName != nil && strings.TrimSpace(*d.PolicyName) != "" {
			return true
		}
		if d.PolicyType != nil && strings.TrimSpace(*d.PolicyType) != "" {
			return true
		}
	}
	return strings.TrimSpace(filename) != ""
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c != c: // NaN
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
