package entities

import (
	"strings"
	"time"
)

// PolicyCreator says how a policy record came to exist.
type PolicyCreator string

const (
	PolicyCreatedAuto     PolicyCreator = "auto"
	PolicyCreatedReviewer PolicyCreator = "reviewer"
)

// InsurancePolicy is the persisted structured policy.
type InsurancePolicy struct {
	ID                       string        `json:"id" db:"id"`
	DocumentID               string        `json:"document_id" db:"document_id"`
	UserID                   string        `json:"user_id" db:"user_id"`
	PolicyName               string        `json:"policy_name" db:"policy_name"`
	PolicyType               PolicyType    `json:"policy_type" db:"policy_type"`
	PolicyNumber             *string       `json:"policy_number,omitempty" db:"policy_number"`
	PlanYear                 *int          `json:"plan_year,omitempty" db:"plan_year"`
	EffectiveDate            *time.Time    `json:"effective_date,omitempty" db:"effective_date"`
	ExpirationDate           *time.Time    `json:"expiration_date,omitempty" db:"expiration_date"`
	DeductibleIndividual     *float64      `json:"deductible_individual,omitempty" db:"deductible_individual"`
	DeductibleFamily         *float64      `json:"deductible_family,omitempty" db:"deductible_family"`
	OutOfPocketMaxIndividual *float64      `json:"out_of_pocket_max_individual,omitempty" db:"out_of_pocket_max_individual"`
	OutOfPocketMaxFamily     *float64      `json:"out_of_pocket_max_family,omitempty" db:"out_of_pocket_max_family"`
	PremiumMonthly           *float64      `json:"premium_monthly,omitempty" db:"premium_monthly"`
	PremiumAnnual            *float64      `json:"premium_annual,omitempty" db:"premium_annual"`
	NetworkType              *string       `json:"network_type,omitempty" db:"network_type"`
	CreatedBy                PolicyCreator `json:"created_by" db:"created_by"`
	ExtractionConfidence     float64       `json:"extraction_confidence" db:"extraction_confidence"`
	CreatedAt                time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time     `json:"updated_at" db:"updated_at"`
}

// Validate returns one human-readable message per problem. An empty result
// means the policy can be persisted.
func (p *InsurancePolicy) Validate() []string {
	var problems []string

	if strings.TrimSpace(p.PolicyName) == "" {
		problems = append(problems, "policy name is required")
	}
	if !p.PolicyType.IsValid() {
		problems = append(problems, "policy type must be one of health, dental, vision, life, disability, other")
	}
	if p.DocumentID == "" {
		problems = append(problems, "source document is required")
	}
	if p.PlanYear != nil && (*p.PlanYear < 1900 || *p.PlanYear > 2200) {
		problems = append(problems, "plan year is out of range")
	}
	if p.EffectiveDate != nil && p.ExpirationDate != nil && !p.ExpirationDate.After(*p.EffectiveDate) {
		problems = append(problems, "expiration date must be after effective date")
	}

	amounts := []struct {
		label string
		value *float64
	}{
		{"individual deductible", p.DeductibleIndividual},
		{"family deductible", p.DeductibleFamily},
		{"individual out-of-pocket maximum", p.OutOfPocketMaxIndividual},
		{"family out-of-pocket maximum", p.OutOfPocketMaxFamily},
		{"monthly premium", p.PremiumMonthly},
		{"annual premium", p.PremiumAnnual},
	}
	for _, a := range amounts {
		if a.value != nil && *a.value < 0 {
			problems = append(problems, a.label+" cannot be negative")
		}
	}

	return problems
}

// PolicyFromExtraction builds an unsaved policy from extracted data. A missing
// policy name falls back to the document's filename.
func PolicyFromExtraction(doc *PolicyDocument, data *ExtractedPolicyData, createdBy PolicyCreator) *InsurancePolicy {
	p := &InsurancePolicy{
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		CreatedBy:  createdBy,
	}
	if data == nil {
		data = &ExtractedPolicyData{}
	}

	if data.PolicyName != nil && strings.TrimSpace(*data.PolicyName) != "" {
		p.PolicyName = strings.TrimSpace(*data.PolicyName)
	} else {
		p.PolicyName = filenameStem(doc.OriginalFilename)
	}

	p.PolicyType = PolicyTypeOther
	if data.PolicyType != nil {
		if t := NormalizePolicyType(*data.PolicyType); t != "" {
			p.PolicyType = t
		}
	}

	p.PolicyNumber = data.PolicyNumber
	p.PlanYear = data.PlanYear
	p.EffectiveDate = data.EffectiveDate
	p.ExpirationDate = data.ExpirationDate
	p.DeductibleIndividual = data.DeductibleIndividual
	p.DeductibleFamily = data.DeductibleFamily
	p.OutOfPocketMaxIndividual = data.OutOfPocketMaxIndividual
	p.OutOfPocketMaxFamily = data.OutOfPocketMaxFamily
	p.PremiumMonthly = data.PremiumMonthly
	p.PremiumAnnual = data.PremiumAnnual
	p.NetworkType = data.NetworkType
	p.ExtractionConfidence = ClampConfidence(data.ExtractionConfidence)

	if p.PremiumAnnual == nil && p.PremiumMonthly != nil {
		annual := *p.PremiumMonthly * 12
		p.PremiumAnnual = &annual
	}

	return p
}

func filenameStem(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}
