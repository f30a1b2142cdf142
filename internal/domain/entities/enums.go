package entities

import (
	"fmt"
	"strings"
)

// Severity ranks how harmful a red flag is to the policyholder.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is one of the defined constants.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// Rank orders severities; 0 means invalid.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid severity %q", value)
	}
	return s, nil
}

// RedFlagType classifies the risky clause.
type RedFlagType string

const (
	RedFlagExclusion          RedFlagType = "exclusion"
	RedFlagCoverageLimitation RedFlagType = "coverage_limitation"
	RedFlagPreauthRequired    RedFlagType = "preauth_required"
	RedFlagNetworkLimitation  RedFlagType = "network_limitation"
	RedFlagWaitingPeriod      RedFlagType = "waiting_period"
	RedFlagHighCost           RedFlagType = "high_cost"
	RedFlagCoverageGap        RedFlagType = "coverage_gap"
	RedFlagAppealRestriction  RedFlagType = "appeal_restriction"
)

// ValidRedFlagTypes returns all red flag types.
func ValidRedFlagTypes() []RedFlagType {
	return []RedFlagType{
		RedFlagExclusion, RedFlagCoverageLimitation, RedFlagPreauthRequired, RedFlagNetworkLimitation,
		RedFlagWaitingPeriod, RedFlagHighCost, RedFlagCoverageGap, RedFlagAppealRestriction,
	}
}

// IsValid checks if the flag type is one of the defined constants.
func (t RedFlagType) IsValid() bool {
	for _, v := range ValidRedFlagTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// ParseRedFlagType parses a flag type name.
func ParseRedFlagType(value string) (RedFlagType, error) {
	t := RedFlagType(strings.ToLower(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid red flag type %q", value)
	}
	return t, nil
}

// RegulatoryLevel says which layer of law governs a category.
type RegulatoryLevel string

const (
	RegulatoryFederal      RegulatoryLevel = "federal"
	RegulatoryState        RegulatoryLevel = "state"
	RegulatoryFederalState RegulatoryLevel = "federal_state"
)

// IsValid checks if the level is one of the defined constants.
func (l RegulatoryLevel) IsValid() bool {
	switch l {
	case RegulatoryFederal, RegulatoryState, RegulatoryFederalState:
		return true
	}
	return false
}

// ParseRegulatoryLevel parses a regulatory level name.
func ParseRegulatoryLevel(value string) (RegulatoryLevel, error) {
	l := RegulatoryLevel(strings.ToLower(strings.TrimSpace(value)))
	if !l.IsValid() {
		return "", fmt.Errorf("invalid regulatory level %q", value)
	}
	return l, nil
}

// ProminentCategory is one of the five regulatory-topic buckets used for badges.
type ProminentCategory string

const (
	CategoryEssentialHealthBenefits ProminentCategory = "essential_health_benefits"
	CategoryMentalHealthParity      ProminentCategory = "mental_health_parity"
	CategoryPriorAuthorization      ProminentCategory = "prior_authorization"
	CategoryNetworkAdequacy         ProminentCategory = "network_adequacy"
	CategoryConsumerProtection      ProminentCategory = "consumer_protection"
)

// FallbackCategory is assigned when no keyword matches.
const FallbackCategory = CategoryConsumerProtection

// ProminentCategories returns the five categories in display order.
func ProminentCategories() []ProminentCategory {
	return []ProminentCategory{
		CategoryEssentialHealthBenefits,
		CategoryMentalHealthParity,
		CategoryPriorAuthorization,
		CategoryNetworkAdequacy,
		CategoryConsumerProtection,
	}
}

// IsValid checks if the category is one of the five buckets.
func (c ProminentCategory) IsValid() bool {
	for _, v := range ProminentCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// ParseProminentCategory parses a category name.
func ParseProminentCategory(value string) (ProminentCategory, error) {
	c := ProminentCategory(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid prominent category %q", value)
	}
	return c, nil
}

// ExtractionMethod records which path produced ExtractedPolicyData.
type ExtractionMethod string

const (
	ExtractionMethodAI              ExtractionMethod = "ai"
	ExtractionMethodPatternFallback ExtractionMethod = "pattern_fallback"
)

// PolicyType is the normalized line of coverage.
type PolicyType string

const (
	PolicyTypeHealth     PolicyType = "health"
	PolicyTypeDental     PolicyType = "dental"
	PolicyTypeVision     PolicyType = "vision"
	PolicyTypeLife       PolicyType = "life"
	PolicyTypeDisability PolicyType = "disability"
	PolicyTypeOther      PolicyType = "other"
)

// IsValid checks if the policy type is one of the defined constants.
func (p PolicyType) IsValid() bool {
	switch p {
	case PolicyTypeHealth, PolicyTypeDental, PolicyTypeVision, PolicyTypeLife, PolicyTypeDisability, PolicyTypeOther:
		return true
	}
	return false
}

var policyTypeKeywords = []struct {
	keyword string
	value   PolicyType
}{
	{"dental", PolicyTypeDental},
	{"vision", PolicyTypeVision},
	{"health", PolicyTypeHealth},
	{"medical", PolicyTypeHealth},
	{"hmo", PolicyTypeHealth},
	{"ppo", PolicyTypeHealth},
	{"epo", PolicyTypeHealth},
	{"disability", PolicyTypeDisability},
	{"life", PolicyTypeLife},
}

// NormalizePolicyType maps free text ("PPO Medical Plan") to a PolicyType.
// Empty input yields ""; unrecognized text yields other.
func NormalizePolicyType(value string) PolicyType {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return ""
	}
	if p := PolicyType(v); p.IsValid() {
		return p
	}
	for _, kw := range policyTypeKeywords {
		if strings.Contains(v, kw.keyword) {
			return kw.value
		}
	}
	return PolicyTypeOther
}
