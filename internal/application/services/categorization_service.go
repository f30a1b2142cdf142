package services

import (
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

type categoryKeywords struct {
	category entities.ProminentCategory
	keywords []string
}

// categoryKeywordTable is matched in order; the first hit wins.
var categoryKeywordTable = []categoryKeywords{
	{entities.CategoryMentalHealthParity, []string{
		"mental health", "behavioral health", "substance use", "substance abuse",
		"psychiatric", "psychotherapy", "counseling", "parity",
	}},
	{entities.CategoryPriorAuthorization, []string{
		"preauth", "pre-auth", "prior authorization", "prior authorisation", "prior approval",
		"pre-certification", "precertification", "advance approval", "utilization review",
	}},
	{entities.CategoryNetworkAdequacy, []string{
		"out-of-network", "out of network", "in-network", "non-network", "network",
		"referral", "provider directory",
	}},
	{entities.CategoryEssentialHealthBenefits, []string{
		"essential health", "coverage gap", "maternity", "newborn", "prescription", "emergency",
		"hospitalization", "preventive", "pediatric", "laboratory", "rehabilitative",
		"habilitative", "ambulatory", "wellness", "lifetime", "annual limit", "annual dollar",
	}},
	{entities.CategoryConsumerProtection, []string{
		"appeal", "balance bill", "balance-bill", "surprise", "disclosure", "grievance",
		"coinsurance", "deductible", "cost",
	}},
}

// CategorizationService assigns display categories to benefits and red flags.
// It holds no state and never fails.
type CategorizationService struct{}

// NewCategorizationService creates a new categorization service.
func NewCategorizationService() *CategorizationService {
	return &CategorizationService{}
}

// CategorizeBenefit classifies a coverage benefit.
func (s *CategorizationService) CategorizeBenefit(b entities.CoverageBenefit) entities.CategoryAssignment {
	category, keyword := matchCategory(b.Category, b.Name, b.Description, b.CoverageDetails)
	return assignment(category, keyword)
}

// CategorizeRedFlag classifies a red flag. Critical and high severities
// override the category badge color.
func (s *CategorizationService) CategorizeRedFlag(f entities.RedFlag) entities.CategoryAssignment {
	category, keyword := matchCategory(string(f.FlagType), f.Title, f.Description, f.SourceText)
	a := assignment(category, keyword)
	switch f.Severity {
	case entities.SeverityCritical:
		a.BadgeColor = "red"
	case entities.SeverityHigh:
		a.BadgeColor = "orange"
	}
	return a
}

// Taxonomy returns the static category reference data.
func (s *CategorizationService) Taxonomy() []entities.CategoryInfo {
	return entities.Taxonomy()
}

// matchCategory checks fields in priority order against the keyword table.
func matchCategory(fields ...string) (entities.ProminentCategory, string) {
	for _, field := range fields {
		haystack := strings.ReplaceAll(asciiLower(field), "_", " ")
		if strings.TrimSpace(haystack) == "" {
			continue
		}
		for _, entry := range categoryKeywordTable {
			for _, kw := range entry.keywords {
				if strings.Contains(haystack, kw) {
					return entry.category, kw
				}
			}
		}
	}
	return entities.FallbackCategory, ""
}

func assignment(category entities.ProminentCategory, keyword string) entities.CategoryAssignment {
	info := entities.LookupCategory(category)
	return entities.CategoryAssignment{
		ProminentCategory: info.Category,
		DisplayName:       info.DisplayName,
		RegulatoryLevel:   info.RegulatoryLevel,
		FederalRegulation: info.FederalRegulation,
		StateRegulation:   info.StateRegulation,
		BadgeColor:        info.BadgeColor,
		Icon:              info.Icon,
		MatchedKeyword:    keyword,
	}
}
