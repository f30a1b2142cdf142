package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

func TestCategorizationService_CategorizeRedFlag(t *testing.T) {
	svc := services.NewCategorizationService()

	tests := []struct {
		name     string
		flag     entities.RedFlag
		category entities.ProminentCategory
		badge    string
	}{
		{
			name:     "preauth type",
			flag:     entities.RedFlag{FlagType: entities.RedFlagPreauthRequired, Severity: entities.SeverityMedium},
			category: entities.CategoryPriorAuthorization,
			badge:    "amber",
		},
		{
			name:     "network type with high severity",
			flag:     entities.RedFlag{FlagType: entities.RedFlagNetworkLimitation, Severity: entities.SeverityHigh},
			category: entities.CategoryNetworkAdequacy,
			badge:    "orange",
		},
		{
			name: "mental health in source text",
			flag: entities.RedFlag{
				FlagType:   entities.RedFlagCoverageLimitation,
				Severity:   entities.SeverityHigh,
				Title:      "Visit or Session Limit",
				SourceText: "Mental Health Services: Limited to 10 visits per year",
			},
			category: entities.CategoryMentalHealthParity,
			badge:    "orange",
		},
		{
			name:     "coverage gap is critical",
			flag:     entities.RedFlag{FlagType: entities.RedFlagCoverageGap, Severity: entities.SeverityCritical},
			category: entities.CategoryEssentialHealthBenefits,
			badge:    "red",
		},
		{
			name:     "no keyword falls back",
			flag:     entities.RedFlag{FlagType: entities.RedFlagWaitingPeriod, Severity: entities.SeverityLow, Title: "Waiting Period"},
			category: entities.CategoryConsumerProtection,
			badge:    "gray",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := svc.CategorizeRedFlag(tt.flag)
			assert.Equal(t, tt.category, a.ProminentCategory)
			assert.Equal(t, tt.badge, a.BadgeColor)
			assert.Equal(t, entities.LookupCategory(tt.category).RegulatoryLevel, a.RegulatoryLevel)
			assert.NotEmpty(t, a.Icon)
		})
	}
}

func TestCategorizationService_CategorizeBenefit(t *testing.T) {
	svc := services.NewCategorizationService()

	a := svc.CategorizeBenefit(entities.CoverageBenefit{
		Category:    "Behavioral Health",
		Name:        "Outpatient therapy",
		Description: "Individual and group sessions",
	})
	assert.Equal(t, entities.CategoryMentalHealthParity, a.ProminentCategory)
	assert.Equal(t, entities.RegulatoryFederal, a.RegulatoryLevel)
	assert.Equal(t, "behavioral health", a.MatchedKeyword)

	a = svc.CategorizeBenefit(entities.CoverageBenefit{Name: "Emergency room visit"})
	assert.Equal(t, entities.CategoryEssentialHealthBenefits, a.ProminentCategory)

	a = svc.CategorizeBenefit(entities.CoverageBenefit{})
	assert.Equal(t, entities.FallbackCategory, a.ProminentCategory)
	assert.Empty(t, a.MatchedKeyword)
}

func TestCategorizationService_Total(t *testing.T) {
	svc := services.NewCategorizationService()
	valid := map[entities.ProminentCategory]bool{}
	for _, c := range entities.ProminentCategories() {
		valid[c] = true
	}

	severities := []entities.Severity{entities.SeverityLow, entities.SeverityMedium, entities.SeverityHigh, entities.SeverityCritical, ""}
	descriptions := []string{"", "mental health", "prior approval", "network", "maternity", "appeal", "???", "ÄÖÜ unicode"}

	for _, ft := range append(entities.ValidRedFlagTypes(), "unknown") {
		for _, sev := range severities {
			for _, desc := range descriptions {
				var a entities.CategoryAssignment
				assert.NotPanics(t, func() {
					a = svc.CategorizeRedFlag(entities.RedFlag{FlagType: ft, Severity: sev, Description: desc})
				})
				assert.True(t, valid[a.ProminentCategory], "type %s severity %s desc %q", ft, sev, desc)
				assert.True(t, a.RegulatoryLevel.IsValid())
			}
		}
	}

	for _, flag := range services.NewRedFlagDetector().Detect(mixedClauseText) {
		assert.True(t, valid[svc.CategorizeRedFlag(flag).ProminentCategory])
	}
}

func TestCategorizationService_Taxonomy(t *testing.T) {
	taxonomy := services.NewCategorizationService().Taxonomy()

	assert.Len(t, taxonomy, 5)
	for i, c := range entities.ProminentCategories() {
		assert.Equal(t, c, taxonomy[i].Category)
	}

	taxonomy[0].DisplayName = "changed"
	assert.NotEqual(t, "changed", entities.Taxonomy()[0].DisplayName)
}
