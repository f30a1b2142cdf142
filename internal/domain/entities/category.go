package entities

// CategoryInfo is static reference data for one prominent category.
type CategoryInfo struct {
	Category          ProminentCategory `json:"category"`
	DisplayName       string            `json:"display_name"`
	RegulatoryLevel   RegulatoryLevel   `json:"regulatory_level"`
	FederalRegulation string            `json:"federal_regulation,omitempty"`
	StateRegulation   string            `json:"state_regulation,omitempty"`
	Description       string            `json:"description"`
	BadgeColor        string            `json:"badge_color"`
	Icon              string            `json:"icon"`
}

// CategoryAssignment is the display classification of one benefit or red flag.
type CategoryAssignment struct {
	ProminentCategory ProminentCategory `json:"prominent_category"`
	DisplayName       string            `json:"display_name"`
	RegulatoryLevel   RegulatoryLevel   `json:"regulatory_level"`
	FederalRegulation string            `json:"federal_regulation,omitempty"`
	StateRegulation   string            `json:"state_regulation,omitempty"`
	BadgeColor        string            `json:"badge_color"`
	Icon              string            `json:"icon"`
	MatchedKeyword    string            `json:"matched_keyword,omitempty"`
}

// CoverageBenefit is a benefit line from a policy summary.
type CoverageBenefit struct {
	Category        string `json:"category"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	CoverageDetails string `json:"coverage_details"`
}

var taxonomy = []CategoryInfo{
	{
		Category:          CategoryEssentialHealthBenefits,
		DisplayName:       "Essential Health Benefits",
		RegulatoryLevel:   RegulatoryFederal,
		FederalRegulation: "ACA §1302, 45 CFR 156.110",
		StateRegulation:   "State EHB benchmark plan",
		Description:       "The ten benefit classes non-grandfathered individual and small-group plans must cover.",
		BadgeColor:        "blue",
		Icon:              "heart-pulse",
	},
	{
		Category:          CategoryMentalHealthParity,
		DisplayName:       "Mental Health Parity",
		RegulatoryLevel:   RegulatoryFederal,
		FederalRegulation: "MHPAEA, 29 U.S.C. 1185a",
		Description:       "Limits on mental health and substance use benefits may not be stricter than medical limits.",
		BadgeColor:        "purple",
		Icon:              "brain",
	},
	{
		Category:          CategoryPriorAuthorization,
		DisplayName:       "Prior Authorization",
		RegulatoryLevel:   RegulatoryFederalState,
		FederalRegulation: "CMS-0057-F",
		StateRegulation:   "State utilization review statutes",
		Description:       "Requirements to obtain insurer approval before a service is covered.",
		BadgeColor:        "amber",
		Icon:              "clipboard-check",
	},
	{
		Category:          CategoryNetworkAdequacy,
		DisplayName:       "Network Adequacy",
		RegulatoryLevel:   RegulatoryState,
		FederalRegulation: "45 CFR 156.230",
		StateRegulation:   "State network adequacy standards",
		Description:       "Rules on provider networks, out-of-network coverage and referrals.",
		BadgeColor:        "teal",
		Icon:              "map-pin",
	},
	{
		Category:          CategoryConsumerProtection,
		DisplayName:       "Consumer Protection",
		RegulatoryLevel:   RegulatoryFederalState,
		FederalRegulation: "ACA §2719, No Surprises Act",
		StateRegulation:   "State insurance code",
		Description:       "Cost sharing, appeals, disclosures and other general policyholder protections.",
		BadgeColor:        "gray",
		Icon:              "shield",
	},
}

// Taxonomy returns a copy of the category reference table.
func Taxonomy() []CategoryInfo {
	out := make([]CategoryInfo, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// LookupCategory returns the reference entry for c, falling back to
// FallbackCategory for unknown values.
func LookupCategory(c ProminentCategory) CategoryInfo {
	for _, info := range taxonomy {
		if info.Category == c {
			return info
		}
	}
	return LookupCategory(FallbackCategory)
}
