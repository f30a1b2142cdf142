package services

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/utils"
)

const (
	// DefaultRedFlagConfidence is attached to every rule-based flag.
	DefaultRedFlagConfidence = 0.85

	// DetectorRuleEngine is the detected_by value of rule-based flags.
	DetectorRuleEngine = "rule_engine"

	excerptWindow = 60
)

// RulePattern is one phrasing of a rule. Label is recorded as provenance when set.
type RulePattern struct {
	Label string
	Re    *regexp.Regexp
}

// RedFlagRule maps phrasings to a flag. Patterns are tried in order and the
// first one that matches anywhere in the text produces the rule's flag.
// DescriptionTemplate receives the matched phrase through a single %s.
type RedFlagRule struct {
	ID                  string
	Patterns            []RulePattern
	FlagType            entities.RedFlagType
	Severity            entities.Severity
	Title               string
	DescriptionTemplate string
	Recommendation      string
}

func rp(expr string) RulePattern {
	return RulePattern{Re: regexp.MustCompile(expr)}
}

func rpl(label, expr string) RulePattern {
	return RulePattern{Label: label, Re: regexp.MustCompile(expr)}
}

var defaultRedFlagRules = []RedFlagRule{
	{
		ID:                  "cosmetic_exclusion",
		Patterns:            []RulePattern{rp(`\bcosmetic\b`)},
		FlagType:            entities.RedFlagExclusion,
		Severity:            entities.SeverityMedium,
		Title:               "Cosmetic Procedures Excluded",
		DescriptionTemplate: "The policy excludes or restricts cosmetic procedures (%q).",
		Recommendation:      "Confirm whether reconstructive procedures after injury or illness are treated as cosmetic.",
	},
	{
		ID: "general_exclusion",
		Patterns: []RulePattern{
			rp(`\b(?:is|are)\s+(?:specifically\s+)?excluded\b`),
			rp(`\bexclusions?\s*:`),
		},
		FlagType:            entities.RedFlagExclusion,
		Severity:            entities.SeverityMedium,
		Title:               "Coverage Exclusions",
		DescriptionTemplate: "The policy lists services that are not covered (%q).",
		Recommendation:      "Read the full exclusions list and check it against services you expect to use.",
	},
	{
		ID:                  "experimental_exclusion",
		Patterns:            []RulePattern{rp(`\b(?:experimental|investigational)\b`)},
		FlagType:            entities.RedFlagExclusion,
		Severity:            entities.SeverityHigh,
		Title:               "Experimental Treatment Excluded",
		DescriptionTemplate: "Experimental or investigational treatment may be denied (%q).",
		Recommendation:      "Ask how the insurer decides a treatment is experimental and whether clinical trials are covered.",
	},
	{
		ID:                  "pre_existing_condition",
		Patterns:            []RulePattern{rp(`\bpre[\s-]?existing\s+conditions?\b`)},
		FlagType:            entities.RedFlagCoverageGap,
		Severity:            entities.SeverityCritical,
		Title:               "Pre-existing Condition Clause",
		DescriptionTemplate: "The policy references pre-existing conditions (%q), which may limit coverage.",
		Recommendation:      "ACA-compliant plans cannot exclude pre-existing conditions; verify the plan type and ask for clarification.",
	},
	{
		ID: "visit_limit",
		Patterns: []RulePattern{
			rp(`\blimited\s+to\s+\d+\s+(?:visits?|sessions?|days?|treatments?)\b`),
			rp(`\b(?:maximum|max\.?)\s+(?:of\s+)?\d+\s+(?:visits?|sessions?|days?|treatments?)\b`),
			rp(`\b\d+\s+(?:visits?|sessions?)\s+per\s+(?:calendar\s+|plan\s+)?year\b`),
		},
		FlagType:            entities.RedFlagCoverageLimitation,
		Severity:            entities.SeverityHigh,
		Title:               "Visit or Session Limit",
		DescriptionTemplate: "Coverage is capped at a fixed number of visits (%q).",
		Recommendation:      "Estimate how many visits you need per year; for mental health, limits stricter than medical limits may violate parity rules.",
	},
	{
		ID: "annual_dollar_limit",
		Patterns: []RulePattern{
			rp(`\bannual\s+(?:benefit\s+)?(?:maximum|limit|cap)\s+(?:of\s+)?\$\s*[\d,]+`),
			rp(`\b(?:benefits?\s+)?(?:capped|limited)\s+at\s+\$\s*[\d,]+\s+per\s+(?:year|calendar\s+year)\b`),
		},
		FlagType:            entities.RedFlagCoverageLimitation,
		Severity:            entities.SeverityHigh,
		Title:               "Annual Dollar Limit",
		DescriptionTemplate: "The policy caps annual benefits (%q).",
		Recommendation:      "Annual dollar limits on essential health benefits are prohibited for most plans; confirm which benefits the cap applies to.",
	},
	{
		ID:                  "lifetime_limit",
		Patterns:            []RulePattern{rp(`\blifetime\s+(?:benefit\s+)?(?:maximum|limit|cap)\b`)},
		FlagType:            entities.RedFlagCoverageLimitation,
		Severity:            entities.SeverityCritical,
		Title:               "Lifetime Benefit Limit",
		DescriptionTemplate: "The policy sets a lifetime benefit limit (%q).",
		Recommendation:      "Lifetime limits on essential health benefits are prohibited under the ACA; ask the insurer which benefits are affected.",
	},
	{
		ID: "waiting_period",
		Patterns: []RulePattern{
			rp(`\bwaiting\s+period\b`),
			rp(`\b(?:after|following)\s+\d+\s+(?:days?|months?)\s+of\s+(?:continuous\s+)?(?:coverage|enrollment)\b`),
		},
		FlagType:            entities.RedFlagWaitingPeriod,
		Severity:            entities.SeverityMedium,
		Title:               "Waiting Period",
		DescriptionTemplate: "Some benefits start only after a waiting period (%q).",
		Recommendation:      "Check which services are delayed and plan non-urgent care accordingly.",
	},
	{
		ID: "prior_authorization",
		Patterns: []RulePattern{
			rpl("pre-authorization", `\bpre[\s-]?authori[sz]ation\b`),
			rpl("prior approval", `\bprior\s+(?:approval|authori[sz]ation)\b`),
			rpl("pre-certification", `\bpre[\s-]?certification\b`),
			rpl("advance approval", `\badvance\s+approval\b`),
			rpl("out-of-network-specific", `\bout[\s-]of[\s-]network\s+(?:services?|care|providers?)\s+(?:requires?|needs?|must\s+be)\s+(?:prior\s+)?(?:approv|authori[sz])\w*`),
			rpl("service-specific", `\b(?:requires?|subject\s+to)\s+(?:approval|authori[sz]ation)\s+(?:for|before)\s+(?:each|all|certain|specific)\s+(?:services?|procedures?|treatments?)\b`),
		},
		FlagType:            entities.RedFlagPreauthRequired,
		Severity:            entities.SeverityMedium,
		Title:               "Prior Authorization Required",
		DescriptionTemplate: "Some services need insurer approval before they are covered (%q).",
		Recommendation:      "Get approval in writing before scheduling care and keep the reference number.",
	},
	{
		ID: "out_of_network",
		Patterns: []RulePattern{
			rp(`\bout[\s-]of[\s-]network\b`),
			rp(`\bnon[\s-]network\b`),
		},
		FlagType:            entities.RedFlagNetworkLimitation,
		Severity:            entities.SeverityHigh,
		Title:               "Out-of-Network Restrictions",
		DescriptionTemplate: "Care outside the provider network is restricted or costs more (%q).",
		Recommendation:      "Check that your doctors and nearby hospitals are in network before you need care.",
	},
	{
		ID: "referral_required",
		Patterns: []RulePattern{
			rp(`\breferrals?\s+(?:is\s+|are\s+)?required\b`),
			rp(`\brequires?\s+(?:a\s+)?referral\b`),
		},
		FlagType:            entities.RedFlagNetworkLimitation,
		Severity:            entities.SeverityMedium,
		Title:               "Referral Required",
		DescriptionTemplate: "Specialist visits need a referral from a primary care provider (%q).",
		Recommendation:      "Choose a primary care provider early and ask for referrals before booking specialists.",
	},
	{
		ID: "high_coinsurance",
		Patterns: []RulePattern{
			rp(`\b(?:[4-9]\d|100)\s*%\s+coinsurance\b`),
			rp(`\bcoinsurance\s+(?:of\s+)?(?:[4-9]\d|100)\s*%`),
		},
		FlagType:            entities.RedFlagHighCost,
		Severity:            entities.SeverityHigh,
		Title:               "High Coinsurance",
		DescriptionTemplate: "You pay a large share of covered costs (%q).",
		Recommendation:      "Compare the coinsurance rate with other plans and budget for your share of major procedures.",
	},
	{
		ID: "balance_billing",
		Patterns: []RulePattern{
			rp(`\bbalance[\s-]bill(?:ing|ed)?\b`),
		},
		FlagType:            entities.RedFlagHighCost,
		Severity:            entities.SeverityHigh,
		Title:               "Balance Billing",
		DescriptionTemplate: "Providers may bill you the difference between their charge and the allowed amount (%q).",
		Recommendation:      "The No Surprises Act limits balance billing for emergencies; ask which other services are protected.",
	},
	{
		ID: "appeal_restriction",
		Patterns: []RulePattern{
			rp(`\bappeals?\s+(?:must\s+be\s+)?(?:filed|submitted|made)\s+within\s+\d+\s+days\b`),
			rp(`\bno\s+right\s+(?:to|of)\s+appeal\b`),
			rp(`\b(?:decisions?|determinations?)\s+(?:is|are)\s+final\b`),
		},
		FlagType:            entities.RedFlagAppealRestriction,
		Severity:            entities.SeverityHigh,
		Title:               "Appeal Restrictions",
		DescriptionTemplate: "The policy restricts how or when you can appeal a denial (%q).",
		Recommendation:      "Note appeal deadlines; you have the right to internal and external review of most denials.",
	},
	{
		ID: "benefit_gap",
		Patterns: []RulePattern{
			rp(`\b(?:maternity|prescription\s+drugs?|mental\s+health)\s+(?:care\s+|services?\s+|benefits?\s+)?(?:is\s+|are\s+)?not\s+covered\b`),
			rp(`\bno\s+(?:coverage|benefits?)\s+(?:is\s+provided\s+)?for\s+(?:maternity|prescription\s+drugs?|mental\s+health)\b`),
		},
		FlagType:            entities.RedFlagCoverageGap,
		Severity:            entities.SeverityCritical,
		Title:               "Essential Benefit Not Covered",
		DescriptionTemplate: "An essential health benefit appears to be missing (%q).",
		Recommendation:      "Essential health benefits must be covered by ACA-compliant plans; confirm this plan's status before enrolling.",
	},
}

// DefaultRedFlagRules returns a copy of the built-in rule table.
func DefaultRedFlagRules() []RedFlagRule {
	out := make([]RedFlagRule, len(defaultRedFlagRules))
	copy(out, defaultRedFlagRules)
	return out
}

// RedFlagDetector applies a fixed rule table to policy text.
type RedFlagDetector struct {
	rules      []RedFlagRule
	dedup      bool
	confidence float64
}

// NewRedFlagDetector creates a detector with the built-in rules.
func NewRedFlagDetector() *RedFlagDetector {
	return NewRedFlagDetectorWithRules(DefaultRedFlagRules())
}

// NewRedFlagDetectorWithRules creates a detector with a custom rule table.
func NewRedFlagDetectorWithRules(rules []RedFlagRule) *RedFlagDetector {
	return &RedFlagDetector{rules: rules, confidence: DefaultRedFlagConfidence}
}

// WithDedup returns a copy that collapses flags with overlapping source spans.
func (d *RedFlagDetector) WithDedup(enabled bool) *RedFlagDetector {
	cp := *d
	cp.dedup = enabled
	return &cp
}

// WithConfidence returns a copy that attaches c to every flag.
func (d *RedFlagDetector) WithConfidence(c float64) *RedFlagDetector {
	cp := *d
	cp.confidence = entities.ClampConfidence(c)
	return &cp
}

// Rules returns the detector's rule table.
func (d *RedFlagDetector) Rules() []RedFlagRule {
	out := make([]RedFlagRule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Detect returns unsaved flag candidates ordered by (span_start, rule_id).
// Each rule contributes at most one flag and is evaluated independently.
func (d *RedFlagDetector) Detect(text string) []entities.RedFlag {
	if text == "" {
		return nil
	}
	lower := asciiLower(text)

	flags := make([]entities.RedFlag, 0)
	for _, rule := range d.rules {
		if flag, ok := d.applyRule(rule, text, lower); ok {
			flags = append(flags, flag)
		}
	}

	sortFlags(flags)
	if d.dedup {
		flags = dedupOverlapping(flags)
	}
	return flags
}

func (d *RedFlagDetector) applyRule(rule RedFlagRule, text, lower string) (entities.RedFlag, bool) {
	for _, pattern := range rule.Patterns {
		loc := pattern.Re.FindStringIndex(lower)
		if loc == nil {
			continue
		}

		matched := text[loc[0]:loc[1]]
		description := fmt.Sprintf(rule.DescriptionTemplate, utils.NormalizeWhitespace(matched))
		if pattern.Label != "" {
			description += fmt.Sprintf(" Matched phrasing: %s.", pattern.Label)
		}

		flag := entities.RedFlag{
			RuleID:          rule.ID,
			FlagType:        rule.FlagType,
			Severity:        rule.Severity,
			Title:           rule.Title,
			Description:     description,
			SourceText:      utils.Excerpt(text, loc[0], loc[1], excerptWindow),
			ConfidenceScore: d.confidence,
			DetectedBy:      DetectorRuleEngine,
			SpanStart:       loc[0],
			SpanEnd:         loc[1],
		}
		if rule.Recommendation != "" {
			rec := rule.Recommendation
			flag.Recommendation = &rec
		}
		return flag, true
	}
	return entities.RedFlag{}, false
}

func sortFlags(flags []entities.RedFlag) {
	sort.SliceStable(flags, func(i, j int) bool {
		if flags[i].SpanStart != flags[j].SpanStart {
			return flags[i].SpanStart < flags[j].SpanStart
		}
		return flags[i].RuleID < flags[j].RuleID
	})
}

// dedupOverlapping keeps one flag per cluster of overlapping spans: the highest
// severity, ties broken by the smaller rule id. Input must be sorted.
func dedupOverlapping(flags []entities.RedFlag) []entities.RedFlag {
	if len(flags) < 2 {
		return flags
	}

	out := make([]entities.RedFlag, 0, len(flags))
	best := flags[0]
	clusterEnd := flags[0].SpanEnd
	for _, f := range flags[1:] {
		if f.SpanStart < clusterEnd {
			if beats(f, best) {
				best = f
			}
			if f.SpanEnd > clusterEnd {
				clusterEnd = f.SpanEnd
			}
			continue
		}
		out = append(out, best)
		best = f
		clusterEnd = f.SpanEnd
	}
	out = append(out, best)

	sortFlags(out)
	return out
}

func beats(a, b entities.RedFlag) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	return a.RuleID < b.RuleID
}

// asciiLower lower-cases ASCII letters only so byte offsets stay aligned with text.
func asciiLower(text string) string {
	b := []byte(text)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
