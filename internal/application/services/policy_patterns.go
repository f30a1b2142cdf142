package services

import (
	"regexp"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

const (
	amountExpr = `\$?\s*(\d[\d,.]*)`
	dateExpr   = `(\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}-\d{1,2}-\d{4}|[a-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`
	oopExpr    = `out[\s-]+of[\s-]+pocket\s+(?:max(?:imum)?|limit)`
)

// fieldPattern is one regex for a target field. The first capturing group is
// the value. A match whose preceding text ends with rejectAfter belongs to a
// sibling field and is skipped.
type fieldPattern struct {
	re          *regexp.Regexp
	rejectAfter string
}

func p(expr string) fieldPattern {
	return fieldPattern{re: regexp.MustCompile(`(?i)` + expr)}
}

func pNotAfter(expr, rejectAfter string) fieldPattern {
	return fieldPattern{re: regexp.MustCompile(`(?i)` + expr), rejectAfter: rejectAfter}
}

// policyFieldPatterns lists the patterns per field, tried in order.
var policyFieldPatterns = map[string][]fieldPattern{
	entities.FieldPolicyName: {
		p(`(?:plan|policy)\s+name\s*[:\-]\s*([^\n]{3,100})`),
		p(`(?m)^\s*plan\s*:\s*([^\n]{3,100})$`),
	},
	entities.FieldPolicyType: {
		p(`(?:plan|policy|coverage)\s+type\s*[:\-]\s*([^\n]{2,50})`),
		p(`\b(health|medical|dental|vision|life|disability)\s+(?:insurance|plan|policy|coverage)\b`),
	},
	entities.FieldPolicyNumber: {
		p(`policy\s*(?:number|no\.?|#)\s*[:\-]?\s*([a-z0-9][a-z0-9\-]{3,30})`),
		p(`(?:group|member)\s*(?:number|id|#)\s*[:\-]?\s*([a-z0-9][a-z0-9\-]{3,30})`),
	},
	entities.FieldPlanYear: {
		p(`plan\s+year\s*[:\-]?\s*(\d{4})`),
		p(`coverage\s+year\s*[:\-]?\s*(\d{4})`),
		p(`\b((?:19|20)\d{2})\s+(?:benefits?\s+summary|summary\s+of\s+benefits|plan\s+year)\b`),
	},
	entities.FieldEffectiveDate: {
		p(`effective\s+date\s*[:\-]?\s*` + dateExpr),
		p(`(?:coverage\s+)?(?:begins|starts|effective)\s+(?:on\s+)?` + dateExpr),
		p(`coverage\s+period\s*[:\-]?\s*` + dateExpr),
	},
	entities.FieldExpirationDate: {
		p(`(?:expiration|termination|end)\s+date\s*[:\-]?\s*` + dateExpr),
		p(`(?:coverage\s+)?(?:ends|expires|terminates)\s+(?:on\s+)?` + dateExpr),
		p(`coverage\s+period\s*[:\-]?\s*\S+\s*(?:-|to|through)\s*` + dateExpr),
	},
	entities.FieldDeductibleIndividual: {
		p(`individual\s+deductible\s*[:\-]?\s*` + amountExpr),
		p(`deductible\s*\(?\s*(?:individual|per\s+person|single)\s*\)?\s*[:\-]?\s*` + amountExpr),
		pNotAfter(`(?:annual|calendar[\s-]+year|yearly)\s+deductible\s*[:\-]?\s*`+amountExpr, "family"),
		pNotAfter(`\bdeductible\s*[:\-]\s*`+amountExpr, "family"),
	},
	entities.FieldDeductibleFamily: {
		p(`family\s+deductible\s*[:\-]?\s*` + amountExpr),
		p(`deductible\s*\(?\s*family\s*\)?\s*[:\-]?\s*` + amountExpr),
	},
	entities.FieldOutOfPocketMaxIndividual: {
		p(`individual\s+` + oopExpr + `\s*[:\-]?\s*` + amountExpr),
		p(oopExpr + `\s*\(?\s*(?:individual|per\s+person|single)\s*\)?\s*[:\-]?\s*` + amountExpr),
		pNotAfter(oopExpr+`\s*[:\-]\s*`+amountExpr, "family"),
		pNotAfter(`\boop\s+max(?:imum)?\s*[:\-]?\s*`+amountExpr, "family"),
	},
	entities.FieldOutOfPocketMaxFamily: {
		p(`family\s+` + oopExpr + `\s*[:\-]?\s*` + amountExpr),
		p(oopExpr + `\s*\(?\s*family\s*\)?\s*[:\-]?\s*` + amountExpr),
	},
	entities.FieldPremiumMonthly: {
		p(`monthly\s+premium\s*[:\-]?\s*` + amountExpr),
		p(`premium\s*[:\-]?\s*` + amountExpr + `\s*(?:/|per)\s*(?:month|mo)\b`),
	},
	entities.FieldPremiumAnnual: {
		p(`(?:annual|yearly)\s+premium\s*[:\-]?\s*` + amountExpr),
		p(`premium\s*[:\-]?\s*` + amountExpr + `\s*(?:/|per)\s*(?:year|yr)\b`),
	},
	entities.FieldNetworkType: {
		p(`network\s+type\s*[:\-]?\s*(hmo|ppo|epo|pos|hdhp)\b`),
		p(`\b(hmo|ppo|epo|pos)\b`),
	},
}

// matchField returns the first capturing group of the first matching pattern.
func matchField(field, text string) (string, bool) {
	for _, fp := range policyFieldPatterns[field] {
		for _, loc := range fp.re.FindAllStringSubmatchIndex(text, -1) {
			if len(loc) < 4 || loc[2] < 0 {
				continue
			}
			if fp.rejectAfter != "" && precededBy(text, loc[0], fp.rejectAfter) {
				continue
			}
			value := strings.TrimSpace(text[loc[2]:loc[3]])
			if value != "" {
				return value, true
			}
		}
	}
	return "", false
}

func precededBy(text string, pos int, word string) bool {
	lo := pos - len(word) - 2
	if lo < 0 {
		lo = 0
	}
	return strings.Contains(strings.ToLower(text[lo:pos]), word)
}
