package evaluation

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/utils"
)

const amountTolerance = 0.005

// FieldAccuracy computes the fraction of expected fields the extractor got
// right and lists the ones it missed, sorted. Returns 1.0 when nothing is expected.
func FieldAccuracy(expected map[string]string, data *entities.ExtractedPolicyData) (float64, []string) {
	if len(expected) == 0 {
		return 1.0, nil
	}

	var mismatched []string
	correct := 0
	for field, want := range expected {
		if fieldMatches(data, field, want) {
			correct++
			continue
		}
		mismatched = append(mismatched, field)
	}
	sort.Strings(mismatched)

	return float64(correct) / float64(len(expected)), mismatched
}

// FlagPrecision computes the fraction of distinct detected flag types that
// were expected. With nothing detected it is 1.0 only if nothing was expected.
func FlagPrecision(expected, detected []entities.RedFlagType) float64 {
	det := typeSet(detected)
	if len(det) == 0 {
		if len(typeSet(expected)) == 0 {
			return 1.0
		}
		return 0.0
	}
	return float64(overlap(typeSet(expected), det)) / float64(len(det))
}

// FlagRecall computes the fraction of distinct expected flag types that were
// detected. Returns 1.0 when nothing is expected.
func FlagRecall(expected, detected []entities.RedFlagType) float64 {
	exp := typeSet(expected)
	if len(exp) == 0 {
		return 1.0
	}
	return float64(overlap(exp, typeSet(detected))) / float64(len(exp))
}

func typeSet(types []entities.RedFlagType) map[entities.RedFlagType]struct{} {
	set := make(map[entities.RedFlagType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func overlap(a, b map[entities.RedFlagType]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

// fieldMatches compares one extracted field against its labeled value.
// Amounts compare numerically, dates by calendar day, text case-insensitively.
func fieldMatches(data *entities.ExtractedPolicyData, field, want string) bool {
	if data == nil {
		return false
	}
	switch field {
	case entities.FieldPolicyName:
		return textEqual(data.PolicyName, want)
	case entities.FieldPolicyType:
		return textEqual(data.PolicyType, want)
	case entities.FieldPolicyNumber:
		return textEqual(data.PolicyNumber, want)
	case entities.FieldNetworkType:
		return textEqual(data.NetworkType, want)
	case entities.FieldPlanYear:
		year, err := strconv.Atoi(strings.TrimSpace(want))
		return err == nil && data.PlanYear != nil && *data.PlanYear == year
	case entities.FieldEffectiveDate:
		return dateEqual(data.EffectiveDate, want)
	case entities.FieldExpirationDate:
		return dateEqual(data.ExpirationDate, want)
	case entities.FieldDeductibleIndividual:
		return amountEqual(data.DeductibleIndividual, want)
	case entities.FieldDeductibleFamily:
		return amountEqual(data.DeductibleFamily, want)
	case entities.FieldOutOfPocketMaxIndividual:
		return amountEqual(data.OutOfPocketMaxIndividual, want)
	case entities.FieldOutOfPocketMaxFamily:
		return amountEqual(data.OutOfPocketMaxFamily, want)
	case entities.FieldPremiumMonthly:
		return amountEqual(data.PremiumMonthly, want)
	case entities.FieldPremiumAnnual:
		return amountEqual(data.PremiumAnnual, want)
	}
	return false
}

func textEqual[T ~string](got *T, want string) bool {
	return got != nil && strings.EqualFold(strings.TrimSpace(string(*got)), strings.TrimSpace(want))
}

func amountEqual(got *float64, want string) bool {
	v, ok := utils.ParseAmount(want)
	return ok && got != nil && math.Abs(*got-v) < amountTolerance
}

func dateEqual(got *time.Time, want string) bool {
	t, ok := utils.ParseDate(want)
	if !ok || got == nil {
		return false
	}
	return got.Format("2006-01-02") == t.Format("2006-01-02")
}
