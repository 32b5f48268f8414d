// Package calibration implements the score calibration engine: functional
// range/class interval validation, ACMG/odds-path coherence checking, and
// per-variant classification lookup (spec §4.C).
package calibration

import "github.com/mavedb/mavedb-core/internal/domain"

// oddsPathBase is the exponential base the inference table scales
// thresholds by. Spec §4.C names the point weights (PS3 exponential
// {1,2,4,8}, BS3 linear {1,2,3,4}) but not the table's numeric thresholds;
// this engine resolves that open question by setting each (criterion,
// strength) threshold to base^weight (PS3) or base^-weight (BS3), so the
// weight scale internal/domain/calibration.go already encodes drives the thresholds directly
// instead of a second, independently-chosen table. See DESIGN.md.
const oddsPathBase = 2.0

// InferACMG maps a numeric odds-path ratio to the strongest ACMG
// (criterion, strength) pair it satisfies. Ratios >= 1 are evaluated on the
// pathogenic (PS3) side, ratios < 1 on the benign (BS3) side. Returns false
// if the ratio does not clear even the weakest (SUPPORTING) threshold on
// either side.
func InferACMG(ratio float64) (domain.ACMGClassification, bool) {
	criterion := domain.CriterionPS3
	if ratio < 1 {
		criterion = domain.CriterionBS3
	}

	for _, sw := range domain.StrengthsByDescendingWeight(criterion) {
		threshold := pow(oddsPathBase, float64(sw.Weight))
		if criterion == domain.CriterionPS3 {
			if ratio >= threshold {
				return domain.ACMGClassification{Criterion: criterion, Strength: sw.Strength}, true
			}
		} else {
			if ratio <= 1/threshold {
				return domain.ACMGClassification{Criterion: criterion, Strength: sw.Strength}, true
			}
		}
	}
	return domain.ACMGClassification{}, false
}

// pow is a tiny non-negative-integer-exponent power function, avoiding a
// math.Pow import for the handful of exponents this table ever evaluates.
func pow(base, exp float64) float64 {
	n := int(exp)
	result := 1.0
	for i := 0; i < n; i++ {
		result *= base
	}
	return result
}
