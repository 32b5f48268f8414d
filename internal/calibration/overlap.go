package calibration

import "github.com/mavedb/mavedb-core/internal/domain"

// rangeClassifications extracts the range-based classifications of a
// calibration, sorted by lower bound (ties by upper bound), matching the
// ordering spec §4.C's overlap rule assumes ("let A be the one with the
// smaller lower bound").
func rangeClassifications(c *domain.ScoreCalibration) []domain.FunctionalClassification {
	var out []domain.FunctionalClassification
	for _, fc := range c.Classifications {
		if fc.Range != nil {
			out = append(out, fc)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1].Range, out[j].Range
			if a.Lower > b.Lower || (a.Lower == b.Lower && a.Upper > b.Upper) {
				out[j-1], out[j] = out[j], out[j-1]
			} else {
				break
			}
		}
	}
	return out
}

// ValidateOverlap enforces spec §4.C's overlap rule across every pair of
// range-based classifications in a calibration.
func ValidateOverlap(c *domain.ScoreCalibration) []domain.RowError {
	ranges := rangeClassifications(c)
	var errs []domain.RowError

	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			a, b := ranges[i], ranges[j]
			if conflicts(a, b) {
				errs = append(errs, domain.RowError{
					Message: "overlapping functional classification ranges: " + a.Label + " and " + b.Label,
				})
			}
		}
	}
	return errs
}

// conflicts reports whether two range-based classifications illegally
// overlap (spec §4.C "Overlap rule").
func conflicts(a, b domain.FunctionalClassification) bool {
	if a.Functional == domain.FunctionalNotSpecified || b.Functional == domain.FunctionalNotSpecified {
		return false // overlap permitted by design
	}

	ra, rb := a.Range, b.Range
	if ra.Upper < rb.Lower {
		return false
	}
	if ra.Upper == rb.Lower && !(ra.InclusiveUpper && rb.InclusiveLower) {
		return false
	}
	return true
}
