package calibration

import (
	"fmt"
	"math"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// Validate checks every invariant spec §3 places on a ScoreCalibration and
// its FunctionalClassifications, aggregating every violation rather than
// stopping at the first.
func Validate(c *domain.ScoreCalibration) []domain.RowError {
	var errs []domain.RowError

	errs = append(errs, validateKindConsistency(c)...)
	errs = append(errs, validateUniqueness(c)...)
	errs = append(errs, validateRangeShapes(c)...)
	errs = append(errs, validateACMGCoherence(c)...)
	errs = append(errs, ValidateOverlap(c)...)
	errs = append(errs, validatePrimary(c)...)
	errs = append(errs, validateBaseline(c)...)

	return errs
}

func validateKindConsistency(c *domain.ScoreCalibration) []domain.RowError {
	var errs []domain.RowError
	rangeCount, classCount := 0, 0
	for i, fc := range c.Classifications {
		switch {
		case fc.Range != nil && fc.Class != nil:
			errs = append(errs, domain.RowError{Row: i, Message: "exactly one of range or class must be set, not both"})
		case fc.Range == nil && fc.Class == nil:
			errs = append(errs, domain.RowError{Row: i, Message: "exactly one of range or class must be set"})
		case fc.Range != nil:
			rangeCount++
		default:
			classCount++
		}
	}
	if rangeCount > 0 && classCount > 0 {
		errs = append(errs, domain.RowError{Message: "all classifications in a calibration must be of the same kind (all range or all class)"})
	}
	return errs
}

func validateUniqueness(c *domain.ScoreCalibration) []domain.RowError {
	var errs []domain.RowError
	labels := map[string]bool{}
	classes := map[string]bool{}
	for i, fc := range c.Classifications {
		if fc.Label != "" {
			if labels[fc.Label] {
				errs = append(errs, domain.RowError{Row: i, Message: fmt.Sprintf("duplicate classification label %q", fc.Label)})
			}
			labels[fc.Label] = true
		}
		if fc.Class != nil {
			if classes[*fc.Class] {
				errs = append(errs, domain.RowError{Row: i, Message: fmt.Sprintf("duplicate class key %q", *fc.Class)})
			}
			classes[*fc.Class] = true
		}
	}
	return errs
}

func validateRangeShapes(c *domain.ScoreCalibration) []domain.RowError {
	var errs []domain.RowError
	for i, fc := range c.Classifications {
		if fc.Range == nil {
			continue
		}
		r := fc.Range
		if r.Lower >= r.Upper {
			errs = append(errs, domain.RowError{Row: i, Message: "range lower bound must be strictly less than upper bound"})
		}
		if r.InclusiveLower && math.IsInf(r.Lower, -1) {
			errs = append(errs, domain.RowError{Row: i, Message: "an inclusive lower bound cannot be -infinity"})
		}
		if r.InclusiveUpper && math.IsInf(r.Upper, 1) {
			errs = append(errs, domain.RowError{Row: i, Message: "an inclusive upper bound cannot be +infinity"})
		}
	}
	return errs
}

func validateACMGCoherence(c *domain.ScoreCalibration) []domain.RowError {
	var errs []domain.RowError
	for i, fc := range c.Classifications {
		if fc.ACMG == nil {
			continue
		}
		acmg := fc.ACMG

		if fc.Functional == domain.FunctionalNotSpecified {
			errs = append(errs, domain.RowError{Row: i, Message: "not_specified functional classification is incompatible with any ACMG criterion"})
			continue
		}
		if acmg.Criterion.IsPathogenic() && fc.Functional != domain.FunctionalAbnormal {
			errs = append(errs, domain.RowError{Row: i, Message: fmt.Sprintf("ACMG criterion %s requires functional classification abnormal", acmg.Criterion)})
		}
		if acmg.Criterion.IsBenign() && fc.Functional != domain.FunctionalNormal {
			errs = append(errs, domain.RowError{Row: i, Message: fmt.Sprintf("ACMG criterion %s requires functional classification normal", acmg.Criterion)})
		}

		if fc.OddspathsRatio != nil {
			inferred, ok := InferACMG(*fc.OddspathsRatio)
			if !ok || inferred != *acmg {
				errs = append(errs, domain.RowError{Row: i, Message: "oddspaths_ratio's inferred ACMG pair does not match the provided ACMG classification"})
			}
		}
	}
	return errs
}

func validatePrimary(c *domain.ScoreCalibration) []domain.RowError {
	if c.Primary && (c.Private || c.ResearchUseOnly) {
		return []domain.RowError{{Message: "a primary calibration must not be private or research_use_only"}}
	}
	return nil
}

func validateBaseline(c *domain.ScoreCalibration) []domain.RowError {
	if c.BaselineScore == nil {
		return nil
	}
	var errs []domain.RowError
	for i, fc := range c.Classifications {
		if fc.Range == nil {
			continue
		}
		if fc.Range.Contains(*c.BaselineScore) && fc.Functional != domain.FunctionalNormal {
			errs = append(errs, domain.RowError{Row: i, Message: "the range containing baseline_score must have functional classification normal"})
		}
	}
	return errs
}
