package calibration

import (
	"sort"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// parsedRanges is the engine's in-memory representation of a calibration's
// range-based classifications, sorted by lower bound so lookup can stop
// scanning once no later classification can contain the score.
type parsedRanges struct {
	classifications []domain.FunctionalClassification
}

func parseRanges(c *domain.ScoreCalibration) *parsedRanges {
	p := &parsedRanges{classifications: rangeClassifications(c)}
	sort.Slice(p.classifications, func(i, j int) bool {
		return p.classifications[i].Range.Lower < p.classifications[j].Range.Lower
	})
	return p
}

// find returns the classification containing score, or false. Ranges are
// validated non-overlapping except via the not_specified exemption (spec
// §4.C), so a plain scan over the (small, per-calibration) classification
// set is both correct and cheap; the sorted order kept by parseRanges lets
// the scan stop as soon as no later range can possibly contain score.
func (p *parsedRanges) find(score float64) (domain.FunctionalClassification, bool) {
	for _, fc := range p.classifications {
		if fc.Range.Lower > score {
			break
		}
		if fc.Range.Contains(score) {
			return fc, true
		}
	}
	return domain.FunctionalClassification{}, false
}

// ClassifyVariant implements spec §4.C's per-variant classification lookup:
// class-based calibrations match by URN membership in variantClasses;
// range-based calibrations match by the variant's numeric score. A variant
// with a missing or non-numeric score never matches a range-based
// calibration.
func ClassifyVariant(c *domain.ScoreCalibration, v *domain.Variant, variantClasses map[string][]string) (domain.FunctionalClassification, bool) {
	if c.IsClassBased() {
		for _, fc := range c.Classifications {
			if fc.Class == nil {
				continue
			}
			for _, urn := range variantClasses[*fc.Class] {
				if urn == v.URN {
					return fc, true
				}
			}
		}
		return domain.FunctionalClassification{}, false
	}

	score, ok := v.Data.Score()
	if !ok {
		return domain.FunctionalClassification{}, false
	}
	return parseRanges(c).find(score)
}
