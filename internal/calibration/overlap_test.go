package calibration

import (
	"testing"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateOverlap_TouchingExclusiveRangesOK(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: 0, Upper: 1}},
			{Label: "b", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 1, Upper: 2}},
		},
	}
	assert.Empty(t, ValidateOverlap(c))
}

func TestValidateOverlap_TouchingBothInclusiveConflicts(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: 0, Upper: 1, InclusiveUpper: true}},
			{Label: "b", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 1, Upper: 2, InclusiveLower: true}},
		},
	}
	assert.NotEmpty(t, ValidateOverlap(c))
}

func TestValidateOverlap_OverlappingRangesConflict(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: 0, Upper: 2}},
			{Label: "b", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 1, Upper: 3}},
		},
	}
	assert.NotEmpty(t, ValidateOverlap(c))
}

func TestValidateOverlap_NotSpecifiedExempt(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNotSpecified, Range: &domain.ScoreRange{Lower: 0, Upper: 5}},
			{Label: "b", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: 1, Upper: 2}},
			{Label: "c", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 3, Upper: 4}},
		},
	}
	assert.Empty(t, ValidateOverlap(c))
}

func TestValidateOverlap_ClassBasedSkipped(t *testing.T) {
	key := "x"
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNormal, Class: &key},
		},
	}
	assert.Empty(t, ValidateOverlap(c))
}

func TestRangeClassifications_SortedByLowerThenUpper(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "c", Range: &domain.ScoreRange{Lower: 2, Upper: 3}},
			{Label: "a", Range: &domain.ScoreRange{Lower: 0, Upper: 1}},
			{Label: "b", Range: &domain.ScoreRange{Lower: 0, Upper: 2}},
		},
	}
	sorted := rangeClassifications(c)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sorted[0].Label, sorted[1].Label, sorted[2].Label})
}
