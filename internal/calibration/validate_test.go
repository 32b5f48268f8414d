package calibration

import (
	"testing"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func classKey(s string) *string { return &s }

func TestValidate_ExactlyOneOfRangeOrClass(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "bad", Range: &domain.ScoreRange{Lower: 0, Upper: 1}, Class: classKey("x")},
		},
	}
	errs := Validate(c)
	assert.NotEmpty(t, errs)
}

func TestValidate_MixedKindsRejected(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "r", Range: &domain.ScoreRange{Lower: 0, Upper: 1}, Functional: domain.FunctionalNormal},
			{Label: "c", Class: classKey("x"), Functional: domain.FunctionalAbnormal},
		},
	}
	errs := Validate(c)
	assert.NotEmpty(t, errs)
}

func TestValidate_DuplicateLabelsAndClasses(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "x", Class: classKey("a"), Functional: domain.FunctionalNormal},
			{Label: "x", Class: classKey("a"), Functional: domain.FunctionalAbnormal},
		},
	}
	errs := Validate(c)
	assert.GreaterOrEqual(t, len(errs), 2)
}

func TestValidate_RangeLowerMustBeLessThanUpper(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "x", Range: &domain.ScoreRange{Lower: 5, Upper: 1}, Functional: domain.FunctionalNormal},
		},
	}
	errs := Validate(c)
	assert.NotEmpty(t, errs)
}

func TestValidate_InclusiveInfiniteEndRejected(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "x", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{
				Lower: domain.NegInf, Upper: 1, InclusiveLower: true,
			}},
		},
	}
	errs := Validate(c)
	assert.NotEmpty(t, errs)
}

func TestValidate_OverlapRejectedUnlessNotSpecified(t *testing.T) {
	overlapping := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: 0, Upper: 2}},
			{Label: "b", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 1, Upper: 3}},
		},
	}
	assert.NotEmpty(t, Validate(overlapping))

	exempt := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNotSpecified, Range: &domain.ScoreRange{Lower: 0, Upper: 2}},
			{Label: "b", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 1, Upper: 3}},
		},
	}
	assert.Empty(t, Validate(exempt))
}

func TestValidate_ACMGFunctionalCoherence(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{
				Label:      "x",
				Functional: domain.FunctionalNormal,
				Range:      &domain.ScoreRange{Lower: 0, Upper: 1},
				ACMG:       &domain.ACMGClassification{Criterion: domain.CriterionPS3, Strength: domain.StrengthStrong},
			},
		},
	}
	assert.NotEmpty(t, Validate(c))
}

func TestValidate_OddspathsMustMatchACMG(t *testing.T) {
	ratio := 300.0 // infers PS3/VERY_STRONG (>= 2^8 = 256)
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{
				Label:          "x",
				Functional:     domain.FunctionalAbnormal,
				Range:          &domain.ScoreRange{Lower: 0, Upper: 1},
				ACMG:           &domain.ACMGClassification{Criterion: domain.CriterionPS3, Strength: domain.StrengthModerate},
				OddspathsRatio: &ratio,
			},
		},
	}
	assert.NotEmpty(t, Validate(c))
}

func TestValidate_PrimaryMustNotBePrivateOrResearchOnly(t *testing.T) {
	c := &domain.ScoreCalibration{Primary: true, Private: true}
	assert.NotEmpty(t, Validate(c))
}

func TestValidate_BaselineRangeMustBeNormal(t *testing.T) {
	baseline := 0.5
	c := &domain.ScoreCalibration{
		BaselineScore: &baseline,
		Classifications: []domain.FunctionalClassification{
			{Label: "x", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: 0, Upper: 1}},
		},
	}
	assert.NotEmpty(t, Validate(c))
}
