package calibration

import (
	"testing"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func rangeCalibration() *domain.ScoreCalibration {
	return &domain.ScoreCalibration{
		ScoreSetID: 1,
		Classifications: []domain.FunctionalClassification{
			{Label: "abnormal", Functional: domain.FunctionalAbnormal, Range: &domain.ScoreRange{Lower: domain.NegInf, Upper: -1}},
			{Label: "normal", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: -1, Upper: domain.PosInf, InclusiveLower: true}},
		},
	}
}

func TestParsedRanges_Find(t *testing.T) {
	p := parseRanges(rangeCalibration())

	fc, ok := p.find(-5)
	assert.True(t, ok)
	assert.Equal(t, "abnormal", fc.Label)

	fc, ok = p.find(-1)
	assert.True(t, ok)
	assert.Equal(t, "normal", fc.Label, "lower bound is inclusive")

	fc, ok = p.find(10)
	assert.True(t, ok)
	assert.Equal(t, "normal", fc.Label)
}

func TestParsedRanges_Find_NoMatch(t *testing.T) {
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "a", Functional: domain.FunctionalNormal, Range: &domain.ScoreRange{Lower: 0, Upper: 1}},
		},
	}
	p := parseRanges(c)
	_, ok := p.find(5)
	assert.False(t, ok)
}

func TestClassifyVariant_RangeBased(t *testing.T) {
	c := rangeCalibration()
	v := &domain.Variant{URN: "urn:1", Data: domain.VariantData{ScoreData: map[string]any{"score": -3.0}}}

	fc, ok := ClassifyVariant(c, v, nil)
	assert.True(t, ok)
	assert.Equal(t, "abnormal", fc.Label)
}

func TestClassifyVariant_MissingScoreNoMatch(t *testing.T) {
	c := rangeCalibration()
	v := &domain.Variant{URN: "urn:1", Data: domain.VariantData{}}

	_, ok := ClassifyVariant(c, v, nil)
	assert.False(t, ok)
}

func TestClassifyVariant_ClassBased(t *testing.T) {
	key := "loss_of_function"
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "lof", Functional: domain.FunctionalAbnormal, Class: &key},
		},
	}
	v := &domain.Variant{URN: "urn:2"}
	variantClasses := map[string][]string{"loss_of_function": {"urn:1", "urn:2"}}

	fc, ok := ClassifyVariant(c, v, variantClasses)
	assert.True(t, ok)
	assert.Equal(t, "lof", fc.Label)
}

func TestClassifyVariant_ClassBasedNoMembership(t *testing.T) {
	key := "loss_of_function"
	c := &domain.ScoreCalibration{
		Classifications: []domain.FunctionalClassification{
			{Label: "lof", Functional: domain.FunctionalAbnormal, Class: &key},
		},
	}
	v := &domain.Variant{URN: "urn:3"}
	variantClasses := map[string][]string{"loss_of_function": {"urn:1", "urn:2"}}

	_, ok := ClassifyVariant(c, v, variantClasses)
	assert.False(t, ok)
}
