package calibration

import (
	"testing"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestInferACMG_PS3Thresholds(t *testing.T) {
	cases := []struct {
		ratio    float64
		strength domain.EvidenceStrength
	}{
		{300, domain.StrengthVeryStrong}, // >= 2^8 = 256
		{256, domain.StrengthVeryStrong},
		{255, domain.StrengthStrong},  // >= 2^4 = 16
		{16, domain.StrengthStrong},
		{15, domain.StrengthModerate}, // >= 2^2 = 4
		{4, domain.StrengthModerate},
		{3, domain.StrengthSupporting}, // >= 2^1 = 2
		{2, domain.StrengthSupporting},
	}
	for _, c := range cases {
		got, ok := InferACMG(c.ratio)
		assert.True(t, ok, "ratio %v", c.ratio)
		assert.Equal(t, domain.CriterionPS3, got.Criterion)
		assert.Equal(t, c.strength, got.Strength, "ratio %v", c.ratio)
	}
}

func TestInferACMG_BS3Thresholds(t *testing.T) {
	cases := []struct {
		ratio    float64
		strength domain.EvidenceStrength
	}{
		{1.0 / 16, domain.StrengthVeryStrong}, // <= 2^-4
		{1.0 / 8, domain.StrengthStrong},      // <= 2^-3
		{1.0 / 4, domain.StrengthModerate},    // <= 2^-2
		{1.0 / 2, domain.StrengthSupporting},  // <= 2^-1
	}
	for _, c := range cases {
		got, ok := InferACMG(c.ratio)
		assert.True(t, ok, "ratio %v", c.ratio)
		assert.Equal(t, domain.CriterionBS3, got.Criterion)
		assert.Equal(t, c.strength, got.Strength, "ratio %v", c.ratio)
	}
}

func TestInferACMG_BelowWeakestThresholdReturnsFalse(t *testing.T) {
	_, ok := InferACMG(1.2)
	assert.False(t, ok)

	_, ok = InferACMG(0.8)
	assert.False(t, ok)
}

func TestInferACMG_RatioOfOneIsPS3Side(t *testing.T) {
	// ratio == 1 takes the PS3 branch (not < 1) but clears no PS3 threshold.
	_, ok := InferACMG(1)
	assert.False(t, ok)
}
