package calibration

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestEngine_ClassifyRangeBasedCachesParsedRanges(t *testing.T) {
	engine, err := NewEngine(testLogger(), 8)
	require.NoError(t, err)

	c := rangeCalibration()
	v := &domain.Variant{Data: domain.VariantData{ScoreData: map[string]any{"score": -3.0}}}

	fc, ok := engine.Classify(c, v, nil)
	assert.True(t, ok)
	assert.Equal(t, "abnormal", fc.Label)

	_, ok = engine.cache.Get(c.ScoreSetID)
	assert.True(t, ok, "ranges should be cached after first classify")

	// second call should hit the cache and still classify correctly.
	fc, ok = engine.Classify(c, v, nil)
	assert.True(t, ok)
	assert.Equal(t, "abnormal", fc.Label)
}

func TestEngine_Invalidate(t *testing.T) {
	engine, err := NewEngine(testLogger(), 8)
	require.NoError(t, err)

	c := rangeCalibration()
	v := &domain.Variant{Data: domain.VariantData{ScoreData: map[string]any{"score": -3.0}}}
	_, _ = engine.Classify(c, v, nil)

	engine.Invalidate(c.ScoreSetID)
	_, ok := engine.cache.Get(c.ScoreSetID)
	assert.False(t, ok)
}

func TestEngine_ClassifyClassBasedBypassesCache(t *testing.T) {
	engine, err := NewEngine(testLogger(), 8)
	require.NoError(t, err)

	key := "lof"
	c := &domain.ScoreCalibration{
		ScoreSetID: 2,
		Classifications: []domain.FunctionalClassification{
			{Label: "lof", Functional: domain.FunctionalAbnormal, Class: &key},
		},
	}
	v := &domain.Variant{URN: "urn:1"}
	variantClasses := map[string][]string{"lof": {"urn:1"}}

	fc, ok := engine.Classify(c, v, variantClasses)
	assert.True(t, ok)
	assert.Equal(t, "lof", fc.Label)

	_, ok = engine.cache.Get(c.ScoreSetID)
	assert.False(t, ok, "class-based calibrations never populate the range cache")
}

func TestEngine_Validate(t *testing.T) {
	engine, err := NewEngine(testLogger(), 8)
	require.NoError(t, err)

	c := &domain.ScoreCalibration{Primary: true, Private: true}
	errs := engine.Validate(c)
	assert.NotEmpty(t, errs)
}
