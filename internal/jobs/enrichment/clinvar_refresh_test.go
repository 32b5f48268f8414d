package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClinVarDate(t *testing.T) {
	assert.NoError(t, ValidateClinVarDate(2015, 2))
	assert.NoError(t, ValidateClinVarDate(2026, 1))
	assert.Error(t, ValidateClinVarDate(2015, 1))
	assert.Error(t, ValidateClinVarDate(2014, 12))
	assert.Error(t, ValidateClinVarDate(2020, 0))
	assert.Error(t, ValidateClinVarDate(2020, 13))
}

func TestIntParam(t *testing.T) {
	v, err := intParam(map[string]any{"year": float64(2020)}, "year")
	assert.NoError(t, err)
	assert.Equal(t, 2020, v)

	_, err = intParam(map[string]any{}, "year")
	assert.Error(t, err)
}
