package jobs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeContext(t *testing.T) {
	result := map[string]any{"num_variants": 12}
	ctxData := map[string]any{"num_variants": 999, "score_set_urn": "urn:mavedb:00000001-a-1"}

	merged := mergeContext(result, ctxData)

	assert.Equal(t, 12, merged["num_variants"], "a key already in the function's own result should win over context data")
	assert.Equal(t, "urn:mavedb:00000001-a-1", merged["score_set_urn"])
}

func TestMergeContext_NilResult(t *testing.T) {
	merged := mergeContext(nil, map[string]any{"a": 1})
	assert.Equal(t, map[string]any{"a": 1}, merged)
}

func TestExceptionClass(t *testing.T) {
	assert.Equal(t, "*errors.errorString", exceptionClass(errors.New("boom")))
}
