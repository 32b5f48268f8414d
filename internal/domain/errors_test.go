package domain

import (
	"errors"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain validation failure")) {
		t.Fatal("a plain error should not be retryable")
	}
	if IsRetryable(NewValidationError("bad column")) {
		t.Fatal("ValidationError should not be retryable")
	}

	wrapped := &RetryableError{Err: errors.New("upstream timeout")}
	if !IsRetryable(wrapped) {
		t.Fatal("RetryableError should be retryable")
	}

	fmtWrapped := errors.Join(wrapped)
	if !IsRetryable(fmtWrapped) {
		t.Fatal("errors.As should find a RetryableError through errors.Join")
	}
}
