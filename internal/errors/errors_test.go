package errors

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := context.DeadlineExceeded
	err := Wrap(ErrStoreUnavailable, cause)

	if !stderrors.Is(err, ErrStoreUnavailable) {
		t.Error("wrapped error should match its sentinel")
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Error("wrapped error should expose its internal cause")
	}
	if stderrors.Is(err, ErrInternalServer) {
		t.Error("wrapped error should not match a different sentinel")
	}
	if !err.Retryable() {
		t.Error("store unavailable should be retryable")
	}
	if err.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", err.StatusCode)
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrValidation, "amount must be greater than zero")

	if err.Message != "amount must be greater than zero" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code %q", err.Code)
	}
	if !stderrors.Is(err, ErrValidation) {
		t.Error("custom-message error should match its sentinel")
	}
	if err.Retryable() {
		t.Error("validation errors are terminal")
	}
}
