package testutil

import (
	"errors"
	"net/http"
	"testing"

	apperrors "spendwise/internal/errors"
)

// appError unwraps err into an *AppError or fails the test.
func appError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an AppError, got nil")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

// AssertAppError checks that err is an *AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()
	if appErr := appError(t, err); appErr.Code != code {
		t.Errorf("expected error code %q, got %q (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertRetryable checks that err tells the client to retry with backoff.
func AssertRetryable(t *testing.T, err error) {
	t.Helper()
	appErr := appError(t, err)
	if !appErr.Retryable() {
		t.Errorf("expected a retryable error, got %q", appErr.Code)
	}
	if appErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 for a retryable error, got %d", appErr.StatusCode)
	}
}

// AssertOpaqueNotFound checks that a lookup of someone else's record fails
// exactly like a lookup of a record that never existed.
func AssertOpaqueNotFound(t *testing.T, foreign, missing error) {
	t.Helper()
	f, m := appError(t, foreign), appError(t, missing)
	if f.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a foreign record, got %d", f.StatusCode)
	}
	if f.Code != m.Code || f.Message != m.Message || f.StatusCode != m.StatusCode {
		t.Errorf("foreign record error %q/%q differs from missing record error %q/%q",
			f.Code, f.Message, m.Code, m.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
