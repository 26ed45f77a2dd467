package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
)

func setupErrorRouter(err error) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func TestErrorHandler(t *testing.T) {
	t.Run("app_error", func(t *testing.T) {
		r := setupErrorRouter(apperrors.ErrExpenseNotFound)
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "EXPENSE_NOT_FOUND" {
			t.Errorf("expected EXPENSE_NOT_FOUND, got %s", code)
		}
	})

	t.Run("store_unavailable_sets_retry_after", func(t *testing.T) {
		r := setupErrorRouter(apperrors.Wrap(apperrors.ErrStoreUnavailable, context.DeadlineExceeded))
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	})

	t.Run("unexpected_error_hidden", func(t *testing.T) {
		r := setupErrorRouter(errors.New("pq: relation does not exist"))
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		body := parseBody(t, rec)
		msg := body["error"].(map[string]interface{})["message"]
		if msg != apperrors.ErrInternalServer.Message {
			t.Errorf("internal details leaked: %v", msg)
		}
	})
}
