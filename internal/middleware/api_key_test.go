package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupAPIKeyRouter(apiKey string) *gin.Engine {
	r := gin.New()
	r.GET("/metrics", APIKeyMiddleware(apiKey), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func apiKeyRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	return req
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Run("open_when_unconfigured", func(t *testing.T) {
		rec := serve(setupAPIKeyRouter(""), apiKeyRequest(""))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("valid_key", func(t *testing.T) {
		rec := serve(setupAPIKeyRouter("s3cret"), apiKeyRequest("s3cret"))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing_key", func(t *testing.T) {
		rec := serve(setupAPIKeyRouter("s3cret"), apiKeyRequest(""))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "INVALID_API_KEY" {
			t.Errorf("expected INVALID_API_KEY, got %s", code)
		}
	})

	t.Run("wrong_key", func(t *testing.T) {
		rec := serve(setupAPIKeyRouter("s3cret"), apiKeyRequest("guess"))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
