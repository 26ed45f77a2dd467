package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/services"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
	r.GET("/profile", injectUserID(testUserID), handler.GetProfile)
	r.DELETE("/profile", injectUserID(testUserID), handler.DeleteAccount)
	return r
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		audit := &mockAuditService{}
		h := NewAuthHandler(&mockUserService{}, &mockTokenIssuer{}, audit)
		r := setupAuthRouter(h)

		rec := doRequest(r, http.MethodPost, "/register",
			`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusCreated)

		body := parseJSON(t, rec)
		if body["token"] != "token-for-"+testUserID {
			t.Errorf("expected token for the new user, got %v", body["token"])
		}
		if body["message"] == nil {
			t.Error("expected a message")
		}
		user := body["user"].(map[string]interface{})
		if user["email"] != "alice@example.com" {
			t.Errorf("unexpected user %v", user)
		}
		if strings.Contains(rec.Body.String(), "password123") {
			t.Error("password must never be echoed")
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.AuditActionRegister {
			t.Errorf("expected REGISTER audit entry, got %v", audit.actions)
		}
	})

	t.Run("missing_fields", func(t *testing.T) {
		h := NewAuthHandler(&mockUserService{}, &mockTokenIssuer{}, &mockAuditService{})
		r := setupAuthRouter(h)

		for _, body := range []string{
			`{"email":"alice@example.com","password":"password123"}`,
			`{"name":"Alice","password":"password123"}`,
			`{"name":"Alice","email":"alice@example.com"}`,
			`{"name":"Alice","email":"not-an-email","password":"password123"}`,
			`{"name":"Alice","email":"alice@example.com","password":"short"}`,
			`not json`,
		} {
			rec := doRequest(r, http.MethodPost, "/register", body)
			assertStatus(t, rec, http.StatusBadRequest)
			assertErrorCode(t, rec, "VALIDATION_ERROR")
		}
	})

	t.Run("padded_email_accepted", func(t *testing.T) {
		var gotEmail string
		svc := &mockUserService{
			createUserFn: func(name, email, _ string) (*models.User, error) {
				gotEmail = email
				return &models.User{Base: models.Base{ID: testUserID}, Name: name, Email: "a@example.com"}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockTokenIssuer{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/register",
			`{"name":"Alice","email":"  A@Example.COM ","password":"password123"}`)
		assertStatus(t, rec, http.StatusCreated)
		if gotEmail != "  A@Example.COM " {
			t.Errorf("expected the raw email to reach the service for normalization, got %q", gotEmail)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		svc := &mockUserService{
			createUserFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockTokenIssuer{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/register",
			`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, rec, "DUPLICATE_EMAIL")
	})

	t.Run("token_failure", func(t *testing.T) {
		tokens := &mockTokenIssuer{issueFn: func(string) (string, error) { return "", errors.New("boom") }}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, tokens, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/register",
			`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusInternalServerError)
		assertErrorCode(t, rec, "INTERNAL_ERROR")
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockTokenIssuer{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/login", `{"email":"alice@example.com","password":"password123"}`)
		assertStatus(t, rec, http.StatusOK)

		body := parseJSON(t, rec)
		if body["token"] != "token-for-"+testUserID {
			t.Errorf("unexpected token %v", body["token"])
		}
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		svc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockTokenIssuer{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrongpass"}`)
		assertStatus(t, rec, http.StatusUnauthorized)
		assertErrorCode(t, rec, "INVALID_CREDENTIALS")
		if strings.Contains(rec.Body.String(), "wrongpass") {
			t.Error("password must never be echoed")
		}
	})

	t.Run("missing_password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockTokenIssuer{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/login", `{"email":"alice@example.com"}`)
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestGetProfile(t *testing.T) {
	svc := &mockUserService{
		getUserByIDFn: func(id string) (*models.User, error) {
			return &models.User{Base: models.Base{ID: id}, Name: "Alice", Email: "alice@example.com", PasswordHash: "secret-hash"}, nil
		},
	}
	r := setupAuthRouter(NewAuthHandler(svc, &mockTokenIssuer{}, &mockAuditService{}))

	rec := doRequest(r, http.MethodGet, "/profile", "")
	assertStatus(t, rec, http.StatusOK)

	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["id"] != testUserID || user["name"] != "Alice" {
		t.Errorf("unexpected profile %v", user)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Error("password hash must never be returned")
	}
}

func TestDeleteAccount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var deleted string
		svc := &mockUserService{deleteUserFn: func(id string) error { deleted = id; return nil }}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(svc, &mockTokenIssuer{}, audit))

		rec := doRequest(r, http.MethodDelete, "/profile", "")
		assertStatus(t, rec, http.StatusOK)
		if deleted != testUserID {
			t.Errorf("expected caller to be deleted, got %q", deleted)
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.AuditActionDeleteAccount {
			t.Errorf("expected DELETE_ACCOUNT audit entry, got %v", audit.actions)
		}
	})

	t.Run("already_gone", func(t *testing.T) {
		svc := &mockUserService{deleteUserFn: func(string) error { return apperrors.ErrUserNotFound }}
		r := setupAuthRouter(NewAuthHandler(svc, &mockTokenIssuer{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodDelete, "/profile", "")
		assertStatus(t, rec, http.StatusNotFound)
	})
}

func TestProfileWithoutIdentity(t *testing.T) {
	r := gin.New()
	h := NewAuthHandler(&mockUserService{}, &mockTokenIssuer{}, &mockAuditService{})
	r.GET("/profile", h.GetProfile)

	rec := doRequest(r, http.MethodGet, "/profile", "")
	assertStatus(t, rec, http.StatusUnauthorized)
	assertErrorCode(t, rec, "UNAUTHORIZED")
}
