package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/middleware"
	"spendwise/internal/money"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// bindingError turns a gin binding failure into a validation error.
func bindingError(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperrors.WithMessage(apperrors.ErrValidation, "request body must be valid JSON")
	}
	return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
}

// parseAmount converts a wire amount such as 12.5 or "12.50" to positive cents.
func parseAmount(n json.Number) (int64, error) {
	cents, err := money.ParseCents(n.String())
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}
	if cents <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	return cents, nil
}

// amountJSON renders cents as a JSON number with two decimals.
func amountJSON(cents int64) json.Number {
	return json.Number(money.FormatCents(cents))
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
