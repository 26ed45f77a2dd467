// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spendwise/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso_date", validateISODate)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("notblank", validateNotBlank)
		_ = v.RegisterValidation("trimmed_email", validateTrimmedEmail)
	}
}

// emailRules checks the built-in email rule on values the binding engine
// cannot pre-process.
var emailRules = validator.New()

// validateISODate accepts YYYY-MM-DD calendar dates.
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch models.BudgetPeriod(fl.Field().String()) {
	case models.BudgetPeriodMonthly, models.BudgetPeriodYearly:
		return true
	}
	return false
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateTrimmedEmail applies the email rule after trimming surrounding
// whitespace, matching how emails are normalized before storage.
func validateTrimmedEmail(fl validator.FieldLevel) bool {
	return emailRules.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
}
