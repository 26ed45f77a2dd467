package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Date   string `validate:"omitempty,iso_date"`
	Period string `validate:"omitempty,budget_period"`
	Name   string `validate:"omitempty,notblank"`
	Email  string `validate:"omitempty,trimmed_email"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("trimmed_email", validateTrimmedEmail)
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidate()

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{name: "valid_date", input: sample{Date: "2024-02-29"}, valid: true},
		{name: "impossible_date", input: sample{Date: "2023-02-29"}, valid: false},
		{name: "datetime_rejected", input: sample{Date: "2024-01-01T00:00:00Z"}, valid: false},
		{name: "slashes_rejected", input: sample{Date: "2024/01/01"}, valid: false},
		{name: "monthly", input: sample{Period: "monthly"}, valid: true},
		{name: "yearly", input: sample{Period: "yearly"}, valid: true},
		{name: "weekly_rejected", input: sample{Period: "weekly"}, valid: false},
		{name: "blank_name", input: sample{Name: "   "}, valid: false},
		{name: "name", input: sample{Name: "food"}, valid: true},
		{name: "email", input: sample{Email: "a@example.com"}, valid: true},
		{name: "padded_email", input: sample{Email: "  A@Example.COM "}, valid: true},
		{name: "not_an_email", input: sample{Email: " not-an-email "}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
