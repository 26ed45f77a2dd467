// Package money converts between decimal amounts as they appear on the wire
// ("12.5", "12.50", 12) and the integer cents stored in the database.
package money

import (
	"errors"
	"strconv"
	"strings"
)

// MaxCents bounds amounts to NUMERIC(12,2).
const MaxCents = 999_999_999_999

// maxExponent bounds exponent notation well past any representable amount.
const maxExponent = 32

var (
	ErrInvalidAmount = errors.New("amount must be a decimal number")
	ErrTooPrecise    = errors.New("amount must have at most two decimal places")
	ErrOutOfRange    = errors.New("amount is too large")
)

// ParseCents parses a decimal string into cents. Exponent notation such as
// "1e2" or "1.25E1" is accepted when the value has at most two decimals.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	exp := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, ErrInvalidAmount
		}
		s, exp = s[:i], e
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && (!hasDot || frac == "") {
		return 0, ErrInvalidAmount
	}
	if hasDot && frac == "" {
		return 0, ErrInvalidAmount
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}

	switch {
	case exp > maxExponent:
		return 0, ErrOutOfRange
	case exp < -maxExponent:
		return 0, ErrTooPrecise
	case exp != 0:
		whole, frac = shiftPoint(whole, frac, exp)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > 2 {
		return 0, ErrTooPrecise
	}
	for len(frac) < 2 {
		frac += "0"
	}

	whole = strings.TrimLeft(whole, "0")
	if len(whole) > 10 {
		return 0, ErrOutOfRange
	}
	if whole == "" {
		whole = "0"
	}

	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if cents > MaxCents {
		return 0, ErrOutOfRange
	}
	if negative {
		cents = -cents
	}
	return cents, nil
}

// FormatCents renders cents as a decimal string with exactly two places.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}

// shiftPoint moves the decimal point of whole.frac by exp places.
func shiftPoint(whole, frac string, exp int) (string, string) {
	digits := whole + frac
	point := len(whole) + exp
	if point < 0 {
		digits = strings.Repeat("0", -point) + digits
		point = 0
	}
	if point > len(digits) {
		digits += strings.Repeat("0", point-len(digits))
	}
	return digits[:point], digits[point:]
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
