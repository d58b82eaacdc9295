package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxDescriptionLength   = 1024
	MaxSymbolLength        = 15
	MaxAmount              = 1e12
	MinPasswordLength      = 8
)

// ISODateLayout is the layout of every date-only field (sale_date, payment_date, start_date).
const ISODateLayout = "2006-01-02"

var (
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	symbolRegex       = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]*$`)
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidatePositiveAmount rejects zero, negative and non-finite amounts.
func ValidatePositiveAmount(v float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", ErrValidationFailed, fieldName)
	}
	if v > MaxAmount {
		return fmt.Errorf("%w: %s is too large", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateNonNegativeAmount is ValidatePositiveAmount that also accepts zero.
func ValidateNonNegativeAmount(v float64, fieldName string) error {
	if v == 0 {
		return nil
	}
	return ValidatePositiveAmount(v, fieldName)
}

// ValidateISODate checks for a real calendar date in YYYY-MM-DD form.
func ValidateISODate(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(ISODateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// ValidateCurrencyCode checks the code is three letters and returns it upper-cased.
func ValidateCurrencyCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if !currencyCodeRegex.MatchString(code) {
		return "", fmt.Errorf("%w: currency ('%s') must be 3 letters", ErrValidationFailed, s)
	}
	return code, nil
}

// ValidateSymbol normalizes a ticker symbol to upper case and checks its shape.
func ValidateSymbol(s string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(s))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol cannot be empty", ErrValidationFailed)
	}
	if err := ValidateStringMaxLength(symbol, MaxSymbolLength, "symbol"); err != nil {
		return "", err
	}
	if !symbolRegex.MatchString(symbol) {
		return "", fmt.Errorf("%w: symbol ('%s') may only contain letters, digits, '.' and '-'", ErrValidationFailed, s)
	}
	return symbol, nil
}

// ValidateEmail returns the cleaned, lower-cased address.
func ValidateEmail(raw string) (string, error) {
	email := strings.ToLower(CleanText(raw))
	if len(email) > DefaultMaxStringLength || !emailRegex.MatchString(email) {
		return "", fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	return email, nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidationFailed, MinPasswordLength)
	}
	return nil
}
