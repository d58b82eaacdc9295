package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy = bluemonday.StrictPolicy()

// SanitizeText removes all HTML tags and attributes from an input string.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// StripUnprintable removes non-printable characters, keeping tab and newlines.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanText is the full treatment for free text before it is stored:
// markup stripped, control characters dropped, surrounding space trimmed.
// bluemonday escapes what it keeps, so the result is unescaped back to plain text.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(SanitizeText(StripUnprintable(s))))
}

// CleanRequired cleans s and validates it is present and within maxLength.
func CleanRequired(s string, maxLength int, fieldName string) (string, error) {
	cleaned := CleanText(s)
	if err := ValidateStringNotEmpty(cleaned, fieldName); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(cleaned, maxLength, fieldName); err != nil {
		return "", err
	}
	return cleaned, nil
}

// CleanOptional cleans s and validates its length; empty is allowed.
func CleanOptional(s string, maxLength int, fieldName string) (string, error) {
	cleaned := CleanText(s)
	if err := ValidateStringMaxLength(cleaned, maxLength, fieldName); err != nil {
		return "", err
	}
	return cleaned, nil
}
