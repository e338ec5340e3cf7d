// Package phone normalizes Algerian and Mauritanian mobile numbers into the
// canonical digits-only international form used for storage and messaging.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPhone is returned when input is neither an Algerian nor a Mauritanian mobile number.
var ErrInvalidPhone = errors.New("invalid algerian or mauritanian phone number")

const (
	CountryCodeAlgeria    = "213"
	CountryCodeMauritania = "222"
)

var (
	nonDigits = regexp.MustCompile(`\D`)

	// Algerian mobiles are [5-7] followed by eight digits; the shorter
	// seven-digit tail is still accepted for numbers registered in that form.
	algerianSubscriber    = regexp.MustCompile(`^[5-7]\d{7,8}$`)
	mauritanianSubscriber = regexp.MustCompile(`^[2-4]\d{7}$`)

	algerianPrefixes    = []string{"00" + CountryCodeAlgeria, CountryCodeAlgeria, "0"}
	mauritanianPrefixes = []string{"00" + CountryCodeMauritania, CountryCodeMauritania}
)

// Normalize strips every non-digit and returns the canonical international form.
// Algerian rules are tried first; Mauritanian rules apply only to input carrying
// a Mauritanian country prefix.
func Normalize(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")

	if subscriber, ok := cutPrefix(digits, algerianPrefixes); ok && algerianSubscriber.MatchString(subscriber) {
		return CountryCodeAlgeria + subscriber, nil
	}
	if subscriber, ok := cutPrefix(digits, mauritanianPrefixes); ok && mauritanianSubscriber.MatchString(subscriber) {
		return CountryCodeMauritania + subscriber, nil
	}
	return "", ErrInvalidPhone
}

// IsValid reports whether raw normalizes.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// FormatForDisplay renders the number in grouped pairs: national form for
// Algeria ("0551 23 45 67"), international for Mauritania ("+222 22 34 56 78").
// Input that does not normalize is returned unchanged.
func FormatForDisplay(raw string) string {
	canonical, err := Normalize(raw)
	if err != nil {
		return raw
	}

	switch {
	case strings.HasPrefix(canonical, CountryCodeAlgeria):
		subscriber := canonical[len(CountryCodeAlgeria):]
		head := len(subscriber) - 6
		return "0" + subscriber[:head] + " " + pairs(subscriber[head:])
	case strings.HasPrefix(canonical, CountryCodeMauritania):
		return "+" + CountryCodeMauritania + " " + pairs(canonical[len(CountryCodeMauritania):])
	}
	return raw
}

func cutPrefix(digits string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(digits, p); ok {
			return rest, true
		}
	}
	return "", false
}

func pairs(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := min(i+2, len(s))
		b.WriteString(s[i:end])
	}
	return b.String()
}
