package contact

import (
	"errors"
	"strings"
)

// Recognized contact types.
const (
	TypeEmail = "email"
	TypePhone = "phone"
)

var (
	ErrEmptyContact    = errors.New("contact cannot be empty")
	ErrUnknownType     = errors.New("contact type must be email or phone")
	ErrNoDigitsInPhone = errors.New("phone number must contain at least one digit")
)

// Normalized carries exactly one canonical contact value, matching the
// declared type. The other field is empty.
type Normalized struct {
	Email string
	Phone string
}

// Normalize canonicalizes a raw contact string for storage and comparison.
// Emails are trimmed and lowercased; no format validation beyond
// non-emptiness is applied. Phones are reduced to their decimal digits.
// Normalize is pure and idempotent: re-normalizing an output is a no-op.
func Normalize(raw, declaredType string) (Normalized, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Normalized{}, ErrEmptyContact
	}

	switch declaredType {
	case TypeEmail:
		return Normalized{Email: strings.ToLower(trimmed)}, nil
	case TypePhone:
		digits := stripNonDigits(trimmed)
		if digits == "" {
			return Normalized{}, ErrNoDigitsInPhone
		}
		return Normalized{Phone: digits}, nil
	default:
		return Normalized{}, ErrUnknownType
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
