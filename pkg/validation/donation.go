package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxMessageLength is the donor message limit in characters.
	MaxMessageLength = 200
	// MaxDonorNameLength is the display name limit in characters.
	MaxDonorNameLength = 32
	// MinAmount is the smallest amount a donation can be submitted with.
	MinAmount = 1
)

var (
	ErrMessageTooLong   = errors.New("message is too long")
	ErrDonorNameTooLong = errors.New("donor name is too long")
	ErrInvalidDonorName = errors.New("donor name contains control characters")
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrInvalidPhone     = errors.New("invalid phone number")
)

// ValidateMessage checks the donor message length in characters, not bytes.
func ValidateMessage(message string) error {
	if n := utf8.RuneCountInString(message); n > MaxMessageLength {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrMessageTooLong, n, MaxMessageLength)
	}
	return nil
}

// ValidateDonorName limits the display name length and rejects control
// characters; the name ends up in mail headers and chat messages.
func ValidateDonorName(name string) error {
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q", ErrInvalidDonorName, r)
		}
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n > MaxDonorNameLength {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrDonorNameTooLong, n, MaxDonorNameLength)
	}
	return nil
}

// ValidateAmount accepts finite amounts greater than zero.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	return nil
}

// NormalizePhone strips formatting from a Russian mobile number and returns it
// as +7XXXXXXXXXX. A leading 8 is treated as the trunk prefix.
func NormalizePhone(phone string) (string, error) {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidPhone, r)
		}
	}
	if len(digits) == 11 && (digits[0] == '7' || digits[0] == '8') {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", fmt.Errorf("%w: expected 10 digits after the country code, got %d", ErrInvalidPhone, len(digits))
	}
	return "+7" + string(digits), nil
}

// ValidatePhone validates a phone number format.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("%w: phone number cannot be empty", ErrInvalidPhone)
	}
	_, err := NormalizePhone(phone)
	return err
}
