package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const (
	MinPasswordLength = 6
	// bcrypt reads at most 72 bytes of input
	MaxPasswordBytes = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func ValidateUsername(username string) error {
	if len(username) < entities.MinUsernameLength || len(username) > entities.MaxUsernameLength {
		return apperrors.Validation("Username must be between %d and %d characters",
			entities.MinUsernameLength, entities.MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return apperrors.Validation("Username must contain only letters and numbers")
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return apperrors.Validation("Please provide a valid email")
	}
	return nil
}

// ValidatePassword requires a lowercase letter, an uppercase letter and a
// digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperrors.Validation("Password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return apperrors.Validation("Password cannot exceed %d bytes", MaxPasswordBytes)
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return apperrors.Validation("Password must contain at least one lowercase letter, one uppercase letter and one number")
	}
	return nil
}
