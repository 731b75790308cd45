package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Station name must be alphanumeric with spaces/hyphens, 3-100 chars
	stationNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 _-]{2,99}$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateStationName checks if a station name is valid
func ValidateStationName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("station name cannot be empty")
	}

	if len(name) < 3 {
		return errors.New("station name must be at least 3 characters")
	}

	if len(name) > 100 {
		return errors.New("station name must not exceed 100 characters")
	}

	if !stationNameRegex.MatchString(name) {
		return errors.New("station name must start with alphanumeric and contain only letters, numbers, spaces, hyphens, and underscores")
	}

	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}

	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSpecial {
		return errors.New("password must contain at least one special character")
	}

	return nil
}

// ValidatePercent checks that a percentage value sits within 0-100
func ValidatePercent(value float64, field string) error {
	if value < 0 || value > 100 {
		return errors.New(field + " must be between 0 and 100")
	}
	return nil
}

// ValidateBedCount checks that a total bed capacity is sensible
func ValidateBedCount(beds int) error {
	if beds < 1 {
		return errors.New("bed count must be at least 1")
	}

	if beds > 10000 {
		return errors.New("bed count cannot exceed 10000")
	}

	return nil
}
