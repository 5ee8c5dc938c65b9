package project

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ProjectIDLength is the length of every canonical project ID.
	ProjectIDLength = 14

	suffixLength = 4
	maxYear      = 9999
)

// BuildProjectID assembles the canonical project ID P<year>-<userID>-<suffix>.
func BuildProjectID(year int, userID, suffix string) (string, error) {
	if !ValidateUserID(userID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	if !ValidateSuffix(suffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSuffix, suffix)
	}
	if year < 0 || year > maxYear {
		return "", fmt.Errorf("%w: year %d is not 4 digits", ErrMalformedProjectID, year)
	}
	return formatProjectID(year, userID, suffix), nil
}

func formatProjectID(year int, userID, suffix string) string {
	return fmt.Sprintf("P%04d-%s-%s", year, userID, suffix)
}

// ParseProjectID splits a canonical project ID into its components. It is
// the strict inverse of BuildProjectID. Every failure wraps
// ErrMalformedProjectID regardless of which segment is at fault.
func ParseProjectID(id string) (Identifier, error) {
	if len(id) != ProjectIDLength {
		return Identifier{}, fmt.Errorf("%w: %q must be %d characters", ErrMalformedProjectID, id, ProjectIDLength)
	}

	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		return Identifier{}, fmt.Errorf("%w: %q must have three dash-separated segments", ErrMalformedProjectID, id)
	}
	head, userID, suffix := parts[0], parts[1], parts[2]

	if len(head) != 5 || head[0] != 'P' || !allDigits(head[1:]) {
		return Identifier{}, fmt.Errorf("%w: %q must start with P and a 4-digit year", ErrMalformedProjectID, id)
	}
	if !ValidateUserID(userID) {
		return Identifier{}, fmt.Errorf("%w: %q has invalid user segment %q", ErrMalformedProjectID, id, userID)
	}
	if !ValidateSuffix(suffix) {
		return Identifier{}, fmt.Errorf("%w: %q has invalid suffix %q", ErrMalformedProjectID, id, suffix)
	}

	year, err := strconv.Atoi(head[1:])
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %v", ErrMalformedProjectID, err)
	}

	return Identifier{year: year, userID: userID, suffix: suffix}, nil
}

// CheckProjectID reports whether id is a well-formed project ID.
func CheckProjectID(id string) bool {
	_, err := ParseProjectID(id)
	return err == nil
}

// ValidateSuffix reports whether s is exactly 4 ASCII uppercase letters.
func ValidateSuffix(s string) bool {
	if len(s) != suffixLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isUpper(s[i]) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
