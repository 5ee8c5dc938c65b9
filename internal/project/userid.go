package project

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UserIDLength is the length of every user ID.
const UserIDLength = 3

// ValidateUserID reports whether candidate is a valid user ID: either three
// uppercase letters (JAS) or two uppercase letters followed by a digit 1-9
// (JS1). Lowercase input is rejected.
func ValidateUserID(candidate string) bool {
	if len(candidate) != UserIDLength {
		return false
	}
	if !isUpper(candidate[0]) || !isUpper(candidate[1]) {
		return false
	}
	c := candidate[2]
	return isUpper(c) || (c >= '1' && c <= '9')
}

// IsNumbered reports whether a valid user ID uses the two-letter plus digit form.
func IsNumbered(userID string) bool {
	return ValidateUserID(userID) && userID[2] >= '1' && userID[2] <= '9'
}

// DeriveUserID builds a user ID from a person's full name.
//
// Three initials are returned as-is (Charles Robert Darwin -> CRD). Fewer
// than three are padded with the following letters of the last name
// (Andrew Baxter -> ABA). When padding runs out, or more than three
// initials are present, the first two letters plus "1" are returned and
// the registry picks the final digit.
func DeriveUserID(fullName string) (string, error) {
	tokens := nameTokens(fullName)
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: %q has no alphabetic token", ErrInvalidName, fullName)
	}

	initials := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		initials = append(initials, tok[0])
	}

	switch {
	case len(initials) == UserIDLength:
		return string(initials), nil
	case len(initials) > UserIDLength:
		return string(initials[:2]) + "1", nil
	}

	last := tokens[len(tokens)-1]
	for i := 1; i < len(last) && len(initials) < UserIDLength; i++ {
		initials = append(initials, last[i])
	}
	if len(initials) == UserIDLength {
		return string(initials), nil
	}
	if len(initials) == 2 {
		return string(initials) + "1", nil
	}
	return "", fmt.Errorf("%w: %q is too short to derive a user ID", ErrInvalidName, fullName)
}

// Initials returns the first letter of each alphabetic token of fullName,
// uppercased and with accents folded (Émile Zola -> EZ).
func Initials(fullName string) string {
	tokens := nameTokens(fullName)
	b := make([]byte, len(tokens))
	for i, tok := range tokens {
		b[i] = tok[0]
	}
	return string(b)
}

// nameTokens splits a name on whitespace and reduces each token to its
// uppercase ASCII letters. Tokens without letters are dropped.
func nameTokens(fullName string) []string {
	folded := foldAccents(fullName)
	var tokens []string
	for _, field := range strings.Fields(folded) {
		var b strings.Builder
		for _, r := range field {
			r = unicode.ToUpper(r)
			if r >= 'A' && r <= 'Z' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
		}
	}
	return tokens
}

// foldAccents strips combining marks so that É becomes E.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
