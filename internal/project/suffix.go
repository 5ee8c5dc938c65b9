package project

import "math/rand/v2"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateSuffix returns 4 uppercase letters drawn uniformly from A-Z.
// Pass a seeded generator for reproducible output; nil uses the
// package-level source. Uniqueness across projects is not checked.
func GenerateSuffix(r *rand.Rand) string {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = alphabet[intN(len(alphabet))]
	}
	return string(b)
}
