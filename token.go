package register

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// NewActivationToken mints the single-use secret attached to a registration:
// 128 random bits in canonical UUID text form (36 characters).
func NewActivationToken() string {
	return uuid.NewString()
}

// TokenMatches compares a stored activation token with the supplied one in
// constant time. An empty stored token never matches: it is the cleared
// state after a successful redemption.
func TokenMatches(stored, supplied string) bool {
	if stored == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
