package register

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashClientSecret will generate a bcrypt hash for a client secret, for
// deployments that store secrets hashed instead of in the clear.
func HashClientSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(secret), 14)
	return string(h), err
}

// CompareClientSecretAndHash will validate the given cleartext secret
// against a stored bcrypt hash.
func CompareClientSecretAndHash(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedSecret
		}
		return err
	}
	return nil
}

// VerifyClientSecret checks a presented secret against what the record
// stores, accepting both hashed and cleartext storage. Cleartext comparison
// is constant time.
func VerifyClientSecret(presented, stored string) error {
	if stored == "" || presented == "" {
		return ErrMismatchedSecret
	}

	if strings.HasPrefix(stored, "$2") {
		return CompareClientSecretAndHash(presented, stored)
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) != 1 {
		return ErrMismatchedSecret
	}
	return nil
}
