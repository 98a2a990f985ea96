package register_test

import (
	"errors"
	"strings"
	"testing"

	register "github.com/goliatone/go-register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashClientSecret(t *testing.T) {
	hash, err := register.HashClientSecret("super-secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	require.NoError(t, register.CompareClientSecretAndHash("super-secret", hash))

	err = register.CompareClientSecretAndHash("wrong", hash)
	assert.True(t, errors.Is(err, register.ErrMismatchedSecret))
}

func TestHashClientSecret_EmptyString(t *testing.T) {
	_, err := register.HashClientSecret("")
	assert.True(t, errors.Is(err, register.ErrNoEmptyString))
}

func TestVerifyClientSecret(t *testing.T) {
	// cleartext stored secret
	assert.NoError(t, register.VerifyClientSecret("abc", "abc"))
	assert.ErrorIs(t, register.VerifyClientSecret("abd", "abc"), register.ErrMismatchedSecret)
	assert.ErrorIs(t, register.VerifyClientSecret("", "abc"), register.ErrMismatchedSecret)

	// bcrypt stored secret
	hash, err := register.HashClientSecret("abc")
	require.NoError(t, err)
	assert.NoError(t, register.VerifyClientSecret("abc", hash))
	assert.ErrorIs(t, register.VerifyClientSecret("abd", hash), register.ErrMismatchedSecret)
}
