package register

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeMissingPrimaryEmail = "MISSING_PRIMARY_EMAIL"
	TextCodeMalformedPayload    = "MALFORMED_USER_PAYLOAD"
	TextCodeMailDispatchFailed  = "MAIL_DISPATCH_FAILED"
	TextCodeActivationDenied    = "ACTIVATION_DENIED"
)

// ErrMalformedPayload is returned when the inbound user document cannot be
// decoded.
var ErrMalformedPayload = goerrors.New("user payload could not be decoded", goerrors.CategoryValidation).
	WithTextCode(TextCodeMalformedPayload).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingPrimaryEmail is returned when no email entry carries the primary
// flag. Nothing is persisted and no mail is sent.
var ErrMissingPrimaryEmail = goerrors.New("user payload has no primary email", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingPrimaryEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString guards the secret hashing helpers.
var ErrNoEmptyString = errors.New("value should not be an empty string")

// ErrMismatchedSecret is returned when a client secret does not match the
// stored hash.
var ErrMismatchedSecret = errors.New("client secret does not match")

// ErrClientNotFound is the error we return for unknown OAuth2 clients.
var ErrClientNotFound = errors.New("oauth client not found")

// IsValidationError reports whether err carries a validation category, i.e.
// the caller sent a bad payload rather than the system failing.
func IsValidationError(err error) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryValidation
	}
	return false
}
