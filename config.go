package register

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	// DefaultExtensionURN namespaces the registration extension on the user
	// record when no deployment-specific URN is configured.
	DefaultExtensionURN = "urn:goregister:scim:extensions:registration:1.0"
	// DefaultActivationTokenField is the extension field carrying the token.
	DefaultActivationTokenField = "activationToken"
)

// Config is the immutable configuration for the registration workflow. It is
// constructed once at process start and passed by reference into the
// handler constructors; nothing mutates it afterwards.
type Config struct {
	// MailFrom is the sender address on activation mails.
	MailFrom string
	// MailSubject is the subject line on activation mails.
	MailSubject string
	// ActivationLinkPrefix is the URL the mailed link starts with; user and
	// token are appended as query parameters.
	ActivationLinkPrefix string
	// ResourceAPIURL is the base URL of the resource server, e.g.
	// "https://idp.internal:8443/resources".
	ResourceAPIURL string
	// ExtensionURN namespaces the registration extension on user records.
	ExtensionURN string
	// ActivationTokenField names the extension field carrying the token.
	ActivationTokenField string
}

// WithDefaults fills the extension URN and token field when unset.
func (c Config) WithDefaults() Config {
	if c.ExtensionURN == "" {
		c.ExtensionURN = DefaultExtensionURN
	}
	if c.ActivationTokenField == "" {
		c.ActivationTokenField = DefaultActivationTokenField
	}
	return c
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MailFrom, validation.Required, is.Email),
		validation.Field(&c.MailSubject, validation.Required),
		validation.Field(&c.ActivationLinkPrefix, validation.Required, is.URL),
		validation.Field(&c.ResourceAPIURL, validation.Required, is.URL),
		validation.Field(&c.ExtensionURN, validation.Required),
		validation.Field(&c.ActivationTokenField, validation.Required),
	)
}
