package register

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const clientIDLength = 32

// DefaultGrantTypes is synthesized onto clients registered without any
// authorized grant types.
func DefaultGrantTypes() []string {
	return []string{"authorization_code", "refresh-token"}
}

// GenerateClientSecret mints a secret for clients registered without one.
func GenerateClientSecret() string {
	return uuid.NewString()
}

// Client is an OAuth2 client record used to authorize callers of the
// identity API.
type Client struct {
	bun.BaseModel `bun:"table:oauth_clients,alias:clt"`

	InternalID                  uuid.UUID  `bun:"internal_id,pk,nullzero,type:uuid" json:"-"`
	ID                          string     `bun:"id,notnull,unique" json:"id,omitempty"`
	Secret                      string     `bun:"client_secret,notnull" json:"client_secret,omitempty"`
	RedirectURI                 string     `bun:"redirect_uri,notnull,unique" json:"redirectUri,omitempty"`
	Scope                       []string   `bun:"scope" json:"scope,omitempty"`
	Grants                      []string   `bun:"grants" json:"authorizedGrantTypes,omitempty"`
	AccessTokenValiditySeconds  int        `bun:"access_token_validity_seconds" json:"accessTokenValiditySeconds,omitempty"`
	RefreshTokenValiditySeconds int        `bun:"refresh_token_validity_seconds" json:"refreshTokenValiditySeconds,omitempty"`
	Implicit                    bool       `bun:"implicit_approval,notnull" json:"implicit,omitempty"`
	ValidityInSeconds           int64      `bun:"validity_in_seconds,notnull" json:"validityInSeconds,omitempty"`
	ExpiresAt                   *time.Time `bun:"expiry,nullzero" json:"expiry,omitempty"`
	CreatedAt                   *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt                   *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NewClient constructs a fully-formed record from the required fields,
// generating the secret and grant types.
func NewClient(id, redirectURI string, scope []string) *Client {
	return &Client{
		ID:          id,
		Secret:      GenerateClientSecret(),
		RedirectURI: redirectURI,
		Scope:       scope,
		Grants:      DefaultGrantTypes(),
	}
}

// NewClientFromClient copy-constructs a record from an inbound
// representation, synthesizing whatever generated fields the input left
// unset: the secret when absent, the grant type set when empty. Explicitly
// set fields are preserved as-is. This is how partially specified client
// registrations become fully valid records before storage.
func NewClientFromClient(src *Client) *Client {
	if src == nil {
		return nil
	}

	dst := &Client{
		ID:                          src.ID,
		Secret:                      src.Secret,
		RedirectURI:                 src.RedirectURI,
		Scope:                       copyStrings(src.Scope),
		Grants:                      copyStrings(src.Grants),
		AccessTokenValiditySeconds:  src.AccessTokenValiditySeconds,
		RefreshTokenValiditySeconds: src.RefreshTokenValiditySeconds,
		Implicit:                    src.Implicit,
		ValidityInSeconds:           src.ValidityInSeconds,
	}

	if dst.Secret == "" {
		dst.Secret = GenerateClientSecret()
	}
	if len(dst.Grants) == 0 {
		dst.Grants = DefaultGrantTypes()
	}
	dst.SetExpiry(src.Expiry())

	return dst
}

// Expiry returns a defensive copy of the expiry date, nil when unset.
func (c *Client) Expiry() *time.Time {
	if c.ExpiresAt == nil {
		return nil
	}
	expiry := *c.ExpiresAt
	return &expiry
}

// SetExpiry stores a defensive copy of expiry so callers cannot alias the
// record's date through a retained pointer.
func (c *Client) SetExpiry(expiry *time.Time) {
	if expiry == nil {
		c.ExpiresAt = nil
		return
	}
	value := *expiry
	c.ExpiresAt = &value
}

// HasGrant reports whether the grant type is authorized for this client.
func (c *Client) HasGrant(grant string) bool {
	for _, g := range c.Grants {
		if g == grant {
			return true
		}
	}
	return false
}

// Validate will run validation rules
func (c Client) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required, validation.Length(1, clientIDLength)),
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.RedirectURI, validation.Required, is.URL),
		validation.Field(&c.Grants, validation.Required),
	)
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
