package register

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
)

// RoleUser is granted to every self-registered account so it can log in once
// activated. Caller-supplied roles are discarded during registration.
const RoleUser = "USER"

// Email is a SCIM multi-valued email attribute. At most one entry carries
// the primary flag.
type Email struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// PhoneNumber is a SCIM multi-valued phone attribute.
type PhoneNumber struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// Role is a SCIM multi-valued role attribute.
type Role struct {
	Value string `json:"value"`
}

// Extension is a namespaced bag of additional string fields attached to a
// user record. Registration uses one well-known field to carry the
// activation token.
type Extension map[string]string

// Meta carries the resource server's bookkeeping block. Version doubles as
// the ETag for conditional updates when the server provides one.
type Meta struct {
	Created  string `json:"created,omitempty"`
	Modified string `json:"lastModified,omitempty"`
	Location string `json:"location,omitempty"`
	Version  string `json:"version,omitempty"`
}

// User is the record owned by the remote resource server. The workflow only
// reads and writes it through the ResourceClient; extensions serialize as
// top-level members keyed by URN.
type User struct {
	ID           string               `json:"id,omitempty"`
	ExternalID   string               `json:"externalId,omitempty"`
	UserName     string               `json:"userName,omitempty"`
	DisplayName  string               `json:"displayName,omitempty"`
	Password     string               `json:"password,omitempty"`
	Active       bool                 `json:"active"`
	Emails       []Email              `json:"emails,omitempty"`
	PhoneNumbers []PhoneNumber        `json:"phoneNumbers,omitempty"`
	Roles        []Role               `json:"roles,omitempty"`
	Meta         *Meta                `json:"meta,omitempty"`
	Extensions   map[string]Extension `json:"-"`
}

// ParseUser decodes an inbound user document. Any failure maps to the
// malformed payload error so the controller can answer with a client error.
func ParseUser(data []byte) (*User, error) {
	user := &User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, ErrMalformedPayload
	}
	return user, nil
}

type userAlias User

// UnmarshalJSON decodes the standard attributes and then collects every
// top-level URN keyed member into Extensions.
func (u *User) UnmarshalJSON(data []byte) error {
	aux := (*userAlias)(u)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, val := range raw {
		if !strings.HasPrefix(key, "urn:") {
			continue
		}
		ext := Extension{}
		if err := json.Unmarshal(val, &ext); err != nil {
			return err
		}
		if u.Extensions == nil {
			u.Extensions = map[string]Extension{}
		}
		u.Extensions[key] = ext
	}

	return nil
}

// MarshalJSON inlines Extensions as top-level URN keyed members, mirroring
// the resource server's wire shape.
func (u User) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(userAlias(u))
	if err != nil {
		return nil, err
	}

	if len(u.Extensions) == 0 {
		return base, nil
	}

	doc := map[string]any{}
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, err
	}
	for urn, ext := range u.Extensions {
		doc[urn] = ext
	}

	return json.Marshal(doc)
}

// PrimaryEmail returns the address flagged primary, if any.
func (u *User) PrimaryEmail() (string, bool) {
	for _, email := range u.Emails {
		if email.Primary {
			return email.Value, true
		}
	}
	return "", false
}

// ExtensionField reads a single field from the extension stored under urn.
func (u *User) ExtensionField(urn, field string) string {
	if u.Extensions == nil {
		return ""
	}
	ext, ok := u.Extensions[urn]
	if !ok {
		return ""
	}
	return ext[field]
}

// SetExtensionField writes a single field into the extension stored under
// urn, creating the extension when absent.
func (u *User) SetExtensionField(urn, field, value string) {
	if u.Extensions == nil {
		u.Extensions = map[string]Extension{}
	}
	if u.Extensions[urn] == nil {
		u.Extensions[urn] = Extension{}
	}
	u.Extensions[urn][field] = value
}

// Identifier returns the value used as the resource URI path segment and in
// the activation link: the userName when present, falling back to the id.
func (u *User) Identifier() string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.ID
}

// RoleNames flattens the multi-valued role attributes.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Value)
	}
	return names
}

// IsActive reports the lifecycle flag.
func (u *User) IsActive() bool {
	return u.Active
}

// EnsureIdentifier derives a stable id from the primary email when the
// payload carries neither id nor userName, so the activation link always has
// a usable user reference.
func (u *User) EnsureIdentifier(email string) {
	if u.UserName != "" || u.ID != "" {
		return
	}
	if id, err := hashid.NewUUID(email); err == nil {
		u.ID = id.String()
	}
}

// NormalizePhoneNumbers rewrites phone values into E.164 where they parse;
// anything else is left untouched.
func (u *User) NormalizePhoneNumbers() {
	for i, phone := range u.PhoneNumbers {
		num, err := phonenumbers.Parse(phone.Value, "")
		if err != nil {
			continue
		}
		u.PhoneNumbers[i].Value = phonenumbers.Format(num, phonenumbers.E164)
	}
}

// UserIdentity adapts a User into the Identity capability interface.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

func (u UserIdentity) Identifier() string {
	if u.user == nil {
		return ""
	}
	return u.user.Identifier()
}

func (u UserIdentity) Roles() []string {
	if u.user == nil {
		return nil
	}
	return u.user.RoleNames()
}

func (u UserIdentity) IsActive() bool {
	if u.user == nil {
		return false
	}
	return u.user.Active
}
