package register_test

import (
	"encoding/json"
	"testing"

	register "github.com/goliatone/go-register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUser_ExtensionsAsTopLevelMembers(t *testing.T) {
	doc := []byte(`{
		"id": "c024d952",
		"userName": "alice",
		"active": false,
		"emails": [{"value": "alice@example.com", "primary": true}],
		"urn:goregister:scim:extensions:registration:1.0": {
			"activationToken": "tok-123"
		}
	}`)

	user, err := register.ParseUser(doc)
	require.NoError(t, err)

	assert.Equal(t, "alice", user.UserName)
	assert.False(t, user.Active)
	assert.Equal(t, "tok-123",
		user.ExtensionField(register.DefaultExtensionURN, register.DefaultActivationTokenField))
}

func TestUser_MarshalInlinesExtensions(t *testing.T) {
	user := &register.User{UserName: "bob"}
	user.SetExtensionField(register.DefaultExtensionURN, register.DefaultActivationTokenField, "tok-456")

	data, err := json.Marshal(user)
	require.NoError(t, err)

	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &doc))

	ext, ok := doc[register.DefaultExtensionURN].(map[string]any)
	require.True(t, ok, "extension must serialize as a top-level member")
	assert.Equal(t, "tok-456", ext[register.DefaultActivationTokenField])

	// active serializes even when false so the resource server never
	// interprets absence as true
	_, hasActive := doc["active"]
	assert.True(t, hasActive)
}

func TestUser_ExtensionRoundTrip(t *testing.T) {
	user := &register.User{UserName: "carol", Active: true}
	user.SetExtensionField(register.DefaultExtensionURN, register.DefaultActivationTokenField, "")

	data, err := json.Marshal(user)
	require.NoError(t, err)

	back, err := register.ParseUser(data)
	require.NoError(t, err)

	// a blanked token survives the trip as an empty string, not as absence
	ext, ok := back.Extensions[register.DefaultExtensionURN]
	require.True(t, ok)
	val, present := ext[register.DefaultActivationTokenField]
	assert.True(t, present)
	assert.Equal(t, "", val)
}

func TestUser_PrimaryEmail(t *testing.T) {
	user := &register.User{
		Emails: []register.Email{
			{Value: "secondary@example.com"},
			{Value: "primary@example.com", Primary: true},
		},
	}

	email, found := user.PrimaryEmail()
	assert.True(t, found)
	assert.Equal(t, "primary@example.com", email)

	none := &register.User{Emails: []register.Email{{Value: "x@example.com"}}}
	_, found = none.PrimaryEmail()
	assert.False(t, found)
}

func TestUser_Identifier(t *testing.T) {
	assert.Equal(t, "alice", (&register.User{UserName: "alice", ID: "c024d952"}).Identifier())
	assert.Equal(t, "c024d952", (&register.User{ID: "c024d952"}).Identifier())
}

func TestUser_EnsureIdentifier(t *testing.T) {
	user := &register.User{}
	user.EnsureIdentifier("dave@example.com")
	require.NotEmpty(t, user.ID)

	// derivation is stable for the same address
	again := &register.User{}
	again.EnsureIdentifier("dave@example.com")
	assert.Equal(t, user.ID, again.ID)

	// never clobbers an existing identifier
	named := &register.User{UserName: "dave"}
	named.EnsureIdentifier("dave@example.com")
	assert.Empty(t, named.ID)
}

func TestUser_NormalizePhoneNumbers(t *testing.T) {
	user := &register.User{
		PhoneNumbers: []register.PhoneNumber{
			{Value: "+1 650 253 0000"},
			{Value: "not-a-number"},
		},
	}

	user.NormalizePhoneNumbers()

	assert.Equal(t, "+16502530000", user.PhoneNumbers[0].Value)
	assert.Equal(t, "not-a-number", user.PhoneNumbers[1].Value)
}

func TestNewIdentityFromUser(t *testing.T) {
	user := &register.User{
		UserName: "erin",
		Active:   true,
		Roles:    []register.Role{{Value: register.RoleUser}},
	}

	identity := register.NewIdentityFromUser(user)
	require.NotNil(t, identity)

	assert.Equal(t, "erin", identity.Identifier())
	assert.Equal(t, []string{register.RoleUser}, identity.Roles())
	assert.True(t, identity.IsActive())

	assert.Nil(t, register.NewIdentityFromUser(nil))
}
