package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgesAddIsIdempotent(t *testing.T) {
	var b Badges
	assert.True(t, b.Add(HelperBadge))
	assert.False(t, b.Add(HelperBadge))
	assert.True(t, b.Add("Finder"))
	assert.False(t, b.Add(""))
	assert.Equal(t, Badges{"Helper", "Finder"}, b)
	assert.True(t, b.Has("Finder"))
}

func TestItemStatusOnlyMovesForward(t *testing.T) {
	assert.True(t, ItemStatusSubmitted.CanAdvanceTo(ItemStatusApproved))
	assert.True(t, ItemStatusApproved.CanAdvanceTo(ItemStatusFound))
	assert.True(t, ItemStatusApproved.CanAdvanceTo(ItemStatusLost))
	assert.True(t, ItemStatusFound.CanAdvanceTo(ItemStatusReturned))

	assert.False(t, ItemStatusApproved.CanAdvanceTo(ItemStatusSubmitted))
	assert.False(t, ItemStatusLost.CanAdvanceTo(ItemStatusFound))
	assert.False(t, ItemStatusReturned.CanAdvanceTo(ItemStatusClaimed))
	assert.False(t, ItemStatusReturned.CanAdvanceTo(ItemStatusReturned))
	assert.False(t, ItemStatusApproved.CanAdvanceTo("archived"))

	assert.True(t, ItemStatusApproved.IsPublic())
	assert.True(t, ItemStatusFound.IsPublic())
	assert.False(t, ItemStatusSubmitted.IsPublic())
	assert.False(t, ItemStatusReturned.IsPublic())
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryAccessories.Valid())
	assert.False(t, Category("Pets").Valid())
}

func TestMetadataJSON(t *testing.T) {
	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"serial":"SN-42","stickers":3,"engraved":true}`), &md))

	serial, ok := md["serial"].String()
	assert.True(t, ok)
	assert.Equal(t, "SN-42", serial)
	n, ok := md["stickers"].Number()
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
	engraved, ok := md["engraved"].Bool()
	assert.True(t, ok)
	assert.True(t, engraved)
	_, ok = md["engraved"].String()
	assert.False(t, ok)

	out, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"serial":"SN-42","stickers":3,"engraved":true}`, string(out))

	for _, bad := range []string{`{"a":null}`, `{"a":{"b":1}}`, `{"a":[1]}`} {
		var m Metadata
		assert.Error(t, json.Unmarshal([]byte(bad), &m), bad)
	}
}

func TestActorCapabilities(t *testing.T) {
	admin := Actor{UserID: "a", Role: RoleAdmin}
	owner := Actor{UserID: "o", Role: RoleUser}
	other := Actor{UserID: "x", Role: RoleUser}

	assert.True(t, admin.CanModify("o"))
	assert.True(t, owner.CanModify("o"))
	assert.False(t, other.CanModify("o"))
	assert.False(t, Actor{}.CanModify(""))

	assert.True(t, IsAdmin(&User{Role: RoleAdmin}))
	assert.False(t, IsAdmin(&User{Role: RoleUser}))
	assert.False(t, IsAdmin(nil))
}
