package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRedact_StripsSecrets(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	i := &Identity{
		ID: "u1", Username: "alice", Email: "alice@x.com", FullName: "Alice",
		PasswordHash: "$2a$10$hash", Avatar: "http://cdn/a.png", RefreshToken: "rt",
		CreatedAt: now, UpdatedAt: now,
	}

	p := i.Redact()
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "http://cdn/a.png", p.Avatar)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "refresh")
}

func TestRedact_Nil(t *testing.T) {
	var i *Identity
	assert.Nil(t, i.Redact())
}

func TestIdentityPatch_Apply(t *testing.T) {
	i := &Identity{FullName: "A", Email: "a@x.com", RefreshToken: "old"}

	IdentityPatch{FullName: strPtr("Alice"), RefreshToken: strPtr("new")}.Apply(i)
	assert.Equal(t, "Alice", i.FullName)
	assert.Equal(t, "a@x.com", i.Email)
	assert.Equal(t, "new", i.RefreshToken)

	IdentityPatch{RefreshToken: strPtr("ignored"), ClearRefreshToken: true}.Apply(i)
	assert.Empty(t, i.RefreshToken)
}

func TestIdentityPatch_Empty(t *testing.T) {
	assert.True(t, IdentityPatch{}.Empty())
	assert.False(t, IdentityPatch{ClearRefreshToken: true}.Empty())
	assert.False(t, IdentityPatch{Cover: strPtr("")}.Empty())
}
