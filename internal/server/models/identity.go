// Package models defines server-side data models persisted by repositories.
package models

import "time"

// Identity is one registered principal as stored. PasswordHash never holds
// plaintext. RefreshToken is either empty (no active session) or exactly
// the most recently issued refresh token.
type Identity struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Avatar       string
	Cover        string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the redacted view of an Identity: the only shape that leaves
// the server core.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar"`
	Cover     string    `json:"coverImg"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Redact strips the password hash and refresh token.
func (i *Identity) Redact() *Profile {
	if i == nil {
		return nil
	}
	return &Profile{
		ID:        i.ID,
		Username:  i.Username,
		Email:     i.Email,
		FullName:  i.FullName,
		Avatar:    i.Avatar,
		Cover:     i.Cover,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// IdentityPatch lists the mutable fields of an Identity. Nil pointers are
// left untouched. ClearRefreshToken unsets the session and wins over
// RefreshToken when both are set.
type IdentityPatch struct {
	FullName          *string
	Email             *string
	Avatar            *string
	Cover             *string
	PasswordHash      *string
	RefreshToken      *string
	ClearRefreshToken bool
}

// Empty reports whether the patch changes nothing.
func (p IdentityPatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.Avatar == nil && p.Cover == nil &&
		p.PasswordHash == nil && p.RefreshToken == nil && !p.ClearRefreshToken
}

// Apply mutates i in place. Used by in-memory storage.
func (p IdentityPatch) Apply(i *Identity) {
	if p.FullName != nil {
		i.FullName = *p.FullName
	}
	if p.Email != nil {
		i.Email = *p.Email
	}
	if p.Avatar != nil {
		i.Avatar = *p.Avatar
	}
	if p.Cover != nil {
		i.Cover = *p.Cover
	}
	if p.PasswordHash != nil {
		i.PasswordHash = *p.PasswordHash
	}
	if p.RefreshToken != nil {
		i.RefreshToken = *p.RefreshToken
	}
	if p.ClearRefreshToken {
		i.RefreshToken = ""
	}
}
