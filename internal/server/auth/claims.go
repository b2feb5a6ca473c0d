// Package auth implements password hashing and the signed-token lifecycle:
// issuing and verifying HS256 access and refresh tokens.
package auth

import (
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// issuer is written to and required in every token.
const issuer = "vidtube"

// TokenKind tells access and refresh tokens apart.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims is the payload signed into a token: the identity reference plus,
// for access tokens only, denormalized display fields.
type Claims struct {
	IdentityID string `json:"_id"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	FullName   string `json:"fullName,omitempty"`
}

// AccessClaims builds the access-token payload for i.
func AccessClaims(i *models.Identity) Claims {
	return Claims{
		IdentityID: i.ID,
		Username:   i.Username,
		Email:      i.Email,
		FullName:   i.FullName,
	}
}

// signedClaims is the wire shape: registered claims, the kind tag and the payload.
type signedClaims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
	Claims
}
