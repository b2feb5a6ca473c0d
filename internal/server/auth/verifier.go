package auth

import (
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks signature, issuer, kind and expiry of a token and
// returns its payload. Verification is binary: claims or an error.
type TokenVerifier struct {
	accessSecret  []byte
	refreshSecret []byte
	clock         Clock
}

// NewTokenVerifier fails with common.ErrConfiguration if a secret is absent.
func NewTokenVerifier(secrets Secrets, clock Clock) (*TokenVerifier, error) {
	if err := secrets.check(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	return &TokenVerifier{
		accessSecret:  secrets.AccessSecret,
		refreshSecret: secrets.RefreshSecret,
		clock:         clock,
	}, nil
}

// Verify returns common.ErrTokenExpired for a well-signed token past its
// expiry and common.ErrInvalidToken for anything else that is wrong.
func (v *TokenVerifier) Verify(token string, kind TokenKind) (*Claims, error) {
	var secret []byte
	switch kind {
	case AccessToken:
		secret = v.accessSecret
	case RefreshToken:
		secret = v.refreshSecret
	default:
		return nil, common.ErrInvalidToken
	}

	if token == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &signedClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !parsed.Valid || claims.Kind != kind || claims.IdentityID == "" || claims.Subject != claims.IdentityID {
		return nil, common.ErrInvalidToken
	}

	out := claims.Claims
	return &out, nil
}
