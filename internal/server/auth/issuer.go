package auth

import (
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Secrets are the two independent signing keys and token lifetimes.
type Secrets struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (s Secrets) check() error {
	if len(s.AccessSecret) == 0 {
		return common.NewError(common.ErrConfiguration, "access token secret is not configured")
	}
	if len(s.RefreshSecret) == 0 {
		return common.NewError(common.ErrConfiguration, "refresh token secret is not configured")
	}
	return nil
}

// TokenIssuer signs access and refresh tokens.
type TokenIssuer struct {
	secrets Secrets
	clock   Clock
	newID   func() string
}

// NewTokenIssuer fails with common.ErrConfiguration if a secret is absent.
func NewTokenIssuer(secrets Secrets, clock Clock) (*TokenIssuer, error) {
	if err := secrets.check(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	return &TokenIssuer{secrets: secrets, clock: clock, newID: uuid.NewString}, nil
}

// IssueAccessToken signs claims with the access secret and the short TTL.
func (i *TokenIssuer) IssueAccessToken(claims Claims) (string, error) {
	return i.issue(AccessToken, i.secrets.AccessSecret, i.secrets.AccessTTL, claims)
}

// IssueRefreshToken signs the identity reference alone with the refresh
// secret and the long TTL.
func (i *TokenIssuer) IssueRefreshToken(identityID string) (string, error) {
	return i.issue(RefreshToken, i.secrets.RefreshSecret, i.secrets.RefreshTTL, Claims{IdentityID: identityID})
}

func (i *TokenIssuer) issue(kind TokenKind, secret []byte, ttl time.Duration, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", common.NewError(common.ErrConfiguration, "%s token secret is not configured", kind)
	}
	if claims.IdentityID == "" {
		return "", common.NewError(common.ErrInternal, "token subject is missing")
	}

	now := i.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, signedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   claims.IdentityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        i.newID(),
		},
		Kind:   kind,
		Claims: claims,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", common.NewError(common.ErrInternal, "could not sign token").WithCause(err)
	}

	return signed, nil
}
