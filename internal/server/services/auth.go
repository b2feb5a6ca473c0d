// Package services contains server-side business logic: the authentication
// state machine (register, login, refresh, logout, change password, access
// token verification) and profile maintenance on top of it.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"github.com/dmitrijs2005/vidtube/internal/server/sessions"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is what a successful login hands back to the request layer.
type LoginResult struct {
	Profile *models.Profile
	Tokens  TokenPair
}

// AuthServiceConfig lists the collaborators of an AuthService. Metrics and
// Logger are optional.
type AuthServiceConfig struct {
	Users              users.Repository
	Sessions           sessions.Store
	Hasher             auth.PasswordHasher
	Issuer             *auth.TokenIssuer
	Verifier           *auth.TokenVerifier
	MinPasswordEntropy float64
	Metrics            *metrics.AuthMetrics
	Logger             logging.Logger
}

// AuthService drives the per-identity session lifecycle:
// Anonymous -> Authenticated (refresh rotations stay here) -> Anonymous.
type AuthService struct {
	users      users.Repository
	sessions   sessions.Store
	hasher     auth.PasswordHasher
	issuer     *auth.TokenIssuer
	verifier   *auth.TokenVerifier
	minEntropy float64
	metrics    *metrics.AuthMetrics
	log        logging.Logger
}

func NewAuthService(cfg AuthServiceConfig) *AuthService {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop{}
	}
	return &AuthService{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		hasher:     cfg.Hasher,
		issuer:     cfg.Issuer,
		verifier:   cfg.Verifier,
		minEntropy: cfg.MinPasswordEntropy,
		metrics:    cfg.Metrics,
		log:        log.With("module", "auth"),
	}
}

func (s *AuthService) observe(op string, start time.Time, err *error) {
	s.metrics.Observe(op, *err, time.Since(start))
}

// internal logs the low-level failure and returns a generic error that is
// safe to show to callers.
func (s *AuthService) internal(ctx context.Context, action string, err error) error {
	s.log.Error(ctx, "auth operation failed", "action", action, "error", err)
	return common.NewError(common.ErrInternal, "something went wrong while %s", action).WithCause(err)
}

// prepareRegistration normalizes and validates in and checks that neither
// the username nor the email is taken.
func (s *AuthService) prepareRegistration(ctx context.Context, in *RegisterInput, requireAvatar bool) error {
	in.normalize()
	if err := in.validate(requireAvatar); err != nil {
		return err
	}
	if err := checkStrength(in.Password, s.minEntropy); err != nil {
		return err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return s.internal(ctx, "checking existing users", err)
	}
	if exists {
		return common.NewError(common.ErrConflict, "user with email or username already exists")
	}
	return nil
}

// Register creates an identity and returns its redacted view.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (_ *models.Profile, err error) {
	defer s.observe("register", time.Now(), &err)

	if err := s.prepareRegistration(ctx, &in, true); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, s.internal(ctx, "hashing the password", err)
	}

	created, err := s.users.Create(ctx, &models.Identity{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Avatar:       in.Avatar,
		Cover:        in.Cover,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewError(common.ErrConflict, "user with email or username already exists").WithCause(err)
		}
		return nil, s.internal(ctx, "registering the user", err)
	}

	s.log.Info(ctx, "user registered", "identity_id", created.ID, "username", created.Username)
	return created.Redact(), nil
}

// Login checks credentials and opens a session, replacing any session the
// identity had on another device.
func (s *AuthService) Login(ctx context.Context, login, password string) (_ *LoginResult, err error) {
	defer s.observe("login", time.Now(), &err)

	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil, common.NewError(common.ErrValidation, "username or email is required")
	}
	if password == "" {
		return nil, common.NewError(common.ErrValidation, "password is required")
	}

	identity, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "user does not exist")
		}
		return nil, s.internal(ctx, "looking up the user", err)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		s.log.Info(ctx, "login rejected", "identity_id", identity.ID)
		return nil, common.NewError(common.ErrUnauthorized, "invalid user credentials")
	}

	pair, err := s.issuePair(identity)
	if err != nil {
		return nil, s.internal(ctx, "issuing tokens", err)
	}
	if err := s.sessions.Set(ctx, identity.ID, pair.RefreshToken); err != nil {
		return nil, s.internal(ctx, "storing the session", err)
	}

	s.log.Info(ctx, "user logged in", "identity_id", identity.ID)
	return &LoginResult{Profile: identity.Redact(), Tokens: *pair}, nil
}

// Refresh exchanges the current refresh token for a new pair. Every
// rejection is ErrUnauthorized; a rotated-out token never works again.
func (s *AuthService) Refresh(ctx context.Context, presented string) (_ *TokenPair, err error) {
	defer s.observe("refresh", time.Now(), &err)

	if presented == "" {
		return nil, common.NewError(common.ErrUnauthorized, "refresh token is required")
	}

	claims, err := s.verifier.Verify(presented, auth.RefreshToken)
	if err != nil {
		return nil, common.NewError(common.ErrUnauthorized, "invalid refresh token").WithCause(err)
	}

	identity, err := s.users.FindByID(ctx, claims.IdentityID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrUnauthorized, "invalid refresh token").WithCause(err)
		}
		return nil, s.internal(ctx, "looking up the user", err)
	}

	stored, ok, err := s.sessions.Get(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrUnauthorized, "invalid refresh token").WithCause(err)
		}
		return nil, s.internal(ctx, "reading the session", err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		s.log.Warn(ctx, "refresh token reuse or stale session", "identity_id", identity.ID)
		return nil, common.NewError(common.ErrUnauthorized, "refresh token is expired or used")
	}

	pair, err := s.issuePair(identity)
	if err != nil {
		return nil, s.internal(ctx, "issuing tokens", err)
	}

	if err := s.sessions.Rotate(ctx, identity.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, common.ErrStaleSession) {
			return nil, common.NewError(common.ErrUnauthorized, "refresh token is expired or used").WithCause(err)
		}
		return nil, s.internal(ctx, "rotating the session", err)
	}

	return pair, nil
}

// Logout clears the session. Logging out without a session is fine.
func (s *AuthService) Logout(ctx context.Context, identityID string) (err error) {
	defer s.observe("logout", time.Now(), &err)

	if err := s.sessions.Clear(ctx, identityID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.log.Debug(ctx, "logout for unknown identity", "identity_id", identityID)
			return nil
		}
		return s.internal(ctx, "clearing the session", err)
	}

	s.log.Info(ctx, "user logged out", "identity_id", identityID)
	return nil
}

// ChangePassword replaces the password hash. The current session stays valid.
func (s *AuthService) ChangePassword(ctx context.Context, identityID, oldPassword, newPassword string) (err error) {
	defer s.observe("change_password", time.Now(), &err)

	if oldPassword == "" {
		return common.NewError(common.ErrValidation, "old password is required")
	}
	if strings.TrimSpace(newPassword) == "" {
		return common.NewError(common.ErrValidation, "new password is required")
	}
	if err := checkStrength(newPassword, s.minEntropy); err != nil {
		return err
	}

	identity, err := s.users.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, "user does not exist")
		}
		return s.internal(ctx, "looking up the user", err)
	}

	if !s.hasher.Verify(oldPassword, identity.PasswordHash) {
		return common.NewError(common.ErrUnauthorized, "invalid old password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return err
		}
		return s.internal(ctx, "hashing the password", err)
	}

	if err := s.users.UpdateFields(ctx, identity.ID, models.IdentityPatch{PasswordHash: &hash}); err != nil {
		return s.internal(ctx, "saving the password", err)
	}

	s.log.Info(ctx, "password changed", "identity_id", identity.ID)
	return nil
}

// VerifyAccessToken returns the identity id an access token speaks for.
func (s *AuthService) VerifyAccessToken(ctx context.Context, presented string) (_ string, err error) {
	defer s.observe("verify_access_token", time.Now(), &err)

	if presented == "" {
		return "", common.NewError(common.ErrUnauthorized, "unauthorized request")
	}

	claims, err := s.verifier.Verify(presented, auth.AccessToken)
	if err != nil {
		return "", common.NewError(common.ErrUnauthorized, "invalid access token").WithCause(err)
	}

	identity, err := s.users.FindByID(ctx, claims.IdentityID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.NewError(common.ErrUnauthorized, "invalid access token").WithCause(err)
		}
		return "", s.internal(ctx, "looking up the user", err)
	}

	return identity.ID, nil
}

func (s *AuthService) issuePair(identity *models.Identity) (*TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(auth.AccessClaims(identity))
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefreshToken(identity.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
