package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

// ProfileService maintains the profile fields of an identity: display
// name, email and the avatar and cover images kept in media storage.
type ProfileService struct {
	auth    *AuthService
	users   users.Repository
	media   media.Uploader
	metrics *metrics.AuthMetrics
	log     logging.Logger
}

func NewProfileService(authSvc *AuthService, repo users.Repository, uploader media.Uploader, m *metrics.AuthMetrics, log logging.Logger) *ProfileService {
	if log == nil {
		log = logging.Nop{}
	}
	return &ProfileService{
		auth:    authSvc,
		users:   repo,
		media:   uploader,
		metrics: m,
		log:     log.With("module", "profile"),
	}
}

func (s *ProfileService) observe(op string, start time.Time, err *error) {
	s.metrics.Observe(op, *err, time.Since(start))
}

func (s *ProfileService) internal(ctx context.Context, action string, err error) error {
	s.log.Error(ctx, "profile operation failed", "action", action, "error", err)
	return common.NewError(common.ErrInternal, "something went wrong while %s", action).WithCause(err)
}

func (s *ProfileService) find(ctx context.Context, identityID string) (*models.Identity, error) {
	identity, err := s.users.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "user does not exist")
		}
		return nil, s.internal(ctx, "looking up the user", err)
	}
	return identity, nil
}

// CurrentUser returns the redacted profile of identityID.
func (s *ProfileService) CurrentUser(ctx context.Context, identityID string) (*models.Profile, error) {
	identity, err := s.find(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return identity.Redact(), nil
}

// RegisterWithMedia uploads the staged avatar (required) and cover
// (optional) and registers the identity with the resulting references.
// Uploaded objects are removed again when registration fails.
func (s *ProfileService) RegisterWithMedia(ctx context.Context, in RegisterInput, avatarPath, coverPath string) (_ *models.Profile, err error) {
	defer s.observe("register_with_media", time.Now(), &err)

	discardStaged := func() {
		_ = filex.RemoveStaged(avatarPath)
		_ = filex.RemoveStaged(coverPath)
	}

	if avatarPath == "" {
		discardStaged()
		return nil, common.NewError(common.ErrValidation, "avatar file is required")
	}
	if err := s.auth.prepareRegistration(ctx, &in, false); err != nil {
		discardStaged()
		return nil, err
	}

	var uploaded []string
	rollback := func() {
		for _, ref := range uploaded {
			s.deleteBestEffort(ctx, ref)
		}
	}

	avatar, err := s.media.Upload(ctx, avatarPath)
	if err != nil {
		_ = filex.RemoveStaged(coverPath)
		return nil, s.uploadError(ctx, "avatar", err)
	}
	uploaded = append(uploaded, avatar)
	in.Avatar = avatar

	if coverPath != "" {
		cover, err := s.media.Upload(ctx, coverPath)
		if err != nil {
			rollback()
			return nil, s.uploadError(ctx, "cover image", err)
		}
		uploaded = append(uploaded, cover)
		in.Cover = cover
	}

	profile, err := s.auth.Register(ctx, in)
	if err != nil {
		rollback()
		return nil, err
	}
	return profile, nil
}

// UpdateAvatar replaces the avatar with the staged file at localPath.
func (s *ProfileService) UpdateAvatar(ctx context.Context, identityID, localPath string) (_ *models.Profile, err error) {
	defer s.observe("update_avatar", time.Now(), &err)

	return s.replaceMedia(ctx, identityID, localPath, "avatar",
		func(i *models.Identity) string { return i.Avatar },
		func(ref string) models.IdentityPatch { return models.IdentityPatch{Avatar: &ref} },
	)
}

// UpdateCover replaces the cover image with the staged file at localPath.
func (s *ProfileService) UpdateCover(ctx context.Context, identityID, localPath string) (_ *models.Profile, err error) {
	defer s.observe("update_cover", time.Now(), &err)

	return s.replaceMedia(ctx, identityID, localPath, "cover image",
		func(i *models.Identity) string { return i.Cover },
		func(ref string) models.IdentityPatch { return models.IdentityPatch{Cover: &ref} },
	)
}

// replaceMedia uploads first, persists the new reference, then deletes the
// previous object. A failed delete only leaves an orphan behind.
func (s *ProfileService) replaceMedia(
	ctx context.Context,
	identityID, localPath, what string,
	current func(*models.Identity) string,
	patch func(ref string) models.IdentityPatch,
) (*models.Profile, error) {
	if localPath == "" {
		return nil, common.NewError(common.ErrValidation, "%s file is missing", what)
	}

	identity, err := s.find(ctx, identityID)
	if err != nil {
		_ = filex.RemoveStaged(localPath)
		return nil, err
	}
	previous := current(identity)

	ref, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, s.uploadError(ctx, what, err)
	}

	if err := s.users.UpdateFields(ctx, identity.ID, patch(ref)); err != nil {
		s.deleteBestEffort(ctx, ref)
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "user does not exist")
		}
		return nil, s.internal(ctx, "saving the "+what, err)
	}

	if previous != "" {
		s.deleteBestEffort(ctx, previous)
	}

	return s.CurrentUser(ctx, identity.ID)
}

// UpdateAccountDetails changes the display name and email.
func (s *ProfileService) UpdateAccountDetails(ctx context.Context, identityID, fullName, email string) (_ *models.Profile, err error) {
	defer s.observe("update_account_details", time.Now(), &err)

	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateAccountDetails(fullName, email); err != nil {
		return nil, err
	}

	err = s.users.UpdateFields(ctx, identityID, models.IdentityPatch{FullName: &fullName, Email: &email})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			return nil, common.NewError(common.ErrConflict, "email is already in use").WithCause(err)
		case errors.Is(err, common.ErrNotFound):
			return nil, common.NewError(common.ErrNotFound, "user does not exist")
		default:
			return nil, s.internal(ctx, "updating account details", err)
		}
	}

	return s.CurrentUser(ctx, identityID)
}

func (s *ProfileService) uploadError(ctx context.Context, what string, err error) error {
	if errors.Is(err, common.ErrValidation) {
		return err
	}
	return s.internal(ctx, "uploading the "+what, err)
}

func (s *ProfileService) deleteBestEffort(ctx context.Context, ref string) {
	if err := s.media.Delete(ctx, ref); err != nil {
		s.log.Warn(ctx, "could not delete media object", "ref", ref, "error", err)
	}
}
