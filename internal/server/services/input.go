package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

// usernames never contain '@' so a login identifier is unambiguous.
var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// RegisterInput is the registration request. Avatar and Cover are media
// references; Cover is optional.
type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
	Avatar   string
	Cover    string
}

// normalize trims every field except the password and lowercases the
// username and email.
func (in *RegisterInput) normalize() {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Avatar = strings.TrimSpace(in.Avatar)
	in.Cover = strings.TrimSpace(in.Cover)
}

func (in *RegisterInput) validate(requireAvatar bool) error {
	var avatarRules []validation.Rule
	if requireAvatar {
		avatarRules = append(avatarRules, validation.Required)
	}

	err := validation.ValidateStruct(in,
		validation.Field(&in.Username, validation.Required, validation.Length(1, 64), validation.Match(usernamePattern)),
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 128)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.By(notBlank)),
		validation.Field(&in.Avatar, avatarRules...),
	)
	return validationError(err)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// checkStrength enforces the minimum password entropy; zero disables it.
func checkStrength(password string, minEntropy float64) error {
	if minEntropy <= 0 {
		return nil
	}
	if err := passwordvalidator.Validate(password, minEntropy); err != nil {
		return common.NewError(common.ErrValidation, "password is not strong enough").WithCause(err)
	}
	return nil
}

func validateAccountDetails(fullName, email string) error {
	err := validation.Errors{
		"fullName": validation.Validate(fullName, validation.Required, validation.Length(1, 128)),
		"email":    validation.Validate(email, validation.Required, is.Email),
	}.Filter()
	return validationError(err)
}

// validationError converts ozzo errors into the common taxonomy.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return common.NewError(common.ErrValidation, "%s", verrs.Error()).WithCause(err)
	}
	return common.NewError(common.ErrInternal, "could not validate input").WithCause(err)
}
