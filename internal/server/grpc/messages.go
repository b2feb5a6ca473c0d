package grpc

import "github.com/dmitrijs2005/vidtube/internal/server/models"

// File is an uploaded image carried inline in a request.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   *File  `json:"avatar,omitempty"`
	Cover    *File  `json:"coverImage,omitempty"`
}

// LoginRequest accepts either the username or the email.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

func (r *LoginRequest) login() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type LoginResponse struct {
	User         *models.Profile `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type UpdateImageRequest struct {
	File *File `json:"file"`
}

type ProfileResponse struct {
	User *models.Profile `json:"user"`
}

type Empty struct{}
