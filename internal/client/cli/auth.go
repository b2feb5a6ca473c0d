package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/client/client"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Indirections over the interactive helpers, swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

// promptPassword reads a password and returns it as a string, wiping the
// raw buffer.
func (a *App) promptPassword(label string) (string, error) {
	pw, err := getPassword(a.out, label)
	if err != nil {
		return "", err
	}
	defer wipe(pw)
	return string(pw), nil
}

func (a *App) printProfile(p *models.Profile) {
	if p == nil {
		return
	}
	fmt.Fprintf(a.out, "%s (%s) <%s>\n", p.Username, p.FullName, p.Email)
	fmt.Fprintf(a.out, "  id:     %s\n", p.ID)
	fmt.Fprintf(a.out, "  avatar: %s\n", p.Avatar)
	if p.Cover != "" {
		fmt.Fprintf(a.out, "  cover:  %s\n", p.Cover)
	}
}

// Register collects the account fields and image paths and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	var (
		in  client.RegisterInput
		err error
	)

	fields := []struct {
		label string
		dst   *string
	}{
		{"Enter username", &in.Username},
		{"Enter full name", &in.FullName},
		{"Enter email", &in.Email},
		{"Path to avatar image", &in.AvatarPath},
		{"Path to cover image (optional)", &in.CoverPath},
	}
	for _, f := range fields {
		if *f.dst, err = a.prompt(f.label); err != nil {
			return err
		}
	}

	if in.Password, err = a.promptPassword("Enter password"); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.Register(ctx, in)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Registered!")
	a.printProfile(profile)
	return nil
}

// Login asks for a username or email and a password.
func (a *App) Login(ctx context.Context) error {
	login, err := a.prompt("Enter username or email")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Enter password")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.Login(ctx, login, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	a.userName = profile.Username
	fmt.Fprintf(a.out, "Logged in as %s\n", profile.Username)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Refresh(ctx); err != nil {
		fmt.Fprintf(a.out, "Refresh failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Session refreshed")
	return nil
}

// Logout always forgets the local session, even if the server call fails.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.client.Logout(ctx)
	a.userName = ""
	if err != nil {
		fmt.Fprintf(a.out, "Logout: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := a.promptPassword("Current password")
	if err != nil {
		return err
	}
	newPassword, err := a.promptPassword("New password")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		fmt.Fprintf(a.out, "Password change failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}
