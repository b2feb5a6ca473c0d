package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.CurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	a.printProfile(profile)
	return nil
}

func (a *App) UpdateAccount(ctx context.Context) error {
	fullName, err := a.prompt("New full name")
	if err != nil {
		return err
	}
	email, err := a.prompt("New email")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.UpdateAccountDetails(ctx, fullName, email)
	return a.report(profile, err)
}

func (a *App) UpdateAvatar(ctx context.Context) error {
	path, err := a.prompt("Path to avatar image")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.UpdateAvatar(ctx, path)
	return a.report(profile, err)
}

func (a *App) UpdateCover(ctx context.Context) error {
	path, err := a.prompt("Path to cover image")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.UpdateCover(ctx, path)
	return a.report(profile, err)
}

func (a *App) report(profile *models.Profile, err error) error {
	if err != nil {
		fmt.Fprintf(a.out, "Update failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Updated")
	a.printProfile(profile)
	return nil
}
