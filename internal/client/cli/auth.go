package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func displayName(u *models.User) string {
	switch {
	case u == nil:
		return ""
	case u.FullName != "":
		return u.FullName
	default:
		return u.Email
	}
}

// Signup prompts for email, full name and password, creates the account and
// signs in. The password is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Signup(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	a.signedIn(ctx, u, email)
	return nil
}

// Login prompts for credentials and signs in. On success the post list is
// refreshed from the server. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.signedIn(ctx, u, email)
	return nil
}

func (a *App) signedIn(ctx context.Context, u *models.User, email string) {
	if u == nil {
		u = &models.User{}
	}
	if u.Email == "" {
		u.Email = email
	}
	a.user = u
	a.expired.Store(false)
	printlnFn("Signed in as", displayName(u))

	if err := a.store.LoadPosts(ctx); err != nil {
		printlnFn("Working offline:", err)
	}
}

// Logout saves the pending edit, then forgets the session, the local post
// mirror and the in-memory posts.
func (a *App) Logout(ctx context.Context) error {
	if err := a.editor.Flush(ctx); err != nil {
		a.log.Warn(ctx, "failed to save pending edit before logout", "error", err)
	}
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.resetSession(ctx)
	printlnFn("Signed out.")
	return nil
}

// Profile shows the signed-in user. "profile edit" prompts for a new full
// name and bio; empty answers keep the current values.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "edit" {
		return a.editProfile(ctx)
	}

	u, err := a.authService.Profile(ctx)
	if err != nil {
		return err
	}
	a.user = u
	a.printf("Name:  %s\nEmail: %s\n", u.FullName, u.Email)
	if u.Bio != "" {
		a.printf("Bio:   %s\n", u.Bio)
	}
	return nil
}

func (a *App) editProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Full name (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	bio, err := getSimpleText(a.reader, "Bio (empty keeps current)", a.out)
	if err != nil {
		return err
	}

	var upd models.ProfileUpdate
	if name != "" {
		upd.FullName = &name
	}
	if bio != "" {
		upd.Bio = &bio
	}
	if upd.IsEmpty() {
		printlnFn("Nothing to change.")
		return nil
	}

	u, err := a.authService.UpdateProfile(ctx, upd)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	a.user = u
	printlnFn("Profile updated.")
	return nil
}
