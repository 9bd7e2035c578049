package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/syncdraft/internal/client/services"
)

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Email + " "
		if st := a.store.SaveStatus(); st != "" {
			s += string(st)
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores the stored session (or asks the user to sign in), loads the
// posts and runs the REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to SyncDraft CLI (type 'help' for commands)")

	u, err := a.authService.RestoreSession(ctx)
	switch {
	case err == nil:
		a.user = u
		printlnFn("Signed in as", displayName(u))
	case errors.Is(err, services.ErrNoSession):
		if err := a.Login(ctx); err != nil {
			printlnFn("Error:", err)
		}
	default:
		a.log.Warn(ctx, "failed to restore session", "error", err)
	}

	if a.isLoggedIn() {
		if err := a.store.LoadPosts(ctx); err != nil {
			printlnFn("Working offline:", err)
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
