// Package services contains the application services the REPL talks to.
// This file defines the authentication service: signup, login, the stored
// session and the user profile.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/syncdraft/internal/client/client"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/syncdraft/internal/common"
	"github.com/dmitrijs2005/syncdraft/internal/dbx"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
)

// Metadata keys of the stored session.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyCurrentUser  = "current_user"
)

// ErrNoSession is returned by RestoreSession when nothing is stored.
var ErrNoSession = errors.New("no stored session")

// CacheClearer drops locally mirrored posts on logout.
type CacheClearer interface {
	Clear(ctx context.Context)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup / Login: authenticate and persist the session locally.
//   - RestoreSession: install a previously stored session into the API client.
//   - Logout: forget the session and the local post mirror.
//   - OnExpired: register a callback for a session the server no longer accepts.
//   - Profile / UpdateProfile: read and change the signed-in user.
type AuthService interface {
	Signup(ctx context.Context, email string, password []byte, fullName string) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	RestoreSession(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	OnExpired(fn func())
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
}

type authService struct {
	api   client.AuthAPI
	db    *sql.DB
	cache CacheClearer
	log   logging.Logger

	mu        sync.Mutex
	onExpired func()
}

// NewAuthService binds the service to the API client and the local database
// and hooks token refresh and session expiry into the stored session.
// cache may be nil.
func NewAuthService(api client.AuthAPI, db *sql.DB, cache CacheClearer, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	a := &authService{api: api, db: db, cache: cache, log: log}
	api.OnSessionRefreshed(a.sessionRefreshed)
	api.OnSessionExpired(a.sessionExpired)
	return a
}

func (a *authService) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) Signup(ctx context.Context, email string, password []byte, fullName string) (*models.User, error) {
	s, err := a.api.Signup(ctx, email, string(password), fullName)
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}

	// Some deployments create the account without issuing tokens.
	if s.AccessToken == "" {
		return a.Login(ctx, email, password)
	}

	if err := a.saveSession(ctx, *s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return a.userOf(ctx, s)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	s, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.saveSession(ctx, *s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return a.userOf(ctx, s)
}

// userOf returns the session's user, asking the server when the auth
// response did not include one.
func (a *authService) userOf(ctx context.Context, s *models.Session) (*models.User, error) {
	if s.User != nil {
		return s.User, nil
	}
	u, err := a.Profile(ctx)
	if err != nil {
		a.log.Warn(ctx, "signed in but failed to load profile", "error", err)
		return &models.User{}, nil
	}
	return u, nil
}

// saveSession stores tokens and user in a single transaction.
func (a *authService) saveSession(ctx context.Context, s models.Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyAccessToken, []byte(s.AccessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyRefreshToken, []byte(s.RefreshToken)); err != nil {
			return err
		}
		if s.User != nil {
			return metadata.SetJSON(ctx, repo, KeyCurrentUser, s.User)
		}
		return nil
	})
}

func (a *authService) clearSession(ctx context.Context) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, k := range []string{KeyAccessToken, KeyRefreshToken, KeyCurrentUser} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *authService) RestoreSession(ctx context.Context) (*models.User, error) {
	repo := a.repo()

	access, err := repo.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	refresh, err := repo.Get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if len(access) == 0 && len(refresh) == 0 {
		return nil, ErrNoSession
	}

	a.api.SetSession(string(access), string(refresh))

	u, err := a.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u = &models.User{}
	}
	return u, nil
}

// CurrentUser returns the stored user; nil when none is stored.
func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	ok, err := metadata.GetJSON(ctx, a.repo(), KeyCurrentUser, &u)
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.api.ClearSession()
	if a.cache != nil {
		a.cache.Clear(ctx)
	}
	if err := a.clearSession(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) OnExpired(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onExpired = fn
}

func (a *authService) sessionRefreshed(ctx context.Context, s models.Session) {
	if err := a.saveSession(ctx, s); err != nil {
		a.log.Warn(ctx, "failed to store refreshed session", "error", err)
	}
}

func (a *authService) sessionExpired(ctx context.Context) {
	if err := a.clearSession(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear expired session", "error", err)
	}

	a.mu.Lock()
	fn := a.onExpired
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	u, err := a.api.Profile(ctx)
	if err != nil {
		return nil, err
	}
	a.storeUser(ctx, u)
	return u, nil
}

func (a *authService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("update profile: %w: no fields to update", common.ErrValidation)
	}
	u, err := a.api.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, err
	}
	a.storeUser(ctx, u)
	return u, nil
}

func (a *authService) storeUser(ctx context.Context, u *models.User) {
	if u == nil {
		return
	}
	if err := metadata.SetJSON(ctx, a.repo(), KeyCurrentUser, u); err != nil {
		a.log.Warn(ctx, "failed to store current user", "error", err)
	}
}
