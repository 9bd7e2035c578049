package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/client/repositories"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repositories.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "syncdraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) ([]byte, bool) {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	require.NoError(t, err)
	return v, true
}

// ---- fake client ----

// fakeAuthAPI implements client.AuthAPI with preset results.
type fakeAuthAPI struct {
	SignupRet *models.Session
	SignupErr error
	LoginRet  *models.Session
	LoginErr  error

	ProfileRet       *models.User
	ProfileErr       error
	UpdateProfileRet *models.User
	UpdateProfileErr error

	// recorded calls
	LastLoginEmail    string
	LastLoginPassword string
	LoginCalls        int
	UpdateCalls       int
	Access, Refresh   string
	Cleared           bool

	refreshed func(ctx context.Context, s models.Session)
	expired   func(ctx context.Context)
}

func (f *fakeAuthAPI) Signup(ctx context.Context, email, password, fullName string) (*models.Session, error) {
	return f.SignupRet, f.SignupErr
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*models.Session, error) {
	f.LoginCalls++
	f.LastLoginEmail, f.LastLoginPassword = email, password
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.SetSession(f.LoginRet.AccessToken, f.LoginRet.RefreshToken)
	return f.LoginRet, nil
}

func (f *fakeAuthAPI) SetSession(access, refresh string) { f.Access, f.Refresh = access, refresh }

func (f *fakeAuthAPI) ClearSession() {
	f.Access, f.Refresh = "", ""
	f.Cleared = true
}

func (f *fakeAuthAPI) OnSessionRefreshed(fn func(ctx context.Context, s models.Session)) {
	f.refreshed = fn
}

func (f *fakeAuthAPI) OnSessionExpired(fn func(ctx context.Context)) { f.expired = fn }

func (f *fakeAuthAPI) Profile(ctx context.Context) (*models.User, error) {
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.User, error) {
	f.UpdateCalls++
	return f.UpdateProfileRet, f.UpdateProfileErr
}

type clearCounter struct{ n int }

func (c *clearCounter) Clear(context.Context) { c.n++ }

var alice = &models.User{ID: "u1", Email: "alice@example.com", FullName: "Alice"}

// ---- TESTS ----

func TestLogin_StoresSession(t *testing.T) {
	db := setupDB(t)
	fc := &fakeAuthAPI{LoginRet: &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice}}
	svc := NewAuthService(fc, db, nil, nil)

	u, err := svc.Login(context.Background(), "alice@example.com", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, alice, u)
	assert.Equal(t, "secret", fc.LastLoginPassword)

	access, _ := getMeta(t, db, KeyAccessToken)
	refresh, _ := getMeta(t, db, KeyRefreshToken)
	assert.Equal(t, "A1", string(access))
	assert.Equal(t, "R1", string(refresh))

	stored, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alice, stored)
}

func TestLogin_ErrorWrapped(t *testing.T) {
	db := setupDB(t)
	fc := &fakeAuthAPI{LoginErr: errors.New("bad creds")}
	svc := NewAuthService(fc, db, nil, nil)

	_, err := svc.Login(context.Background(), "u", []byte("p"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "login error:"))
	_, ok := getMeta(t, db, KeyAccessToken)
	assert.False(t, ok)
}

func TestLogin_LoadsProfileWhenResponseHasNoUser(t *testing.T) {
	db := setupDB(t)
	fc := &fakeAuthAPI{LoginRet: &models.Session{AccessToken: "A1"}, ProfileRet: alice}
	svc := NewAuthService(fc, db, nil, nil)

	u, err := svc.Login(context.Background(), "alice@example.com", []byte("p"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FullName)
}

func TestSignup_WithoutTokensLogsIn(t *testing.T) {
	db := setupDB(t)
	fc := &fakeAuthAPI{
		SignupRet: &models.Session{},
		LoginRet:  &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice},
	}
	svc := NewAuthService(fc, db, nil, nil)

	u, err := svc.Signup(context.Background(), "alice@example.com", []byte("pw"), "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice, u)
	assert.Equal(t, 1, fc.LoginCalls)
	assert.Equal(t, "alice@example.com", fc.LastLoginEmail)
}

func TestSignup_WithTokensSkipsLogin(t *testing.T) {
	db := setupDB(t)
	fc := &fakeAuthAPI{SignupRet: &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice}}
	svc := NewAuthService(fc, db, nil, nil)

	_, err := svc.Signup(context.Background(), "alice@example.com", []byte("pw"), "Alice")
	require.NoError(t, err)
	assert.Zero(t, fc.LoginCalls)

	access, ok := getMeta(t, db, KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "A1", string(access))
}

func TestSignup_ErrorFromClient(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(&fakeAuthAPI{SignupErr: errors.New("dup")}, db, nil, nil)

	_, err := svc.Signup(context.Background(), "u", []byte("p"), "")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "signup error:"))
}

func TestRestoreSession(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	first := &fakeAuthAPI{LoginRet: &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice}}
	_, err := NewAuthService(first, db, nil, nil).Login(ctx, "alice@example.com", []byte("p"))
	require.NoError(t, err)

	second := &fakeAuthAPI{}
	u, err := NewAuthService(second, db, nil, nil).RestoreSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice, u)
	assert.Equal(t, "A1", second.Access)
	assert.Equal(t, "R1", second.Refresh)
}

func TestRestoreSession_NothingStored(t *testing.T) {
	svc := NewAuthService(&fakeAuthAPI{}, setupDB(t), nil, nil)

	_, err := svc.RestoreSession(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestLogout_ClearsEverything(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	cache := &clearCounter{}
	fc := &fakeAuthAPI{LoginRet: &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice}}
	svc := NewAuthService(fc, db, cache, nil)

	_, err := svc.Login(ctx, "alice@example.com", []byte("p"))
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	assert.True(t, fc.Cleared)
	assert.Equal(t, 1, cache.n)
	for _, k := range []string{KeyAccessToken, KeyRefreshToken, KeyCurrentUser} {
		_, ok := getMeta(t, db, k)
		assert.False(t, ok, k)
	}
	_, err = svc.RestoreSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRefreshedSessionIsPersisted(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fc := &fakeAuthAPI{LoginRet: &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice}}
	svc := NewAuthService(fc, db, nil, nil)
	_, err := svc.Login(ctx, "alice@example.com", []byte("p"))
	require.NoError(t, err)

	require.NotNil(t, fc.refreshed)
	fc.refreshed(ctx, models.Session{AccessToken: "A2", RefreshToken: "R2"})

	access, _ := getMeta(t, db, KeyAccessToken)
	refresh, _ := getMeta(t, db, KeyRefreshToken)
	assert.Equal(t, "A2", string(access))
	assert.Equal(t, "R2", string(refresh))

	u, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice, u, "refresh without user keeps the stored one")
}

func TestExpiredSessionIsClearedAndReported(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fc := &fakeAuthAPI{LoginRet: &models.Session{AccessToken: "A1", RefreshToken: "R1", User: alice}}
	svc := NewAuthService(fc, db, nil, nil)
	_, err := svc.Login(ctx, "alice@example.com", []byte("p"))
	require.NoError(t, err)

	expired := 0
	svc.OnExpired(func() { expired++ })

	require.NotNil(t, fc.expired)
	fc.expired(ctx)

	assert.Equal(t, 1, expired)
	_, ok := getMeta(t, db, KeyAccessToken)
	assert.False(t, ok)
}

func TestUpdateProfile(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	updated := &models.User{ID: "u1", FullName: "Alice B", Bio: "writer"}
	fc := &fakeAuthAPI{UpdateProfileRet: updated}
	svc := NewAuthService(fc, db, nil, nil)

	_, err := svc.UpdateProfile(ctx, models.ProfileUpdate{})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, fc.UpdateCalls)

	u, err := svc.UpdateProfile(ctx, models.ProfileUpdate{Bio: models.Ptr("writer")})
	require.NoError(t, err)
	assert.Equal(t, updated, u)

	stored, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestProfile_ErrorPropagates(t *testing.T) {
	svc := NewAuthService(&fakeAuthAPI{ProfileErr: errors.New("down")}, setupDB(t), nil, nil)

	_, err := svc.Profile(context.Background())
	require.Error(t, err)
}
