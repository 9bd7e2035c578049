package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// Signup registers an account. When the server answers with tokens the
// session is installed immediately; otherwise the returned session has no
// tokens and the caller is expected to log in.
func (c *HTTPClient) Signup(ctx context.Context, email, password, fullName string) (*models.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/signup",
		body:   map[string]string{"email": email, "password": password, "full_name": fullName},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s := resp.session()
	if s.AccessToken != "" {
		c.SetSession(s.AccessToken, s.RefreshToken)
	}
	return &s, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s := resp.session()
	if s.AccessToken == "" {
		return nil, fmt.Errorf("login: %w", common.ErrInvalidToken)
	}
	c.SetSession(s.AccessToken, s.RefreshToken)
	return &s, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/profile", auth: true}, &u); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("update profile: %w: no fields to update", common.ErrValidation)
	}
	var u models.User
	if err := c.do(ctx, request{method: http.MethodPatch, path: "/users/profile", body: upd, auth: true}, &u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &u, nil
}
