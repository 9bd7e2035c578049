package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/clock"
	"github.com/dmitrijs2005/syncdraft/internal/common"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
)

const (
	DefaultTimeout = 15 * time.Second

	refreshPath  = "/auth/refresh"
	maxErrorBody = 4 << 10
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
	clock   clock.Clock

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefreshed  func(ctx context.Context, s models.Session)
	onExpired    func(ctx context.Context)

	// refreshMu lets only one caller refresh at a time.
	refreshMu sync.Mutex
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithClock sets the clock used to decide whether an access token has expired.
func WithClock(cl clock.Clock) Option {
	return func(c *HTTPClient) { c.clock = cl }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     logging.Nop(),
		clock:   clock.Real{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) SetSession(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *HTTPClient) ClearSession() {
	c.SetSession("", "")
}

// Tokens returns the current access and refresh tokens.
func (c *HTTPClient) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// OnSessionRefreshed registers fn to be called with the new tokens after
// every successful refresh.
func (c *HTTPClient) OnSessionRefreshed(fn func(ctx context.Context, s models.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefreshed = fn
}

// OnSessionExpired registers fn to be called after a refresh failed and the
// session was torn down.
func (c *HTTPClient) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

type request struct {
	method string
	path   string
	body   any
	auth   bool
}

// do sends r and decodes a successful JSON response into out (when not nil).
func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	var payload []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = b
	}

	requestID := uuid.NewString()

	if !r.auth {
		status, body, err := c.send(ctx, r, payload, requestID, "", false)
		if err != nil {
			return err
		}
		return decode(status, body, out)
	}

	// A request refreshes at most once, either before sending or on a 401.
	refreshed := false
	access, refresh := c.Tokens()
	if refresh != "" && tokenExpired(access, c.clock.Now()) {
		c.log.Debug(ctx, "access token expired, refreshing before request", "request_id", requestID)
		var err error
		if access, err = c.refresh(ctx, access); err != nil {
			return err
		}
		refreshed = true
	}

	status, body, err := c.send(ctx, r, payload, requestID, access, false)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !refreshed {
		if _, refresh = c.Tokens(); refresh == "" {
			return decode(status, body, out)
		}
		if access, err = c.refresh(ctx, access); err != nil {
			return err
		}
		status, body, err = c.send(ctx, r, payload, requestID, access, true)
		if err != nil {
			return err
		}
	}

	return decode(status, body, out)
}

func (c *HTTPClient) send(ctx context.Context, r request, payload []byte, requestID, access string, retry bool) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+access)
	}
	if retry {
		req.Header.Set(common.RetryHeaderName, "true")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		return 0, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done",
		"method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", requestID, "retry", retry, "elapsed", time.Since(start))

	return resp.StatusCode, data, nil
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Token        string       `json:"token"`
	User         *models.User `json:"user"`
}

func (t tokenResponse) session() models.Session {
	access := t.AccessToken
	if access == "" {
		access = t.Token
	}
	return models.Session{AccessToken: access, RefreshToken: t.RefreshToken, User: t.User}
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token the caller saw fail; when another caller already replaced it, the
// newer token is returned without a second refresh.
func (c *HTTPClient) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.Tokens()
	if access != stale && access != "" && !tokenExpired(access, c.clock.Now()) {
		return access, nil
	}
	if refresh == "" {
		return "", ErrUnauthorized
	}

	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   refreshPath,
		body:   map[string]string{"refresh_token": refresh},
	}, &resp)

	s := resp.session()
	if err == nil && s.AccessToken == "" {
		err = common.ErrInvalidToken
	}
	if err != nil {
		c.log.Warn(ctx, "token refresh failed, closing session", "error", err)
		c.mu.Lock()
		c.accessToken, c.refreshToken = "", ""
		onExpired := c.onExpired
		c.mu.Unlock()
		if onExpired != nil {
			onExpired(ctx)
		}
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	if s.RefreshToken == "" {
		s.RefreshToken = refresh
	}

	c.mu.Lock()
	c.accessToken, c.refreshToken = s.AccessToken, s.RefreshToken
	onRefreshed := c.onRefreshed
	c.mu.Unlock()
	if onRefreshed != nil {
		onRefreshed(ctx, s)
	}

	return s.AccessToken, nil
}

// tokenExpired reports whether token is a JWT whose exp lies before now.
// Opaque tokens and tokens without exp are never considered expired; the
// server stays the authority.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func decode(status int, body []byte, out any) error {
	if err := mapStatus(status, body); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		if d := errorDetail(body); d != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, d)
		}
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	default:
		return fmt.Errorf("api error: %d: %s", status, errorDetail(body))
	}
}

// errorDetail extracts the "detail" field of an error body. Validation
// errors carry a list of details, which is returned as compact JSON.
func errorDetail(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var e struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil {
			return s
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, e.Detail); err == nil {
			return buf.String()
		}
	}
	return e.Error
}

// IsAuthError reports whether err means the user has to sign in.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrSessionExpired)
}
