// Package client talks to the SyncDraft REST API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the store and the
// services; HTTPClient implements it over HTTP/JSON. HTTPClient attaches a
// bearer token to authenticated calls, refreshes an expired access token
// (proactively when the token is a JWT past its exp, or after a 401), retries
// the original request once, and maps HTTP statuses to sentinel errors.
//
// # Error Handling
//
// Match errors with errors.Is: ErrUnavailable for transport failures and 5xx,
// ErrUnauthorized for 401/403, ErrSessionExpired when the refresh token was
// rejected, common.ErrorNotFound for 404.
//
// # Sessions
//
// Tokens live in memory. Callers that persist sessions register
// OnSessionRefreshed and OnSessionExpired.
package client
