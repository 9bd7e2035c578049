package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries a per-request identifier for server-side tracing.
const RequestIDHeaderName = "X-Request-ID"

// RetryHeaderName marks the single replay of a request after a token refresh.
const RetryHeaderName = "X-Retry"

// DefaultPostTitle is used when a post is created or saved without a title.
const DefaultPostTitle = "Untitled Post"
