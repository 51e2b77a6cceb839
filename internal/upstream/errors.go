package upstream

import "fmt"

// AuthError means the token endpoint could not produce a usable access
// token: unreachable, non-2xx, or a body without data.access_token.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to obtain token: %v", e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("failed to obtain token: HTTP %d: %s", e.Status, e.Body)
	}
	return "failed to obtain token: " + e.Body
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError is a non-2xx response from the chat or embedding endpoint
// that is not attributable to credential expiry, or a retry after a token
// refresh that still failed.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.Status, e.Body)
}

// NetworkError is a transport-level failure (connection refused, timeout)
// talking to any upstream endpoint. Never retried automatically.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling upstream: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
