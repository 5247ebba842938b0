package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for the auth failure taxonomy.
var (
	// ErrNoRefreshToken: a refresh was attempted but the store holds
	// nothing to refresh with.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrInvalidRefreshToken: the refresh call itself was rejected by the
	// backend. The session is cleared before this reaches the caller.
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
)

// APIError is a non-2xx backend response surfaced to the caller. The HTTP
// client's retry machinery only ever intercepts 401; every other status
// becomes an APIError for the calling code to interpret.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("portal API error: status %d", e.Status)
	}
	return fmt.Sprintf("portal API error: status %d: %s", e.Status, e.Detail)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
