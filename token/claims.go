// Package token inspects bearer tokens on the client side. The portal backend
// owns the signing key, so nothing here verifies a signature; the client only
// reads registered claims to decide when a refresh is worth doing before the
// server has to say 401.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrNoExpiry is returned when a token carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry claim")

// Expiry extracts the exp claim from a bearer token without verifying the
// signature.
func Expiry(raw string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[token.Expiry] parse token")
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// NeedsRefresh reports whether the token expires within buffer. A token that
// cannot be parsed, or that carries no expiry, is reported as needing refresh:
// the refresh path is the recovery path either way.
func NeedsRefresh(raw string, buffer time.Duration) bool {
	expiry, err := Expiry(raw)
	if err != nil {
		return true
	}
	return NowTimeFunc().Add(buffer).After(expiry)
}

// Subject extracts the sub claim without verifying the signature. Empty when
// absent or unparsable.
func Subject(raw string) string {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return ""
	}
	return claims.Subject
}
