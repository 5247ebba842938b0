package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Doer is the minimal outgoing-request transport. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a Doer. The request pipeline is an ordered, composable
// chain of these rather than transport-specific interceptor registration.
type Middleware func(Doer) Doer

// Chain wraps base with the given middleware. They are applied in reverse
// order so the first middleware listed is the outermost.
func Chain(base Doer, mw ...Middleware) Doer {
	chained := base
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

type contextKey string

// ctxKeyRetried marks a request that is the one-time replay after a token
// refresh. A 401 on a marked request is terminal.
const ctxKeyRetried contextKey = "retried"

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyRetried, true)
}

func isRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(ctxKeyRetried).(bool)
	return retried
}

// AttachAuth decorates every outgoing request: the current access token (when
// present) as a bearer Authorization header, a request id, and the client's
// user agent. Requests without a token go out bare and the server rejects
// them if it requires auth.
func (c *Client) AttachAuth() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if state := c.store.State(); state.AccessToken != "" {
				req.Header.Set("Authorization", "Bearer "+state.AccessToken)
			}
			if req.Header.Get("X-Request-ID") == "" {
				req.Header.Set("X-Request-ID", uuid.New().String())
			}
			req.Header.Set("User-Agent", c.userAgent)
			return next.Do(req)
		})
	}
}
