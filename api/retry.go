package api

import (
	"net/http"

	"github.com/pkg/errors"
)

// RetryOn401 is the response half of the pipeline. Over a single request's
// lifecycle it implements:
//
//	non-401 response        -> propagate unchanged (other statuses are the
//	                           caller's concern)
//	first 401               -> refresh the token pair once, replay the
//	                           original request once through the same client
//	401 on the replay       -> terminal: clear session, propagate
//	401, no refresh token   -> terminal: clear session, propagate
//	refresh call fails      -> terminal: clear session, propagate the refresh
//	                           error (not the original 401)
//
// A context marker distinguishes the replay from a first occurrence, so the
// handler can never loop. The refresh call itself goes out over the raw
// transport and never re-enters this middleware.
func (c *Client) RetryOn401() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil {
				// Transport error: propagated unchanged, never retried.
				return nil, err
			}
			if resp.StatusCode != http.StatusUnauthorized {
				return resp, nil
			}

			if isRetried(req.Context()) {
				c.logger.Warn().Str("path", req.URL.Path).Msg("replayed request rejected again, clearing session")
				c.failAuth()
				return resp, nil
			}

			if state := c.store.State(); state.RefreshToken == "" {
				c.logger.Warn().Str("path", req.URL.Path).Msg("unauthorized with no refresh token, clearing session")
				c.failAuth()
				return resp, nil
			}

			if req.Body != nil && req.GetBody == nil {
				// The original body is spent and cannot be rebuilt, so the
				// replay path is unavailable. Surface the original 401.
				c.logger.Warn().Str("path", req.URL.Path).Msg("unauthorized on non-replayable request")
				return resp, nil
			}

			drain(resp.Body)
			resp.Body.Close()

			if _, err := c.refresher.refresh(req.Context()); err != nil {
				c.failAuth()
				return nil, err
			}

			replay := req.Clone(markRetried(req.Context()))
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, errors.Wrap(err, "[RetryOn401] rebuild request body for replay")
				}
				replay.Body = body
			}
			// AttachAuth re-decorates the replay with the fresh token.
			replay.Header.Del("Authorization")

			c.logger.Debug().Str("path", req.URL.Path).Msg("replaying request after token refresh")
			return c.pipeline.Do(replay)
		})
	}
}
