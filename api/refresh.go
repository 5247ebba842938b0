package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// refreshResponse is the wire shape of POST /auth/refresh. An empty
// refresh_token means the server did not rotate it.
type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// refresher exchanges the stored refresh token for a new access token and
// writes the result back to the store, preserving the current identity.
// Concurrent callers share one in-flight refresh: a burst of 401s produces a
// single refresh call, and every waiter gets its result.
type refresher struct {
	baseURL   string
	transport Doer
	store     *session.Store
	group     singleflight.Group
	logger    zerolog.Logger
	userAgent string
}

// refresh returns a fresh access token. The singleflight key is constant:
// there is only ever one credential pair to refresh.
func (r *refresher) refresh(ctx context.Context) (string, error) {
	result, err, shared := r.group.Do("refresh", func() (interface{}, error) {
		// The flight outlives any single caller's context; cancelling one
		// waiter must not kill the refresh the others are sharing.
		return r.performRefresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.logger.Debug().Msg("token refresh result shared with concurrent request")
	}
	return result.(string), nil
}

// performRefresh issues the refresh call against the raw transport, bypassing
// the middleware pipeline so an expired access token cannot recurse into
// another refresh.
func (r *refresher) performRefresh(ctx context.Context) (string, error) {
	state := r.store.State()
	if state.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/auth/refresh", http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "[refresher.performRefresh] create refresh request")
	}
	req.Header.Set("Authorization", "Bearer "+state.RefreshToken)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.transport.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[refresher.performRefresh] execute refresh request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := decodeDetail(resp.Body)
		r.logger.Warn().Int("status", resp.StatusCode).Str("detail", detail).Msg("token refresh rejected")
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", errors.Wrapf(ErrInvalidRefreshToken, "status %d: %s", resp.StatusCode, detail)
		}
		return "", &APIError{Status: resp.StatusCode, Detail: detail}
	}

	var tr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", errors.Wrap(err, "[refresher.performRefresh] decode refresh response")
	}
	if tr.AccessToken == "" {
		return "", errors.New("[refresher.performRefresh] refresh response missing access_token")
	}

	newRefreshToken := tr.RefreshToken
	if newRefreshToken == "" {
		// Not rotated: the existing refresh token stays valid.
		newRefreshToken = state.RefreshToken
	} else if newRefreshToken != state.RefreshToken {
		r.logger.Info().Msg("refresh token rotated by server")
	}

	if err := r.store.SetAuth(state.Identity, tr.AccessToken, newRefreshToken); err != nil {
		return "", errors.Wrap(err, "[refresher.performRefresh] store refreshed tokens")
	}
	return tr.AccessToken, nil
}
