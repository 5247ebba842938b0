package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// AuthResponse is the wire shape of /auth/login and /auth/signup.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

// Login authenticates with the backend and populates the session wholesale:
// the token pair from /auth/login plus the identity fetched with the new
// access token. A failed identity fetch still stores the tokens; the auth
// gate verifies identity lazily on the next protected navigation.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Identity, error) {
	var authResp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &authResp); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] login request")
	}
	return c.establishSession(ctx, authResp)
}

// Signup registers a new account and establishes a session the same way
// Login does.
func (c *Client) Signup(ctx context.Context, email, password string, role session.Role) (*session.Identity, error) {
	if !role.Valid() {
		return nil, errors.Errorf("[Client.Signup] invalid role %q", role)
	}
	var authResp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, signupRequest{Email: email, Password: password, Role: role}, &authResp); err != nil {
		return nil, errors.Wrap(err, "[Client.Signup] signup request")
	}
	return c.establishSession(ctx, authResp)
}

func (c *Client) establishSession(ctx context.Context, authResp AuthResponse) (*session.Identity, error) {
	identity, err := c.MeWithToken(ctx, authResp.AccessToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("identity fetch after authentication failed, storing tokens without identity")
		identity = nil
	}
	if err := c.store.SetAuth(identity, authResp.AccessToken, authResp.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Client.establishSession] store session")
	}
	return identity, nil
}

// Me fetches the current identity through the pipeline, so an expired access
// token is refreshed and retried like any other request. Extra fields in the
// response are ignored.
func (c *Client) Me(ctx context.Context) (*session.Identity, error) {
	var identity session.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &identity); err != nil {
		return nil, errors.Wrap(err, "[Client.Me] fetch identity")
	}
	return &identity, nil
}

// MeWithToken fetches the identity with an explicit access token over the raw
// transport. Used during session establishment, before the store holds the
// new token.
func (c *Client) MeWithToken(ctx context.Context, accessToken string) (*session.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.MeWithToken] create request")
	}
	req.Header.Set("Authorization", "Bearer "+session.TrimToken(accessToken))
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.MeWithToken] execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}
	var identity session.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, errors.Wrap(err, "[Client.MeWithToken] decode identity")
	}
	return &identity, nil
}

// Refresh forces a token refresh outside the 401 path and returns the new
// access token. Mostly useful for diagnostics; normal operation relies on the
// pipeline.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refresher.refresh(ctx)
}

// Logout clears the session. The backend holds no server-side session for
// this client, so logout is purely local.
func (c *Client) Logout() error {
	if err := c.store.ClearAuth(); err != nil {
		return errors.Wrap(err, "[Client.Logout] clear session")
	}
	return nil
}
