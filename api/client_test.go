package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dhriti-exe/MIS-Portal-CDAC/api"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session/repofake"
)

const (
	oldAccessToken  = "old-access-token"
	oldRefreshToken = "old-refresh-token"
	newAccessToken  = "new-access-token"
	newRefreshToken = "new-refresh-token"
)

// backendFake is a scripted portal backend. Its /auth/refresh hands out the
// "new" token pair; protected paths reject anything but the token the script
// currently expects.
type backendFake struct {
	t *testing.T

	mu           sync.Mutex
	refreshCalls int
	dataCalls    int
	authHeaders  []string

	refreshStatus int
	refreshDelay  time.Duration
	rotateRefresh bool
}

func newBackendFake(t *testing.T) *backendFake {
	return &backendFake{t: t, refreshStatus: http.StatusOK, rotateRefresh: true}
}

func (b *backendFake) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	b.mu.Unlock()

	if b.refreshDelay > 0 {
		time.Sleep(b.refreshDelay)
	}

	require.Equal(b.t, http.MethodPost, r.Method)
	authorization := r.Header.Get("Authorization")
	require.Contains(b.t, []string{"Bearer " + oldRefreshToken, "Bearer " + newRefreshToken}, authorization)

	if b.refreshStatus != http.StatusOK {
		w.WriteHeader(b.refreshStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "refresh rejected"})
		return
	}

	resp := map[string]string{"access_token": newAccessToken, "token_type": "bearer"}
	if b.rotateRefresh {
		resp["refresh_token"] = newRefreshToken
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleData serves a protected collection endpoint: 401 unless the request
// carries the new access token.
func (b *backendFake) handleData(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.dataCalls++
	b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
	b.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+newAccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
		return
	}
	_, _ = w.Write([]byte(`[]`))
}

func (b *backendFake) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", b.handleRefresh)
	mux.HandleFunc("/applicant/news", b.handleData)
	return httptest.NewServer(mux)
}

func (b *backendFake) snapshot() (refreshCalls, dataCalls int, authHeaders []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls, b.dataCalls, append([]string(nil), b.authHeaders...)
}

type clientFixture struct {
	client       *api.Client
	store        *session.Store
	repo         *repofake.FakeSessionRepo
	unauthorized *atomic.Int32
}

func newClientFixture(t *testing.T, baseURL string, options ...api.Option) *clientFixture {
	t.Helper()

	repo := repofake.NewFakeSessionRepo()
	store, err := session.NewStore(repo)
	require.NoError(t, err)

	var unauthorized atomic.Int32
	options = append(options, api.WithUnauthorizedHook(func() { unauthorized.Add(1) }))
	client, err := api.New(baseURL, store, options...)
	require.NoError(t, err)

	return &clientFixture{client: client, store: store, repo: repo, unauthorized: &unauthorized}
}

func (f *clientFixture) seedAuth(t *testing.T, accessToken, refreshToken string) {
	t.Helper()
	identity := &session.Identity{ID: 1, Email: "user@example.com", Role: session.RoleApplicant, IsActive: true}
	require.NoError(t, f.store.SetAuth(identity, accessToken, refreshToken))
	f.repo.SaveCalls = 0
	f.repo.ClearCalls = 0
}

func TestNewValidation(t *testing.T) {
	repo := repofake.NewFakeSessionRepo()
	store, err := session.NewStore(repo)
	require.NoError(t, err)

	_, err = api.New("  ", store)
	require.Error(t, err)

	_, err = api.New("http://localhost:8000", nil)
	require.Error(t, err)
}

func TestExpiredTokenIsRefreshedAndRequestReplayedOnce(t *testing.T) {
	backend := newBackendFake(t)
	server := backend.server()
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	news, err := fixture.client.ApplicantNews(context.Background())
	require.NoError(t, err)
	require.Empty(t, news)

	refreshCalls, dataCalls, authHeaders := backend.snapshot()
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, 2, dataCalls)
	require.Equal(t, []string{"Bearer " + oldAccessToken, "Bearer " + newAccessToken}, authHeaders)

	state := fixture.store.State()
	require.Equal(t, newAccessToken, state.AccessToken)
	require.Equal(t, newRefreshToken, state.RefreshToken)
	require.Equal(t, "user@example.com", state.Identity.Email)

	require.Equal(t, int32(0), fixture.unauthorized.Load())
	require.Zero(t, fixture.repo.ClearCalls)
}

func TestReplayedRequestRejectedAgainClearsSession(t *testing.T) {
	var dataCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": newAccessToken})
	})
	mux.HandleFunc("/applicant/news", func(w http.ResponseWriter, r *http.Request) {
		dataCalls.Add(1)
		// Deactivated account: even a fresh token is rejected.
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	_, err := fixture.client.ApplicantNews(context.Background())
	require.True(t, api.IsStatus(err, http.StatusUnauthorized))

	// Exactly one refresh and one replay, then terminal failure.
	require.Equal(t, int32(1), refreshCalls.Load())
	require.Equal(t, int32(2), dataCalls.Load())
	require.Equal(t, int32(1), fixture.unauthorized.Load())
	require.Equal(t, 1, fixture.repo.ClearCalls)
	require.False(t, fixture.store.State().Authenticated())
}

func TestUnauthorizedWithoutRefreshTokenClearsSession(t *testing.T) {
	backend := newBackendFake(t)
	server := backend.server()
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, "")

	_, err := fixture.client.ApplicantNews(context.Background())
	require.True(t, api.IsStatus(err, http.StatusUnauthorized))

	refreshCalls, dataCalls, _ := backend.snapshot()
	require.Zero(t, refreshCalls)
	require.Equal(t, 1, dataCalls)
	require.Equal(t, int32(1), fixture.unauthorized.Load())
	require.Equal(t, 1, fixture.repo.ClearCalls)
	require.False(t, fixture.store.State().Authenticated())
}

func TestRejectedRefreshClearsSession(t *testing.T) {
	backend := newBackendFake(t)
	backend.refreshStatus = http.StatusUnauthorized
	server := backend.server()
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	_, err := fixture.client.ApplicantNews(context.Background())
	require.ErrorIs(t, err, api.ErrInvalidRefreshToken)

	refreshCalls, dataCalls, _ := backend.snapshot()
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, 1, dataCalls)
	require.Equal(t, int32(1), fixture.unauthorized.Load())
	require.Equal(t, 1, fixture.repo.ClearCalls)
	require.False(t, fixture.store.State().Authenticated())
}

func TestRefreshWithoutRotationKeepsRefreshToken(t *testing.T) {
	backend := newBackendFake(t)
	backend.rotateRefresh = false
	server := backend.server()
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	accessToken, err := fixture.client.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, newAccessToken, accessToken)

	state := fixture.store.State()
	require.Equal(t, newAccessToken, state.AccessToken)
	require.Equal(t, oldRefreshToken, state.RefreshToken)
}

func TestRefreshWithoutTokens(t *testing.T) {
	backend := newBackendFake(t)
	server := backend.server()
	defer server.Close()

	fixture := newClientFixture(t, server.URL)

	_, err := fixture.client.Refresh(context.Background())
	require.ErrorIs(t, err, api.ErrNoRefreshToken)
	refreshCalls, _, _ := backend.snapshot()
	require.Zero(t, refreshCalls)
}

func TestTransportErrorIsNeverRetried(t *testing.T) {
	var transportCalls atomic.Int32
	transport := api.DoerFunc(func(req *http.Request) (*http.Response, error) {
		transportCalls.Add(1)
		return nil, errors.New("connection refused")
	})

	fixture := newClientFixture(t, "http://localhost:8000", api.WithTransport(transport))
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	_, err := fixture.client.ApplicantNews(context.Background())
	require.Error(t, err)
	require.False(t, api.IsStatus(err, http.StatusUnauthorized))

	require.Equal(t, int32(1), transportCalls.Load())
	require.Zero(t, fixture.repo.ClearCalls)
	require.True(t, fixture.store.State().Authenticated())
}

func TestNonUnauthorizedStatusPassesThrough(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("/applicant/news", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "database unavailable"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	_, err := fixture.client.ApplicantNews(context.Background())
	require.True(t, api.IsStatus(err, http.StatusInternalServerError))
	require.Contains(t, err.Error(), "database unavailable")

	require.Zero(t, refreshCalls.Load())
	require.Zero(t, fixture.repo.ClearCalls)
	require.True(t, fixture.store.State().Authenticated())
}

func TestConcurrentUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	backend := newBackendFake(t)
	backend.refreshDelay = 100 * time.Millisecond
	server := backend.server()
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	const concurrency = 5
	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fixture.client.ApplicantNews(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < concurrency; i++ {
		require.NoError(t, errs[i])
	}
	refreshCalls, _, _ := backend.snapshot()
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, newAccessToken, fixture.store.State().AccessToken)
}

func TestRequestBodyIsReplayedAfterRefresh(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": newAccessToken, "refresh_token": newRefreshToken})
	})
	mux.HandleFunc("/center/sessions", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+newAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"session_id": 10, "session_name": "Batch A"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, oldAccessToken, oldRefreshToken)

	created, err := fixture.client.CreateCenterSession(context.Background(), api.TrainingSessionCreate{
		SessionName: "Batch A",
		StartDate:   "2026-09-01",
		EndDate:     "2026-12-01",
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), created.SessionID)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	require.Equal(t, bodies[0], bodies[1])
	require.Contains(t, bodies[1], `"session_name":"Batch A"`)
}

func TestProactiveRefreshBeforeExpiry(t *testing.T) {
	expiringToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	var refreshCalls atomic.Int32
	var mu sync.Mutex
	var authHeaders []string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": newAccessToken, "refresh_token": newRefreshToken})
	})
	mux.HandleFunc("/applicant/news", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL, api.WithRefreshBuffer(5*time.Minute))
	fixture.seedAuth(t, expiringToken, oldRefreshToken)

	_, err = fixture.client.ApplicantNews(context.Background())
	require.NoError(t, err)

	// The token inside the buffer window was swapped before the request went
	// out; the data endpoint never saw the expiring credential.
	require.Equal(t, int32(1), refreshCalls.Load())
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"Bearer " + newAccessToken}, authHeaders)
}

func TestRequestDecoration(t *testing.T) {
	var header http.Header
	mux := http.NewServeMux()
	mux.HandleFunc("/applicant/news", func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL, api.WithUserAgent("portal-test/0.1"))
	fixture.seedAuth(t, newAccessToken, newRefreshToken)

	_, err := fixture.client.ApplicantNews(context.Background())
	require.NoError(t, err)

	require.Equal(t, "Bearer "+newAccessToken, header.Get("Authorization"))
	require.Equal(t, "portal-test/0.1", header.Get("User-Agent"))
	require.NotEmpty(t, header.Get("X-Request-ID"))
}

func TestUnauthenticatedRequestCarriesNoBearer(t *testing.T) {
	var header http.Header
	mux := http.NewServeMux()
	mux.HandleFunc("/master/states", func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL)

	_, err := fixture.client.States(context.Background())
	require.NoError(t, err)
	require.Empty(t, header.Get("Authorization"))
}

func TestAPIErrorDetailFallsBackToRawBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/applicant/news", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timed out"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fixture := newClientFixture(t, server.URL)
	fixture.seedAuth(t, newAccessToken, newRefreshToken)

	_, err := fixture.client.ApplicantNews(context.Background())
	require.True(t, api.IsStatus(err, http.StatusBadGateway))
	require.True(t, strings.Contains(err.Error(), "upstream timed out"))
}
