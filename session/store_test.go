package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhriti-exe/MIS-Portal-CDAC/internal/utils"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
	"github.com/dhriti-exe/MIS-Portal-CDAC/session/repofake"
)

const (
	testEmail        = "jane.doe@example.com"
	testAccessToken  = "access-token-1"
	testRefreshToken = "refresh-token-1"
)

func testIdentity() *session.Identity {
	return &session.Identity{
		ID:       42,
		Email:    testEmail,
		Role:     session.RoleApplicant,
		IsActive: true,
	}
}

func newTestStore(t *testing.T) (*session.Store, *repofake.FakeSessionRepo) {
	t.Helper()
	repo := repofake.NewFakeSessionRepo()
	store, err := session.NewStore(repo)
	require.NoError(t, err)
	return store, repo
}

func TestNewStoreRequiresRepo(t *testing.T) {
	_, err := session.NewStore(nil)
	require.Error(t, err)
}

func TestSetAuthTrimsTokens(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetAuth(testIdentity(), "  "+testAccessToken+" \n", "\t"+testRefreshToken+"  "))

	state := store.State()
	require.Equal(t, testAccessToken, state.AccessToken)
	require.Equal(t, testRefreshToken, state.RefreshToken)
}

func TestSetAuthNormalizesEmptyTokensToAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetAuth(testIdentity(), "", "   "))

	state := store.State()
	require.Empty(t, state.AccessToken)
	require.Empty(t, state.RefreshToken)
	require.False(t, state.Authenticated())
}

func TestSetAuthReplacesWholesale(t *testing.T) {
	store, _ := newTestStore(t)

	first := testIdentity()
	first.ApplicantID = utils.Ptr(int64(7))
	require.NoError(t, store.SetAuth(first, "a1", "r1"))

	require.NoError(t, store.SetAuth(testIdentity(), "a2", "r2"))

	state := store.State()
	require.Equal(t, "a2", state.AccessToken)
	require.Equal(t, "r2", state.RefreshToken)
	require.Nil(t, state.Identity.ApplicantID)
}

func TestUpdateUserMergesLinkageID(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SetAuth(testIdentity(), testAccessToken, testRefreshToken))

	require.NoError(t, store.UpdateUser(session.IdentityUpdate{ApplicantID: utils.Ptr(int64(99))}))

	state := store.State()
	require.NotNil(t, state.Identity.ApplicantID)
	require.Equal(t, int64(99), *state.Identity.ApplicantID)
	// Untouched fields survive the merge.
	require.Equal(t, testEmail, state.Identity.Email)
	require.Equal(t, testAccessToken, state.AccessToken)
}

func TestUpdateUserWithoutIdentityIsNoOp(t *testing.T) {
	store, repo := newTestStore(t)

	require.NoError(t, store.UpdateUser(session.IdentityUpdate{ApplicantID: utils.Ptr(int64(1))}))

	require.Nil(t, store.State().Identity)
	require.Zero(t, repo.SaveCalls)
}

func TestClearAuthIsTotal(t *testing.T) {
	store, repo := newTestStore(t)
	require.NoError(t, store.SetAuth(testIdentity(), testAccessToken, testRefreshToken))
	require.NoError(t, store.UpdateUser(session.IdentityUpdate{CenterID: utils.Ptr(int64(3))}))

	require.NoError(t, store.ClearAuth())

	state := store.State()
	require.Nil(t, state.Identity)
	require.Empty(t, state.AccessToken)
	require.Empty(t, state.RefreshToken)
	require.Equal(t, 1, repo.ClearCalls)

	_, err := repo.Load()
	require.ErrorIs(t, err, session.ErrNotPersisted)
}

func TestMutationsPersistSynchronously(t *testing.T) {
	store, repo := newTestStore(t)

	require.NoError(t, store.SetAuth(testIdentity(), testAccessToken, testRefreshToken))

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, testAccessToken, persisted.AccessToken)
	require.Equal(t, testRefreshToken, persisted.RefreshToken)
	require.Equal(t, testEmail, persisted.Identity.Email)
}

func TestRehydrationRestoresPartialState(t *testing.T) {
	repo := repofake.NewFakeSessionRepo()
	// Token present, identity absent: a valid persisted state the rest of
	// the system must tolerate.
	require.NoError(t, repo.Save(&session.Session{AccessToken: testAccessToken}))

	store, err := session.NewStore(repo)
	require.NoError(t, err)

	state := store.State()
	require.Nil(t, state.Identity)
	require.Equal(t, testAccessToken, state.AccessToken)
	require.Empty(t, state.RefreshToken)
	require.True(t, state.Authenticated())
}

func TestStateReturnsSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	identity := testIdentity()
	identity.ApplicantID = utils.Ptr(int64(5))
	require.NoError(t, store.SetAuth(identity, testAccessToken, testRefreshToken))

	snapshot := store.State()
	*snapshot.Identity.ApplicantID = 1234
	snapshot.Identity.Email = "mutated@example.com"

	state := store.State()
	require.Equal(t, int64(5), *state.Identity.ApplicantID)
	require.Equal(t, testEmail, state.Identity.Email)
}

func TestTrimToken(t *testing.T) {
	require.Equal(t, "abc", session.TrimToken("  abc \n"))
	require.Equal(t, "", session.TrimToken("   "))
}
