package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/diary"
	interrors "github.com/caloriediary/go-diary-client/internal/errors"
	"github.com/caloriediary/go-diary-client/session"
	"github.com/caloriediary/go-diary-client/session/vaultfake"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "abc"
	testEmail    = "a@b.com"
	testPassword = "secret1"
	testUserName = "A"
)

// testFixture holds all test dependencies
type testFixture struct {
	mux      *http.ServeMux
	client   *api.Client
	vault    *vaultfake.FakeVault
	store    *session.Store
	lastAuth string // Authorization header seen by the backend
}

// setupTestFixture creates a fixture with a fake vault and a scripted backend
func setupTestFixture(t *testing.T, seed func(v *vaultfake.FakeVault)) *testFixture {
	t.Helper()

	f := &testFixture{
		mux:   http.NewServeMux(),
		vault: vaultfake.NewFakeVault(),
	}

	f.mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"period":"day","totalCalories":0,"meals":[]}`))
	})

	backend := httptest.NewServer(f.mux)
	t.Cleanup(backend.Close)

	client, err := api.New(backend.URL, time.Second)
	require.NoError(t, err)
	f.client = client

	if seed != nil {
		seed(f.vault)
	}

	store, err := session.New(client, f.vault)
	require.NoError(t, err)
	f.store = store

	return f
}

func (f *testFixture) respondLogin(t *testing.T, body string, status int) {
	t.Helper()
	f.mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (f *testFixture) respondRegister(t *testing.T, body string, status int) {
	t.Helper()
	f.mux.HandleFunc("POST /api/register", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func requireSlotAbsent(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, interrors.ErrSlotNotFound)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := session.New(nil, vaultfake.NewFakeVault())
	require.Error(t, err)

	client, err := api.New("http://localhost:5678", time.Second)
	require.NoError(t, err)
	_, err = session.New(client, nil)
	require.Error(t, err)
}

func TestLoginPersistsSessionAndSyncsHeader(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondLogin(t, `{"token":"abc","user":{"name":"A"}}`, http.StatusOK)

	resp, err := f.store.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, testToken, resp.Token)

	require.True(t, f.store.IsAuthenticated())
	require.Equal(t, testToken, f.store.Token())
	require.Equal(t, testUserName, f.store.User().Name)

	storedToken, err := f.vault.ReadToken()
	require.NoError(t, err)
	require.Equal(t, testToken, storedToken)

	rawUser, err := f.vault.ReadUser()
	require.NoError(t, err)
	var user diary.User
	require.NoError(t, json.Unmarshal(rawUser, &user))
	require.Equal(t, testUserName, user.Name)

	// The very next authenticated request carries the exact header.
	_, err = f.client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.NoError(t, err)
	require.Equal(t, "Bearer "+testToken, f.lastAuth)
}

func TestLoginWithoutUserPayloadKeepsSessionValid(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondLogin(t, `{"token":"abc"}`, http.StatusOK)

	_, err := f.store.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.True(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())

	_, err = f.vault.ReadUser()
	requireSlotAbsent(t, err)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondLogin(t, `{"message":"Invalid email or password."}`, http.StatusUnauthorized)

	_, err := f.store.Login(context.Background(), testEmail, "wrong")
	require.Error(t, err)
	require.Equal(t, "Invalid email or password.", api.Message(err))

	require.False(t, f.store.IsAuthenticated())
	_, err = f.vault.ReadToken()
	requireSlotAbsent(t, err)
}

func TestLoginThenLogoutEndsAnonymous(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondLogin(t, `{"token":"abc","user":{"name":"A"}}`, http.StatusOK)

	_, err := f.store.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.True(t, f.store.IsAuthenticated())

	f.store.Logout()

	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.store.Token())
	require.Nil(t, f.store.User())

	_, err = f.vault.ReadToken()
	requireSlotAbsent(t, err)
	_, err = f.vault.ReadUser()
	requireSlotAbsent(t, err)

	// Header cleared: the next request goes out without authorization.
	_, err = f.client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.NoError(t, err)
	require.Empty(t, f.lastAuth)
}

func TestRegisterPendingConfirmationLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondRegister(t, `{"message":"Account created. Please log in."}`, http.StatusCreated)

	outcome, err := f.store.Register(context.Background(), diary.RegisterInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	pending, ok := outcome.(session.RegisteredPendingConfirmation)
	require.True(t, ok)
	require.Equal(t, "Account created. Please log in.", pending.Message)

	require.False(t, f.store.IsAuthenticated())
	_, err = f.vault.ReadToken()
	requireSlotAbsent(t, err)
}

func TestRegisterWithTokenAuthenticatesImmediately(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondRegister(t, `{"token":"abc","user":{"name":"A"}}`, http.StatusOK)

	outcome, err := f.store.Register(context.Background(), diary.RegisterInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	loggedIn, ok := outcome.(session.RegisteredAndLoggedIn)
	require.True(t, ok)
	require.Equal(t, testToken, loggedIn.Token)

	require.True(t, f.store.IsAuthenticated())

	storedToken, err := f.vault.ReadToken()
	require.NoError(t, err)
	require.Equal(t, testToken, storedToken)

	rawUser, err := f.vault.ReadUser()
	require.NoError(t, err)
	require.Contains(t, string(rawUser), testUserName)
}

func TestHydrationRestoresSessionAndHeader(t *testing.T) {
	f := setupTestFixture(t, func(v *vaultfake.FakeVault) {
		require.NoError(t, v.WriteToken(testToken))
		require.NoError(t, v.WriteUser([]byte(`{"name":"A"}`)))
	})

	require.True(t, f.store.IsAuthenticated())
	require.Equal(t, testUserName, f.store.User().Name)

	_, err := f.client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.NoError(t, err)
	require.Equal(t, "Bearer "+testToken, f.lastAuth)
}

func TestHydrationDiscardsUnparsableUserSlot(t *testing.T) {
	f := setupTestFixture(t, func(v *vaultfake.FakeVault) {
		require.NoError(t, v.WriteToken(testToken))
		require.NoError(t, v.WriteUser([]byte(`{not json`)))
	})

	// Session stays valid on the token alone.
	require.True(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())
}

func TestLoadingFlagClearsAfterCall(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.respondLogin(t, `{"token":"abc"}`, http.StatusOK)

	require.False(t, f.store.Loading())
	_, err := f.store.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.False(t, f.store.Loading())
}
