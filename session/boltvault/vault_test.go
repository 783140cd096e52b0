package boltvault_test

import (
	"path/filepath"
	"testing"

	interrors "github.com/caloriediary/go-diary-client/internal/errors"
	"github.com/caloriediary/go-diary-client/session/boltvault"
	"github.com/stretchr/testify/require"
)

func openTestVault(t *testing.T, path string) *boltvault.Vault {
	t.Helper()
	vault, err := boltvault.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vault.Close() })
	return vault
}

func TestMissingSlotsReportAbsent(t *testing.T) {
	vault := openTestVault(t, filepath.Join(t.TempDir(), "session.db"))

	_, err := vault.ReadToken()
	require.ErrorIs(t, err, interrors.ErrSlotNotFound)

	_, err = vault.ReadUser()
	require.ErrorIs(t, err, interrors.ErrSlotNotFound)
}

func TestTokenSlotRoundTrip(t *testing.T) {
	vault := openTestVault(t, filepath.Join(t.TempDir(), "session.db"))

	require.NoError(t, vault.WriteToken("abc"))

	token, err := vault.ReadToken()
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	require.NoError(t, vault.DeleteToken())
	_, err = vault.ReadToken()
	require.ErrorIs(t, err, interrors.ErrSlotNotFound)
}

func TestUserSlotRoundTrip(t *testing.T) {
	vault := openTestVault(t, filepath.Join(t.TempDir(), "session.db"))

	require.NoError(t, vault.WriteUser([]byte(`{"name":"A"}`)))

	raw, err := vault.ReadUser()
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"A"}`, string(raw))

	require.NoError(t, vault.DeleteUser())
	_, err = vault.ReadUser()
	require.ErrorIs(t, err, interrors.ErrSlotNotFound)
}

func TestSlotsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	vault, err := boltvault.Open(path)
	require.NoError(t, err)
	require.NoError(t, vault.WriteToken("abc"))
	require.NoError(t, vault.WriteUser([]byte(`{"name":"A"}`)))
	require.NoError(t, vault.Close())

	reopened := openTestVault(t, path)
	token, err := reopened.ReadToken()
	require.NoError(t, err)
	require.Equal(t, "abc", token)
}

func TestDeleteMissingSlotIsFine(t *testing.T) {
	vault := openTestVault(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, vault.DeleteToken())
	require.NoError(t, vault.DeleteUser())
}
