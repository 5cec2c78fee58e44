package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happyBot/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestRoleGrantsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.GrantRole(ctx, domain.PlatformTwitch, "42", "developer"))
	require.NoError(t, store.GrantRole(ctx, domain.PlatformTwitch, " 42 ", "admin"))
	require.NoError(t, store.GrantRole(ctx, domain.PlatformTwitch, "42", "developer"))
	require.NoError(t, store.GrantRole(ctx, domain.PlatformKick, "42", "helper"))

	roles, err := store.RolesForUser(ctx, domain.PlatformTwitch, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "developer"}, roles)

	removed, err := store.RevokeRole(ctx, domain.PlatformTwitch, "42", "admin")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.RevokeRole(ctx, domain.PlatformTwitch, "42", "admin")
	require.NoError(t, err)
	assert.False(t, removed)

	roles, err = store.RolesForUser(ctx, domain.PlatformTwitch, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"developer"}, roles)

	roles, err = store.RolesForUser(ctx, domain.PlatformTwitch, "nobody")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestGrantRoleRejectsBlankValues(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.GrantRole(context.Background(), domain.PlatformTwitch, " ", "admin"))
	assert.Error(t, store.GrantRole(context.Background(), domain.PlatformTwitch, "1", ""))
}

func TestMessagesUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	value, err := store.GetMessage(ctx, domain.MessageRules)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetMessage(ctx, domain.MessageRules, "first"))
	require.NoError(t, store.SetMessage(ctx, domain.MessageRules, "second"))

	value, err = store.GetMessage(ctx, domain.MessageRules)
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.GrantRole(ctx, domain.PlatformKick, "7", "vip"))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	roles, err := reopened.RolesForUser(ctx, domain.PlatformKick, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, roles)
}
