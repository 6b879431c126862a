package council

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"council/internal/backend"
)

func TestStoreRefreshReplacesCache(t *testing.T) {
	gw := &fakeGateway{sessions: []backend.SessionSummary{{ID: "s1", Title: "First"}}}
	store := NewSessionStore(gw)

	list, err := store.RefreshList()
	require.NoError(t, err)
	require.Len(t, list, 1)

	gw.mu.Lock()
	gw.sessions = []backend.SessionSummary{{ID: "s2", Title: "Second"}}
	gw.mu.Unlock()

	list, err = store.RefreshList()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "Second", store.Title("s2"))
	assert.Empty(t, store.Title("s1"))
}

func TestStoreRefreshFailureKeepsCache(t *testing.T) {
	gw := &fakeGateway{sessions: []backend.SessionSummary{{ID: "s1"}}}
	store := NewSessionStore(gw)
	_, err := store.RefreshList()
	require.NoError(t, err)

	gw.mu.Lock()
	gw.listErr = &backend.TransportError{Op: "list sessions", Err: errors.New("down")}
	gw.mu.Unlock()

	_, err = store.RefreshList()
	require.Error(t, err)
	assert.Len(t, store.Sessions(), 1, "a failed refresh must not drop the cache")
}

func TestStoreSelectAndCurrent(t *testing.T) {
	store := NewSessionStore(&fakeGateway{})
	assert.Empty(t, store.Current())
	store.Select("s9")
	assert.Equal(t, "s9", store.Current())
}
