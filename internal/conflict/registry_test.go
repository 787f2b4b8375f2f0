package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry(0)
	s, _ := newTestSession(&conflictStoreStub{})

	id, err := r.Add(s)
	require.NoError(t, err)
	require.Len(t, id, 32)

	got, err := r.Get(id)
	require.NoError(t, err)
	require.Same(t, s, got)

	r.Remove(id)
	_, err = r.Get(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryIDsAreUnique(t *testing.T) {
	r := NewRegistry(0)
	s, _ := newTestSession(&conflictStoreStub{})

	a, err := r.Add(s)
	require.NoError(t, err)
	b, err := r.Add(s)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestRegistryExpiresAbandonedSessions(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	r := NewRegistry(30 * time.Minute)
	r.now = func() time.Time { return clock }
	s, _ := newTestSession(&conflictStoreStub{})

	id, err := r.Add(s)
	require.NoError(t, err)

	// Still alive just inside the TTL.
	clock = base.Add(29 * time.Minute)
	got, err := r.Get(id)
	require.NoError(t, err)
	require.Same(t, s, got)

	// Past the TTL the session is gone.
	clock = base.Add(31 * time.Minute)
	_, err = r.Get(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Empty(t, r.sessions)
}

func TestRegistryAddSweepsExpiredSessions(t *testing.T) {
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	r := NewRegistry(30 * time.Minute)
	r.now = func() time.Time { return clock }
	s, _ := newTestSession(&conflictStoreStub{})

	stale, err := r.Add(s)
	require.NoError(t, err)

	clock = base.Add(time.Hour)
	fresh, err := r.Add(s)
	require.NoError(t, err)

	require.Len(t, r.sessions, 1)
	_, err = r.Get(stale)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(fresh)
	require.NoError(t, err)
}
