package undo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerLIFO(t *testing.T) {
	l := NewLedger(5)
	l.Push(Action{Type: ActionAssign, ReservationID: 1, FurnitureIDs: []uint64{10}, Date: "2026-07-01"})
	l.Push(Action{Type: ActionUnassign, ReservationID: 2, FurnitureIDs: []uint64{11}, Date: "2026-07-01"})
	require.Equal(t, 2, l.Len())

	a, ok := l.Pop()
	require.True(t, ok)
	require.Equal(t, ActionUnassign, a.Type)
	require.Equal(t, uint64(2), a.ReservationID)

	a, ok = l.Pop()
	require.True(t, ok)
	require.Equal(t, uint64(1), a.ReservationID)

	_, ok = l.Pop()
	require.False(t, ok)
}

func TestLedgerDiscardsOldestWhenFull(t *testing.T) {
	l := NewLedger(3)
	for i := uint64(1); i <= 5; i++ {
		l.Push(Action{Type: ActionAssign, ReservationID: i})
	}
	require.Equal(t, 3, l.Len())

	// Only the three most recent survive, popped newest first.
	for _, want := range []uint64{5, 4, 3} {
		a, ok := l.Pop()
		require.True(t, ok)
		require.Equal(t, want, a.ReservationID)
	}
	_, ok := l.Pop()
	require.False(t, ok)
}

func TestLedgerDefaultCapacity(t *testing.T) {
	l := NewLedger(0)
	for i := uint64(1); i <= 30; i++ {
		l.Push(Action{ReservationID: i})
	}
	require.Equal(t, DefaultCapacity, l.Len())
}

func TestLedgerClear(t *testing.T) {
	l := NewLedger(4)
	l.Push(Action{ReservationID: 1})
	l.Push(Action{ReservationID: 2})
	l.Clear()
	require.Zero(t, l.Len())
	_, ok := l.Pop()
	require.False(t, ok)
}

func TestActionTypeInverse(t *testing.T) {
	require.Equal(t, ActionUnassign, ActionAssign.Inverse())
	require.Equal(t, ActionAssign, ActionUnassign.Inverse())
}
