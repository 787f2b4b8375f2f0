package conflict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azulmar/beach-map-service/internal/events"
	"github.com/azulmar/beach-map-service/internal/gateway"
	"github.com/azulmar/beach-map-service/internal/model"
)

type conflictStoreStub struct {
	createReqs  []gateway.CreateReservationRequest
	createQueue []*gateway.CreateReservationResponse
	createErr   error

	moveReqs []gateway.MoveFurnitureRequest
	moveResp *gateway.MoveFurnitureResponse
	moveErr  error
}

func (s *conflictStoreStub) CreateReservation(_ context.Context, req gateway.CreateReservationRequest) (*gateway.CreateReservationResponse, error) {
	s.createReqs = append(s.createReqs, req)
	if s.createErr != nil {
		return nil, s.createErr
	}
	resp := s.createQueue[0]
	s.createQueue = s.createQueue[1:]
	return resp, nil
}

func (s *conflictStoreStub) MoveReservationFurniture(_ context.Context, req gateway.MoveFurnitureRequest) (*gateway.MoveFurnitureResponse, error) {
	s.moveReqs = append(s.moveReqs, req)
	if s.moveErr != nil {
		return nil, s.moveErr
	}
	if s.moveResp != nil {
		return s.moveResp, nil
	}
	return &gateway.MoveFurnitureResponse{Success: true}, nil
}

type sessionToastStub struct {
	messages   []string
	severities []string
}

func (t *sessionToastStub) Toast(message, severity string) {
	t.messages = append(t.messages, message)
	t.severities = append(t.severities, severity)
}

var testDates = []string{"2026-07-01", "2026-07-02", "2026-07-03"}

// newTestSession models a three-day attempt on furniture 5 and 6 where
// item 6 is taken on the middle day.
func newTestSession(store *conflictStoreStub) (*Session, *sessionToastStub) {
	toasts := &sessionToastStub{}
	unavailable := []model.ConflictEntry{
		{Date: "2026-07-02", FurnitureID: 6, FurnitureNumber: "H-06", ReservationID: 77, CustomerName: "Prior Guest"},
	}
	snapshot := model.Snapshot{
		CustomerID:   31,
		CustomerName: "Ana Torres",
		NumPeople:    4,
		Notes:        "front row if possible",
		Preferences:  []string{"shade"},
		ChargeToRoom: true,
	}
	s := NewSession(store, events.NewEmitter(), toasts, testDates, []uint64{5, 6}, unavailable, snapshot)
	return s, toasts
}

func TestSeedPreResolvesConflictFreeDates(t *testing.T) {
	s, _ := newTestSession(&conflictStoreStub{})

	require.Equal(t, []string{"2026-07-02"}, s.UnresolvedDates())
	require.False(t, s.Complete())
	require.Equal(t, 2, s.RequiredCount())

	byDate := s.FurnitureByDate()
	require.Equal(t, []uint64{5, 6}, byDate["2026-07-01"])
	require.Equal(t, []uint64{5, 6}, byDate["2026-07-03"])
	require.NotContains(t, byDate, "2026-07-02")

	ctx := s.Context("2026-07-02")
	require.Len(t, ctx.Conflicts, 1)
	require.Equal(t, uint64(6), ctx.Conflicts[0].FurnitureID)
	require.Equal(t, []uint64{5, 6}, ctx.OriginalSelection)
	require.Equal(t, 2, ctx.RequiredCount)
}

func TestConfirmRequiresExactCount(t *testing.T) {
	s, toasts := newTestSession(&conflictStoreStub{})

	require.NoError(t, s.SetSelection("2026-07-02", []uint64{5}))
	require.False(t, s.CanConfirm("2026-07-02"))
	require.ErrorIs(t, s.Confirm("2026-07-02"), ErrWrongCount)
	require.NotEmpty(t, toasts.messages)

	require.NoError(t, s.SetSelection("2026-07-02", []uint64{5, 7, 8}))
	require.False(t, s.CanConfirm("2026-07-02"))
	require.ErrorIs(t, s.Confirm("2026-07-02"), ErrWrongCount)

	require.NoError(t, s.SetSelection("2026-07-02", []uint64{5, 7}))
	require.True(t, s.CanConfirm("2026-07-02"))
	require.NoError(t, s.Confirm("2026-07-02"))
	require.True(t, s.Complete())
}

func TestSelectionRejectsConflictingFurniture(t *testing.T) {
	s, toasts := newTestSession(&conflictStoreStub{})

	require.Error(t, s.SetSelection("2026-07-02", []uint64{6, 7}))
	require.Contains(t, toasts.severities, events.SeverityWarning)
	require.False(t, s.CanConfirm("2026-07-02"))
}

func TestRestoreRevertsDateCard(t *testing.T) {
	s, _ := newTestSession(&conflictStoreStub{})

	require.NoError(t, s.SetSelection("2026-07-02", []uint64{5, 7}))
	require.NoError(t, s.Confirm("2026-07-02"))
	require.True(t, s.Complete())

	// Restoring a conflicting date reopens it.
	s.Restore("2026-07-02")
	require.Equal(t, []string{"2026-07-02"}, s.UnresolvedDates())

	// Restoring a conflict-free date falls back to the original
	// selection.
	s.Restore("2026-07-01")
	require.Equal(t, []uint64{5, 6}, s.FurnitureByDate()["2026-07-01"])
}

func TestQuickSwapFreesTheConflictingItem(t *testing.T) {
	store := &conflictStoreStub{}
	s, toasts := newTestSession(store)

	require.NoError(t, s.BeginSwap("2026-07-02", 6))

	// Occupied destinations are refused before any request goes out.
	require.ErrorIs(t, s.SwapTo(context.Background(), 9, true), ErrDestinationOccupied)
	require.Empty(t, store.moveReqs)
	require.Contains(t, toasts.severities, events.SeverityWarning)

	require.NoError(t, s.SwapTo(context.Background(), 9, false))
	require.Len(t, store.moveReqs, 1)
	require.Equal(t, gateway.MoveFurnitureRequest{
		ReservationID:   77,
		Date:            "2026-07-02",
		FromFurnitureID: 6,
		ToFurnitureID:   9,
	}, store.moveReqs[0])
	require.Empty(t, s.Context("2026-07-02").Conflicts)

	// With the clash gone, restoring the date re-applies the original
	// selection and the range is complete.
	s.Restore("2026-07-02")
	require.True(t, s.Complete())
	require.Equal(t, []uint64{5, 6}, s.FurnitureByDate()["2026-07-02"])
}

func TestQuickSwapGuards(t *testing.T) {
	s, _ := newTestSession(&conflictStoreStub{})

	require.ErrorIs(t, s.BeginSwap("2026-07-02", 99), ErrNoSuchConflict)
	require.ErrorIs(t, s.SwapTo(context.Background(), 9, false), ErrNoSwapPending)

	require.NoError(t, s.BeginSwap("2026-07-02", 6))
	s.CancelSwap()
	require.ErrorIs(t, s.SwapTo(context.Background(), 9, false), ErrNoSwapPending)
}

func TestQuickSwapRejectionKeepsConflict(t *testing.T) {
	store := &conflictStoreStub{moveResp: &gateway.MoveFurnitureResponse{Error: "target just got booked"}}
	s, _ := newTestSession(store)

	require.NoError(t, s.BeginSwap("2026-07-02", 6))
	require.Error(t, s.SwapTo(context.Background(), 9, false))
	require.Len(t, s.Context("2026-07-02").Conflicts, 1)
}

func TestRetrySubmitsPerDayAssignment(t *testing.T) {
	store := &conflictStoreStub{createQueue: []*gateway.CreateReservationResponse{
		{Success: true, Reservation: &model.Reservation{ID: 500}},
	}}
	s, _ := newTestSession(store)

	require.NoError(t, s.SetSelection("2026-07-02", []uint64{5, 7}))
	require.NoError(t, s.Confirm("2026-07-02"))

	resp, err := s.Retry(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.Len(t, store.createReqs, 1)
	req := store.createReqs[0]
	require.Equal(t, uint64(31), req.CustomerID)
	require.Equal(t, testDates, req.Dates)
	require.Equal(t, 4, req.NumPeople)
	require.Empty(t, req.FurnitureIDs)
	require.Equal(t, model.FurnitureByDate{
		"2026-07-01": {5, 6},
		"2026-07-02": {5, 7},
		"2026-07-03": {5, 6},
	}, req.FurnitureByDate)
	require.Equal(t, "front row if possible", req.Notes)
	require.Equal(t, []string{"shade"}, req.Preferences)
	require.True(t, req.ChargeToRoom)
}

func TestRetryRefusedWhileIncomplete(t *testing.T) {
	store := &conflictStoreStub{}
	s, _ := newTestSession(store)

	_, err := s.Retry(context.Background())
	require.ErrorIs(t, err, ErrIncomplete)
	require.Empty(t, store.createReqs)
}

func TestRetryReopensOnFreshConflicts(t *testing.T) {
	store := &conflictStoreStub{createQueue: []*gateway.CreateReservationResponse{
		{Unavailable: []model.ConflictEntry{
			{Date: "2026-07-01", FurnitureID: 5, FurnitureNumber: "H-05", ReservationID: 88},
		}},
		{Success: true, Reservation: &model.Reservation{ID: 501}},
	}}
	s, toasts := newTestSession(store)

	require.NoError(t, s.SetSelection("2026-07-02", []uint64{5, 7}))
	require.NoError(t, s.Confirm("2026-07-02"))

	// The store reports a conflict that appeared while resolving; the
	// session reopens with it instead of failing.
	resp, err := s.Retry(context.Background())
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, []string{"2026-07-01"}, s.UnresolvedDates())
	require.Contains(t, toasts.severities, events.SeverityWarning)

	require.NoError(t, s.SetSelection("2026-07-01", []uint64{6, 8}))
	require.NoError(t, s.Confirm("2026-07-01"))

	resp, err = s.Retry(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, store.createReqs, 2)
	require.Equal(t, []uint64{6, 8}, store.createReqs[1].FurnitureByDate["2026-07-01"])
}
