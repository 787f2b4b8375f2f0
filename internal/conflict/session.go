// Package conflict drives the per-date furniture reselection workflow
// that runs when a multi-day creation attempt clashes with existing
// bookings.  A session owns the outstanding conflicts, the in-progress
// selections and the accumulating per-day assignment map, and
// resubmits the creation once every date of the range is resolved.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/azulmar/beach-map-service/internal/events"
	"github.com/azulmar/beach-map-service/internal/gateway"
	"github.com/azulmar/beach-map-service/internal/model"
)

// Gateway is the slice of the assignment gateway the session needs.
type Gateway interface {
	CreateReservation(ctx context.Context, req gateway.CreateReservationRequest) (*gateway.CreateReservationResponse, error)
	MoveReservationFurniture(ctx context.Context, req gateway.MoveFurnitureRequest) (*gateway.MoveFurnitureResponse, error)
}

var (
	// ErrWrongCount rejects a confirm whose selection size differs
	// from the required count.
	ErrWrongCount = errors.New("selection does not match required count")
	// ErrIncomplete rejects a retry while some date of the range has
	// no assignment yet.
	ErrIncomplete = errors.New("not every date is resolved")
	// ErrNoSuchConflict is returned when a quick swap references a
	// furniture item that is not conflicting on the date.
	ErrNoSuchConflict = errors.New("no such conflict")
	// ErrDestinationOccupied rejects a quick-swap destination that is
	// already taken; no request is sent.
	ErrDestinationOccupied = errors.New("destination furniture is occupied")
	// ErrNoSwapPending is returned when completing a swap that was
	// never started.
	ErrNoSwapPending = errors.New("no swap in progress")
)

// swapState tracks an in-flight quick swap: which conflict entry is
// being relocated.
type swapState struct {
	date  string
	entry model.ConflictEntry
}

// Progress is the payload of KindConflictUpdate events: which dates
// remain unresolved and how far the per-day map has come.
type Progress struct {
	Unresolved []string              `json:"unresolved"`
	Resolved   model.FurnitureByDate `json:"resolved"`
}

// Session coordinates the resolution of one conflicting creation
// attempt.  It is created from the store's conflict list, fed
// per-date selections and quick swaps, and finally retried.  The
// customer snapshot is taken when the session is created – the retry
// never reads live form state.
type Session struct {
	mu      sync.Mutex
	gw      Gateway
	emitter *events.Emitter
	notify  events.Notifier

	dates             []string
	originalSelection []uint64
	requiredCount     int
	snapshot          model.Snapshot

	conflicts  map[string][]model.ConflictEntry
	selections map[string][]uint64
	resolved   model.FurnitureByDate
	swap       *swapState
}

// NewSession builds a resolution session.  dates is the full range of
// the original attempt, originalSelection the all-dates furniture
// choice (its size fixes the required count for every date), and
// unavailable the store-reported conflict set.  Dates of the range
// without conflicts are pre-resolved with the original selection.
func NewSession(gw Gateway, emitter *events.Emitter, notify events.Notifier, dates []string, originalSelection []uint64, unavailable []model.ConflictEntry, snapshot model.Snapshot) *Session {
	if gw == nil || emitter == nil || notify == nil {
		panic("nil collaborator passed to NewSession")
	}
	s := &Session{
		gw:                gw,
		emitter:           emitter,
		notify:            notify,
		dates:             append([]string(nil), dates...),
		originalSelection: append([]uint64(nil), originalSelection...),
		requiredCount:     len(originalSelection),
		snapshot:          snapshot,
		conflicts:         make(map[string][]model.ConflictEntry),
		selections:        make(map[string][]uint64),
		resolved:          make(model.FurnitureByDate),
	}
	s.seed(unavailable)
	return s
}

// seed groups the conflict set by date and pre-resolves conflict-free
// dates with the original selection.  Callers must hold the mutex or
// own the session exclusively.
func (s *Session) seed(unavailable []model.ConflictEntry) {
	s.conflicts = make(map[string][]model.ConflictEntry)
	for _, entry := range unavailable {
		s.conflicts[entry.Date] = append(s.conflicts[entry.Date], entry)
	}
	for _, d := range s.dates {
		if _, clash := s.conflicts[d]; clash {
			delete(s.resolved, d)
			continue
		}
		if _, done := s.resolved[d]; !done {
			s.resolved[d] = append([]uint64(nil), s.originalSelection...)
		}
	}
}

// Context returns the transient resolution view for one date: its
// outstanding conflicts, the original selection and the required
// count.  Slices are copies.
func (s *Session) Context(date string) model.ConflictResolutionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ConflictResolutionContext{
		Date:              date,
		Conflicts:         append([]model.ConflictEntry(nil), s.conflicts[date]...),
		OriginalSelection: append([]uint64(nil), s.originalSelection...),
		RequiredCount:     s.requiredCount,
	}
}

// RequiredCount is the number of furniture items every date must end
// up with – the size of the original all-dates selection.
func (s *Session) RequiredCount() int { return s.requiredCount }

// UnresolvedDates lists the dates of the range that still lack an
// assignment, in range order.
func (s *Session) UnresolvedDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unresolvedLocked()
}

func (s *Session) unresolvedLocked() []string {
	var out []string
	for _, d := range s.dates {
		if len(s.resolved[d]) == 0 {
			out = append(out, d)
		}
	}
	return out
}

// SetSelection records the in-progress furniture picks for a date.
// Items still conflicting on that date are rejected outright.  The
// selection is provisional until Confirm.
func (s *Session) SetSelection(date string, furnitureIDs []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range furnitureIDs {
		for _, entry := range s.conflicts[date] {
			if entry.FurnitureID == id {
				s.notify.Toast(
					fmt.Sprintf("furniture %s is taken on %s, pick another", entry.FurnitureNumber, date),
					events.SeverityWarning,
				)
				return fmt.Errorf("furniture %d conflicts on %s", id, date)
			}
		}
	}
	s.selections[date] = append([]uint64(nil), furnitureIDs...)
	return nil
}

// CanConfirm reports whether the date's in-progress selection has
// exactly the required count – the only state in which the confirm
// action is enabled.
func (s *Session) CanConfirm(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections[date]) == s.requiredCount
}

// Confirm locks in the date's selection.  Selections with the wrong
// count are rejected with a toast stating the required number.
func (s *Session) Confirm(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selections[date]
	if len(sel) != s.requiredCount {
		s.notify.Toast(
			fmt.Sprintf("select exactly %d furniture items for %s (%d selected)", s.requiredCount, date, len(sel)),
			events.SeverityWarning,
		)
		return ErrWrongCount
	}
	s.resolved[date] = append([]uint64(nil), sel...)
	delete(s.selections, date)
	s.emitProgress()
	return nil
}

// Restore reverts a date's card: any confirmed or in-progress
// selection is discarded, and a swap triggered mid-resolution is
// cancelled back into the conflict view instead of closing.
func (s *Session) Restore(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, date)
	if _, clash := s.conflicts[date]; clash {
		delete(s.resolved, date)
	} else {
		s.resolved[date] = append([]uint64(nil), s.originalSelection...)
	}
	if s.swap != nil && s.swap.date == date {
		s.swap = nil
	}
	s.emitProgress()
}

// BeginSwap enters destination-picking mode for a conflicting
// furniture item: the occupying reservation itself will be moved to
// free the slot.
func (s *Session) BeginSwap(date string, furnitureID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.conflicts[date] {
		if entry.FurnitureID == furnitureID {
			s.swap = &swapState{date: date, entry: entry}
			return nil
		}
	}
	return ErrNoSuchConflict
}

// CancelSwap leaves destination-picking mode without moving anything.
func (s *Session) CancelSwap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap = nil
}

// SwapTo completes a pending quick swap by relocating the conflicting
// reservation to the destination furniture.  Occupied destinations
// are rejected client-side before any request is sent.  On success
// the resolved entry is pruned from the date's conflict list and the
// progress event fires so the instruction panel updates live.
func (s *Session) SwapTo(ctx context.Context, toFurnitureID uint64, destinationOccupied bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.swap == nil {
		return ErrNoSwapPending
	}
	if destinationOccupied {
		s.notify.Toast("that furniture is already occupied, pick a free one", events.SeverityWarning)
		return ErrDestinationOccupied
	}
	sw := *s.swap
	resp, err := s.gw.MoveReservationFurniture(ctx, gateway.MoveFurnitureRequest{
		ReservationID:   sw.entry.ReservationID,
		Date:            sw.date,
		FromFurnitureID: sw.entry.FurnitureID,
		ToFurnitureID:   toFurnitureID,
	})
	if err != nil {
		s.notify.Toast("could not move the conflicting reservation", events.SeverityError)
		return err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "move rejected"
		}
		s.notify.Toast(msg, events.SeverityWarning)
		return errors.New(msg)
	}
	remaining := s.conflicts[sw.date][:0]
	for _, entry := range s.conflicts[sw.date] {
		if entry.FurnitureID != sw.entry.FurnitureID {
			remaining = append(remaining, entry)
		}
	}
	if len(remaining) == 0 {
		delete(s.conflicts, sw.date)
	} else {
		s.conflicts[sw.date] = remaining
	}
	s.swap = nil
	if resp.Message != "" {
		s.notify.Toast(resp.Message, events.SeverityInfo)
	}
	s.emitProgress()
	return nil
}

// Complete reports whether every date of the range has a non-empty
// assignment, the precondition for Retry.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unresolvedLocked()) == 0
}

// FurnitureByDate returns a copy of the per-day assignment map built
// so far.
func (s *Session) FurnitureByDate() model.FurnitureByDate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.FurnitureByDate, len(s.resolved))
	for d, ids := range s.resolved {
		out[d] = append([]uint64(nil), ids...)
	}
	return out
}

// Retry resubmits the creation with the per-day assignment map and
// the customer snapshot taken when the conflict was first detected.
// When the store reports a fresh conflict set, the session reopens
// with it and the caller re-enters the resolution loop; there is no
// iteration cap.
func (s *Session) Retry(ctx context.Context) (*gateway.CreateReservationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.unresolvedLocked()) > 0 {
		return nil, ErrIncomplete
	}
	req := gateway.CreateReservationRequest{
		CustomerID:      s.snapshot.CustomerID,
		Dates:           append([]string(nil), s.dates...),
		NumPeople:       s.snapshot.NumPeople,
		FurnitureByDate: s.resolved,
		Notes:           s.snapshot.Notes,
		Preferences:     append([]string(nil), s.snapshot.Preferences...),
		ChargeToRoom:    s.snapshot.ChargeToRoom,
	}
	resp, err := s.gw.CreateReservation(ctx, req)
	if err != nil {
		s.notify.Toast("could not submit the reservation", events.SeverityError)
		return nil, err
	}
	if len(resp.Unavailable) > 0 {
		s.selections = make(map[string][]uint64)
		s.swap = nil
		s.seed(resp.Unavailable)
		s.notify.Toast("some furniture is no longer available, resolve the new conflicts", events.SeverityWarning)
		s.emitProgress()
		return resp, nil
	}
	if resp.Success {
		s.emitter.Emit(events.KindConflictUpdate, Progress{Resolved: s.resolved})
	}
	return resp, nil
}

// emitProgress publishes the current resolution state.  Callers must
// hold the mutex.
func (s *Session) emitProgress() {
	s.emitter.Emit(events.KindConflictUpdate, Progress{
		Unresolved: s.unresolvedLocked(),
		Resolved:   s.resolved,
	})
}
