// Package movemode implements the operator mode for reassigning
// furniture between reservations outside the normal creation flow.
// The coordinator owns the pool of under-assigned reservations, the
// current selection and the undo ledger; it talks to the reservation
// store only through the assignment gateway and reports everything to
// presentation layers through the event emitter and the notifier.
package movemode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/azulmar/beach-map-service/internal/events"
	"github.com/azulmar/beach-map-service/internal/gateway"
	"github.com/azulmar/beach-map-service/internal/model"
	"github.com/azulmar/beach-map-service/internal/undo"
)

// Gateway is the slice of the assignment gateway the coordinator
// needs.  *gateway.Client satisfies it; tests substitute stubs.
type Gateway interface {
	Unassigned(ctx context.Context, date string) (*gateway.UnassignedResponse, error)
	PoolData(ctx context.Context, reservationID uint64, date string) (*gateway.PoolDataResponse, error)
	PreferencesMatch(ctx context.Context, date string, preferences []string) (*gateway.PreferencesMatchResponse, error)
	Assign(ctx context.Context, req gateway.AssignRequest) (*gateway.AssignResponse, error)
	Unassign(ctx context.Context, req gateway.AssignRequest) (*gateway.AssignResponse, error)
}

// ErrNotActive is returned by operations that require move mode to be
// switched on.
var ErrNotActive = errors.New("move mode not active")

// Result is the uniform outcome of the coordinator's workflow
// methods.  Failures are carried here rather than as panics so the
// contract stays the same for every consumer.
type Result struct {
	Success         bool     `json:"success"`
	Error           string   `json:"error,omitempty"`
	FurnitureIDs    []uint64 `json:"furniture_ids,omitempty"`
	UnassignedCount int      `json:"unassigned_count,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Highlight carries the two preference-match tiers surfaced to the
// map renderer when a reservation is selected.
type Highlight struct {
	ReservationID uint64   `json:"reservation_id"`
	FullMatch     []uint64 `json:"full_match"`
	PartialMatch  []uint64 `json:"partial_match"`
}

// SelectionChange is the payload of KindSelectionChange events.  A
// zero ReservationID means the selection was cleared.
type SelectionChange struct {
	ReservationID uint64 `json:"reservation_id"`
}

// Coordinator drives a move-mode session.  All state transitions run
// under a single mutex; gateway round-trips happen while holding it,
// which serialises operations the way the browser's single thread
// did.  Callers must treat returned pool entries as snapshots.
type Coordinator struct {
	mu      sync.Mutex
	gw      Gateway
	emitter *events.Emitter
	notify  events.Notifier

	active   bool
	date     string
	pool     []*model.PoolEntry
	selected uint64
	ledger   *undo.Ledger

	// initialFurniture is what each reservation had before this
	// session first touched it.  Set once per reservation per session
	// and never rewritten, even if the entry leaves and re-enters the
	// pool.
	initialFurniture map[uint64][]model.Furniture
}

// NewCoordinator wires a coordinator with its collaborators.  The
// emitter and notifier must be non-nil; undoCapacity bounds the
// ledger (non-positive means the default of 20).
func NewCoordinator(gw Gateway, emitter *events.Emitter, notify events.Notifier, undoCapacity int) *Coordinator {
	if gw == nil || emitter == nil || notify == nil {
		panic("nil collaborator passed to NewCoordinator")
	}
	return &Coordinator{
		gw:               gw,
		emitter:          emitter,
		notify:           notify,
		ledger:           undo.NewLedger(undoCapacity),
		initialFurniture: make(map[uint64][]model.Furniture),
	}
}

// Activate switches move mode on for the given date.  Calling it
// while already active is a no-op.  The pool, selection and undo
// history are reset, then every under-assigned reservation on the
// date is loaded into the pool.  Reservations that fail to load are
// skipped with a toast; activation itself only fails when the
// unassigned listing cannot be fetched at all.
func (c *Coordinator) Activate(ctx context.Context, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return nil
	}
	c.active = true
	c.date = date
	c.pool = nil
	c.selected = 0
	c.ledger.Clear()
	c.initialFurniture = make(map[uint64][]model.Furniture)

	resp, err := c.gw.Unassigned(ctx, date)
	if err != nil {
		c.active = false
		c.notify.Toast("could not load unassigned reservations", events.SeverityError)
		c.emitter.Emit(events.KindError, err.Error())
		return err
	}
	c.emitter.Emit(events.KindActivate, date)
	for _, id := range resp.ReservationIDs {
		if err := c.loadReservationToPool(ctx, id, nil); err != nil {
			log.Printf("movemode: load reservation %d: %v", id, err)
		}
	}
	return nil
}

// Deactivate switches move mode off.  It refuses (returning false and
// leaving all state untouched) while any pool entry is incomplete;
// the operator must finish assigning or use ForceDeactivate.
func (c *Coordinator) Deactivate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return true
	}
	for _, e := range c.pool {
		if !e.IsComplete() {
			c.notify.Toast(
				fmt.Sprintf("reservation %d still needs furniture, resolve it before leaving move mode", e.ReservationID),
				events.SeverityWarning,
			)
			return false
		}
	}
	c.reset()
	return true
}

// ForceDeactivate ends the session regardless of pool state.  Used
// when the operator navigates away into an edit flow.
func (c *Coordinator) ForceDeactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.reset()
}

// reset clears session state and emits the deactivation event.
// Callers must hold the mutex.
func (c *Coordinator) reset() {
	c.active = false
	c.pool = nil
	c.selected = 0
	c.ledger.Clear()
	c.initialFurniture = make(map[uint64][]model.Furniture)
	c.emitter.Emit(events.KindDeactivate, c.date)
	c.date = ""
}

// Active reports whether a session is running.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ActiveDate returns the date the session was activated for, or ""
// when inactive.
func (c *Coordinator) ActiveDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Pool returns a snapshot of the pool.  Entries are deep copies so
// presentation layers cannot mutate coordinator state.
func (c *Coordinator) Pool() []model.PoolEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PoolEntry, 0, len(c.pool))
	for _, e := range c.pool {
		out = append(out, e.Clone())
	}
	return out
}

// Selected returns the currently selected reservation, zero when none.
func (c *Coordinator) Selected() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// UndoDepth reports how many operations are currently undoable.
func (c *Coordinator) UndoDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Len()
}

// SelectReservation marks a pool entry as the active one and asks the
// store which available furniture matches its preferences.  Exactly
// one reservation may be selected at a time.
func (c *Coordinator) SelectReservation(ctx context.Context, reservationID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrNotActive
	}
	entry := c.find(reservationID)
	if entry == nil {
		return fmt.Errorf("reservation %d is not in the pool", reservationID)
	}
	c.selected = reservationID
	c.emitter.Emit(events.KindSelectionChange, SelectionChange{ReservationID: reservationID})
	c.requestPreferenceHighlights(ctx, entry)
	return nil
}

// DeselectReservation clears the selection, if any.
func (c *Coordinator) DeselectReservation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == 0 {
		return
	}
	c.selected = 0
	c.emitter.Emit(events.KindSelectionChange, SelectionChange{})
}

// requestPreferenceHighlights fetches preference matches for the
// entry and splits them into the full-match tier (every preference
// code present) and the partial tier (some but not all).  Failures
// degrade to an empty highlight.  Callers must hold the mutex.
func (c *Coordinator) requestPreferenceHighlights(ctx context.Context, entry *model.PoolEntry) {
	hl := Highlight{ReservationID: entry.ReservationID}
	if len(entry.Preferences) > 0 {
		resp, err := c.gw.PreferencesMatch(ctx, c.date, entry.Preferences)
		if err != nil {
			log.Printf("movemode: preferences match for %d: %v", entry.ReservationID, err)
		} else if resp.Error != "" {
			log.Printf("movemode: preferences match for %d: %s", entry.ReservationID, resp.Error)
		} else {
			for _, m := range resp.Furniture {
				id := m.ResolvedID()
				if id == 0 {
					continue
				}
				switch {
				case m.MatchScore >= 1.0:
					hl.FullMatch = append(hl.FullMatch, id)
				case m.MatchScore > 0:
					hl.PartialMatch = append(hl.PartialMatch, id)
				}
			}
		}
	}
	c.emitter.Emit(events.KindFurnitureHighlight, hl)
}

// UnassignFurniture releases furniture from a reservation.  A normal
// click releases the single clicked item; a ctrl-click releases every
// item tied to the reservation on the date (the caller supplies the
// full id list either way).  On success an unassign action is pushed
// onto the ledger and the pool entry is rebuilt from the store, with
// initialFurnitureOverride seeding the entry's original furniture if
// this is its first time in the pool.
func (c *Coordinator) UnassignFurniture(ctx context.Context, reservationID uint64, furnitureIDs []uint64, isCtrlClick bool, initialFurnitureOverride []model.Furniture) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return failure("Move mode not active")
	}
	if len(furnitureIDs) == 0 {
		return failure("no furniture to release")
	}
	resp, err := c.gw.Unassign(ctx, gateway.AssignRequest{
		ReservationID: reservationID,
		FurnitureIDs:  furnitureIDs,
		Date:          c.date,
	})
	if err != nil {
		c.notify.Toast("could not release furniture", events.SeverityError)
		c.emitter.Emit(events.KindError, err.Error())
		return failure("%v", err)
	}
	if resp.Error != "" || !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "release rejected"
		}
		c.notify.Toast(msg, events.SeverityWarning)
		return failure("%s", msg)
	}
	if resp.UnassignedCount > 0 {
		c.ledger.Push(undo.Action{
			Type:          undo.ActionUnassign,
			ReservationID: reservationID,
			FurnitureIDs:  append([]uint64(nil), furnitureIDs...),
			Date:          c.date,
		})
		if err := c.loadReservationToPool(ctx, reservationID, initialFurnitureOverride); err != nil {
			log.Printf("movemode: reload reservation %d after unassign: %v", reservationID, err)
		}
		if isCtrlClick {
			c.notify.Toast(fmt.Sprintf("released all furniture of reservation %d", reservationID), events.SeverityInfo)
		}
	}
	return Result{Success: true, FurnitureIDs: resp.FurnitureIDs, UnassignedCount: resp.UnassignedCount}
}

// AssignFurniture attaches furniture to a reservation.  Business
// failures from the store (capacity exceeded, already taken) surface
// as a warning toast and a failed result; they never throw.
func (c *Coordinator) AssignFurniture(ctx context.Context, reservationID uint64, furnitureIDs []uint64) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return failure("Move mode not active")
	}
	if len(furnitureIDs) == 0 {
		return failure("no furniture to assign")
	}
	resp, err := c.gw.Assign(ctx, gateway.AssignRequest{
		ReservationID: reservationID,
		FurnitureIDs:  furnitureIDs,
		Date:          c.date,
	})
	if err != nil {
		c.notify.Toast("could not assign furniture", events.SeverityError)
		c.emitter.Emit(events.KindError, err.Error())
		return failure("%v", err)
	}
	if resp.Error != "" || !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "assignment rejected"
		}
		c.notify.Toast(msg, events.SeverityWarning)
		return failure("%s", msg)
	}
	assigned := resp.FurnitureIDs
	if len(assigned) == 0 {
		assigned = furnitureIDs
	}
	c.ledger.Push(undo.Action{
		Type:          undo.ActionAssign,
		ReservationID: reservationID,
		FurnitureIDs:  append([]uint64(nil), assigned...),
		Date:          c.date,
	})
	if err := c.loadReservationToPool(ctx, reservationID, nil); err != nil {
		log.Printf("movemode: reload reservation %d after assign: %v", reservationID, err)
	}
	return Result{Success: true, FurnitureIDs: resp.FurnitureIDs}
}

// Undo pops the most recent action and replays it backwards through
// the gateway directly, so no new ledger entry is produced.  On
// failure the action is pushed back and the error surfaced, leaving
// the history intact.
func (c *Coordinator) Undo(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return failure("Move mode not active")
	}
	action, ok := c.ledger.Pop()
	if !ok {
		c.notify.Toast("nothing to undo", events.SeverityInfo)
		return failure("nothing to undo")
	}
	req := gateway.AssignRequest{
		ReservationID: action.ReservationID,
		FurnitureIDs:  action.FurnitureIDs,
		Date:          action.Date,
	}
	var resp *gateway.AssignResponse
	var err error
	switch action.Type.Inverse() {
	case undo.ActionAssign:
		resp, err = c.gw.Assign(ctx, req)
	default:
		resp, err = c.gw.Unassign(ctx, req)
	}
	if err != nil || resp.Error != "" || !resp.Success {
		c.ledger.Push(action)
		msg := "undo failed"
		if err != nil {
			msg = err.Error()
		} else if resp.Error != "" {
			msg = resp.Error
		}
		c.notify.Toast("could not undo last operation", events.SeverityError)
		c.emitter.Emit(events.KindError, msg)
		return failure("%s", msg)
	}
	if err := c.loadReservationToPool(ctx, action.ReservationID, nil); err != nil {
		log.Printf("movemode: reload reservation %d after undo: %v", action.ReservationID, err)
	}
	c.emitter.Emit(events.KindUndo, action)
	return Result{Success: true, FurnitureIDs: action.FurnitureIDs}
}

// LoadReservationToPool refreshes a single reservation's pool entry
// from the store.  Exposed for callers outside the assign/unassign
// flow (initial load, external edits).
func (c *Coordinator) LoadReservationToPool(ctx context.Context, reservationID uint64, initialFurnitureOverride []model.Furniture) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrNotActive
	}
	return c.loadReservationToPool(ctx, reservationID, initialFurnitureOverride)
}

// loadReservationToPool is the reconciliation step run after every
// assign/unassign and during activation.  It re-fetches authoritative
// pool data rather than trusting in-memory deltas, recomputes the
// assigned capacity and membership, and keeps selection and
// highlights consistent.  Callers must hold the mutex.
func (c *Coordinator) loadReservationToPool(ctx context.Context, reservationID uint64, override []model.Furniture) error {
	data, err := c.gw.PoolData(ctx, reservationID, c.date)
	if err != nil {
		c.notify.Toast("could not refresh reservation data", events.SeverityError)
		return err
	}
	if data.Error != "" {
		c.notify.Toast(data.Error, events.SeverityWarning)
		return errors.New(data.Error)
	}

	assigned := 0
	for _, f := range data.OriginalFurniture {
		assigned += f.EffectiveCapacity()
	}
	needed := data.NumPeople
	if needed <= 0 {
		needed = 1
	}

	// Resolve initial furniture: a value captured earlier this
	// session always wins, then the caller's override, then whatever
	// the store reports as currently assigned.  The first two keep
	// "what the guest had before move mode" stable across repeated
	// partial unassign/assign cycles.
	initial, seen := c.initialFurniture[reservationID]
	if !seen {
		if len(override) > 0 {
			initial = append([]model.Furniture(nil), override...)
		} else {
			initial = append([]model.Furniture(nil), data.OriginalFurniture...)
		}
		c.initialFurniture[reservationID] = initial
	}

	entry := &model.PoolEntry{
		ReservationID:    reservationID,
		CustomerName:     data.CustomerName,
		AssignedCount:    assigned,
		TotalNeeded:      needed,
		InitialFurniture: initial,
		Preferences:      data.Preferences,
	}
	complete := entry.IsComplete()

	idx := c.index(reservationID)
	switch {
	case idx >= 0 && complete:
		c.pool = append(c.pool[:idx], c.pool[idx+1:]...)
		if c.selected == reservationID {
			c.selected = 0
			c.emitter.Emit(events.KindSelectionChange, SelectionChange{})
		}
	case idx >= 0:
		c.pool[idx] = entry
	case !complete:
		c.pool = append(c.pool, entry)
		if len(c.pool) == 1 {
			c.selected = reservationID
			c.emitter.Emit(events.KindSelectionChange, SelectionChange{ReservationID: reservationID})
		}
	default:
		// complete and never pooled: nothing to do
	}

	c.emitter.Emit(events.KindPoolUpdate, c.snapshot())
	if c.selected == reservationID && !complete {
		c.requestPreferenceHighlights(ctx, entry)
	}
	return nil
}

// find returns the live pool entry for a reservation, or nil.
// Callers must hold the mutex.
func (c *Coordinator) find(reservationID uint64) *model.PoolEntry {
	if idx := c.index(reservationID); idx >= 0 {
		return c.pool[idx]
	}
	return nil
}

// index returns the pool position of a reservation, or -1.  Callers
// must hold the mutex.
func (c *Coordinator) index(reservationID uint64) int {
	for i, e := range c.pool {
		if e.ReservationID == reservationID {
			return i
		}
	}
	return -1
}

// snapshot copies the pool for event payloads.  Callers must hold the
// mutex.
func (c *Coordinator) snapshot() []model.PoolEntry {
	out := make([]model.PoolEntry, 0, len(c.pool))
	for _, e := range c.pool {
		out = append(out, e.Clone())
	}
	return out
}
