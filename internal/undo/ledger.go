// Package undo keeps the reversible history of move-mode assignment
// operations.  The ledger is a bounded stack: actions are pushed
// after every successful server-side assign/unassign and popped in
// LIFO order by undo.  When the bound is reached the oldest action is
// discarded – operations beyond the bound are not recoverable.
package undo

// DefaultCapacity is the ledger bound used when no explicit capacity
// is configured.
const DefaultCapacity = 20

// ActionType distinguishes the two reversible operations.
type ActionType string

const (
	ActionAssign   ActionType = "assign"
	ActionUnassign ActionType = "unassign"
)

// Inverse returns the opposite action type, used when replaying an
// action backwards.
func (t ActionType) Inverse() ActionType {
	if t == ActionAssign {
		return ActionUnassign
	}
	return ActionAssign
}

// Action is one reversible step: which furniture was assigned to or
// unassigned from which reservation on which date.
type Action struct {
	Type          ActionType
	ReservationID uint64
	FurnitureIDs  []uint64
	Date          string
}

// Ledger is a capacity-bounded LIFO stack of actions.  It is not
// safe for concurrent use; the move-mode coordinator serialises
// access.
type Ledger struct {
	capacity int
	actions  []Action
}

// NewLedger returns a ledger bounded to capacity.  Non-positive
// capacities fall back to DefaultCapacity.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{capacity: capacity}
}

// Push records an action, discarding the oldest one when full.
func (l *Ledger) Push(a Action) {
	if len(l.actions) >= l.capacity {
		l.actions = l.actions[1:]
	}
	l.actions = append(l.actions, a)
}

// Pop removes and returns the most recent action.  The second return
// value is false when the ledger is empty.
func (l *Ledger) Pop() (Action, bool) {
	if len(l.actions) == 0 {
		return Action{}, false
	}
	a := l.actions[len(l.actions)-1]
	l.actions = l.actions[:len(l.actions)-1]
	return a, true
}

// Len reports how many actions are currently recoverable.
func (l *Ledger) Len() int { return len(l.actions) }

// Clear drops all recorded actions.  Called when a move-mode session
// starts or ends.
func (l *Ledger) Clear() { l.actions = l.actions[:0] }
