// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried in FurnitureEvent.Kind.
const (
	KindAssigned         = "furniture.assigned"
	KindUnassigned       = "furniture.unassigned"
	KindUndone           = "move.undone"
	KindReservationMade  = "reservation.created"
	KindConflictResolved = "conflict.resolved"
)

// FurnitureEvent is published after every successful assignment
// operation.  It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the
// reservation store.
type FurnitureEvent struct {
	Kind          string   `json:"kind"`
	Operator      string   `json:"operator"`
	ReservationID uint64   `json:"reservation_id"`
	CustomerName  string   `json:"customer_name,omitempty"`
	FurnitureIDs  []uint64 `json:"furniture_ids,omitempty"`
	Date          string   `json:"date,omitempty"`
	OccurredAt    string   `json:"occurred_at"`
}
