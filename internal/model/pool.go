package model

// PoolEntry is a reservation on the active date that does not yet
// have enough furniture assigned to cover its guest count.  Entries
// live in the move-mode pool and are owned exclusively by the
// move-mode coordinator; presentation layers only ever see copies.
//
// Fields:
//  ReservationID    – identity, stable across the session.
//  CustomerName     – display name of the guest holding the booking.
//  AssignedCount    – sum of capacities of currently assigned furniture,
//                     recomputed on every pool refresh.
//  TotalNeeded      – number of guests on the reservation.
//  InitialFurniture – furniture the reservation had the first time it
//                     entered the pool this session; never rewritten
//                     afterwards.  Used for "restore original" and
//                     pool-sizing heuristics.
//  Preferences      – preference codes stored on the reservation.
type PoolEntry struct {
	ReservationID    uint64      `json:"reservation_id"`
	CustomerName     string      `json:"customer_name,omitempty"`
	AssignedCount    int         `json:"assigned_count"`
	TotalNeeded      int         `json:"total_needed"`
	InitialFurniture []Furniture `json:"initial_furniture,omitempty"`
	Preferences      []string    `json:"preferences,omitempty"`
}

// IsComplete reports whether the reservation has enough assigned
// capacity for its guests and therefore no longer belongs in the pool.
func (e PoolEntry) IsComplete() bool {
	return e.AssignedCount >= e.TotalNeeded
}

// Clone returns a deep copy of the entry so callers cannot mutate
// coordinator-owned state through returned references.
func (e PoolEntry) Clone() PoolEntry {
	out := e
	out.InitialFurniture = append([]Furniture(nil), e.InitialFurniture...)
	out.Preferences = append([]string(nil), e.Preferences...)
	return out
}
