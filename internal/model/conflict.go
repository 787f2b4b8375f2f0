package model

// ConflictEntry describes one (date × furniture) unavailability
// reported by the server while attempting to create a reservation.
// The reservation currently occupying the furniture is identified so
// that a "quick swap" can relocate it.
//
// Fields:
//  Date            – day of the clash, formatted YYYY-MM-DD.
//  FurnitureID     – furniture that is already taken.
//  FurnitureNumber – human-visible number of that furniture.
//  ReservationID   – reservation occupying the furniture on that day.
//  CustomerName    – guest holding the occupying reservation.
//  RoomNumber      – hotel room of that guest, when known.
type ConflictEntry struct {
	Date            string `json:"date"`
	FurnitureID     uint64 `json:"furniture_id"`
	FurnitureNumber string `json:"furniture_number,omitempty"`
	ReservationID   uint64 `json:"reservation_id,omitempty"`
	CustomerName    string `json:"customer_name,omitempty"`
	RoomNumber      string `json:"room_number,omitempty"`
}

// ConflictResolutionContext is the transient view of a single date
// being resolved: its outstanding conflicts, the furniture picked for
// all dates originally, and how many items must be selected for this
// date.  Discarded on cancel or confirm.
type ConflictResolutionContext struct {
	Date              string          `json:"date"`
	Conflicts         []ConflictEntry `json:"conflicts"`
	OriginalSelection []uint64        `json:"original_selection"`
	RequiredCount     int             `json:"required_count"`
}

// FurnitureByDate maps each day of a reservation's range to the
// furniture assigned for that day.  Built incrementally during
// conflict resolution; every date of the range must hold a non-empty
// slice before resubmission is allowed.
type FurnitureByDate map[string][]uint64
