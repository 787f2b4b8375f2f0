package gateway

import "github.com/azulmar/beach-map-service/internal/model"

// Request and response shapes for the reservation-store endpoints.
// Field names mirror the store's JSON contract exactly; the gateway
// performs no translation beyond decoding.

// UnassignedResponse lists the reservations on a date whose assigned
// furniture does not cover their guest count.
type UnassignedResponse struct {
	ReservationIDs []uint64 `json:"reservation_ids"`
	Error          string   `json:"error,omitempty"`
}

// PoolDataResponse carries the authoritative per-reservation state
// used to (re)build a pool entry: guest count, currently assigned
// furniture and stored preferences.
type PoolDataResponse struct {
	NumPeople         int               `json:"num_people"`
	CustomerName      string            `json:"customer_name,omitempty"`
	OriginalFurniture []model.Furniture `json:"original_furniture"`
	Preferences       []string          `json:"preferences"`
	Notes             string            `json:"notes,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// FurnitureMatch scores one available furniture item against a
// reservation's preferences.  Some store versions key the identifier
// as "id", others as "furniture_id"; ResolvedID papers over both.
type FurnitureMatch struct {
	ID          uint64  `json:"id,omitempty"`
	FurnitureID uint64  `json:"furniture_id,omitempty"`
	MatchScore  float64 `json:"match_score"`
}

// ResolvedID returns whichever identifier field the store populated.
func (m FurnitureMatch) ResolvedID() uint64 {
	if m.ID != 0 {
		return m.ID
	}
	return m.FurnitureID
}

// PreferencesMatchResponse lists available furniture scored against a
// preference set.  A score of 1.0 means every preference code is
// present; anything in (0,1) is a partial match.
type PreferencesMatchResponse struct {
	Furniture []FurnitureMatch `json:"furniture"`
	Error     string           `json:"error,omitempty"`
}

// AssignRequest is the body of both POST /assign and POST /unassign.
type AssignRequest struct {
	ReservationID uint64   `json:"reservation_id"`
	FurnitureIDs  []uint64 `json:"furniture_ids"`
	Date          string   `json:"date"`
}

// AssignResponse reports the outcome of an assign or unassign call.
// UnassignedCount is only populated by /unassign.
type AssignResponse struct {
	Success         bool     `json:"success"`
	FurnitureIDs    []uint64 `json:"furniture_ids,omitempty"`
	UnassignedCount int      `json:"unassigned_count,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// AvailabilityRequest asks whether every furniture item is free on
// every date of a range.
type AvailabilityRequest struct {
	FurnitureIDs []uint64 `json:"furniture_ids"`
	Dates        []string `json:"dates"`
}

// AvailabilityResponse enumerates the (date × furniture) clashes, if
// any, for a requested set.
type AvailabilityResponse struct {
	AllAvailable bool                  `json:"all_available"`
	Unavailable  []model.ConflictEntry `json:"unavailable,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// ContiguityRequest asks whether a multi-item selection is spatially
// adjacent on a given date.
type ContiguityRequest struct {
	FurnitureIDs []uint64 `json:"furniture_ids"`
	Date         string   `json:"date"`
}

// ContiguityResponse reports spatial adjacency of a selection and,
// when not contiguous, which occupied items sit in the gaps.
type ContiguityResponse struct {
	IsContiguous      bool     `json:"is_contiguous"`
	GapCount          int      `json:"gap_count,omitempty"`
	BlockingFurniture []uint64 `json:"blocking_furniture,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// DuplicateResponse reports whether the customer already holds a
// reservation on the queried date.
type DuplicateResponse struct {
	HasDuplicate bool               `json:"has_duplicate"`
	Existing     *model.Reservation `json:"existing_reservation,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// CreateReservationRequest is the body of POST /map/quick-reservation.
// Exactly one of FurnitureIDs (same furniture every day) or
// FurnitureByDate (per-day assignment after conflict resolution) is
// populated.
type CreateReservationRequest struct {
	CustomerID      uint64                `json:"customer_id"`
	Dates           []string              `json:"dates"`
	NumPeople       int                   `json:"num_people"`
	FurnitureIDs    []uint64              `json:"furniture_ids,omitempty"`
	FurnitureByDate model.FurnitureByDate `json:"furniture_by_date,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	Preferences     []string              `json:"preferences,omitempty"`
	ChargeToRoom    bool                  `json:"charge_to_room"`
}

// CreateReservationResponse either carries the created reservation or
// the conflict set that blocked it.
type CreateReservationResponse struct {
	Success     bool                  `json:"success"`
	Reservation *model.Reservation    `json:"reservation,omitempty"`
	Unavailable []model.ConflictEntry `json:"unavailable,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// MoveFurnitureRequest relocates an existing reservation from one
// furniture item to another on a single date.  Used by the quick-swap
// flow during conflict resolution.
type MoveFurnitureRequest struct {
	ReservationID   uint64 `json:"reservation_id"`
	Date            string `json:"date"`
	FromFurnitureID uint64 `json:"from_furniture_id"`
	ToFurnitureID   uint64 `json:"to_furniture_id"`
}

// MoveFurnitureResponse reports the outcome of a quick-swap move.
type MoveFurnitureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
