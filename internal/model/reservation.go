package model

// Reservation is the summary the reservation store returns after a
// successful creation or lookup.  The service never persists these
// itself; the store remains authoritative.
type Reservation struct {
	ID           uint64   `json:"id"`
	CustomerID   uint64   `json:"customer_id"`
	CustomerName string   `json:"customer_name,omitempty"`
	Dates        []string `json:"dates,omitempty"`
	NumPeople    int      `json:"num_people"`
	FurnitureIDs []uint64 `json:"furniture_ids,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	RoomNumber   string   `json:"room_number,omitempty"`
}

// Snapshot captures the customer details of a creation attempt at the
// moment a conflict is first detected.  The retry after conflict
// resolution is built from the snapshot rather than the live form,
// which intervening UI state may already have cleared.
type Snapshot struct {
	CustomerID   uint64   `json:"customer_id"`
	CustomerName string   `json:"customer_name,omitempty"`
	NumPeople    int      `json:"num_people"`
	Notes        string   `json:"notes,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
	ChargeToRoom bool     `json:"charge_to_room"`
}
