package model

// Furniture describes a single reservable item on the beach map
// (hamaca, sunbed, balinese bed...).  Capacity is the number of
// guests the item accommodates; the server may omit it, in which
// case callers must assume a capacity of one.
//
// Fields:
//  ID       – furniture identifier, stable across sessions.
//  Number   – human-visible number painted on the item.
//  Capacity – guests the item seats (0 means "unspecified").
type Furniture struct {
	ID       uint64 `json:"id"`
	Number   string `json:"number"`
	Capacity int    `json:"capacity,omitempty"`
}

// EffectiveCapacity returns the capacity to use in headcount math.
// Items without an explicit capacity count as one guest.
func (f Furniture) EffectiveCapacity() int {
	if f.Capacity <= 0 {
		return 1
	}
	return f.Capacity
}

// FurnitureIDs extracts the identifiers of a furniture slice,
// preserving order.
func FurnitureIDs(items []Furniture) []uint64 {
	ids := make([]uint64, 0, len(items))
	for _, f := range items {
		ids = append(ids, f.ID)
	}
	return ids
}
