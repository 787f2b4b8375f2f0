// Package safeguard runs the fixed pipeline of pre-flight business
// checks before a new reservation is submitted: past dates, hotel
// stay range, capacity mismatch, availability, duplicates and
// contiguity, in that order, stopping at the first failure.  The
// checks are advisory UX except for past-date and single-day
// availability; the store remains the final arbiter at creation time.
package safeguard

import (
	"context"
	"log"
	"time"

	"github.com/azulmar/beach-map-service/internal/events"
	"github.com/azulmar/beach-map-service/internal/gateway"
	"github.com/azulmar/beach-map-service/internal/model"
)

// Gateway is the slice of the assignment gateway the orchestrator
// needs.
type Gateway interface {
	CheckAvailability(ctx context.Context, furnitureIDs []uint64, dates []string) (*gateway.AvailabilityResponse, error)
	ValidateContiguity(ctx context.Context, furnitureIDs []uint64, date string) (*gateway.ContiguityResponse, error)
	CheckDuplicate(ctx context.Context, customerID uint64, date string) (*gateway.DuplicateResponse, error)
	CreateReservation(ctx context.Context, req gateway.CreateReservationRequest) (*gateway.CreateReservationResponse, error)
}

// Check codes reported in Result.Blocked and Result.Prompt.
const (
	CheckPastDate        = "past_date"
	CheckHotelStayRange  = "hotel_stay_range"
	CheckCapacityDeficit = "capacity_deficit"
	CheckCapacityExcess  = "capacity_excess"
	CheckAvailability    = "availability"
	CheckDuplicate       = "duplicate"
	CheckContiguity      = "contiguity"
)

// Capacity decisions accepted in Decisions.CapacityAction.
const (
	CapacityKeep   = "keep"   // keep the guest count despite the deficit
	CapacityAdjust = "adjust" // shrink the guest count to the capacity sum
)

// Duplicate decisions accepted in Decisions.DuplicateAction.
const (
	DuplicateProceed = "proceed" // create anyway
	DuplicateView    = "view"    // abandon the form and open the existing one
	DuplicateCancel  = "cancel"  // abort
)

// Request describes a creation attempt as it leaves the form.
type Request struct {
	CustomerID    uint64            `json:"customer_id"`
	CustomerName  string            `json:"customer_name,omitempty"`
	Dates         []string          `json:"dates"`
	Furniture     []model.Furniture `json:"furniture"`
	NumPeople     int               `json:"num_people"`
	Notes         string            `json:"notes,omitempty"`
	Preferences   []string          `json:"preferences,omitempty"`
	ChargeToRoom  bool              `json:"charge_to_room"`
	HotelGuest    bool              `json:"hotel_guest"`
	ArrivalDate   string            `json:"arrival_date,omitempty"`
	DepartureDate string            `json:"departure_date,omitempty"`
}

// Decisions carries the operator's answers to overridable warnings.
// A warning whose decision is absent stops the pipeline with a
// prompt; the frontend re-submits the same request with the decision
// filled in.
type Decisions struct {
	AcceptHotelRange     bool   `json:"accept_hotel_range"`
	CapacityAction       string `json:"capacity_action,omitempty"`
	AcceptExcessCapacity bool   `json:"accept_excess_capacity"`
	DuplicateAction      string `json:"duplicate_action,omitempty"`
	AcceptNonContiguous  bool   `json:"accept_non_contiguous"`
}

// Result is the outcome of the safeguard pipeline or of the full
// creation run.  Exactly one of the terminal fields is meaningful:
// Blocked (hard stop), Prompt (warning awaiting a decision),
// ViewExisting (navigate away), Conflicts (hand off to conflict
// resolution) or Reservation (created).
type Result struct {
	Proceed        bool                  `json:"proceed"`
	Blocked        string                `json:"blocked,omitempty"`
	Prompt         string                `json:"prompt,omitempty"`
	Message        string                `json:"message,omitempty"`
	ViewExisting   uint64                `json:"view_existing,omitempty"`
	Conflicts      []model.ConflictEntry `json:"conflicts,omitempty"`
	AdjustedPeople int                   `json:"adjusted_people,omitempty"`
	Reservation    *model.Reservation    `json:"reservation,omitempty"`
}

func blocked(code, message string) Result {
	return Result{Blocked: code, Message: message}
}

func prompt(code, message string) Result {
	return Result{Prompt: code, Message: message}
}

// Orchestrator owns the pipeline.  The clock is injectable for tests.
type Orchestrator struct {
	gw     Gateway
	notify events.Notifier
	now    func() time.Time
}

// NewOrchestrator wires the pipeline with its gateway and notifier.
func NewOrchestrator(gw Gateway, notify events.Notifier) *Orchestrator {
	if gw == nil || notify == nil {
		panic("nil collaborator passed to NewOrchestrator")
	}
	return &Orchestrator{gw: gw, notify: notify, now: time.Now}
}

// Run executes the safeguard pipeline without creating anything.  It
// returns the first non-proceed result, or a proceeding result whose
// AdjustedPeople reflects a capacity auto-adjustment.
func (o *Orchestrator) Run(ctx context.Context, req Request, dec Decisions) Result {
	if len(req.Dates) == 0 {
		o.notify.Toast("select at least one date", events.SeverityWarning)
		return blocked("no_dates", "no dates selected")
	}
	if len(req.Furniture) == 0 {
		o.notify.Toast("select at least one furniture item", events.SeverityWarning)
		return blocked("no_furniture", "no furniture selected")
	}
	checks := []func(context.Context, *Request, Decisions) Result{
		o.checkPastDate,
		o.checkHotelStayRange,
		o.checkCapacity,
		o.checkAvailability,
		o.checkDuplicate,
		o.checkContiguity,
	}
	adjusted := 0
	for _, check := range checks {
		res := check(ctx, &req, dec)
		if !res.Proceed {
			return res
		}
		if res.AdjustedPeople > 0 {
			adjusted = res.AdjustedPeople
			req.NumPeople = adjusted
		}
	}
	return Result{Proceed: true, AdjustedPeople: adjusted}
}

// Create runs the pipeline and, when every check proceeds, submits
// the reservation.  A store-reported conflict set on a multi-day
// attempt is handed back for conflict resolution; on a single day it
// is a hard block.  The create call itself never fails open.
func (o *Orchestrator) Create(ctx context.Context, req Request, dec Decisions) Result {
	res := o.Run(ctx, req, dec)
	if !res.Proceed {
		return res
	}
	numPeople := req.NumPeople
	if res.AdjustedPeople > 0 {
		numPeople = res.AdjustedPeople
	}
	resp, err := o.gw.CreateReservation(ctx, gateway.CreateReservationRequest{
		CustomerID:   req.CustomerID,
		Dates:        req.Dates,
		NumPeople:    numPeople,
		FurnitureIDs: model.FurnitureIDs(req.Furniture),
		Notes:        req.Notes,
		Preferences:  req.Preferences,
		ChargeToRoom: req.ChargeToRoom,
	})
	if err != nil {
		o.notify.Toast("could not create the reservation", events.SeverityError)
		return blocked("create_failed", err.Error())
	}
	if len(resp.Unavailable) > 0 {
		if len(req.Dates) > 1 {
			return Result{Conflicts: resp.Unavailable, Message: "some furniture is unavailable on part of the range"}
		}
		o.notify.Toast("the selected furniture is no longer available", events.SeverityError)
		return Result{Blocked: CheckAvailability, Message: "furniture unavailable", Conflicts: resp.Unavailable}
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "creation rejected"
		}
		o.notify.Toast(msg, events.SeverityError)
		return blocked("create_failed", msg)
	}
	return Result{Proceed: true, Reservation: resp.Reservation, AdjustedPeople: res.AdjustedPeople}
}

// checkPastDate blocks any date earlier than today.  Hard error, no
// override.
func (o *Orchestrator) checkPastDate(_ context.Context, req *Request, _ Decisions) Result {
	today := o.now().UTC().Format("2006-01-02")
	for _, d := range req.Dates {
		if d < today {
			o.notify.Toast("reservations cannot start in the past", events.SeverityError)
			return blocked(CheckPastDate, "date "+d+" is in the past")
		}
	}
	return Result{Proceed: true}
}

// checkHotelStayRange warns when a hotel guest books outside their
// stay.  Overridable.
func (o *Orchestrator) checkHotelStayRange(_ context.Context, req *Request, dec Decisions) Result {
	if !req.HotelGuest || req.ArrivalDate == "" || req.DepartureDate == "" {
		return Result{Proceed: true}
	}
	for _, d := range req.Dates {
		if d < req.ArrivalDate || d > req.DepartureDate {
			if dec.AcceptHotelRange {
				return Result{Proceed: true}
			}
			return prompt(CheckHotelStayRange, "date "+d+" is outside the guest's hotel stay")
		}
	}
	return Result{Proceed: true}
}

// checkCapacity compares the guest count against the capacity sum of
// the selected furniture.  A deficit may be kept or auto-adjusted
// down; an excess is override-only since shrinking the selection is
// not offered here.
func (o *Orchestrator) checkCapacity(_ context.Context, req *Request, dec Decisions) Result {
	capacity := 0
	for _, f := range req.Furniture {
		capacity += f.EffectiveCapacity()
	}
	switch {
	case req.NumPeople > capacity:
		switch dec.CapacityAction {
		case CapacityKeep:
			return Result{Proceed: true}
		case CapacityAdjust:
			return Result{Proceed: true, AdjustedPeople: capacity}
		default:
			return prompt(CheckCapacityDeficit, "the selection seats fewer guests than the reservation")
		}
	case capacity > req.NumPeople:
		if dec.AcceptExcessCapacity {
			return Result{Proceed: true}
		}
		return prompt(CheckCapacityExcess, "the selection seats more guests than the reservation")
	}
	return Result{Proceed: true}
}

// checkAvailability queries the full furniture × date matrix.  On a
// multi-day attempt any clash hands straight off to conflict
// resolution; a single-day clash is a terminal error.  Network
// failure fails open on multi-day attempts only.
func (o *Orchestrator) checkAvailability(ctx context.Context, req *Request, _ Decisions) Result {
	ids := model.FurnitureIDs(req.Furniture)
	resp, err := o.gw.CheckAvailability(ctx, ids, req.Dates)
	if err != nil {
		if len(req.Dates) == 1 {
			o.notify.Toast("could not verify availability", events.SeverityError)
			return blocked(CheckAvailability, "availability check unreachable")
		}
		log.Printf("safeguard: availability check failed, proceeding: %v", err)
		return Result{Proceed: true}
	}
	if resp.AllAvailable {
		return Result{Proceed: true}
	}
	if len(req.Dates) > 1 {
		return Result{Conflicts: resp.Unavailable, Message: "furniture unavailable on part of the range"}
	}
	o.notify.Toast("the selected furniture is already booked for that day", events.SeverityError)
	return Result{Blocked: CheckAvailability, Message: "furniture unavailable", Conflicts: resp.Unavailable}
}

// checkDuplicate looks for an existing reservation of the same
// customer on any requested date.  The operator may cancel, proceed
// anyway, or navigate to the existing one.  Fails open on network
// error.
func (o *Orchestrator) checkDuplicate(ctx context.Context, req *Request, dec Decisions) Result {
	if req.CustomerID == 0 {
		return Result{Proceed: true}
	}
	for _, d := range req.Dates {
		resp, err := o.gw.CheckDuplicate(ctx, req.CustomerID, d)
		if err != nil {
			log.Printf("safeguard: duplicate check failed, proceeding: %v", err)
			return Result{Proceed: true}
		}
		if !resp.HasDuplicate {
			continue
		}
		switch dec.DuplicateAction {
		case DuplicateProceed:
			return Result{Proceed: true}
		case DuplicateView:
			res := Result{Blocked: CheckDuplicate, Message: "existing reservation opened"}
			if resp.Existing != nil {
				res.ViewExisting = resp.Existing.ID
			}
			return res
		default:
			msg := "the customer already has a reservation on " + d
			return prompt(CheckDuplicate, msg)
		}
	}
	return Result{Proceed: true}
}

// checkContiguity asks the store whether a multi-item selection is
// spatially adjacent.  Single items skip the check; non-contiguous
// selections warn with an override; network failure fails open.
func (o *Orchestrator) checkContiguity(ctx context.Context, req *Request, dec Decisions) Result {
	if len(req.Furniture) <= 1 {
		return Result{Proceed: true}
	}
	ids := model.FurnitureIDs(req.Furniture)
	resp, err := o.gw.ValidateContiguity(ctx, ids, req.Dates[0])
	if err != nil {
		log.Printf("safeguard: contiguity check failed, proceeding: %v", err)
		return Result{Proceed: true}
	}
	if resp.IsContiguous {
		return Result{Proceed: true}
	}
	if dec.AcceptNonContiguous {
		return Result{Proceed: true}
	}
	return prompt(CheckContiguity, "the selected furniture is not contiguous")
}
