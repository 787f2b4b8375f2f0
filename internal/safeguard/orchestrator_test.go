package safeguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azulmar/beach-map-service/internal/gateway"
	"github.com/azulmar/beach-map-service/internal/model"
)

// checkStub records which store endpoints the pipeline actually hit,
// so short-circuiting can be asserted.
type checkStub struct {
	calls []string

	availResp *gateway.AvailabilityResponse
	availErr  error

	contigResp *gateway.ContiguityResponse
	contigErr  error

	dupResps map[string]*gateway.DuplicateResponse
	dupErr   error

	createReqs []gateway.CreateReservationRequest
	createResp *gateway.CreateReservationResponse
	createErr  error
}

func (s *checkStub) CheckAvailability(_ context.Context, _ []uint64, _ []string) (*gateway.AvailabilityResponse, error) {
	s.calls = append(s.calls, "availability")
	if s.availErr != nil {
		return nil, s.availErr
	}
	if s.availResp != nil {
		return s.availResp, nil
	}
	return &gateway.AvailabilityResponse{AllAvailable: true}, nil
}

func (s *checkStub) ValidateContiguity(_ context.Context, _ []uint64, _ string) (*gateway.ContiguityResponse, error) {
	s.calls = append(s.calls, "contiguity")
	if s.contigErr != nil {
		return nil, s.contigErr
	}
	if s.contigResp != nil {
		return s.contigResp, nil
	}
	return &gateway.ContiguityResponse{IsContiguous: true}, nil
}

func (s *checkStub) CheckDuplicate(_ context.Context, _ uint64, date string) (*gateway.DuplicateResponse, error) {
	s.calls = append(s.calls, "duplicate:"+date)
	if s.dupErr != nil {
		return nil, s.dupErr
	}
	if resp, ok := s.dupResps[date]; ok {
		return resp, nil
	}
	return &gateway.DuplicateResponse{}, nil
}

func (s *checkStub) CreateReservation(_ context.Context, req gateway.CreateReservationRequest) (*gateway.CreateReservationResponse, error) {
	s.calls = append(s.calls, "create")
	s.createReqs = append(s.createReqs, req)
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResp != nil {
		return s.createResp, nil
	}
	return &gateway.CreateReservationResponse{Success: true, Reservation: &model.Reservation{ID: 900}}, nil
}

type checkToastStub struct {
	messages   []string
	severities []string
}

func (t *checkToastStub) Toast(message, severity string) {
	t.messages = append(t.messages, message)
	t.severities = append(t.severities, severity)
}

func newTestOrchestrator(store *checkStub) (*Orchestrator, *checkToastStub) {
	toasts := &checkToastStub{}
	o := NewOrchestrator(store, toasts)
	o.now = func() time.Time { return time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC) }
	return o, toasts
}

func validRequest() Request {
	return Request{
		CustomerID: 31,
		Dates:      []string{"2026-07-02"},
		Furniture:  []model.Furniture{{ID: 5, Capacity: 2}, {ID: 6, Capacity: 2}},
		NumPeople:  4,
	}
}

func TestRunHappyPath(t *testing.T) {
	store := &checkStub{}
	o, _ := newTestOrchestrator(store)

	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.True(t, res.Proceed)
	require.Equal(t, []string{"availability", "duplicate:2026-07-02", "contiguity"}, store.calls)
}

func TestRunRejectsEmptyInput(t *testing.T) {
	o, _ := newTestOrchestrator(&checkStub{})

	req := validRequest()
	req.Dates = nil
	require.Equal(t, "no_dates", o.Run(context.Background(), req, Decisions{}).Blocked)

	req = validRequest()
	req.Furniture = nil
	require.Equal(t, "no_furniture", o.Run(context.Background(), req, Decisions{}).Blocked)
}

func TestPastDateBlocksBeforeAnyNetworkCall(t *testing.T) {
	store := &checkStub{}
	o, toasts := newTestOrchestrator(store)

	req := validRequest()
	req.Dates = []string{"2026-06-30"}
	res := o.Run(context.Background(), req, Decisions{})

	require.Equal(t, CheckPastDate, res.Blocked)
	require.Empty(t, store.calls)
	require.NotEmpty(t, toasts.messages)
}

func TestHotelStayRangeOverride(t *testing.T) {
	store := &checkStub{}
	o, _ := newTestOrchestrator(store)

	req := validRequest()
	req.HotelGuest = true
	req.ArrivalDate = "2026-07-03"
	req.DepartureDate = "2026-07-10"

	res := o.Run(context.Background(), req, Decisions{})
	require.Equal(t, CheckHotelStayRange, res.Prompt)
	require.Empty(t, store.calls) // stopped before the remote checks

	res = o.Run(context.Background(), req, Decisions{AcceptHotelRange: true})
	require.True(t, res.Proceed)
}

func TestCapacityDeficitDecisions(t *testing.T) {
	o, _ := newTestOrchestrator(&checkStub{})

	req := validRequest()
	req.Furniture = []model.Furniture{{ID: 5, Capacity: 2}}
	req.NumPeople = 4

	res := o.Run(context.Background(), req, Decisions{})
	require.Equal(t, CheckCapacityDeficit, res.Prompt)

	res = o.Run(context.Background(), req, Decisions{CapacityAction: CapacityKeep})
	require.True(t, res.Proceed)
	require.Zero(t, res.AdjustedPeople)

	res = o.Run(context.Background(), req, Decisions{CapacityAction: CapacityAdjust})
	require.True(t, res.Proceed)
	require.Equal(t, 2, res.AdjustedPeople)
}

func TestCapacityExcessOverride(t *testing.T) {
	o, _ := newTestOrchestrator(&checkStub{})

	req := validRequest()
	req.NumPeople = 3 // two items seating 4

	res := o.Run(context.Background(), req, Decisions{})
	require.Equal(t, CheckCapacityExcess, res.Prompt)

	res = o.Run(context.Background(), req, Decisions{AcceptExcessCapacity: true})
	require.True(t, res.Proceed)
}

func TestZeroCapacityCountsAsOneSeat(t *testing.T) {
	o, _ := newTestOrchestrator(&checkStub{})

	req := validRequest()
	req.Furniture = []model.Furniture{{ID: 5, Capacity: 0}}
	req.NumPeople = 1

	res := o.Run(context.Background(), req, Decisions{})
	require.True(t, res.Proceed)
}

func TestAvailabilityClashSingleDayBlocks(t *testing.T) {
	clash := []model.ConflictEntry{{Date: "2026-07-02", FurnitureID: 5, FurnitureNumber: "H-05"}}
	store := &checkStub{availResp: &gateway.AvailabilityResponse{Unavailable: clash}}
	o, _ := newTestOrchestrator(store)

	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.Equal(t, CheckAvailability, res.Blocked)
	require.Equal(t, clash, res.Conflicts)
	// The pipeline stopped: no duplicate or contiguity calls.
	require.Equal(t, []string{"availability"}, store.calls)
}

func TestAvailabilityClashMultiDayHandsOff(t *testing.T) {
	clash := []model.ConflictEntry{{Date: "2026-07-03", FurnitureID: 6, FurnitureNumber: "H-06"}}
	store := &checkStub{availResp: &gateway.AvailabilityResponse{Unavailable: clash}}
	o, _ := newTestOrchestrator(store)

	req := validRequest()
	req.Dates = []string{"2026-07-02", "2026-07-03"}

	res := o.Run(context.Background(), req, Decisions{})
	require.False(t, res.Proceed)
	require.Empty(t, res.Blocked)
	require.Empty(t, res.Prompt)
	require.Equal(t, clash, res.Conflicts)
}

func TestAvailabilityNetworkFailure(t *testing.T) {
	store := &checkStub{availErr: errors.New("timeout")}
	o, _ := newTestOrchestrator(store)

	// Single day: the check is load-bearing, so the attempt blocks.
	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.Equal(t, CheckAvailability, res.Blocked)

	// Multi day: conflict resolution will catch real clashes later, so
	// the pipeline proceeds.
	req := validRequest()
	req.Dates = []string{"2026-07-02", "2026-07-03"}
	res = o.Run(context.Background(), req, Decisions{})
	require.True(t, res.Proceed)
}

func TestDuplicateDecisions(t *testing.T) {
	existing := &model.Reservation{ID: 120, CustomerName: "Ana Torres"}
	store := &checkStub{dupResps: map[string]*gateway.DuplicateResponse{
		"2026-07-02": {HasDuplicate: true, Existing: existing},
	}}
	o, _ := newTestOrchestrator(store)

	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.Equal(t, CheckDuplicate, res.Prompt)

	res = o.Run(context.Background(), validRequest(), Decisions{DuplicateAction: DuplicateView})
	require.Equal(t, CheckDuplicate, res.Blocked)
	require.Equal(t, uint64(120), res.ViewExisting)

	res = o.Run(context.Background(), validRequest(), Decisions{DuplicateAction: DuplicateProceed})
	require.True(t, res.Proceed)
}

func TestDuplicateCheckFailsOpen(t *testing.T) {
	store := &checkStub{dupErr: errors.New("timeout")}
	o, _ := newTestOrchestrator(store)

	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.True(t, res.Proceed)
}

func TestContiguity(t *testing.T) {
	store := &checkStub{contigResp: &gateway.ContiguityResponse{GapCount: 1, BlockingFurniture: []uint64{7}}}
	o, _ := newTestOrchestrator(store)

	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.Equal(t, CheckContiguity, res.Prompt)

	res = o.Run(context.Background(), validRequest(), Decisions{AcceptNonContiguous: true})
	require.True(t, res.Proceed)

	// A single item never reaches the store.
	store.calls = nil
	req := validRequest()
	req.Furniture = req.Furniture[:1]
	req.NumPeople = 2
	res = o.Run(context.Background(), req, Decisions{})
	require.True(t, res.Proceed)
	require.NotContains(t, store.calls, "contiguity")
}

func TestContiguityCheckFailsOpen(t *testing.T) {
	store := &checkStub{contigErr: errors.New("timeout")}
	o, _ := newTestOrchestrator(store)

	res := o.Run(context.Background(), validRequest(), Decisions{})
	require.True(t, res.Proceed)
}

func TestCreateSubmitsAdjustedPeople(t *testing.T) {
	store := &checkStub{}
	o, _ := newTestOrchestrator(store)

	req := validRequest()
	req.Furniture = []model.Furniture{{ID: 5, Capacity: 2}}
	req.NumPeople = 4

	res := o.Create(context.Background(), req, Decisions{CapacityAction: CapacityAdjust})
	require.True(t, res.Proceed)
	require.NotNil(t, res.Reservation)
	require.Len(t, store.createReqs, 1)
	require.Equal(t, 2, store.createReqs[0].NumPeople)
	require.Equal(t, []uint64{5}, store.createReqs[0].FurnitureIDs)
}

func TestCreateNeverFailsOpen(t *testing.T) {
	store := &checkStub{createErr: errors.New("store down")}
	o, toasts := newTestOrchestrator(store)

	res := o.Create(context.Background(), validRequest(), Decisions{})
	require.Equal(t, "create_failed", res.Blocked)
	require.NotEmpty(t, toasts.messages)
}

func TestCreateConflictHandoffOnMultiDay(t *testing.T) {
	clash := []model.ConflictEntry{{Date: "2026-07-03", FurnitureID: 6}}
	store := &checkStub{createResp: &gateway.CreateReservationResponse{Unavailable: clash}}
	o, _ := newTestOrchestrator(store)

	req := validRequest()
	req.Dates = []string{"2026-07-02", "2026-07-03"}
	res := o.Create(context.Background(), req, Decisions{})
	require.False(t, res.Proceed)
	require.Empty(t, res.Blocked)
	require.Equal(t, clash, res.Conflicts)

	// Same conflict on a single-day attempt is terminal.
	res = o.Create(context.Background(), validRequest(), Decisions{})
	require.Equal(t, CheckAvailability, res.Blocked)
}

func TestCreateRejection(t *testing.T) {
	store := &checkStub{createResp: &gateway.CreateReservationResponse{Error: "customer is blocked"}}
	o, _ := newTestOrchestrator(store)

	res := o.Create(context.Background(), validRequest(), Decisions{})
	require.Equal(t, "create_failed", res.Blocked)
	require.Equal(t, "customer is blocked", res.Message)
}
