package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/azulmar/beach-map-service/internal/conflict"
	"github.com/azulmar/beach-map-service/internal/events"
	"github.com/azulmar/beach-map-service/internal/model"
	"github.com/azulmar/beach-map-service/internal/queue"
	"github.com/azulmar/beach-map-service/internal/repository"
	"github.com/azulmar/beach-map-service/internal/safeguard"
)

// ReservationHandler runs the creation flow: safeguard pipeline,
// submission, and the conflict-resolution loop for multi-day clashes.
// Conflict sessions survive across requests in the registry, keyed by
// an opaque id handed to the frontend.
type ReservationHandler struct {
	Orchestrator *safeguard.Orchestrator
	Gateway      conflict.Gateway
	Sessions     *conflict.Registry
	Emitter      *events.Emitter
	Notifier     events.Notifier
	Journal      *repository.JournalRepo
}

// NewReservationHandler constructs a ReservationHandler.  All
// collaborators except the journal must be non-nil.
func NewReservationHandler(orch *safeguard.Orchestrator, gw conflict.Gateway, sessions *conflict.Registry, emitter *events.Emitter, notifier events.Notifier, journal *repository.JournalRepo) *ReservationHandler {
	if orch == nil || gw == nil || sessions == nil || emitter == nil || notifier == nil {
		panic("nil collaborator passed to NewReservationHandler")
	}
	return &ReservationHandler{
		Orchestrator: orch,
		Gateway:      gw,
		Sessions:     sessions,
		Emitter:      emitter,
		Notifier:     notifier,
		Journal:      journal,
	}
}

// createBody is the request body of POST /v1/reservations: the form
// fields plus the operator's answers to any safeguard prompts from a
// previous attempt.
type createBody struct {
	safeguard.Request
	Decisions safeguard.Decisions `json:"decisions"`
}

// Create handles POST /v1/reservations.  Outcomes map to status
// codes: 201 created, 409 with a prompt code when a safeguard needs a
// decision, 409 with conflicts and a session id when multi-day
// resolution starts, 422 when hard-blocked.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body createBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	res := h.Orchestrator.Create(ctx, body.Request, body.Decisions)
	switch {
	case res.Proceed:
		var reservationID uint64
		if res.Reservation != nil {
			reservationID = res.Reservation.ID
		}
		recordOperation(ctx, h.Journal, queue.KindReservationMade, operatorName(c), reservationID, model.FurnitureIDs(body.Furniture), firstDate(body.Dates))
		return c.JSON(http.StatusCreated, res)
	case len(res.Conflicts) > 0 && res.Blocked == "":
		// Multi-day clash: open a resolution session seeded with the
		// snapshot taken right now, before the form can be cleared.
		session := conflict.NewSession(h.Gateway, h.Emitter, h.Notifier,
			body.Dates, model.FurnitureIDs(body.Furniture), res.Conflicts,
			model.Snapshot{
				CustomerID:   body.CustomerID,
				CustomerName: body.CustomerName,
				NumPeople:    body.NumPeople,
				Notes:        body.Notes,
				Preferences:  body.Preferences,
				ChargeToRoom: body.ChargeToRoom,
			})
		id, err := h.Sessions.Add(session)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to open conflict session"})
		}
		return c.JSON(http.StatusConflict, echo.Map{
			"session_id": id,
			"conflicts":  res.Conflicts,
			"required":   session.RequiredCount(),
			"unresolved": session.UnresolvedDates(),
		})
	case res.Prompt != "":
		return c.JSON(http.StatusConflict, res)
	default:
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
}

// ConflictContext handles GET /v1/conflicts/:id?date=.  It returns
// the per-date resolution view.
func (h *ReservationHandler) ConflictContext(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conflict session not found"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"context":    session.Context(date),
		"unresolved": session.UnresolvedDates(),
		"complete":   session.Complete(),
	})
}

// ConflictSelect handles POST /v1/conflicts/:id/select.  It stores
// the in-progress picks for a date and confirms them when the count
// matches.
func (h *ReservationHandler) ConflictSelect(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conflict session not found"})
	}
	var body struct {
		Date         string   `json:"date"`
		FurnitureIDs []uint64 `json:"furniture_ids"`
		Confirm      bool     `json:"confirm"`
	}
	if err := c.Bind(&body); err != nil || body.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	if err := session.SetSelection(body.Date, body.FurnitureIDs); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	if body.Confirm {
		if err := session.Confirm(body.Date); err != nil {
			if errors.Is(err, conflict.ErrWrongCount) {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error":    "wrong selection count",
					"required": session.RequiredCount(),
				})
			}
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"can_confirm": session.CanConfirm(body.Date),
		"unresolved":  session.UnresolvedDates(),
		"complete":    session.Complete(),
	})
}

// ConflictRestore handles POST /v1/conflicts/:id/restore.  It reverts
// a date's card and cancels any pending swap on it.
func (h *ReservationHandler) ConflictRestore(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conflict session not found"})
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := c.Bind(&body); err != nil || body.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	session.Restore(body.Date)
	return c.JSON(http.StatusOK, echo.Map{
		"unresolved": session.UnresolvedDates(),
		"complete":   session.Complete(),
	})
}

// ConflictQuickSwap handles POST /v1/conflicts/:id/quick-swap.  The
// first call (with from_furniture_id only) enters destination-picking
// mode; the second (with to_furniture_id) performs the move.  The
// frontend reports whether the destination is occupied so obviously
// bad picks fail without a round-trip to the store.
func (h *ReservationHandler) ConflictQuickSwap(c echo.Context) error {
	session, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conflict session not found"})
	}
	var body struct {
		Date            string `json:"date"`
		FromFurnitureID uint64 `json:"from_furniture_id"`
		ToFurnitureID   uint64 `json:"to_furniture_id"`
		ToOccupied      bool   `json:"to_occupied"`
		Cancel          bool   `json:"cancel"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	switch {
	case body.Cancel:
		session.CancelSwap()
	case body.ToFurnitureID == 0:
		if body.Date == "" || body.FromFurnitureID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and from_furniture_id are required"})
		}
		if err := session.BeginSwap(body.Date, body.FromFurnitureID); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
	default:
		if err := session.SwapTo(ctx, body.ToFurnitureID, body.ToOccupied); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		recordOperation(ctx, h.Journal, queue.KindConflictResolved, operatorName(c), 0, []uint64{body.FromFurnitureID, body.ToFurnitureID}, body.Date)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"unresolved": session.UnresolvedDates(),
		"complete":   session.Complete(),
	})
}

// ConflictRetry handles POST /v1/conflicts/:id/retry.  When every
// date is resolved it resubmits the creation; a fresh conflict set
// keeps the session open, success discards it.
func (h *ReservationHandler) ConflictRetry(c echo.Context) error {
	id := c.Param("id")
	session, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conflict session not found"})
	}
	ctx := c.Request().Context()
	resp, err := session.Retry(ctx)
	if err != nil {
		if errors.Is(err, conflict.ErrIncomplete) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":      "not every date is resolved",
				"unresolved": session.UnresolvedDates(),
			})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	if len(resp.Unavailable) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"session_id": id,
			"conflicts":  resp.Unavailable,
			"unresolved": session.UnresolvedDates(),
		})
	}
	if !resp.Success {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": resp.Error})
	}
	h.Sessions.Remove(id)
	var reservationID uint64
	if resp.Reservation != nil {
		reservationID = resp.Reservation.ID
	}
	recordOperation(ctx, h.Journal, queue.KindReservationMade, operatorName(c), reservationID, nil, "")
	return c.JSON(http.StatusCreated, echo.Map{"reservation": resp.Reservation})
}

// ConflictCancel handles DELETE /v1/conflicts/:id.  All resolution
// progress is discarded.
func (h *ReservationHandler) ConflictCancel(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.Sessions.Get(id); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conflict session not found"})
	}
	h.Sessions.Remove(id)
	return c.NoContent(http.StatusNoContent)
}

// ListJournal handles GET /v1/journal?limit=.  It lists the most
// recent operations recorded by this service.
func (h *ReservationHandler) ListJournal(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	records, err := h.Journal.ListRecent(c.Request().Context(), limit)
	if err != nil {
		if errors.Is(err, repository.ErrJournalDisabled) {
			return c.JSON(http.StatusOK, echo.Map{"items": []repository.JournalRecord{}, "disabled": true})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load journal"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": records})
}

// session resolves the :id path parameter into a live conflict
// session.
func (h *ReservationHandler) session(c echo.Context) (*conflict.Session, error) {
	return h.Sessions.Get(c.Param("id"))
}

// firstDate returns the first date of a range, or "" for an empty
// one; used for journal records of whole-range operations.
func firstDate(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	return dates[0]
}
