package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/azulmar/beach-map-service/internal/model"
	"github.com/azulmar/beach-map-service/internal/movemode"
	"github.com/azulmar/beach-map-service/internal/queue"
	"github.com/azulmar/beach-map-service/internal/repository"
)

// MoveModeHandler exposes the move-mode coordinator to the map
// frontend.  The coordinator owns all session state; the handler only
// translates HTTP to coordinator calls and records successful
// operations in the journal and the audit queue.
type MoveModeHandler struct {
	Coordinator *movemode.Coordinator
	Journal     *repository.JournalRepo
}

// NewMoveModeHandler constructs a MoveModeHandler.  The coordinator
// must be non-nil; the journal may be the disabled variant.
func NewMoveModeHandler(coordinator *movemode.Coordinator, journal *repository.JournalRepo) *MoveModeHandler {
	if coordinator == nil {
		panic("nil coordinator passed to NewMoveModeHandler")
	}
	return &MoveModeHandler{Coordinator: coordinator, Journal: journal}
}

// Activate handles POST /v1/move-mode/activate.  The body must carry
// the map date; activating while already active is a no-op.
func (h *MoveModeHandler) Activate(c echo.Context) error {
	var body struct {
		Date string `json:"date"`
	}
	if err := c.Bind(&body); err != nil || body.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	if err := h.Coordinator.Activate(c.Request().Context(), body.Date); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not load unassigned reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"active": true,
		"pool":   h.Coordinator.Pool(),
	})
}

// Deactivate handles POST /v1/move-mode/deactivate.  Without force it
// is refused while any pool entry is incomplete.
func (h *MoveModeHandler) Deactivate(c echo.Context) error {
	var body struct {
		Force bool `json:"force"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Force {
		h.Coordinator.ForceDeactivate()
		return c.JSON(http.StatusOK, echo.Map{"active": false})
	}
	if !h.Coordinator.Deactivate() {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "pool has unresolved reservations",
			"pool":  h.Coordinator.Pool(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"active": false})
}

// Pool handles GET /v1/move-mode/pool.  It returns a snapshot of the
// pool plus session state.
func (h *MoveModeHandler) Pool(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"active":     h.Coordinator.Active(),
		"date":       h.Coordinator.ActiveDate(),
		"selected":   h.Coordinator.Selected(),
		"undo_depth": h.Coordinator.UndoDepth(),
		"pool":       h.Coordinator.Pool(),
	})
}

// Select handles POST /v1/move-mode/select.  A zero reservation id
// clears the selection.
func (h *MoveModeHandler) Select(c echo.Context) error {
	var body struct {
		ReservationID uint64 `json:"reservation_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == 0 {
		h.Coordinator.DeselectReservation()
		return c.JSON(http.StatusOK, echo.Map{"selected": uint64(0)})
	}
	if err := h.Coordinator.SelectReservation(c.Request().Context(), body.ReservationID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"selected": body.ReservationID})
}

// Assign handles POST /v1/move-mode/assign.
func (h *MoveModeHandler) Assign(c echo.Context) error {
	var body struct {
		ReservationID uint64   `json:"reservation_id"`
		FurnitureIDs  []uint64 `json:"furniture_ids"`
	}
	if err := c.Bind(&body); err != nil || body.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	ctx := c.Request().Context()
	res := h.Coordinator.AssignFurniture(ctx, body.ReservationID, body.FurnitureIDs)
	if !res.Success {
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	recordOperation(ctx, h.Journal, queue.KindAssigned, operatorName(c), body.ReservationID, body.FurnitureIDs, h.Coordinator.ActiveDate())
	return c.JSON(http.StatusOK, echo.Map{"result": res, "pool": h.Coordinator.Pool()})
}

// Unassign handles POST /v1/move-mode/unassign.  ctrl_click marks the
// release-all gesture; the frontend supplies the full id list either
// way.
func (h *MoveModeHandler) Unassign(c echo.Context) error {
	var body struct {
		ReservationID    uint64            `json:"reservation_id"`
		FurnitureIDs     []uint64          `json:"furniture_ids"`
		CtrlClick        bool              `json:"ctrl_click"`
		InitialFurniture []model.Furniture `json:"initial_furniture,omitempty"`
	}
	if err := c.Bind(&body); err != nil || body.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	ctx := c.Request().Context()
	res := h.Coordinator.UnassignFurniture(ctx, body.ReservationID, body.FurnitureIDs, body.CtrlClick, body.InitialFurniture)
	if !res.Success {
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	if res.UnassignedCount > 0 {
		recordOperation(ctx, h.Journal, queue.KindUnassigned, operatorName(c), body.ReservationID, body.FurnitureIDs, h.Coordinator.ActiveDate())
	}
	return c.JSON(http.StatusOK, echo.Map{"result": res, "pool": h.Coordinator.Pool()})
}

// Undo handles POST /v1/move-mode/undo.
func (h *MoveModeHandler) Undo(c echo.Context) error {
	ctx := c.Request().Context()
	res := h.Coordinator.Undo(ctx)
	if !res.Success {
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	recordOperation(ctx, h.Journal, queue.KindUndone, operatorName(c), 0, res.FurnitureIDs, h.Coordinator.ActiveDate())
	return c.JSON(http.StatusOK, echo.Map{"result": res, "pool": h.Coordinator.Pool()})
}
