package handler // handler defines http handlers

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/azulmar/beach-map-service/internal/queue"
	"github.com/azulmar/beach-map-service/internal/repository"
	queue_publisher "github.com/azulmar/beach-map-service/internal/service"
)

// operatorName extracts the acting operator from the context, as set
// by the JWTAuth middleware.  Unauthenticated or malformed contexts
// yield "unknown" rather than an error: audit trails should never
// block the operation they describe.
func operatorName(c echo.Context) string {
	if v := c.Get("operator"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

// recordOperation appends the operation to the MySQL journal and
// publishes the matching audit event.  Both sinks are best effort:
// failures are logged and swallowed so the operator flow is never
// interrupted by observability plumbing.
func recordOperation(ctx context.Context, journal *repository.JournalRepo, kind, operator string, reservationID uint64, furnitureIDs []uint64, date string) {
	if err := journal.Insert(ctx, repository.JournalRecord{
		Operator:      operator,
		Kind:          kind,
		ReservationID: reservationID,
		FurnitureIDs:  furnitureIDs,
		Date:          date,
	}); err != nil && err != repository.ErrJournalDisabled {
		log.Printf("handler: journal insert failed: %v", err)
	}
	if err := queue_publisher.PublishFurnitureEvent(ctx, queue.FurnitureEvent{
		Kind:          kind,
		Operator:      operator,
		ReservationID: reservationID,
		FurnitureIDs:  furnitureIDs,
		Date:          date,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("handler: audit publish failed: %v", err)
	}
}
