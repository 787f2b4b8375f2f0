package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/azulmar/beach-map-service/internal/handler"    // import the handlers that implement business logic
	"github.com/azulmar/beach-map-service/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check, used by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the operator login endpoint.  Login lives
// under /v1/auth and is the only route reachable without a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
}

// RegisterMap registers all map-facade routes: the move-mode surface,
// the creation flow with its conflict-resolution loop, and the
// operation journal.  Every route requires a valid operator token.
func RegisterMap(e *echo.Echo, m *handler.MoveModeHandler, r *handler.ReservationHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("OPERATOR"))
	for _, mw := range extra {
		g.Use(mw)
	}

	// Move mode: session control, pool inspection and the
	// assignment operations with their undo.
	g.POST("/move-mode/activate", m.Activate)
	g.POST("/move-mode/deactivate", m.Deactivate)
	g.GET("/move-mode/pool", m.Pool)
	g.POST("/move-mode/select", m.Select)
	g.POST("/move-mode/assign", m.Assign)
	g.POST("/move-mode/unassign", m.Unassign)
	g.POST("/move-mode/undo", m.Undo)

	// Creation flow.  A 409 response from Create either carries a
	// safeguard prompt (re-submit with a decision) or opens a
	// conflict session addressed by the routes below.
	g.POST("/reservations", r.Create)
	g.GET("/conflicts/:id", r.ConflictContext)
	g.POST("/conflicts/:id/select", r.ConflictSelect)
	g.POST("/conflicts/:id/restore", r.ConflictRestore)
	g.POST("/conflicts/:id/quick-swap", r.ConflictQuickSwap)
	g.POST("/conflicts/:id/retry", r.ConflictRetry)
	g.DELETE("/conflicts/:id", r.ConflictCancel)

	// Operation journal for operator accountability.
	g.GET("/journal", r.ListJournal)
}
