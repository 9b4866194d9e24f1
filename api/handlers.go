/*
handlers.go - HTTP API handlers for the overtime service

PURPOSE:
  Exposes the overtime engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine, the credential service
  and the stores.

ENDPOINTS:
  Service:
    GET    /                   Liveness banner
    GET    /health             Health check (pings the database)

  Auth (auth.go):
    POST   /auth/register      Create account
    POST   /auth/login         Open a device session
    POST   /auth/refresh       Rotate the refresh token
    POST   /auth/logout        Revoke one session
    POST   /auth/logout-all    Revoke every session (bearer)
    GET    /auth/me            Current user (bearer)

  Hours (hours.go, bearer):
    GET    /hours?month=       Month record, empty when absent
    PUT    /hours?month=       Replace salary and day entries

  Models (models.go, bearer):
    GET    /models?month=      Normalized registry
    PUT    /models?month=      Replace registry
    POST   /models?month=      Add a flat model
    PATCH  /models/{id}        Rename or reprice
    DELETE /models/{id}        Remove, reassigning stored days

  Report (report.go, bearer):
    GET    /report?month=&overnight=

REQUEST FLOW:
  1. Authenticate (RequireAuth puts the claims in the context)
  2. Validate the body against its JSON Schema
  3. Load a snapshot from the store, run the pure engine functions
  4. Write the result back, publish a change event
  5. Serialize the response

ERROR HANDLING:
  Errors are returned as JSON {"error","code","details"}:
  - 400: Schema violations, bad month keys, rejected model mutations
  - 401: Missing, expired or revoked tokens
  - 404: Unknown model or user
  - 409: Duplicate email
  - 500: Internal errors (details logged, not returned)

SEE ALSO:
  - dto.go: Request/response data structures
  - errors.go: Status mapping
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MatheSouzaF/horas-extras/auth"
	"github.com/MatheSouzaF/horas-extras/events"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

// AppName is reported by GET /.
const AppName = "horas-extras"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  overtime.TxMonthStore
	Auth   *auth.Service
	Events events.Publisher

	now func() time.Time
}

// NewHandler creates a handler. A nil publisher drops events.
func NewHandler(store overtime.TxMonthStore, authService *auth.Service, publisher events.Publisher) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handler{
		Store:  store,
		Auth:   authService,
		Events: publisher,
		now:    time.Now,
	}
}

// WithClock returns a copy of the handler that reads time from now. The
// current month and event timestamps come from this clock.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	cp := *h
	cp.now = now
	return &cp
}

// =============================================================================
// SERVICE ENDPOINTS
// =============================================================================

// Root reports that the API is online.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"online": true, "app": AppName})
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health checks the database when the store supports it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "Health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EVENTS
// =============================================================================

// publishHoursSaved notifies other devices. Broker failures are logged; the
// write already succeeded.
func (h *Handler) publishHoursSaved(ctx context.Context, userID string, record overtime.MonthRecord) {
	msg := events.HoursSaved{
		UserID:  userID,
		Month:   record.Month,
		Days:    len(record.Days),
		Salary:  record.Salary.String(),
		SavedAt: h.now().UTC(),
	}
	if err := h.Events.PublishHoursSaved(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish hours saved event",
			"user_id", userID,
			"month", record.Month,
			"error", err)
	}
}

func (h *Handler) publishModelsChanged(ctx context.Context, userID, month string, registry overtime.Registry, reason string) {
	msg := events.ModelsChanged{
		UserID:    userID,
		Month:     month,
		Models:    registry.Len(),
		Reason:    reason,
		ChangedAt: h.now().UTC(),
	}
	if err := h.Events.PublishModelsChanged(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish models changed event",
			"user_id", userID,
			"month", month,
			"reason", reason,
			"error", err)
	}
}
