package api

import (
	"context"
	"net/http"

	"github.com/MatheSouzaF/horas-extras/overtime"
)

// GetReport values a stored month. Days whose model is missing from the
// registry are valued with the fallback model, the same way the client
// repairs them on load.
//
// Query parameters:
//   - month: YYYY-MM, current month when absent or malformed
//   - overnight: "wrap" (default) or "same-day"
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month := overtime.MonthOrCurrent(r.URL.Query().Get("month"), h.now())

	engine := overtime.DefaultEngine
	if raw := r.URL.Query().Get("overnight"); raw != "" {
		policy, ok := overtime.ParseOvernightPolicy(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid overnight policy, use wrap or same-day", nil)
			return
		}
		engine = overtime.Engine{Overnight: policy}
	}

	record, registry, err := h.loadMonth(r.Context(), uid, month)
	if err != nil {
		writeDomainError(w, r, "Failed to build report", err)
		return
	}

	record.Days, _ = registry.Reconcile(record.Days)
	writeJSON(w, http.StatusOK, toReportDTO(engine.BuildReport(record, registry)))
}

// loadMonth reads the record and registry of a month from one snapshot.
func (h *Handler) loadMonth(ctx context.Context, uid, month string) (overtime.MonthRecord, overtime.Registry, error) {
	record := overtime.EmptyMonth(uid, month)
	var registry overtime.Registry

	err := h.Store.WithTx(ctx, func(tx overtime.MonthStore) error {
		stored, err := tx.GetMonth(ctx, uid, month)
		if err != nil {
			return err
		}
		if stored != nil {
			record = *stored
		}
		registry, err = loadRegistry(ctx, tx, uid, month)
		return err
	})
	return record, registry, err
}
