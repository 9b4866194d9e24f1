package api

import (
	"fmt"
	"net/http"

	"github.com/MatheSouzaF/horas-extras/factory"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

// GetHours returns the salary and day entries of a month. A missing or
// malformed month falls back to the current one; a month nothing was saved
// for comes back empty.
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month := overtime.MonthOrCurrent(r.URL.Query().Get("month"), h.now())

	record, err := h.Store.GetMonth(r.Context(), uid, month)
	if err != nil {
		writeDomainError(w, r, "Failed to load hours", err)
		return
	}
	if record == nil {
		empty := overtime.EmptyMonth(uid, month)
		record = &empty
	}

	writeJSON(w, http.StatusOK, toHoursDTO(*record))
}

// SaveHours replaces the salary and every day entry of a month.
func (h *Handler) SaveHours(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month, ok := overtime.ParseMonth(r.URL.Query().Get("month"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid month, use YYYY-MM", nil)
		return
	}

	var req SaveHoursRequest
	if !decode(w, r, saveHoursSchema, &req) {
		return
	}

	days := factory.FromDayDocs(req.Days)
	if err := checkDays(days); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day entries", err)
		return
	}

	salary := overtime.SalaryFromFloat(req.Salary)
	if err := h.Store.ReplaceMonth(r.Context(), uid, month, salary, overtime.StoreDays(days)); err != nil {
		writeDomainError(w, r, "Failed to save hours", err)
		return
	}

	h.publishHoursSaved(r.Context(), uid, overtime.MonthRecord{Month: month, Salary: salary, Days: days})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Hours saved"})
}

// checkDays rejects impossible calendar dates and repeated entry ids.
func checkDays(days []overtime.DayEntry) error {
	seen := make(map[string]bool, len(days))
	for i, d := range days {
		if _, err := overtime.ParseDate(d.Date); err != nil {
			return fmt.Errorf("days[%d]: %w", i, err)
		}
		if d.ID == "" {
			continue
		}
		if seen[d.ID] {
			return fmt.Errorf("days[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}
