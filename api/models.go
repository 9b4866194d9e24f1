package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MatheSouzaF/horas-extras/factory"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

// loadRegistry returns the normalized registry of a month. Months without
// stored models get the default registry.
func loadRegistry(ctx context.Context, store overtime.ModelStore, userID, month string) (overtime.Registry, error) {
	models, err := store.GetModels(ctx, userID, month)
	if err != nil {
		return overtime.Registry{}, err
	}
	return overtime.NormalizeRegistry(models), nil
}

// strictMonth reads the month query parameter for write endpoints.
func strictMonth(w http.ResponseWriter, r *http.Request) (string, bool) {
	month, ok := overtime.ParseMonth(r.URL.Query().Get("month"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid month, use YYYY-MM", nil)
	}
	return month, ok
}

func modelsResponse(month string, registry overtime.Registry) ModelsResponse {
	return ModelsResponse{Month: month, Models: factory.ModelDocs(registry)}
}

// =============================================================================
// MODEL HANDLERS
// =============================================================================

// GetModels returns the registry of a month.
func (h *Handler) GetModels(w http.ResponseWriter, r *http.Request) {
	month := overtime.MonthOrCurrent(r.URL.Query().Get("month"), h.now())

	registry, err := loadRegistry(r.Context(), h.Store, userID(r), month)
	if err != nil {
		writeDomainError(w, r, "Failed to load models", err)
		return
	}

	writeJSON(w, http.StatusOK, modelsResponse(month, registry))
}

// SaveModels replaces the registry of a month. The input is normalized
// before it is stored, so the standard model always survives. Stored days
// pointing at a model that did not survive move to the first model in the
// same transaction.
func (h *Handler) SaveModels(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month, ok := strictMonth(w, r)
	if !ok {
		return
	}

	var req SaveModelsRequest
	if !decode(w, r, saveModelsSchema, &req) {
		return
	}

	registry := factory.FromModelDocs(req.Models)
	err := h.Store.WithTx(r.Context(), func(tx overtime.MonthStore) error {
		if err := tx.SaveModels(r.Context(), uid, month, registry.Models()); err != nil {
			return err
		}
		record, err := tx.GetMonth(r.Context(), uid, month)
		if err != nil || record == nil {
			return err
		}
		days, changed := registry.Reconcile(record.Days)
		if !changed {
			return nil
		}
		return tx.ReplaceMonth(r.Context(), uid, month, record.Salary, overtime.StoreDays(days))
	})
	if err != nil {
		writeDomainError(w, r, "Failed to save models", err)
		return
	}

	h.publishModelsChanged(r.Context(), uid, month, registry, "replace")
	writeJSON(w, http.StatusOK, modelsResponse(month, registry))
}

// AddModel appends a flat model to the registry of a month.
func (h *Handler) AddModel(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month, ok := strictMonth(w, r)
	if !ok {
		return
	}

	var req AddModelRequest
	if !decode(w, r, addModelSchema, &req) {
		return
	}

	var added overtime.CalculationModel
	var registry overtime.Registry
	err := h.Store.WithTx(r.Context(), func(tx overtime.MonthStore) error {
		current, err := loadRegistry(r.Context(), tx, uid, month)
		if err != nil {
			return err
		}
		multiplier := overtime.DefaultNewModelMultiplier
		if req.Multiplier != nil {
			multiplier = factory.MultiplierFromFloat(*req.Multiplier)
		}
		registry, added, err = current.Add(req.Name, multiplier)
		if err != nil {
			return err
		}
		return tx.SaveModels(r.Context(), uid, month, registry.Models())
	})
	if err != nil {
		writeDomainError(w, r, "Failed to add model", err)
		return
	}

	h.publishModelsChanged(r.Context(), uid, month, registry, "add")
	writeJSON(w, http.StatusCreated, ModelResponse{
		Model:  factory.ModelDoc(added),
		Models: factory.ModelDocs(registry),
	})
}

// UpdateModel renames and/or reprices a flat model.
func (h *Handler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	id := overtime.ModelID(chi.URLParam(r, "id"))
	month, ok := strictMonth(w, r)
	if !ok {
		return
	}

	var req UpdateModelRequest
	if !decode(w, r, updateModelSchema, &req) {
		return
	}

	var registry overtime.Registry
	err := h.Store.WithTx(r.Context(), func(tx overtime.MonthStore) error {
		current, err := loadRegistry(r.Context(), tx, uid, month)
		if err != nil {
			return err
		}
		if req.Name != nil {
			if current, err = current.Rename(id, *req.Name); err != nil {
				return err
			}
		}
		if req.Multiplier != nil {
			if current, err = current.SetMultiplier(id, factory.MultiplierFromFloat(*req.Multiplier)); err != nil {
				return err
			}
		}
		registry = current
		return tx.SaveModels(r.Context(), uid, month, registry.Models())
	})
	if err != nil {
		writeDomainError(w, r, "Failed to update model", err)
		return
	}

	h.publishModelsChanged(r.Context(), uid, month, registry, "update")
	writeJSON(w, http.StatusOK, modelsResponse(month, registry))
}

// DeleteModel removes a model. Stored days that referenced it move to the
// first remaining model in the same transaction.
func (h *Handler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	id := overtime.ModelID(chi.URLParam(r, "id"))
	month, ok := strictMonth(w, r)
	if !ok {
		return
	}

	var registry overtime.Registry
	err := h.Store.WithTx(r.Context(), func(tx overtime.MonthStore) error {
		current, err := loadRegistry(r.Context(), tx, uid, month)
		if err != nil {
			return err
		}
		record, err := tx.GetMonth(r.Context(), uid, month)
		if err != nil {
			return err
		}

		var days []overtime.DayEntry
		if record != nil {
			days = record.Days
		}
		next, reassigned, err := current.Remove(id, days)
		if err != nil {
			return err
		}
		registry = next

		if err := tx.SaveModels(r.Context(), uid, month, registry.Models()); err != nil {
			return err
		}
		if record == nil {
			return nil
		}
		return tx.ReplaceMonth(r.Context(), uid, month, record.Salary, overtime.StoreDays(reassigned))
	})
	if err != nil {
		writeDomainError(w, r, "Failed to remove model", err)
		return
	}

	h.publishModelsChanged(r.Context(), uid, month, registry, "remove")
	writeJSON(w, http.StatusOK, modelsResponse(month, registry))
}
