/*
model.go - Calculation models and the model registry

PURPOSE:
  A calculation model is a named pay multiplier applied to the base hourly
  rate. One model, the standard model, is privileged: it is always present,
  always first, cannot be edited, and is valued with the minute-level
  night/weekend split instead of a flat multiplier.

HOW IT WORKS:
  1. Stored models are passed through NormalizeRegistry once, at the load
     boundary. The result is a validated Registry value.
  2. Valuation looks models up by id and dispatches on Kind, never on the id.
  3. Mutations return a new Registry; the receiver is never modified.

CASCADING REMOVAL:
  Removing a model that day entries still reference reassigns those entries
  to the first remaining model in the same call, so no entry is left pointing
  at a model that no longer exists.

SEE ALSO:
  - valuation.go: Kind-based dispatch
  - factory/model.go: JSON/YAML documents to Registry
*/
package overtime

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATION MODEL
// =============================================================================

// ModelID identifies a calculation model.
type ModelID string

// ModelKind tags how a model is valued.
type ModelKind int

const (
	// KindFlat multiplies every worked hour by the model's multiplier.
	KindFlat ModelKind = iota
	// KindStandard runs the night/weekend split with the multiplier as the
	// daytime weekday rate.
	KindStandard
)

func (k ModelKind) String() string {
	if k == KindStandard {
		return "standard"
	}
	return "flat"
}

// CalculationModel is a named pay-rate multiplier.
type CalculationModel struct {
	ID         ModelID
	Name       string
	Kind       ModelKind
	Multiplier decimal.Decimal
}

// IsStandard reports whether the model is the standard model.
func (m CalculationModel) IsStandard() bool { return m.Kind == KindStandard }

const (
	StandardModelID   ModelID = "default-standard"
	StandardModelName         = "CLT Padrão"

	DoubleModelID   ModelID = "default-100"
	DoubleModelName         = "Hora Extra 100%"
)

var (
	// StandardMultiplier is the daytime weekday rate of the standard model.
	StandardMultiplier = decimal.NewFromFloat(1.5)

	// PremiumMultiplier applies to night minutes and weekend days under the
	// standard model.
	PremiumMultiplier = decimal.NewFromInt(2)

	// DefaultNewModelMultiplier is used by Add when no multiplier is given.
	DefaultNewModelMultiplier = decimal.NewFromFloat(1.5)

	one = decimal.NewFromInt(1)
)

// StandardModel returns the canonical standard model.
func StandardModel() CalculationModel {
	return CalculationModel{
		ID:         StandardModelID,
		Name:       StandardModelName,
		Kind:       KindStandard,
		Multiplier: StandardMultiplier,
	}
}

// FlatModel builds a flat-multiplier model.
func FlatModel(id ModelID, name string, multiplier decimal.Decimal) CalculationModel {
	return CalculationModel{ID: id, Name: name, Kind: KindFlat, Multiplier: multiplier}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is an ordered, validated set of calculation models. The zero
// value is empty; build one with NormalizeRegistry or DefaultRegistry.
type Registry struct {
	models []CalculationModel
	index  map[ModelID]int
}

// DefaultRegistry returns the standard model followed by a flat 2x model.
func DefaultRegistry() Registry {
	return newRegistry([]CalculationModel{
		StandardModel(),
		FlatModel(DoubleModelID, DoubleModelName, decimal.NewFromInt(2)),
	})
}

// NormalizeRegistry validates stored models into a Registry:
//   - entries with a blank id or name are dropped, names are trimmed
//   - multipliers below 1 become 1
//   - duplicate ids keep the first occurrence
//   - whatever was stored under the standard id is replaced by the canonical
//     standard model, which is always placed first
//
// If nothing usable remains the default registry is returned. Applying it to
// its own output is a no-op.
func NormalizeRegistry(models []CalculationModel) Registry {
	seen := make(map[ModelID]bool, len(models))
	normalized := make([]CalculationModel, 0, len(models)+1)
	normalized = append(normalized, StandardModel())
	seen[StandardModelID] = true

	usable := 0
	for _, m := range models {
		id := ModelID(strings.TrimSpace(string(m.ID)))
		name := strings.TrimSpace(m.Name)
		if id == "" || name == "" {
			continue
		}
		usable++
		if seen[id] {
			continue
		}
		seen[id] = true

		multiplier := m.Multiplier
		if multiplier.LessThan(one) {
			multiplier = one
		}
		normalized = append(normalized, FlatModel(id, name, multiplier))
	}

	if usable == 0 {
		return DefaultRegistry()
	}
	return newRegistry(normalized)
}

func newRegistry(models []CalculationModel) Registry {
	index := make(map[ModelID]int, len(models))
	for i, m := range models {
		index[m.ID] = i
	}
	return Registry{models: models, index: index}
}

// Lookup returns the model with the given id. A miss is not an error.
func (r Registry) Lookup(id ModelID) (CalculationModel, bool) {
	i, ok := r.index[id]
	if !ok {
		return CalculationModel{}, false
	}
	return r.models[i], true
}

// Len returns the number of models.
func (r Registry) Len() int { return len(r.models) }

// Models returns a copy of the models in order.
func (r Registry) Models() []CalculationModel {
	out := make([]CalculationModel, len(r.models))
	copy(out, r.models)
	return out
}

// Fallback returns the first model, used for unresolved references.
func (r Registry) Fallback() (CalculationModel, bool) {
	if len(r.models) == 0 {
		return CalculationModel{}, false
	}
	return r.models[0], true
}

// =============================================================================
// MUTATIONS - Each returns a new Registry
// =============================================================================

// Add appends a flat model with a generated id. A blank name becomes
// "Modelo N"; a zero multiplier becomes DefaultNewModelMultiplier.
func (r Registry) Add(name string, multiplier decimal.Decimal) (Registry, CalculationModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Modelo %d", len(r.models)+1)
	}
	if multiplier.IsZero() {
		multiplier = DefaultNewModelMultiplier
	}
	if multiplier.LessThan(one) {
		return r, CalculationModel{}, ErrInvalidMultiplier
	}

	model := FlatModel(ModelID(uuid.NewString()), name, multiplier)
	models := append(r.Models(), model)
	return newRegistry(models), model, nil
}

// Rename changes a flat model's name.
func (r Registry) Rename(id ModelID, name string) (Registry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return r, ErrInvalidModelName
	}
	return r.update(id, func(m *CalculationModel) { m.Name = name })
}

// SetMultiplier changes a flat model's multiplier.
func (r Registry) SetMultiplier(id ModelID, multiplier decimal.Decimal) (Registry, error) {
	if multiplier.LessThan(one) {
		return r, ErrInvalidMultiplier
	}
	return r.update(id, func(m *CalculationModel) { m.Multiplier = multiplier })
}

func (r Registry) update(id ModelID, fn func(*CalculationModel)) (Registry, error) {
	i, ok := r.index[id]
	if !ok {
		return r, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	if r.models[i].IsStandard() {
		return r, ErrStandardModelLocked
	}
	models := r.Models()
	fn(&models[i])
	return newRegistry(models), nil
}

// Remove deletes a model and reassigns every day referencing it to the first
// remaining model. The returned days are a new slice; the input is untouched.
func (r Registry) Remove(id ModelID, days []DayEntry) (Registry, []DayEntry, error) {
	i, ok := r.index[id]
	if !ok {
		return r, days, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	if r.models[i].IsStandard() {
		return r, days, ErrStandardModelLocked
	}
	if len(r.models) <= 1 {
		return r, days, ErrLastModel
	}

	models := make([]CalculationModel, 0, len(r.models)-1)
	models = append(models, r.models[:i]...)
	models = append(models, r.models[i+1:]...)
	next := newRegistry(models)

	fallback := models[0].ID
	out := make([]DayEntry, len(days))
	for j, d := range days {
		if d.CalculationModelID == id {
			d.CalculationModelID = fallback
		}
		out[j] = d
	}
	return next, out, nil
}

// Reconcile assigns the fallback model to every day whose model id is empty
// or unknown. It reports whether anything changed.
func (r Registry) Reconcile(days []DayEntry) ([]DayEntry, bool) {
	fallback, ok := r.Fallback()
	out := make([]DayEntry, len(days))
	changed := false
	for i, d := range days {
		if _, known := r.Lookup(d.CalculationModelID); !known && ok {
			d.CalculationModelID = fallback.ID
			changed = true
		}
		out[i] = d
	}
	return out, changed
}
