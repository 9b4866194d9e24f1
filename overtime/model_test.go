package overtime_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheSouzaF/horas-extras/overtime"
)

func modelIDs(r overtime.Registry) []overtime.ModelID {
	var ids []overtime.ModelID
	for _, m := range r.Models() {
		ids = append(ids, m.ID)
	}
	return ids
}

func mustModel(t *testing.T, r overtime.Registry, id overtime.ModelID) overtime.CalculationModel {
	t.Helper()
	m, ok := r.Lookup(id)
	require.True(t, ok, "model %s missing", id)
	return m
}

// =============================================================================
// NORMALIZATION
// =============================================================================

func TestDefaultRegistry(t *testing.T) {
	r := overtime.DefaultRegistry()

	require.Equal(t, []overtime.ModelID{overtime.StandardModelID, overtime.DoubleModelID}, modelIDs(r))

	std := mustModel(t, r, overtime.StandardModelID)
	assert.Equal(t, overtime.StandardModelName, std.Name)
	assert.True(t, std.IsStandard())
	assertDecimal(t, "1.5", std.Multiplier)

	double := mustModel(t, r, overtime.DoubleModelID)
	assert.Equal(t, overtime.KindFlat, double.Kind)
	assertDecimal(t, "2", double.Multiplier)
}

func TestNormalizeRegistry_EmptyInputYieldsDefaults(t *testing.T) {
	assert.Equal(t, modelIDs(overtime.DefaultRegistry()), modelIDs(overtime.NormalizeRegistry(nil)))

	junk := []overtime.CalculationModel{
		{ID: "", Name: "no id"},
		{ID: "x", Name: "   "},
	}
	assert.Equal(t, modelIDs(overtime.DefaultRegistry()), modelIDs(overtime.NormalizeRegistry(junk)))
}

func TestNormalizeRegistry_RepairsCorruptedInput(t *testing.T) {
	// GIVEN: Stored models with a tampered standard entry, a duplicate id,
	// a sub-1 multiplier and entries missing id or name
	stored := []overtime.CalculationModel{
		overtime.FlatModel("custom", "  Night  ", decimal.NewFromInt(3)),
		overtime.FlatModel("", "anonymous", decimal.NewFromInt(2)),
		overtime.FlatModel("custom", "Duplicate", decimal.NewFromInt(5)),
		overtime.FlatModel(overtime.StandardModelID, "Hacked", decimal.NewFromInt(9)),
		overtime.FlatModel("low", "Low", decimal.NewFromFloat(0.5)),
		overtime.FlatModel("blank", "   ", decimal.NewFromInt(4)),
	}

	// WHEN: Normalizing
	r := overtime.NormalizeRegistry(stored)

	// THEN: Standard first and canonical, first duplicate wins, multiplier clamped
	require.Equal(t, []overtime.ModelID{overtime.StandardModelID, "custom", "low"}, modelIDs(r))

	std := mustModel(t, r, overtime.StandardModelID)
	assert.Equal(t, overtime.StandardModelName, std.Name)
	assert.Equal(t, overtime.KindStandard, std.Kind)
	assertDecimal(t, "1.5", std.Multiplier)

	custom := mustModel(t, r, "custom")
	assert.Equal(t, "Night", custom.Name)
	assertDecimal(t, "3", custom.Multiplier)

	assertDecimal(t, "1", mustModel(t, r, "low").Multiplier)
}

func TestNormalizeRegistry_Idempotent(t *testing.T) {
	first := overtime.NormalizeRegistry([]overtime.CalculationModel{
		overtime.FlatModel("b", "B", decimal.NewFromFloat(1.25)),
		overtime.FlatModel("a", " A ", decimal.NewFromFloat(0.1)),
	})
	second := overtime.NormalizeRegistry(first.Models())

	require.Equal(t, first.Len(), second.Len())
	for i, m := range first.Models() {
		other := second.Models()[i]
		assert.Equal(t, m.ID, other.ID)
		assert.Equal(t, m.Name, other.Name)
		assert.Equal(t, m.Kind, other.Kind)
		assert.True(t, m.Multiplier.Equal(other.Multiplier))
	}
}

func TestRegistry_LookupMissIsNotAnError(t *testing.T) {
	_, ok := overtime.DefaultRegistry().Lookup("ghost")
	assert.False(t, ok)
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestRegistry_AddDefaults(t *testing.T) {
	r := overtime.DefaultRegistry()

	next, added, err := r.Add("  ", decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "Modelo 3", added.Name)
	assertDecimal(t, "1.5", added.Multiplier)
	assert.Equal(t, overtime.KindFlat, added.Kind)
	assert.NotEmpty(t, added.ID)

	assert.Equal(t, 3, next.Len())
	assert.Equal(t, 2, r.Len(), "receiver must not change")
	assert.Equal(t, added.ID, next.Models()[2].ID)
}

func TestRegistry_AddRejectsLowMultiplier(t *testing.T) {
	_, _, err := overtime.DefaultRegistry().Add("Cheap", decimal.NewFromFloat(0.9))
	assert.ErrorIs(t, err, overtime.ErrInvalidMultiplier)
}

func TestRegistry_RenameAndReprice(t *testing.T) {
	r := overtime.DefaultRegistry()

	renamed, err := r.Rename(overtime.DoubleModelID, "  Feriado ")
	require.NoError(t, err)
	assert.Equal(t, "Feriado", mustModel(t, renamed, overtime.DoubleModelID).Name)
	assert.Equal(t, overtime.DoubleModelName, mustModel(t, r, overtime.DoubleModelID).Name)

	repriced, err := renamed.SetMultiplier(overtime.DoubleModelID, decimal.NewFromFloat(2.5))
	require.NoError(t, err)
	assertDecimal(t, "2.5", mustModel(t, repriced, overtime.DoubleModelID).Multiplier)
	assertDecimal(t, "2", mustModel(t, renamed, overtime.DoubleModelID).Multiplier)
}

func TestRegistry_StandardModelIsLocked(t *testing.T) {
	r := overtime.DefaultRegistry()

	_, err := r.Rename(overtime.StandardModelID, "Mine")
	assert.ErrorIs(t, err, overtime.ErrStandardModelLocked)

	_, err = r.SetMultiplier(overtime.StandardModelID, decimal.NewFromInt(3))
	assert.ErrorIs(t, err, overtime.ErrStandardModelLocked)

	_, _, err = r.Remove(overtime.StandardModelID, nil)
	assert.ErrorIs(t, err, overtime.ErrStandardModelLocked)

	assert.True(t, overtime.IsClientError(err))
}

func TestRegistry_MutationValidation(t *testing.T) {
	r := overtime.DefaultRegistry()

	_, err := r.Rename(overtime.DoubleModelID, " ")
	assert.ErrorIs(t, err, overtime.ErrInvalidModelName)

	_, err = r.SetMultiplier(overtime.DoubleModelID, decimal.NewFromFloat(0.99))
	assert.ErrorIs(t, err, overtime.ErrInvalidMultiplier)

	_, err = r.Rename("ghost", "Name")
	assert.ErrorIs(t, err, overtime.ErrModelNotFound)
	assert.True(t, overtime.IsNotFound(err))
}

func TestRegistry_RemoveCascadesToFallback(t *testing.T) {
	// GIVEN: A registry with an extra model and days pointing at it
	r, extra, err := overtime.DefaultRegistry().Add("Feriado", decimal.NewFromInt(3))
	require.NoError(t, err)

	days := []overtime.DayEntry{
		{ID: "1", CalculationModelID: extra.ID},
		{ID: "2", CalculationModelID: overtime.DoubleModelID},
		{ID: "3", CalculationModelID: extra.ID},
	}

	// WHEN: Removing the extra model
	next, reassigned, err := r.Remove(extra.ID, days)
	require.NoError(t, err)

	// THEN: Its days move to the first model, others keep theirs
	assert.Equal(t, []overtime.ModelID{overtime.StandardModelID, overtime.DoubleModelID}, modelIDs(next))
	assert.Equal(t, overtime.StandardModelID, reassigned[0].CalculationModelID)
	assert.Equal(t, overtime.DoubleModelID, reassigned[1].CalculationModelID)
	assert.Equal(t, overtime.StandardModelID, reassigned[2].CalculationModelID)

	assert.Equal(t, extra.ID, days[0].CalculationModelID, "input days must not change")
	assert.Equal(t, 3, r.Len(), "receiver must not change")
}

func TestRegistry_RemoveUnknown(t *testing.T) {
	_, _, err := overtime.DefaultRegistry().Remove("ghost", nil)
	assert.ErrorIs(t, err, overtime.ErrModelNotFound)
}

func TestRegistry_Reconcile(t *testing.T) {
	r := overtime.DefaultRegistry()

	days := []overtime.DayEntry{
		{ID: "a", CalculationModelID: ""},
		{ID: "b", CalculationModelID: "ghost"},
		{ID: "c", CalculationModelID: overtime.DoubleModelID},
	}
	out, changed := r.Reconcile(days)

	assert.True(t, changed)
	assert.Equal(t, overtime.StandardModelID, out[0].CalculationModelID)
	assert.Equal(t, overtime.StandardModelID, out[1].CalculationModelID)
	assert.Equal(t, overtime.DoubleModelID, out[2].CalculationModelID)

	_, changed = r.Reconcile(out)
	assert.False(t, changed)
}
