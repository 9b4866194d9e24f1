package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheSouzaF/horas-extras/overtime"
	"github.com/MatheSouzaF/horas-extras/store/memory"
)

func TestReplaceMonth_AssignsIDsAndOrdersByDate(t *testing.T) {
	store := memory.NewTxMemory()
	ctx := context.Background()

	days := overtime.StoreDays([]overtime.DayEntry{
		{ID: "late", Date: "2025-03-20", StartTime: "22:00", EndTime: "02:00"},
		{Date: "2025-03-02", StartTime: "18:00", EndTime: "19:30"},
	})
	require.NoError(t, store.ReplaceMonth(ctx, "u1", "2025-03", decimal.NewFromInt(3200), days))

	record, err := store.GetMonth(ctx, "u1", "2025-03")
	require.NoError(t, err)
	require.Len(t, record.Days, 2)
	assert.Equal(t, "2025-03-02", record.Days[0].Date)
	assert.NotEmpty(t, record.Days[0].ID)
	assert.Equal(t, "late", record.Days[1].ID)

	stored := store.StoredDays("u1", "2025-03")
	require.Len(t, stored, 2)
	assert.True(t, stored[0].WorkedHours.IsZero())
	assert.True(t, decimal.RequireFromString("1.5").Equal(stored[1].WorkedHours))

	absent, err := store.GetMonth(ctx, "u1", "2025-04")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestWithTx_RollsBack(t *testing.T) {
	store := memory.NewTxMemory()
	ctx := context.Background()

	// GIVEN: Saved models and a saved month
	require.NoError(t, store.SaveModels(ctx, "u1", "2025-03", overtime.DefaultRegistry().Models()))
	require.NoError(t, store.ReplaceMonth(ctx, "u1", "2025-03", decimal.NewFromInt(1), nil))

	// WHEN: A transaction writes both and then fails
	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx overtime.MonthStore) error {
		require.NoError(t, tx.SaveModels(ctx, "u1", "2025-03", nil))
		require.NoError(t, tx.ReplaceMonth(ctx, "u1", "2025-03", decimal.NewFromInt(2), nil))

		record, err := tx.GetMonth(ctx, "u1", "2025-03")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2).Equal(record.Salary), "writes are visible inside the transaction")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// THEN: Nothing changed
	models, err := store.GetModels(ctx, "u1", "2025-03")
	require.NoError(t, err)
	assert.Len(t, models, 2)

	record, err := store.GetMonth(ctx, "u1", "2025-03")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(record.Salary))
}

func TestWithTx_Commits(t *testing.T) {
	store := memory.NewTxMemory()
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx overtime.MonthStore) error {
		return tx.SaveModels(ctx, "u1", "2025-03", overtime.DefaultRegistry().Models())
	})
	require.NoError(t, err)

	models, err := store.GetModels(ctx, "u1", "2025-03")
	require.NoError(t, err)
	assert.Len(t, models, 2)
}
