/*
store.go - Persistence interfaces for month records and model registries

PURPOSE:
  Defines the narrow interface between the HTTP layer and the database.
  The engine itself never calls these; handlers load a snapshot, run the
  pure functions, and write the result back.

KEY INTERFACES:
  RecordStore:  Salary and day entries per user and month
  ModelStore:   Calculation models per user and month
  MonthStore:   Both of the above
  TxMonthStore: MonthStore with atomic multi-write support

REPLACE SEMANTICS:
  ReplaceMonth upserts the salary and swaps the whole set of day entries
  (delete-then-insert) in one transaction. There is no per-entry update.
  Each StoredDay carries workedHours computed with the SameDay policy, so
  the persisted column can differ from what the wraparound engine reports.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite with versioned migrations
  - store/memory/memory.go: In-memory for tests and local runs

SEE ALSO:
  - api/hours.go: GET/PUT /hours
  - api/models.go: registry endpoints, cascading removal through WithTx
*/
package overtime

import (
	"context"

	"github.com/shopspring/decimal"
)

// RecordStore persists month records.
type RecordStore interface {
	// GetMonth returns the record, or nil when none was saved.
	GetMonth(ctx context.Context, userID, month string) (*MonthRecord, error)

	// ReplaceMonth upserts the salary and replaces all day entries atomically.
	// Days with an empty ID get a new one.
	ReplaceMonth(ctx context.Context, userID, month string, salary decimal.Decimal, days []StoredDay) error
}

// ModelStore persists calculation model registries.
type ModelStore interface {
	// GetModels returns the stored models in order, or nil when none.
	GetModels(ctx context.Context, userID, month string) ([]CalculationModel, error)

	// SaveModels replaces the stored models.
	SaveModels(ctx context.Context, userID, month string, models []CalculationModel) error
}

// MonthStore is everything a month handler needs.
type MonthStore interface {
	RecordStore
	ModelStore
}

// TxMonthStore runs several writes atomically.
type TxMonthStore interface {
	MonthStore

	// WithTx executes fn within a transaction.
	// If fn returns error, every write made through the argument is rolled back.
	WithTx(ctx context.Context, fn func(MonthStore) error) error
}

// StoreDays precomputes the persisted workedHours column for each entry.
func StoreDays(days []DayEntry) []StoredDay {
	out := make([]StoredDay, len(days))
	for i, d := range days {
		out[i] = StoredDay{DayEntry: d, WorkedHours: WorkedHours(d.StartTime, d.EndTime, SameDay)}
	}
	return out
}
