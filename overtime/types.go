/*
Package overtime provides the overtime valuation engine.

PURPOSE:
  Turns a month of worked intervals (day entries) plus a fixed monthly salary
  into worked-hour totals and monetary totals. Every function in this package
  is pure: inputs are snapshots passed by value, outputs are new values, and
  nothing here touches the network, the database or shared state.

KEY CONCEPTS IN THIS FILE (types.go):
  - DayEntry: one worked interval tagged with a project and a calculation model
  - MonthRecord: the salary and entries of one user for one month
  - Totals / FlatTotals: derived monthly sums, never persisted
  - SeriesPoint / ProjectSummary: grouped breakdowns for charts
  - Salary helpers: base hourly rate = salary / 160

PRECISION:
  Money, hours and multipliers are decimal.Decimal. Values are accumulated
  per minute-range and divided last, so sums are exact and independent of
  the order of the input entries.

USAGE:
  registry := overtime.DefaultRegistry()
  totals := overtime.DefaultEngine.MonthlyTotals(days, salary, registry)

SEE ALSO:
  - clock.go: HH:MM arithmetic and overnight policies
  - model.go: calculation models and the registry
  - valuation.go: per-day valuation and the standard split algorithm
  - aggregate.go: monthly totals and breakdown series
*/
package overtime

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY ENTRY - One interval of work
// =============================================================================

// DayEntry is one worked interval. Date is YYYY-MM-DD, times are HH:MM in
// local civil time. Empty fields are allowed; they simply contribute nothing.
type DayEntry struct {
	ID                 string
	Date               string
	StartTime          string
	EndTime            string
	ProjectWorked      string
	CalculationModelID ModelID
}

// Complete reports whether date, start and end are all filled in.
func (d DayEntry) Complete() bool {
	return d.Date != "" && d.StartTime != "" && d.EndTime != ""
}

// StoredDay is a day entry as persisted, with hours precomputed at write time.
type StoredDay struct {
	DayEntry
	WorkedHours decimal.Decimal
}

// MonthRecord is the salary and the day entries of one user for one month.
type MonthRecord struct {
	UserID    string
	Month     string
	Salary    decimal.Decimal
	Days      []DayEntry
	UpdatedAt time.Time
}

// EmptyMonth is the record returned for a month nothing was saved for.
func EmptyMonth(userID, month string) MonthRecord {
	return MonthRecord{UserID: userID, Month: month, Salary: decimal.Zero, Days: []DayEntry{}}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Totals is the monthly summary under the multi-model engine.
type Totals struct {
	TotalHours decimal.Decimal
	TotalValue decimal.Decimal
}

// FlatTotals is the monthly summary of the flat-rate variant: every hour
// priced at both fixed multipliers, no registry involved.
type FlatTotals struct {
	TotalHours decimal.Decimal
	Total50    decimal.Decimal
	Total100   decimal.Decimal
}

// SeriesPoint is one bar of a breakdown chart.
type SeriesPoint struct {
	Label string
	Hours decimal.Decimal
}

// ProjectSummary is hours and money accumulated for one project label.
type ProjectSummary struct {
	Label      string
	Hours      decimal.Decimal
	TotalValue decimal.Decimal
}

// DayValuation is a single entry with its computed hours and value.
type DayValuation struct {
	Entry     DayEntry
	Hours     decimal.Decimal
	Value     decimal.Decimal
	ModelName string
}

// Report bundles everything computed for one month.
type Report struct {
	Month      string
	Salary     decimal.Decimal
	HourlyRate decimal.Decimal
	Overnight  OvernightPolicy
	Totals     Totals
	Flat       FlatTotals
	Days       []DayValuation
	ByDate     []SeriesPoint
	ByProject  []SeriesPoint
	Projects   []ProjectSummary
}

// =============================================================================
// SALARY
// =============================================================================

// MonthlyHoursBase is the fixed divisor turning a monthly salary into an
// hourly rate (a standard full-time month).
const MonthlyHoursBase = 160

var monthlyHoursBase = decimal.NewFromInt(MonthlyHoursBase)

// HourlyRate returns salary / 160. Negative salaries yield zero.
func HourlyRate(salary decimal.Decimal) decimal.Decimal {
	if salary.IsNegative() {
		return decimal.Zero
	}
	return salary.Div(monthlyHoursBase)
}

// SalaryFromFloat converts a transport-level number to a salary. NaN,
// infinities and negative values become zero.
func SalaryFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
