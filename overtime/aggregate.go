package overtime

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// NoProjectLabel groups entries with a blank project.
const NoProjectLabel = "No project"

var (
	flat50  = decimal.NewFromFloat(1.5)
	flat100 = decimal.NewFromInt(2)
)

// =============================================================================
// MONTHLY TOTALS
// =============================================================================

// MonthlyTotals sums hours and value over all entries.
func (e Engine) MonthlyTotals(days []DayEntry, salary decimal.Decimal, registry Registry) Totals {
	rate := HourlyRate(salary)
	totals := Totals{TotalHours: decimal.Zero, TotalValue: decimal.Zero}
	for _, d := range days {
		totals.TotalHours = totals.TotalHours.Add(e.WorkedHours(d))
		totals.TotalValue = totals.TotalValue.Add(e.DayValue(d, registry, rate))
	}
	return totals
}

// FlatRateTotals prices every hour at 1.5x and at 2x, ignoring models.
// The flat-rate variant always counts hours with SameDay, whatever the
// engine's policy: a shift ending at or before its start earns nothing.
func (e Engine) FlatRateTotals(days []DayEntry, salary decimal.Decimal) FlatTotals {
	rate := HourlyRate(salary)
	minutes := 0
	for _, d := range days {
		minutes += WorkedMinutes(d.StartTime, d.EndTime, SameDay)
	}
	return FlatTotals{
		TotalHours: minutesToHours(minutes),
		Total50:    price(minutes, rate, flat50),
		Total100:   price(minutes, rate, flat100),
	}
}

// =============================================================================
// BREAKDOWN SERIES
// =============================================================================

// PerDateSeries sums hours per date, ascending by date. Entries missing a
// date or time, or with no positive hours, are left out.
func (e Engine) PerDateSeries(days []DayEntry) []SeriesPoint {
	byDate := make(map[string]decimal.Decimal)
	for _, d := range days {
		if !d.Complete() {
			continue
		}
		hours := e.WorkedHours(d)
		if !hours.IsPositive() {
			continue
		}
		byDate[d.Date] = byDate[d.Date].Add(hours)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	series := make([]SeriesPoint, len(dates))
	for i, date := range dates {
		series[i] = SeriesPoint{Label: date, Hours: byDate[date]}
	}
	return series
}

// PerProjectSeries sums hours per project label, most hours first. Ties keep
// the order in which labels first appear.
func (e Engine) PerProjectSeries(days []DayEntry) []SeriesPoint {
	summary := e.groupByProject(days, nil, decimal.Zero)
	series := make([]SeriesPoint, len(summary))
	for i, s := range summary {
		series[i] = SeriesPoint{Label: s.Label, Hours: s.Hours}
	}
	return series
}

// PerProjectSummary is PerProjectSeries with money accumulated per project.
func (e Engine) PerProjectSummary(days []DayEntry, salary decimal.Decimal, registry Registry) []ProjectSummary {
	return e.groupByProject(days, &registry, HourlyRate(salary))
}

func (e Engine) groupByProject(days []DayEntry, registry *Registry, rate decimal.Decimal) []ProjectSummary {
	var order []string
	groups := make(map[string]*ProjectSummary)

	for _, d := range days {
		if d.StartTime == "" || d.EndTime == "" {
			continue
		}
		hours := e.WorkedHours(d)
		if !hours.IsPositive() {
			continue
		}

		label := ProjectLabel(d.ProjectWorked)
		g, ok := groups[label]
		if !ok {
			g = &ProjectSummary{Label: label, Hours: decimal.Zero, TotalValue: decimal.Zero}
			groups[label] = g
			order = append(order, label)
		}
		g.Hours = g.Hours.Add(hours)
		if registry != nil {
			g.TotalValue = g.TotalValue.Add(e.DayValue(d, *registry, rate))
		}
	}

	out := make([]ProjectSummary, len(order))
	for i, label := range order {
		out[i] = *groups[label]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Hours.GreaterThan(out[j].Hours)
	})
	return out
}

// ProjectLabel trims a project name, mapping blank to NoProjectLabel.
func ProjectLabel(project string) string {
	if label := strings.TrimSpace(project); label != "" {
		return label
	}
	return NoProjectLabel
}

// =============================================================================
// REPORT
// =============================================================================

// BuildReport computes every total and series for one month record.
func (e Engine) BuildReport(record MonthRecord, registry Registry) Report {
	rate := HourlyRate(record.Salary)

	days := make([]DayValuation, len(record.Days))
	for i, d := range record.Days {
		dv := DayValuation{
			Entry: d,
			Hours: e.WorkedHours(d),
			Value: e.DayValue(d, registry, rate),
		}
		if m, ok := registry.Lookup(d.CalculationModelID); ok {
			dv.ModelName = m.Name
		}
		days[i] = dv
	}

	return Report{
		Month:      record.Month,
		Salary:     record.Salary,
		HourlyRate: rate,
		Overnight:  e.Policy(),
		Totals:     e.MonthlyTotals(record.Days, record.Salary, registry),
		Flat:       e.FlatRateTotals(record.Days, record.Salary),
		Days:       days,
		ByDate:     e.PerDateSeries(record.Days),
		ByProject:  e.PerProjectSeries(record.Days),
		Projects:   e.PerProjectSummary(record.Days, record.Salary, registry),
	}
}
