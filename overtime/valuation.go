package overtime

import "github.com/shopspring/decimal"

// =============================================================================
// ENGINE - Valuation configuration
// =============================================================================

// Engine values day entries under one overnight policy. The zero value uses
// Wraparound. Engine holds no state and is safe for concurrent use.
type Engine struct {
	Overnight OvernightPolicy
}

// DefaultEngine is the multi-model engine: overnight shifts wrap.
var DefaultEngine = Engine{Overnight: Wraparound}

// FlatRateEngine is the flat-rate variant: end <= start earns nothing.
var FlatRateEngine = Engine{Overnight: SameDay}

// Policy returns the active overnight policy.
func (e Engine) Policy() OvernightPolicy {
	if e.Overnight == "" {
		return Wraparound
	}
	return e.Overnight
}

// WorkedHours returns the hours credited to an entry.
func (e Engine) WorkedHours(d DayEntry) decimal.Decimal {
	return WorkedHours(d.StartTime, d.EndTime, e.Policy())
}

// =============================================================================
// DAY VALUATION
// =============================================================================

// DayValue returns the money earned by one entry at the given hourly rate.
// Unresolved model references are paid at 1x.
func (e Engine) DayValue(d DayEntry, registry Registry, hourlyRate decimal.Decimal) decimal.Decimal {
	minutes := WorkedMinutes(d.StartTime, d.EndTime, e.Policy())
	if minutes <= 0 {
		return decimal.Zero
	}

	model, ok := registry.Lookup(d.CalculationModelID)
	if !ok {
		return price(minutes, hourlyRate, one)
	}

	switch model.Kind {
	case KindStandard:
		return e.standardValue(d, hourlyRate, model.Multiplier)
	default:
		return price(minutes, hourlyRate, model.Multiplier)
	}
}

// price returns minutes/60 * rate * multiplier, dividing last.
func price(minutes int, rate, multiplier decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Mul(rate).Mul(multiplier).Div(sixty)
}

// =============================================================================
// STANDARD MODEL SPLIT
// =============================================================================

// Chunk is one priced minute-range of a shift. Start and End are absolute
// minutes from the start date's midnight; End may exceed MinutesPerDay.
type Chunk struct {
	Start      int
	End        int
	DayOffset  int
	Weekend    bool
	Night      bool
	Multiplier decimal.Decimal
}

// Minutes returns the chunk length.
func (c Chunk) Minutes() int { return c.End - c.Start }

// Chunks splits a shift at 08:00, 22:00 and midnight. Night minutes and
// weekend days get PremiumMultiplier, everything else base. Weekend status
// uses the entry's date advanced by whole days. Entries without a date,
// start or end produce no chunks.
func (e Engine) Chunks(d DayEntry, base decimal.Decimal) []Chunk {
	if !d.Complete() {
		return nil
	}

	start := ToMinutes(d.StartTime)
	end := ToMinutes(d.EndTime)
	if start == end {
		return nil
	}
	resolvedEnd := ResolveEnd(start, end, e.Policy())

	var chunks []Chunk
	for cursor := start; cursor < resolvedEnd; {
		dayOffset := cursor / MinutesPerDay
		minuteOfDay := cursor % MinutesPerDay
		dayStart := cursor - minuteOfDay

		var nextCutoff int
		switch {
		case minuteOfDay < NightEndMinute:
			nextCutoff = dayStart + NightEndMinute
		case minuteOfDay < NightStartMinute:
			nextCutoff = dayStart + NightStartMinute
		default:
			nextCutoff = dayStart + MinutesPerDay
		}
		chunkEnd := min(nextCutoff, resolvedEnd)

		c := Chunk{
			Start:     cursor,
			End:       chunkEnd,
			DayOffset: dayOffset,
			Weekend:   IsWeekend(d.Date, dayOffset),
			Night:     IsNightMinute(minuteOfDay),
		}
		c.Multiplier = base
		if c.Weekend || c.Night {
			c.Multiplier = PremiumMultiplier
		}
		chunks = append(chunks, c)
		cursor = chunkEnd
	}
	return chunks
}

func (e Engine) standardValue(d DayEntry, hourlyRate, base decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range e.Chunks(d, base) {
		total = total.Add(price(c.Minutes(), hourlyRate, c.Multiplier))
	}
	return total
}
