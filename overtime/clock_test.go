package overtime_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheSouzaF/horas-extras/overtime"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	expected := decimal.RequireFromString(want)
	assert.True(t, expected.Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// =============================================================================
// CLOCK PARSING
// =============================================================================

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"08:30", 510},
		{"23:59", 1439},
		{"7:05", 425},
		{"", 0},
		{"abc", 0},
		{"12", 0},
		{"24:00", 0},
		{"12:60", 0},
		{"-1:30", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, overtime.ToMinutes(tt.in), "ToMinutes(%q)", tt.in)
	}
}

func TestIsNightMinute(t *testing.T) {
	assert.True(t, overtime.IsNightMinute(22*60))
	assert.True(t, overtime.IsNightMinute(0))
	assert.True(t, overtime.IsNightMinute(7*60+59))
	assert.False(t, overtime.IsNightMinute(8*60))
	assert.False(t, overtime.IsNightMinute(21*60+59))
}

// =============================================================================
// OVERNIGHT POLICIES
// =============================================================================

func TestWorkedHours_EqualStartAndEndIsZero(t *testing.T) {
	for _, p := range []overtime.OvernightPolicy{overtime.Wraparound, overtime.SameDay} {
		for _, clock := range []string{"00:00", "09:15", "22:00"} {
			assert.True(t, overtime.WorkedHours(clock, clock, p).IsZero(), "%s %s", p, clock)
		}
	}
}

func TestWorkedHours_OvernightShift(t *testing.T) {
	// GIVEN: A shift from 22:00 to 06:00
	// THEN: Wraparound credits 8 hours, SameDay credits nothing

	assertDecimal(t, "8", overtime.WorkedHours("22:00", "06:00", overtime.Wraparound))
	assertDecimal(t, "0", overtime.WorkedHours("22:00", "06:00", overtime.SameDay))
}

func TestWorkedHours_SameDayShiftIsPolicyIndependent(t *testing.T) {
	assertDecimal(t, "8.5", overtime.WorkedHours("09:00", "17:30", overtime.Wraparound))
	assertDecimal(t, "8.5", overtime.WorkedHours("09:00", "17:30", overtime.SameDay))
}

func TestWorkedMinutes_WraparoundCanCreditAlmostADay(t *testing.T) {
	assert.Equal(t, 1439, overtime.WorkedMinutes("00:01", "00:00", overtime.Wraparound))
	assert.Equal(t, 0, overtime.WorkedMinutes("00:01", "00:00", overtime.SameDay))
}

func TestWorkedMinutes_MissingTimes(t *testing.T) {
	assert.Equal(t, 0, overtime.WorkedMinutes("", "08:00", overtime.Wraparound))
	assert.Equal(t, 0, overtime.WorkedMinutes("08:00", "", overtime.Wraparound))
}

func TestParseOvernightPolicy(t *testing.T) {
	p, ok := overtime.ParseOvernightPolicy("WRAP")
	assert.True(t, ok)
	assert.Equal(t, overtime.Wraparound, p)

	p, ok = overtime.ParseOvernightPolicy("same-day")
	assert.True(t, ok)
	assert.Equal(t, overtime.SameDay, p)

	_, ok = overtime.ParseOvernightPolicy("never")
	assert.False(t, ok)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestDayOfWeek(t *testing.T) {
	tests := []struct {
		date   string
		offset int
		want   time.Weekday
	}{
		{"2025-03-14", 0, time.Friday},
		{"2025-03-14", 1, time.Saturday},
		{"2025-03-14", 2, time.Sunday},
		{"2025-03-31", 1, time.Tuesday},
		{"2024-02-29", 365, time.Friday},
	}
	for _, tt := range tests {
		got, err := overtime.DayOfWeek(tt.date, tt.offset)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s%+d", tt.date, tt.offset)
	}
}

func TestDayOfWeek_IgnoresLocalTimeZone(t *testing.T) {
	saved := time.Local
	t.Cleanup(func() { time.Local = saved })

	for _, offset := range []int{-14, -3, 0, 5, 14} {
		time.Local = time.FixedZone("test", offset*3600)
		got, err := overtime.DayOfWeek("2025-03-14", 0)
		require.NoError(t, err)
		assert.Equal(t, time.Friday, got, "UTC%+d", offset)
	}
}

func TestIsWeekend(t *testing.T) {
	assert.False(t, overtime.IsWeekend("2025-03-14", 0))
	assert.True(t, overtime.IsWeekend("2025-03-15", 0))
	assert.True(t, overtime.IsWeekend("2025-03-14", 2))
	assert.False(t, overtime.IsWeekend("2025-03-14", 3))
	assert.False(t, overtime.IsWeekend("not-a-date", 0))
	assert.False(t, overtime.IsWeekend("", 1))
}

func TestDayOfWeek_InvalidDate(t *testing.T) {
	_, err := overtime.DayOfWeek("2025-13-01", 0)
	assert.ErrorIs(t, err, overtime.ErrInvalidDate)
}

// =============================================================================
// MONTH KEYS
// =============================================================================

func TestParseMonth(t *testing.T) {
	m, ok := overtime.ParseMonth("2025-03")
	assert.True(t, ok)
	assert.Equal(t, "2025-03", m)

	for _, bad := range []string{"", "2025-3", "2025/03", "25-03", "2025-03-01", " 2025-03"} {
		_, ok := overtime.ParseMonth(bad)
		assert.False(t, ok, bad)
	}
}

func TestMonthOrCurrent(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03", overtime.MonthOrCurrent("2025-03", now))
	assert.Equal(t, "2026-10", overtime.MonthOrCurrent("march", now))
	assert.Equal(t, "2026-10", overtime.MonthOrCurrent("", now))
}
