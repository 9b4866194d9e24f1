package overtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK ARITHMETIC - HH:MM strings as minute offsets
// =============================================================================

const (
	MinutesPerDay    = 24 * 60
	NightStartMinute = 22 * 60
	NightEndMinute   = 8 * 60

	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var sixty = decimal.NewFromInt(60)

// ToMinutes parses HH:MM into minutes since midnight. Empty, malformed or
// out-of-range input yields 0; callers validate before persisting.
func ToMinutes(clock string) int {
	h, m, ok := parseClock(clock)
	if !ok {
		return 0
	}
	return h*60 + m
}

// ValidClock reports whether s is a well-formed 24-hour HH:MM time.
func ValidClock(s string) bool {
	_, _, ok := parseClock(s)
	return ok
}

func parseClock(clock string) (int, int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(clock), ":")
	if !found || hh == "" || mm == "" {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// IsNightMinute reports whether a minute of day falls in [22:00, 08:00).
func IsNightMinute(minuteOfDay int) bool {
	return minuteOfDay >= NightStartMinute || minuteOfDay < NightEndMinute
}

// =============================================================================
// OVERNIGHT POLICY - How an end time earlier than the start is read
// =============================================================================

// OvernightPolicy decides what happens when a shift ends at or before its
// start. The two policies are not interchangeable.
type OvernightPolicy string

const (
	// Wraparound reads end < start as a shift crossing midnight.
	Wraparound OvernightPolicy = "wrap"

	// SameDay credits nothing when end <= start. Used for the persisted
	// workedHours column and the flat-rate variant.
	SameDay OvernightPolicy = "same-day"
)

// ParseOvernightPolicy accepts "wrap" or "same-day".
func ParseOvernightPolicy(s string) (OvernightPolicy, bool) {
	switch OvernightPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case Wraparound:
		return Wraparound, true
	case SameDay:
		return SameDay, true
	default:
		return "", false
	}
}

// ResolveEnd returns the end minute, moved to the next day when the policy
// wraps and end < start.
func ResolveEnd(start, end int, p OvernightPolicy) int {
	if p == Wraparound && end < start {
		return end + MinutesPerDay
	}
	return end
}

// WorkedMinutes returns the length of [start, end) under the policy.
func WorkedMinutes(start, end string, p OvernightPolicy) int {
	if start == "" || end == "" {
		return 0
	}
	s, e := ToMinutes(start), ToMinutes(end)
	if s == e {
		return 0
	}
	resolved := ResolveEnd(s, e, p)
	if resolved <= s {
		return 0
	}
	return resolved - s
}

// WorkedHours is WorkedMinutes expressed in hours.
func WorkedHours(start, end string, p OvernightPolicy) decimal.Decimal {
	return minutesToHours(WorkedMinutes(start, end, p))
}

func minutesToHours(m int) decimal.Decimal {
	if m == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m)).Div(sixty)
}

// =============================================================================
// CALENDAR - UTC civil dates, stable regardless of the process time zone
// =============================================================================

// ParseDate parses YYYY-MM-DD as a UTC civil date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// DayOfWeek returns the weekday of date shifted by offset whole days.
func DayOfWeek(date string, offset int) (time.Weekday, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Sunday, err
	}
	return d.AddDate(0, 0, offset).Weekday(), nil
}

// IsWeekend reports whether date+offset is a Saturday or Sunday. An
// unparsable date is never a weekend.
func IsWeekend(date string, offset int) bool {
	wd, err := DayOfWeek(date, offset)
	if err != nil {
		return false
	}
	return wd == time.Saturday || wd == time.Sunday
}

// =============================================================================
// MONTH KEYS
// =============================================================================

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ParseMonth validates a YYYY-MM month key.
func ParseMonth(s string) (string, bool) {
	if !monthPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// CurrentMonth formats the month of now in now's location.
func CurrentMonth(now time.Time) string { return now.Format(MonthLayout) }

// MonthOrCurrent returns s when it is a valid month key, else the current month.
func MonthOrCurrent(s string, now time.Time) string {
	if m, ok := ParseMonth(s); ok {
		return m
	}
	return CurrentMonth(now)
}
