// Package altime defines the time and duration types used across the
// abstraction layer (Milliseconds, Microseconds, Ticks, UnixTime,
// DateTime) and the pure DateTime<->UnixTime conversion functions.
//
// DateTime<->UnixTime intentionally does NOT reproduce the original
// C++ implementation's ad hoc leap-day correction (spec.md Design
// Notes flags this as an open discrepancy -- "the guard year != 0
// further complicates year 0 ... verify against known fixtures rather
// than preserving the as-is logic"). Instead it uses Howard Hinnant's
// days-from-civil algorithm, which is branch-free and round-trips for
// every valid proleptic Gregorian date. See DESIGN.md for the decision
// record.
package altime

import "fmt"

// Milliseconds is a duration expressed in milliseconds.
type Milliseconds int64

// Microseconds is a duration expressed in microseconds.
type Microseconds int64

// Ticks is a platform-defined monotonic counter increment.
type Ticks uint64

// UnixTime is seconds since 1970-01-01T00:00:00Z.
type UnixTime int64

// DateTime mirrors the wire-level civil time representation used at
// the abstraction layer boundary. Weekday is 1=Sunday..7=Saturday;
// Month is 1-12; Year is years since 1970 (matching spec.md's "years
// since 1970" convention, NOT years since 1900).
type DateTime struct {
	Second  int
	Minute  int
	Hour    int
	Day     int
	Weekday int // 1=Sun .. 7=Sat
	Month   int // 1-12
	Year    int // years since 1970
}

const epochYear = 1970

// daysFromCivil converts a proleptic Gregorian calendar date to the
// number of days relative to 1970-01-01. Algorithm due to Howard
// Hinnant (chrono-compatible civil_from_days / days_from_civil),
// correct for every year including leap years, with no special-casing
// required around year 0 or February of a leap year.
func daysFromCivil(y, m, d int) int64 {
	y -= boolToInt(m <= 2)
	era := divFloor(y, 400)
	yoe := y - era*400                                   // [0, 399]
	doy := (153*(m+monthOffset(m))+2)/5 + d - 1           // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy                // [0, 146096]
	return int64(era)*146097 + int64(doe) - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(z int64) (y, m, d int) {
	z += 719468
	era := divFloorI64(z, 146097)
	doe := z - era*146097                                // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365 // [0, 399]
	y64 := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	d = int(doy-(153*mp+2)/5) + 1
	m = int(mp) + monthShift(int(mp))
	y = int(y64) + boolToInt(m <= 2)
	return y, m, d
}

func monthOffset(m int) int {
	if m <= 2 {
		return 9
	}
	return -3
}

func monthShift(mp int) int {
	if mp < 10 {
		return 3
	}
	return -9
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func divFloor(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func divFloorI64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ToUnixTime converts a DateTime to UnixTime. Year is years-since-1970
// per the wire convention; civil-calendar year is computed internally
// as dt.Year+1970 before calling the civil-date algorithm.
func ToUnixTime(dt DateTime) UnixTime {
	civilYear := dt.Year + epochYear
	days := daysFromCivil(civilYear, dt.Month, dt.Day)
	secs := days*86400 + int64(dt.Hour)*3600 + int64(dt.Minute)*60 + int64(dt.Second)
	return UnixTime(secs)
}

// ToDateTime converts a UnixTime to DateTime. Weekday is derived from
// the day count: 1970-01-01 was a Thursday (weekday 5 in the 1=Sun
// convention).
func ToDateTime(t UnixTime) DateTime {
	secs := int64(t)
	days := divFloorI64(secs, 86400)
	rem := secs - days*86400

	y, m, d := civilFromDays(days)

	hour := int(rem / 3600)
	rem -= int64(hour) * 3600
	minute := int(rem / 60)
	second := int(rem - int64(minute)*60)

	// 1970-01-01 (days == 0) was a Thursday: weekday 5 in 1=Sun..7=Sat.
	weekday := int(((days%7)+7+4)%7) + 1

	return DateTime{
		Second:  second,
		Minute:  minute,
		Hour:    hour,
		Day:     d,
		Weekday: weekday,
		Month:   m,
		Year:    y - epochYear,
	}
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", dt.Year+epochYear, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// MillisecondsToTicks converts a Milliseconds duration to Ticks given a
// platform tick rate (ticks per second).
func MillisecondsToTicks(ms Milliseconds, tickRateHz uint32) Ticks {
	return Ticks(int64(ms) * int64(tickRateHz) / 1000)
}

// TicksToMilliseconds converts Ticks to a Milliseconds duration given a
// platform tick rate (ticks per second).
func TicksToMilliseconds(t Ticks, tickRateHz uint32) Milliseconds {
	if tickRateHz == 0 {
		return 0
	}
	return Milliseconds(int64(t) * 1000 / int64(tickRateHz))
}

// DifferenceBetween returns (a - b) correctly handling wraparound of an
// N-bit monotonic counter, per invariant 8: differenceBetween(a, b)
// == (a - b) mod 2^N. bits must be <= 64.
func DifferenceBetween(a, b Ticks, bits uint) Ticks {
	mask := uint64(1)<<bits - 1
	return Ticks((uint64(a) - uint64(b)) & mask)
}

// RunningAverage folds newValue into currentAverage, an incremental
// mean over numValues samples seen so far (numValues counts the
// sample being folded in, so the first call should pass 1). Per
// invariant 9: running_average of k identical values equals that
// value. numValues <= 0 is treated as 1 to avoid a divide by zero.
func RunningAverage(currentAverage, newValue, numValues float64) float64 {
	if numValues <= 0 {
		numValues = 1
	}
	return currentAverage + (newValue-currentAverage)/numValues
}
