// Package clock provides clock-time and calendar-date helpers for the
// 24-hour timeline. All conversions stay in the user's local time zone;
// dates are never shifted through UTC.
package clock

import (
	"fmt"
	"strconv"
	"time"
)

// Minutes is a clock time expressed as minutes from local midnight.
type Minutes int

// MinutesPerDay is the length of the timeline.
const MinutesPerDay = 24 * 60

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (Minutes, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return Minutes(h*60 + m), nil
}

// Clock formats m as zero-padded 24-hour "HH:MM".
func (m Minutes) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Hour returns the hour component.
func (m Minutes) Hour() int { return int(m) / 60 }

// Minute returns the minute component.
func (m Minutes) Minute() int { return int(m) % 60 }

// AddMinutes shifts m by n minutes, wrapping at midnight.
func (m Minutes) AddMinutes(n int) Minutes {
	v := (int(m) + n) % MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return Minutes(v)
}

// RoundUpTo15 rounds m up to the next quarter hour. Used by the
// duration-preset flow when no start time has been picked yet.
func (m Minutes) RoundUpTo15() Minutes {
	return Minutes((int(m) + 14) / 15 * 15 % MinutesPerDay)
}

// NowMinutes returns t's clock time as minutes from local midnight.
func NowMinutes(t time.Time) Minutes {
	return Minutes(t.Hour()*60 + t.Minute())
}

// Date is a calendar date in the user's local time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns t's local calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is shorthand for DateOf(time.Now()).
func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// String formats d as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns local midnight on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

// At returns the wall-clock instant of m on d.
func (d Date) At(m Minutes) time.Time {
	return d.Time().Add(time.Duration(m) * time.Minute)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns d's day of week.
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}

// MarshalText implements encoding.TextMarshaler so Date round-trips
// through JSON as the "YYYY-MM-DD" wire form.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
