package clock

import (
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want Minutes
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9:30", 0, false},
		{"12-30", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseClock(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseClock(%q) succeeded, want error", c.in)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for m := Minutes(0); m < MinutesPerDay; m += 17 {
		parsed, err := ParseClock(m.Clock())
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", m.Clock(), err)
		}
		if parsed != m {
			t.Errorf("round trip %d -> %q -> %d", m, m.Clock(), parsed)
		}
	}
}

func TestRoundUpTo15(t *testing.T) {
	cases := []struct{ in, want Minutes }{
		{0, 0},
		{1, 15},
		{15, 15},
		{571, 585}, // 09:31 -> 09:45
		{1439, 0},  // wraps past midnight
	}
	for _, c := range cases {
		if got := c.in.RoundUpTo15(); got != c.want {
			t.Errorf("RoundUpTo15(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDateStringAndParse(t *testing.T) {
	d := Date{Year: 2026, Month: time.March, Day: 7}
	if got := d.String(); got != "2026-03-07" {
		t.Errorf("String() = %q", got)
	}
	back, err := ParseDate("2026-03-07")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if back != d {
		t.Errorf("ParseDate = %+v, want %+v", back, d)
	}
	if _, err := ParseDate("2026-13-01"); err == nil {
		t.Error("ParseDate accepted month 13")
	}
	if _, err := ParseDate("07/03/2026"); err == nil {
		t.Error("ParseDate accepted slash format")
	}
}

func TestDateAddDaysAndAfter(t *testing.T) {
	d := Date{Year: 2026, Month: time.January, Day: 31}
	next := d.AddDays(1)
	if next != (Date{Year: 2026, Month: time.February, Day: 1}) {
		t.Errorf("AddDays(1) = %v", next)
	}
	if !next.After(d) {
		t.Error("next.After(d) = false")
	}
	if d.After(d) {
		t.Error("d.After(d) = true")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   Minutes
		want string
	}{
		{0, "12:00 AM"},
		{545, "9:05 AM"},
		{720, "12:00 PM"},
		{870, "2:30 PM"},
		{1439, "11:59 PM"},
	}
	for _, c := range cases {
		if got := FormatTime(c.in); got != c.want {
			t.Errorf("FormatTime(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatDateRelative(t *testing.T) {
	today := Date{Year: 2026, Month: time.August, Day: 31}
	en := language.AmericanEnglish

	if got := FormatDate(today, today, en); got != "Today" {
		t.Errorf("today label = %q", got)
	}
	if got := FormatDate(today.AddDays(1), today, en); got != "Tomorrow" {
		t.Errorf("tomorrow label = %q", got)
	}
	if got := FormatDate(today.AddDays(-1), today, en); got != "Yesterday" {
		t.Errorf("yesterday label = %q", got)
	}
	// 2026-09-04 is a Friday
	if got := FormatDate(today.AddDays(4), today, en); got != "Friday, Sep 4" {
		t.Errorf("far label = %q", got)
	}
}

func TestFormatDateLocales(t *testing.T) {
	today := Date{Year: 2026, Month: time.August, Day: 31}
	if got := FormatDate(today, today, MatchLocale("de-AT")); got != "Heute" {
		t.Errorf("de today = %q", got)
	}
	if got := FormatDate(today, today, MatchLocale("xx")); got != "Today" {
		t.Errorf("fallback today = %q", got)
	}
	long := FormatDateLong(Date{Year: 2026, Month: time.September, Day: 4}, MatchLocale("fr"))
	if long != "vendredi, septembre 4, 2026" {
		t.Errorf("fr long = %q", long)
	}
}

func TestNowMinutes(t *testing.T) {
	at := time.Date(2026, 8, 31, 14, 42, 59, 0, time.Local)
	if got := NowMinutes(at); got != 14*60+42 {
		t.Errorf("NowMinutes = %d", got)
	}
}
