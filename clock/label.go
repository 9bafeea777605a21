package clock

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Supported display locales. Requests for anything else fall back to
// English via the matcher.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.German,
	language.French,
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

type labelSet struct {
	today, tomorrow, yesterday string
	weekdays                   [7]string
	months                     [12]string
	shortMonths                [12]string
}

var labels = map[language.Tag]labelSet{
	language.AmericanEnglish: {
		today: "Today", tomorrow: "Tomorrow", yesterday: "Yesterday",
		weekdays:    [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months:      [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		shortMonths: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	},
	language.German: {
		today: "Heute", tomorrow: "Morgen", yesterday: "Gestern",
		weekdays:    [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		months:      [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		shortMonths: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
	},
	language.French: {
		today: "Aujourd'hui", tomorrow: "Demain", yesterday: "Hier",
		weekdays:    [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		months:      [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		shortMonths: [12]string{"janv", "févr", "mars", "avr", "mai", "juin", "juil", "août", "sept", "oct", "nov", "déc"},
	},
	language.Spanish: {
		today: "Hoy", tomorrow: "Mañana", yesterday: "Ayer",
		weekdays:    [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		months:      [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		shortMonths: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"},
	},
}

// MatchLocale resolves a BCP 47 locale string (e.g. "de-AT") to the
// closest supported display locale.
func MatchLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.AmericanEnglish
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

func labelsFor(tag language.Tag) labelSet {
	if ls, ok := labels[tag]; ok {
		return ls
	}
	return labels[language.AmericanEnglish]
}

// FormatTime renders m as a 12-hour label like "9:05 AM".
func FormatTime(m Minutes) string {
	h := m.Hour()
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m.Minute(), period)
}

// FormatDate renders d relative to today: "Today", "Tomorrow",
// "Yesterday", or a short label like "Monday, Jan 2".
func FormatDate(d Date, today Date, tag language.Tag) string {
	ls := labelsFor(tag)
	switch d {
	case today:
		return ls.today
	case today.AddDays(1):
		return ls.tomorrow
	case today.AddDays(-1):
		return ls.yesterday
	}
	return fmt.Sprintf("%s, %s %d", ls.weekdays[d.Weekday()], ls.shortMonths[d.Month-time.January], d.Day)
}

// FormatDateLong renders the full subtitle label, e.g.
// "Monday, January 2, 2006".
func FormatDateLong(d Date, tag language.Tag) string {
	ls := labelsFor(tag)
	return fmt.Sprintf("%s, %s %d, %d", ls.weekdays[d.Weekday()], ls.months[d.Month-time.January], d.Day, d.Year)
}
