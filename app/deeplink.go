package app

import (
	"fmt"
	"strings"

	"github.com/timeflowapp/timeflow/clock"
)

// DateFromFragment parses a share-link fragment like "#date=2026-09-01"
// and reports whether it named a date. A leading '#' is optional.
func DateFromFragment(fragment string) (clock.Date, bool) {
	fragment = strings.TrimPrefix(fragment, "#")
	value, ok := strings.CutPrefix(fragment, "date=")
	if !ok {
		return clock.Date{}, false
	}
	d, err := clock.ParseDate(value)
	if err != nil {
		return clock.Date{}, false
	}
	return d, true
}

// Fragment builds the share-link fragment for a date. Today's links
// carry no fragment so they always open on the current day.
func Fragment(d, today clock.Date) string {
	if d == today {
		return ""
	}
	return fmt.Sprintf("#date=%s", d)
}
