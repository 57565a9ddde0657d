package calendar

import (
	"strings"
	"time"

	"github.com/jvoss/taskpilot/internal/intent"
)

// RecurrenceRule derives the RRULE for a repeat hint. Weekly recurrence pins
// the rule to the weekday of the start time using the two-letter day code
// the RRULE syntax expects (MO, TU, ...). An empty string means no
// recurrence.
func RecurrenceRule(repeat intent.Repeat, start time.Time) string {
	switch repeat.Normalize() {
	case intent.RepeatDaily:
		return "RRULE:FREQ=DAILY"
	case intent.RepeatWeekly:
		return "RRULE:FREQ=WEEKLY;BYDAY=" + byDayCode(start.Weekday())
	case intent.RepeatMonthly:
		return "RRULE:FREQ=MONTHLY"
	}
	return ""
}

// byDayCode maps a weekday to its RRULE BYDAY code.
func byDayCode(d time.Weekday) string {
	return strings.ToUpper(d.String()[:2])
}
