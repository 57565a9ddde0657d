package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput describes a calendar event to create.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	Recurrence  []string // RRULE lines, e.g. "RRULE:FREQ=WEEKLY;BYDAY=MO"
}

// EventSummary is a simplified calendar event for listing and confirmations.
type EventSummary struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
	Link    string
	Status  string
}

// TimeRange is a half-open [Start, End) interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// toEventSummary converts a Google Calendar event to an EventSummary.
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:      event.Id,
		Summary: event.Summary,
		Link:    event.HtmlLink,
		Status:  event.Status,
	}

	summary.Start = parseEventTime(event.Start)
	summary.End = parseEventTime(event.End)

	return summary
}

// parseEventTime handles both timed and all-day event boundaries.
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
