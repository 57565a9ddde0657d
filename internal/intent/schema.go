package intent

import (
	"fmt"
	"time"
)

// Action identifies one of the operations taskpilot can execute.
type Action string

// The closed set of recognized actions. Anything else the model emits falls
// through to the dispatcher's parsed-only path.
const (
	ActionScheduleCall      Action = "schedule_call"
	ActionAddEvent          Action = "add_event"
	ActionSummarizeEmails   Action = "summarize_emails"
	ActionSendEmail         Action = "send_email"
	ActionCheckSchedule     Action = "check_schedule"
	ActionCheckAvailability Action = "check_availability"
	ActionListUnread        Action = "list_unread"
	ActionSearchEmail       Action = "search_email"
)

// KnownActions returns all recognized actions in prompt order.
func KnownActions() []Action {
	return []Action{
		ActionScheduleCall,
		ActionAddEvent,
		ActionSummarizeEmails,
		ActionSendEmail,
		ActionCheckSchedule,
		ActionCheckAvailability,
		ActionListUnread,
		ActionSearchEmail,
	}
}

// Known reports whether a is one of the recognized actions.
func (a Action) Known() bool {
	switch a {
	case ActionScheduleCall, ActionAddEvent, ActionSummarizeEmails,
		ActionSendEmail, ActionCheckSchedule, ActionCheckAvailability,
		ActionListUnread, ActionSearchEmail:
		return true
	}
	return false
}

// Repeat is the recurrence hint attached to scheduling intents.
type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

// Normalize maps empty or unrecognized values to RepeatNone.
func (r Repeat) Normalize() Repeat {
	switch r {
	case RepeatDaily, RepeatWeekly, RepeatMonthly:
		return r
	}
	return RepeatNone
}

// Intent is the structured action plus parameters decoded from a model
// reply. It mirrors the JSON contract stated in the extraction prompt and is
// never mutated after decoding.
type Intent struct {
	Action        Action   `json:"action"`
	Person        string   `json:"person,omitempty"`
	Email         string   `json:"email,omitempty"`
	DateTime      string   `json:"date_time,omitempty"`
	Repeat        Repeat   `json:"repeat,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Body          string   `json:"body,omitempty"`
	Query         string   `json:"query,omitempty"`
}

// RequiredFields returns the fields the dispatcher needs before it can
// execute the given action. The model's own missing_fields report normally
// short-circuits incomplete intents first; this table is the dispatcher's
// defensive backstop.
func RequiredFields(a Action) []string {
	switch a {
	case ActionScheduleCall, ActionAddEvent, ActionCheckSchedule,
		ActionCheckAvailability, ActionListUnread:
		return []string{"date_time"}
	case ActionSendEmail:
		return []string{"email", "subject", "body"}
	case ActionSearchEmail:
		return []string{"query"}
	}
	return nil
}

// dateTimeLayouts are the accepted shapes for the date_time field, most
// specific first. The last layout is a bare date.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime parses an ISO-8601 datetime or bare date in the given
// location. hasClock reports whether the input carried a time of day, so
// callers can distinguish scheduling datetimes from check dates. The result
// is always expressed in loc: an input with an explicit UTC offset is
// converted, so day boundaries and formatted times agree with the
// configured timezone.
func ParseDateTime(s string, loc *time.Location) (t time.Time, hasClock bool, err error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateTimeLayouts {
		t, perr := time.ParseInLocation(layout, s, loc)
		if perr != nil {
			continue
		}
		return t.In(loc), layout != "2006-01-02", nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date_time %q: want an ISO-8601 datetime or YYYY-MM-DD date", s)
}
