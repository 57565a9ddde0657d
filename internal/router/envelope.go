package router

import (
	"github.com/jvoss/taskpilot/internal/gmail"
	"github.com/jvoss/taskpilot/internal/intent"
)

// Status is the enumerated outcome kind of a routed task. It is the only
// stable discriminant of an Envelope; clients must switch on it rather than
// on which payload fields happen to be present.
type Status string

const (
	// StatusMessage is a plain conversational reply with no action taken.
	StatusMessage Status = "message"
	// StatusNeedInfo means the intent was incomplete and was not dispatched.
	StatusNeedInfo Status = "need_info"
	// StatusScheduled confirms a created calendar event.
	StatusScheduled Status = "scheduled"
	// StatusSchedule carries the events of a requested day.
	StatusSchedule Status = "schedule"
	// StatusFreeSlots carries free time ranges for a requested day.
	StatusFreeSlots Status = "free_slots"
	// StatusSummary carries summarized emails.
	StatusSummary Status = "summary"
	// StatusEmailSent confirms a sent email.
	StatusEmailSent Status = "email_sent"
	// StatusUnread carries unread emails.
	StatusUnread Status = "unread"
	// StatusResults carries email search results.
	StatusResults Status = "results"
	// StatusParsedOnly means the action was decoded but is not executable.
	StatusParsedOnly Status = "parsed_only"
	// StatusAuthRequired means no valid Google credential was available; the
	// request was rejected before any model call.
	StatusAuthRequired Status = "auth_required"
	// StatusParseError means the model reply contained JSON that could not
	// be decoded.
	StatusParseError Status = "parse_error"
	// StatusError means a downstream calendar or mail operation failed.
	StatusError Status = "error"
)

// Envelope is the normalized response returned for every routed task. Status
// is always set; the payload fields are populated per outcome and omitted
// otherwise. Parsed echoes the decoded intent on every path that got as far
// as decoding one.
type Envelope struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Parsed  *intent.Intent `json:"parsed,omitempty"`

	Event  *Event               `json:"event,omitempty"`
	Events []ScheduleEntry      `json:"events,omitempty"`
	Slots  []Slot               `json:"slots,omitempty"`
	Emails []gmail.EmailSummary `json:"emails,omitempty"`
	Result *gmail.SentEmail     `json:"result,omitempty"`

	// Note carries the explanation for parsed-only outcomes.
	Note string `json:"note,omitempty"`

	// Raw preserves the original model reply on parse and execution
	// failures so they stay debuggable.
	Raw string `json:"raw,omitempty"`
}

// Event confirms a created calendar event.
type Event struct {
	ID      string `json:"id,omitempty"`
	Summary string `json:"summary,omitempty"`
	Start   string `json:"start,omitempty"`
	Link    string `json:"link,omitempty"`
}

// ScheduleEntry is one event of a day's schedule.
type ScheduleEntry struct {
	Summary string `json:"summary"`
	Start   string `json:"start"`
}

// Slot is a free time-of-day range, half-open, formatted HH:MM.
type Slot struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AuthRequired is the envelope returned when the credential gate rejects a
// request before routing.
func AuthRequired() Envelope {
	return Envelope{
		Status:  StatusAuthRequired,
		Message: "Authentication required. Please authorize with Google first.",
	}
}
