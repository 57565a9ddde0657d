package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jvoss/taskpilot/internal/calendar"
	"github.com/jvoss/taskpilot/internal/gmail"
	"github.com/jvoss/taskpilot/internal/intent"
	"github.com/jvoss/taskpilot/internal/logging"
)

// callDuration is the fixed length of events created by schedule_call and
// add_event.
const callDuration = 30 * time.Minute

// confirmTimeLayout formats event start times in confirmation messages,
// e.g. "04:30 PM on July 09".
const confirmTimeLayout = "03:04 PM on January 02"

// CalendarService is the calendar collaborator the dispatcher calls.
type CalendarService interface {
	CreateEvent(input calendar.EventInput) (*calendar.EventSummary, error)
	ListDay(date time.Time) ([]calendar.EventSummary, error)
	BusyIntervals(start, end time.Time) ([]calendar.TimeRange, error)
}

// MailService is the mail collaborator the dispatcher calls.
type MailService interface {
	ListSummaries(query string, max int64) ([]gmail.EmailSummary, error)
	Send(to, subject, body string) (*gmail.SentEmail, error)
}

// Extractor turns a free-text task into raw model text.
type Extractor interface {
	Extract(ctx context.Context, task string, today time.Time) (string, error)
}

// MetricsRecorder receives one observation per routed task. Implemented by
// instrumentation.Metrics; nil disables recording.
type MetricsRecorder interface {
	RecordTaskRequest(ctx context.Context, action, status string, duration time.Duration)
}

// Result-set caps per mail operation.
const (
	maxSummaries     = 5
	maxSearchResults = 5
	maxUnread        = 10
)

// Config carries the collaborators a Router needs.
type Config struct {
	Calendar  CalendarService
	Mail      MailService
	Extractor Extractor
	Parser    intent.Parser

	// Location is the single timezone all date_time values are interpreted
	// in. Defaults to time.Local.
	Location *time.Location

	// Now overrides the clock, mainly for tests. Defaults to time.Now.
	Now func() time.Time

	Logger  *slog.Logger
	Metrics MetricsRecorder
}

// Router runs the extract, parse, dispatch pipeline for one task at a time.
// Each call is an independent sequential flow; the Router itself holds no
// per-request state and is safe for concurrent use.
type Router struct {
	cal       CalendarService
	mail      MailService
	extractor Extractor
	parser    intent.Parser
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
	metrics   MetricsRecorder
}

// New creates a Router from config, filling in clock, timezone and logger
// defaults.
func New(cfg Config) *Router {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cal:       cfg.Calendar,
		mail:      cfg.Mail,
		extractor: cfg.Extractor,
		parser:    cfg.Parser,
		loc:       loc,
		now:       now,
		logger:    logger,
		metrics:   cfg.Metrics,
	}
}

// Route runs the full pipeline for one task: extract raw model text, parse
// it, and dispatch the decoded intent. Every outcome, including failures, is
// returned as an Envelope; Route never returns an error.
func (r *Router) Route(ctx context.Context, task string) Envelope {
	start := time.Now()
	env := r.route(ctx, task)

	action := ""
	if env.Parsed != nil {
		action = string(env.Parsed.Action)
	}
	elapsed := time.Since(start)

	r.logger.InfoContext(ctx, "task routed",
		logging.Operation("route"),
		logging.Action(action),
		logging.Status(string(env.Status)),
		logging.Duration(elapsed),
	)
	if r.metrics != nil {
		r.metrics.RecordTaskRequest(ctx, action, string(env.Status), elapsed)
	}

	return env
}

func (r *Router) route(ctx context.Context, task string) Envelope {
	today := r.now().In(r.loc)

	raw, err := r.extractor.Extract(ctx, task, today)
	if err != nil {
		// Extraction failures degrade to a plain message so the caller
		// always gets an envelope.
		r.logger.WarnContext(ctx, "intent extraction failed", logging.Err(err))
		return Envelope{
			Status:  StatusMessage,
			Message: fmt.Sprintf("Error: %v", err),
		}
	}

	res := r.parser.Parse(raw)
	switch res.Kind {
	case intent.KindMessage:
		return Envelope{Status: StatusMessage, Message: res.Message}
	case intent.KindNeedsInfo:
		return Envelope{Status: StatusNeedInfo, Message: res.Message, Parsed: res.Intent}
	case intent.KindError:
		return Envelope{
			Status:  StatusParseError,
			Message: res.Err.Error(),
			Raw:     res.Raw,
		}
	case intent.KindIntent:
		return r.Dispatch(ctx, res.Intent, res.Raw)
	}
	return Envelope{Status: StatusParseError, Message: "unhandled parse outcome", Raw: raw}
}

// Dispatch executes a decoded intent. The switch over Action is exhaustive:
// every recognized action has a branch, and anything else falls through to
// the parsed-only outcome. Downstream failures are converted to error
// envelopes at this boundary and never propagate.
func (r *Router) Dispatch(ctx context.Context, in *intent.Intent, raw string) Envelope {
	// The model's own missing_fields report normally catches incomplete
	// intents before they get here; this backstop covers replies that omit
	// a required field without declaring it missing.
	if missing := missingRequired(in); len(missing) > 0 {
		return Envelope{
			Status:  StatusNeedInfo,
			Message: "To proceed, I need: " + strings.Join(missing, ", ") + ".",
			Parsed:  in,
		}
	}

	switch in.Action {
	case intent.ActionScheduleCall:
		return r.scheduleCall(in, raw)
	case intent.ActionAddEvent:
		return r.addEvent(in, raw)
	case intent.ActionCheckSchedule:
		return r.checkSchedule(in, raw)
	case intent.ActionCheckAvailability:
		return r.checkAvailability(in, raw)
	case intent.ActionSummarizeEmails:
		return r.summarizeEmails(in, raw)
	case intent.ActionSendEmail:
		return r.sendEmail(in, raw)
	case intent.ActionListUnread:
		return r.listUnread(in, raw)
	case intent.ActionSearchEmail:
		return r.searchEmail(in, raw)
	}

	return Envelope{
		Status: StatusParsedOnly,
		Parsed: in,
		Note:   "Execution for this action not yet implemented",
	}
}

func (r *Router) scheduleCall(in *intent.Intent, raw string) Envelope {
	start, hasClock, err := intent.ParseDateTime(in.DateTime, r.loc)
	if err != nil {
		return r.execError(in, raw, err)
	}
	if !hasClock {
		return Envelope{
			Status:  StatusNeedInfo,
			Message: "To proceed, I need: a time of day in date_time.",
			Parsed:  in,
		}
	}

	person := in.Person
	if person == "" {
		person = "someone"
	}

	created, err := r.createEvent("Call with "+person, in, start)
	if err != nil {
		return r.execError(in, raw, err)
	}

	message := fmt.Sprintf("Scheduled a 30-minute call with %s at %s.",
		person, start.Format(confirmTimeLayout))
	if in.Email != "" {
		message += fmt.Sprintf(" Invite sent to %s.", in.Email)
	}

	return Envelope{
		Status:  StatusScheduled,
		Message: message,
		Parsed:  in,
		Event:   toEvent(created),
	}
}

func (r *Router) addEvent(in *intent.Intent, raw string) Envelope {
	start, hasClock, err := intent.ParseDateTime(in.DateTime, r.loc)
	if err != nil {
		return r.execError(in, raw, err)
	}
	if !hasClock {
		return Envelope{
			Status:  StatusNeedInfo,
			Message: "To proceed, I need: a time of day in date_time.",
			Parsed:  in,
		}
	}

	summary := in.Subject
	if summary == "" {
		summary = "New event"
	}

	created, err := r.createEvent(summary, in, start)
	if err != nil {
		return r.execError(in, raw, err)
	}

	message := fmt.Sprintf("Added %q at %s.", summary, start.Format(confirmTimeLayout))
	if in.Email != "" {
		message += fmt.Sprintf(" Invite sent to %s.", in.Email)
	}

	return Envelope{
		Status:  StatusScheduled,
		Message: message,
		Parsed:  in,
		Event:   toEvent(created),
	}
}

// createEvent builds and inserts a fixed-length event starting at start,
// deriving recurrence from the intent's repeat hint and inviting the
// intent's email when present.
func (r *Router) createEvent(summary string, in *intent.Intent, start time.Time) (*calendar.EventSummary, error) {
	input := calendar.EventInput{
		Summary:  summary,
		Start:    start,
		End:      start.Add(callDuration),
		TimeZone: r.loc.String(),
	}
	if in.Email != "" {
		input.Attendees = []string{in.Email}
	}
	if rule := calendar.RecurrenceRule(in.Repeat, start); rule != "" {
		input.Recurrence = []string{rule}
	}
	return r.cal.CreateEvent(input)
}

func (r *Router) checkSchedule(in *intent.Intent, raw string) Envelope {
	day, err := r.parseDay(in.DateTime)
	if err != nil {
		return r.execError(in, raw, err)
	}

	events, err := r.cal.ListDay(day)
	if err != nil {
		return r.execError(in, raw, err)
	}

	entries := make([]ScheduleEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, ScheduleEntry{
			Summary: ev.Summary,
			Start:   ev.Start.In(r.loc).Format(time.RFC3339),
		})
	}

	return Envelope{Status: StatusSchedule, Events: entries, Parsed: in}
}

func (r *Router) checkAvailability(in *intent.Intent, raw string) Envelope {
	day, err := r.parseDay(in.DateTime)
	if err != nil {
		return r.execError(in, raw, err)
	}

	window := calendar.WorkdayWindow(day)
	busy, err := r.cal.BusyIntervals(window.Start, window.End)
	if err != nil {
		return r.execError(in, raw, err)
	}

	free := calendar.FreeGaps(window, busy)
	slots := make([]Slot, 0, len(free))
	for _, gap := range free {
		slots = append(slots, Slot{
			From: gap.Start.In(r.loc).Format("15:04"),
			To:   gap.End.In(r.loc).Format("15:04"),
		})
	}

	return Envelope{Status: StatusFreeSlots, Slots: slots, Parsed: in}
}

func (r *Router) summarizeEmails(in *intent.Intent, raw string) Envelope {
	query := in.Query
	if query == "" {
		if in.DateTime != "" {
			day, err := r.parseDay(in.DateTime)
			if err != nil {
				return r.execError(in, raw, err)
			}
			query = gmail.AfterQuery(day)
		} else {
			query = gmail.AfterQuery(r.now().In(r.loc))
		}
	}

	emails, err := r.mail.ListSummaries(query, maxSummaries)
	if err != nil {
		return r.execError(in, raw, err)
	}

	return Envelope{Status: StatusSummary, Emails: emails, Parsed: in}
}

func (r *Router) sendEmail(in *intent.Intent, raw string) Envelope {
	sent, err := r.mail.Send(in.Email, in.Subject, in.Body)
	if err != nil {
		return r.execError(in, raw, err)
	}
	return Envelope{Status: StatusEmailSent, Result: sent, Parsed: in}
}

func (r *Router) listUnread(in *intent.Intent, raw string) Envelope {
	day, err := r.parseDay(in.DateTime)
	if err != nil {
		return r.execError(in, raw, err)
	}

	emails, err := r.mail.ListSummaries(gmail.UnreadAfterQuery(day), maxUnread)
	if err != nil {
		return r.execError(in, raw, err)
	}

	return Envelope{Status: StatusUnread, Emails: emails, Parsed: in}
}

func (r *Router) searchEmail(in *intent.Intent, raw string) Envelope {
	emails, err := r.mail.ListSummaries(in.Query, maxSearchResults)
	if err != nil {
		return r.execError(in, raw, err)
	}
	return Envelope{Status: StatusResults, Emails: emails, Parsed: in}
}

// parseDay interprets a date_time value for a check action: a bare date or a
// full datetime, truncated to midnight in the configured timezone.
func (r *Router) parseDay(value string) (time.Time, error) {
	t, _, err := intent.ParseDateTime(value, r.loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc), nil
}

// execError converts a downstream failure into an error envelope carrying
// the detail and the original raw model text.
func (r *Router) execError(in *intent.Intent, raw string, err error) Envelope {
	return Envelope{
		Status:  StatusError,
		Message: err.Error(),
		Parsed:  in,
		Raw:     raw,
	}
}

// missingRequired reports which of the action's required fields are empty,
// in the order RequiredFields declares them.
func missingRequired(in *intent.Intent) []string {
	var missing []string
	for _, field := range intent.RequiredFields(in.Action) {
		var value string
		switch field {
		case "date_time":
			value = in.DateTime
		case "email":
			value = in.Email
		case "subject":
			value = in.Subject
		case "body":
			value = in.Body
		case "query":
			value = in.Query
		}
		if value == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func toEvent(ev *calendar.EventSummary) *Event {
	if ev == nil {
		return nil
	}
	out := &Event{
		ID:      ev.ID,
		Summary: ev.Summary,
		Link:    ev.Link,
	}
	if !ev.Start.IsZero() {
		out.Start = ev.Start.Format(time.RFC3339)
	}
	return out
}
