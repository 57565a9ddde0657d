package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// primaryCalendar is the calendar every operation targets. taskpilot manages
// a single user's primary calendar; multi-calendar support is out of scope.
const primaryCalendar = "primary"

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client using an already-authenticated HTTP
// client (see google.HTTPClient).
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateEvent inserts a new event on the primary calendar. When attendees
// are present, invitations are emailed to them.
func (c *Client) CreateEvent(input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email: email,
		})
	}

	if len(input.Recurrence) > 0 {
		event.Recurrence = input.Recurrence
	}

	call := c.svc.Events.Insert(primaryCalendar, event)
	if len(input.Attendees) > 0 {
		call = call.SendUpdates("all")
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// ListDay lists the events in the 24-hour window starting at date, ordered
// by start time.
func (c *Client) ListDay(date time.Time) ([]EventSummary, error) {
	start := date
	end := start.Add(24 * time.Hour)

	events, err := c.svc.Events.List(primaryCalendar).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}

// BusyIntervals queries free/busy for the primary calendar within [start, end).
func (c *Client) BusyIntervals(start, end time.Time) ([]TimeRange, error) {
	query := &calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items: []*calendar.FreeBusyRequestItem{
			{Id: primaryCalendar},
		},
	}

	result, err := c.svc.Freebusy.Query(query).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[primaryCalendar]
	if !ok {
		return nil, nil
	}

	var busy []TimeRange
	for _, block := range cal.Busy {
		s, err := time.Parse(time.RFC3339, block.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", block.Start, err)
		}
		e, err := time.Parse(time.RFC3339, block.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", block.End, err)
		}
		busy = append(busy, TimeRange{Start: s, End: e})
	}

	return busy, nil
}
