package server

import (
	"context"
	"sync"
	"time"

	"github.com/jvoss/taskpilot/internal/calendar"
	"github.com/jvoss/taskpilot/internal/gmail"
	"github.com/jvoss/taskpilot/internal/google"
	"github.com/jvoss/taskpilot/internal/instrumentation"
)

// CredentialStore is the credential collaborator the server depends on: the
// token gate plus the authorization-code exchange that creates a credential.
// Implemented by google.FileTokenProvider.
type CredentialStore interface {
	google.TokenProvider
	Exchange(ctx context.Context, code string) error
}

// ServerContext owns the server's long-lived state: the credential store and
// the lazily created Google API clients. It implements the router's
// CalendarService and MailService interfaces by delegating to those clients,
// recording a Google API metric per operation.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	store   CredentialStore
	oauth   *OAuthFlow
	metrics *instrumentation.Metrics

	mu         sync.Mutex
	calClient  *calendar.Client
	mailClient *gmail.Client
	shutdown   bool
}

// NewServerContext creates a server context. The Google API clients are not
// created here; they are built on first use once a credential exists.
func NewServerContext(ctx context.Context, store CredentialStore, flow *OAuthFlow, metrics *instrumentation.Metrics) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		store:   store,
		oauth:   flow,
		metrics: metrics,
	}
}

// Context returns the server's shutdown-aware context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Authorized reports whether a usable Google credential exists: one that is
// stored and either unexpired or refreshable. A stored-but-dead credential
// fails the gate the same way an absent one does, so no LLM call is spent on
// a request that could not execute anyway. Token only performs a network
// round trip when the stored token has expired.
func (sc *ServerContext) Authorized() bool {
	if !sc.store.HasToken() {
		return false
	}
	_, err := sc.store.Token(sc.ctx)
	return err == nil
}

// Store returns the credential store.
func (sc *ServerContext) Store() CredentialStore {
	return sc.store
}

// OAuth returns the authorization flow state.
func (sc *ServerContext) OAuth() *OAuthFlow {
	return sc.oauth
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}

// calendarClient returns the cached Calendar client, creating it on first
// use. The underlying HTTP client refreshes the token itself, so one client
// serves the whole process lifetime.
func (sc *ServerContext) calendarClient() (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.calClient != nil {
		return sc.calClient, nil
	}

	httpClient, err := sc.oauth.AuthenticatedClient(sc.ctx, sc.store)
	if err != nil {
		return nil, err
	}
	client, err := calendar.NewClient(sc.ctx, httpClient)
	if err != nil {
		return nil, err
	}
	sc.calClient = client
	return client, nil
}

func (sc *ServerContext) gmailClient() (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.mailClient != nil {
		return sc.mailClient, nil
	}

	httpClient, err := sc.oauth.AuthenticatedClient(sc.ctx, sc.store)
	if err != nil {
		return nil, err
	}
	client, err := gmail.NewClient(sc.ctx, httpClient)
	if err != nil {
		return nil, err
	}
	sc.mailClient = client
	return client, nil
}

// CreateEvent implements router.CalendarService.
func (sc *ServerContext) CreateEvent(input calendar.EventInput) (*calendar.EventSummary, error) {
	client, err := sc.calendarClient()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	event, err := client.CreateEvent(input)
	sc.recordGoogleOp(instrumentation.ServiceCalendar, "create", err, time.Since(start))
	return event, err
}

// ListDay implements router.CalendarService.
func (sc *ServerContext) ListDay(date time.Time) ([]calendar.EventSummary, error) {
	client, err := sc.calendarClient()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	events, err := client.ListDay(date)
	sc.recordGoogleOp(instrumentation.ServiceCalendar, "list", err, time.Since(start))
	return events, err
}

// BusyIntervals implements router.CalendarService.
func (sc *ServerContext) BusyIntervals(from, to time.Time) ([]calendar.TimeRange, error) {
	client, err := sc.calendarClient()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	busy, err := client.BusyIntervals(from, to)
	sc.recordGoogleOp(instrumentation.ServiceCalendar, "freebusy", err, time.Since(start))
	return busy, err
}

// ListSummaries implements router.MailService.
func (sc *ServerContext) ListSummaries(query string, max int64) ([]gmail.EmailSummary, error) {
	client, err := sc.gmailClient()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	emails, err := client.ListSummaries(query, max)
	sc.recordGoogleOp(instrumentation.ServiceGmail, "list", err, time.Since(start))
	return emails, err
}

// Send implements router.MailService.
func (sc *ServerContext) Send(to, subject, body string) (*gmail.SentEmail, error) {
	client, err := sc.gmailClient()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sent, err := client.Send(to, subject, body)
	sc.recordGoogleOp(instrumentation.ServiceGmail, "send", err, time.Since(start))
	return sent, err
}

func (sc *ServerContext) recordGoogleOp(service, operation string, err error, elapsed time.Duration) {
	if sc.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	sc.metrics.RecordGoogleAPIOperation(sc.ctx, service, operation, status, elapsed)
}
