package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/jvoss/taskpilot/internal/google"
)

// OAuthFlow tracks the state of the browser-based authorization flow and
// hands out authenticated HTTP clients once a credential exists. taskpilot
// serves a single user, so one pending state value at a time is enough.
type OAuthFlow struct {
	conf *oauth2.Config

	mu    sync.Mutex
	state string
}

// NewOAuthFlow creates a flow around the given OAuth client configuration.
func NewOAuthFlow(conf *oauth2.Config) *OAuthFlow {
	return &OAuthFlow{conf: conf}
}

// Config returns the underlying OAuth client configuration.
func (f *OAuthFlow) Config() *oauth2.Config {
	return f.conf
}

// BeginURL generates a fresh anti-forgery state value and returns the Google
// consent URL carrying it. Each call invalidates the previous pending state.
func (f *OAuthFlow) BeginURL() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	state := hex.EncodeToString(buf)

	f.mu.Lock()
	f.state = state
	f.mu.Unlock()

	return google.AuthCodeURL(f.conf, state), nil
}

// VerifyState checks a callback state value against the pending one and
// clears it, so a state can be redeemed only once.
func (f *OAuthFlow) VerifyState(state string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == "" || state == "" {
		return false
	}
	ok := subtle.ConstantTimeCompare([]byte(f.state), []byte(state)) == 1
	f.state = ""
	return ok
}

// AuthenticatedClient returns an HTTP client that signs requests with the
// provider's current token and refreshes it transparently.
func (f *OAuthFlow) AuthenticatedClient(ctx context.Context, provider google.TokenProvider) (*http.Client, error) {
	tok, err := provider.Token(ctx)
	if err != nil {
		return nil, err
	}
	return google.HTTPClient(ctx, f.conf, tok), nil
}
