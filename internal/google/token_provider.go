package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenProvider supplies a live OAuth token for Google API calls. It is the
// credential gate of the request pipeline: an error from Token means the
// request must be rejected before any work is done.
type TokenProvider interface {
	// Token returns a valid token, refreshing a persisted one if it has
	// expired. It returns an error when no credential is available or the
	// refresh fails, in which case the user has to re-authorize.
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken reports whether a persisted credential exists, without
	// validating or refreshing it.
	HasToken() bool
}

// FileTokenProvider persists the OAuth token as JSON on disk and refreshes
// it through the configured OAuth client, writing refreshed tokens back so
// the next process start does not need a new consent flow.
type FileTokenProvider struct {
	conf *oauth2.Config
	path string

	// OnRefresh, when set, observes refresh attempts: refreshed is true
	// when a rotated token was obtained and persisted. Not called when the
	// stored token was still valid.
	OnRefresh func(refreshed bool, err error)
}

// NewFileTokenProvider creates a provider storing its token at path. An
// empty path selects the default location under the user cache directory.
func NewFileTokenProvider(conf *oauth2.Config, path string) (*FileTokenProvider, error) {
	if conf == nil {
		return nil, fmt.Errorf("oauth config cannot be nil")
	}
	if path == "" {
		var err error
		path, err = DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}
	return &FileTokenProvider{conf: conf, path: path}, nil
}

// DefaultTokenPath returns the default token file location,
// <user cache dir>/taskpilot/google.token.json.
func DefaultTokenPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "taskpilot", "google.token.json"), nil
}

// Path returns the token file location.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// HasToken reports whether a token file exists and decodes.
func (p *FileTokenProvider) HasToken() bool {
	_, err := p.load()
	return err == nil
}

// Token loads the persisted token and returns a valid one, refreshing and
// re-persisting it when expired.
func (p *FileTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := p.load()
	if err != nil {
		return nil, fmt.Errorf("no Google credential found: %w", err)
	}

	fresh, err := p.conf.TokenSource(ctx, tok).Token()
	if err != nil {
		if p.OnRefresh != nil {
			p.OnRefresh(false, err)
		}
		return nil, fmt.Errorf("failed to refresh Google credential: %w", err)
	}

	// TokenSource returns a new token only after a refresh round trip.
	if fresh.AccessToken != tok.AccessToken {
		if err := p.Save(fresh); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
		}
		if p.OnRefresh != nil {
			p.OnRefresh(true, nil)
		}
	}

	return fresh, nil
}

// Save persists tok, creating the token directory on first use.
func (p *FileTokenProvider) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Exchange trades an authorization code for a token and persists it.
func (p *FileTokenProvider) Exchange(ctx context.Context, code string) error {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return p.Save(tok)
}

func (p *FileTokenProvider) load() (*oauth2.Token, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", p.path, err)
	}
	return &tok, nil
}

// HTTPClient returns an HTTP client that authenticates requests with the
// provider's token and keeps it fresh for the lifetime of the client. HTTP/2
// is disabled to match the Google API client behavior on long-lived
// connections.
func HTTPClient(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) *http.Client {
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, tok))

	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client
}
