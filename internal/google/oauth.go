package google

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// Scopes returns the OAuth scopes taskpilot needs: calendar read/write plus
// Gmail read and send.
func Scopes() []string {
	return []string{
		calendar.CalendarScope,
		gmail.GmailReadonlyScope,
		gmail.GmailSendScope,
	}
}

// OAuthSettings identifies the OAuth client used for the authorization flow
// and for token refresh.
type OAuthSettings struct {
	// ClientID is the Google OAuth client ID. Falls back to the
	// GOOGLE_CLIENT_ID environment variable when empty.
	ClientID string

	// ClientSecret is the Google OAuth client secret. Falls back to
	// GOOGLE_CLIENT_SECRET when empty.
	ClientSecret string

	// RedirectURL is where Google sends the user back after consent,
	// e.g. "http://localhost:8080/oauth2callback".
	RedirectURL string
}

// Config builds the oauth2.Config for these settings. It fails when no
// client credentials are configured, so misconfiguration surfaces at startup
// rather than on the first token refresh.
func (s OAuthSettings) Config() (*oauth2.Config, error) {
	clientID := s.ClientID
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	clientSecret := s.ClientSecret
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google OAuth client not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  s.RedirectURL,
		Scopes:       Scopes(),
	}, nil
}

// AuthCodeURL returns the consent URL for conf. Offline access and forced
// consent ensure Google issues a refresh token.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}
