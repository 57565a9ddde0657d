package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scopes:       Scopes(),
	}
}

func TestFileTokenProvider_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google.token.json")
	p, err := NewFileTokenProvider(testConfig(), path)
	require.NoError(t, err)

	assert.False(t, p.HasToken())

	tok := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, p.Save(tok))
	assert.True(t, p.HasToken())

	got, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-123", got.AccessToken)
	assert.Equal(t, "refresh-456", got.RefreshToken)
}

func TestFileTokenProvider_RefreshPersistsRotatedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"rotated-789","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	conf := testConfig()
	conf.Endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	path := filepath.Join(t.TempDir(), "google.token.json")
	p, err := NewFileTokenProvider(conf, path)
	require.NoError(t, err)

	var gotRefreshed bool
	p.OnRefresh = func(refreshed bool, err error) {
		gotRefreshed = refreshed
		assert.NoError(t, err)
	}

	require.NoError(t, p.Save(&oauth2.Token{
		AccessToken:  "stale-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	got, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated-789", got.AccessToken)
	assert.True(t, gotRefreshed)

	// The rotated token must be on disk for the next process start.
	reloaded, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated-789", reloaded.AccessToken)
}

func TestFileTokenProvider_RefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	conf := testConfig()
	conf.Endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	p, err := NewFileTokenProvider(conf, filepath.Join(t.TempDir(), "google.token.json"))
	require.NoError(t, err)

	var observedErr error
	p.OnRefresh = func(refreshed bool, err error) {
		assert.False(t, refreshed)
		observedErr = err
	}

	require.NoError(t, p.Save(&oauth2.Token{
		AccessToken:  "stale-123",
		RefreshToken: "revoked",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	_, err = p.Token(context.Background())
	assert.Error(t, err)
	assert.Error(t, observedErr)
}

func TestFileTokenProvider_TokenAbsent(t *testing.T) {
	p, err := NewFileTokenProvider(testConfig(), filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	_, err = p.Token(context.Background())
	assert.Error(t, err)
}

func TestFileTokenProvider_InvalidTokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "google.token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	p, err := NewFileTokenProvider(testConfig(), path)
	require.NoError(t, err)
	assert.False(t, p.HasToken())

	_, err = p.Token(context.Background())
	assert.Error(t, err)
}

func TestFileTokenProvider_NilConfig(t *testing.T) {
	_, err := NewFileTokenProvider(nil, "")
	assert.Error(t, err)
}

func TestOAuthSettings_Config(t *testing.T) {
	t.Run("explicit credentials", func(t *testing.T) {
		conf, err := OAuthSettings{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8080/oauth2callback",
		}.Config()
		require.NoError(t, err)
		assert.Equal(t, "id", conf.ClientID)
		assert.Equal(t, Scopes(), conf.Scopes)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "")
		t.Setenv("GOOGLE_CLIENT_SECRET", "")
		_, err := OAuthSettings{}.Config()
		assert.Error(t, err)
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "env-id")
		t.Setenv("GOOGLE_CLIENT_SECRET", "env-secret")
		conf, err := OAuthSettings{}.Config()
		require.NoError(t, err)
		assert.Equal(t, "env-id", conf.ClientID)
	})
}

func TestAuthCodeURL(t *testing.T) {
	conf := testConfig()
	conf.Endpoint = oauth2.Endpoint{AuthURL: "https://auth.example.com/o/oauth2/auth"}

	url := AuthCodeURL(conf, "state-token")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
	assert.Contains(t, url, "state=state-token")
}
