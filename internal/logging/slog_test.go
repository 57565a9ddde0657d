package logging

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	hashed := AnonymizeEmail("alice@example.com")

	assert.True(t, strings.HasPrefix(hashed, "user:"))
	assert.NotContains(t, hashed, "alice")
	assert.NotContains(t, hashed, "example.com")

	// Same input must hash identically so entries stay correlatable.
	assert.Equal(t, hashed, AnonymizeEmail("alice@example.com"))
	assert.NotEqual(t, hashed, AnonymizeEmail("bob@example.com"))
}

func TestAnonymizeEmail_Empty(t *testing.T) {
	assert.Equal(t, "", AnonymizeEmail(""))
}

func TestErr(t *testing.T) {
	attr := Err(assert.AnError)
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, assert.AnError.Error(), attr.Value.String())
}

func TestErr_Nil(t *testing.T) {
	attr := Err(nil)
	// An empty group is omitted by slog handlers.
	assert.Equal(t, "", attr.Key)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	assert.Equal(t, "[token:9 chars]", SanitizeToken("ya29.abcd"))
	assert.NotContains(t, SanitizeToken("secret-token"), "secret")
}

func TestAttributeKeys(t *testing.T) {
	assert.Equal(t, KeyOperation, Operation("route").Key)
	assert.Equal(t, KeyAction, Action("send_email").Key)
	assert.Equal(t, KeyStatus, Status("scheduled").Key)
	assert.Equal(t, KeyDuration, Duration(0).Key)
}
