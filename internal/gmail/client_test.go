package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func TestAfterQuery(t *testing.T) {
	date := time.Date(2026, 7, 9, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "after:2026/07/09", AfterQuery(date))
}

func TestUnreadAfterQuery(t *testing.T) {
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "is:unread after:2026/01/02", UnreadAfterQuery(date))
}

func TestBuildRawMessage(t *testing.T) {
	raw := buildRawMessage("bob@example.com", "Project update", "Hi Bob,\nstatus below.")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	msg := string(decoded)
	assert.Contains(t, msg, "To: bob@example.com\r\n")
	assert.Contains(t, msg, "Subject: Project update\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nHi Bob,\nstatus below."))
}

func TestEncodeRFC2047(t *testing.T) {
	assert.Equal(t, "Plain subject", encodeRFC2047("Plain subject"))

	encoded := encodeRFC2047("Grüße aus München")
	assert.True(t, strings.HasPrefix(encoded, "=?UTF-8?"))
}

func TestSubjectOf(t *testing.T) {
	tests := []struct {
		name string
		msg  *gmail.Message
		want string
	}{
		{
			name: "subject present",
			msg: &gmail.Message{Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "From", Value: "alice@example.com"},
					{Name: "Subject", Value: "Quarterly review"},
				},
			}},
			want: "Quarterly review",
		},
		{
			name: "case insensitive header match",
			msg: &gmail.Message{Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "subject", Value: "lowercase header"},
				},
			}},
			want: "lowercase header",
		},
		{
			name: "empty subject falls back",
			msg: &gmail.Message{Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: ""},
				},
			}},
			want: noSubject,
		},
		{
			name: "no payload",
			msg:  &gmail.Message{},
			want: noSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectOf(tt.msg))
		})
	}
}
