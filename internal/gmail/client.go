package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const noSubject = "(No Subject)"

// Client wraps the Gmail Users service.
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a Gmail client on top of an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// ListSummaries returns subject and snippet for up to max messages matching
// the Gmail query, newest first. Listing only returns message IDs, so each
// message is fetched with metadata format to read its Subject header.
func (c *Client) ListSummaries(query string, max int64) ([]EmailSummary, error) {
	res, err := c.svc.Messages.List("me").Q(query).MaxResults(max).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summaries := make([]EmailSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		msg, err := c.svc.Messages.Get("me", m.Id).
			Format("metadata").MetadataHeaders("Subject").Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		summaries = append(summaries, EmailSummary{
			Subject: subjectOf(msg),
			Snippet: msg.Snippet,
		})
	}
	return summaries, nil
}

// Send sends a plain text email and returns a confirmation with the message ID.
func (c *Client) Send(to, subject, body string) (*SentEmail, error) {
	if to == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}

	raw := buildRawMessage(to, subject, body)
	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return &SentEmail{ID: sent.Id, To: to, Subject: subject}, nil
}

// buildRawMessage assembles an RFC 2822 plain text message and encodes it in
// the base64url form the Gmail API expects.
func buildRawMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(to)
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(subject))
	b.WriteString("\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// encodeRFC2047 encodes a header value per RFC 2047 when it contains
// non-ASCII characters, and leaves pure ASCII untouched.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

func subjectOf(msg *gmail.Message) string {
	if msg.Payload == nil {
		return noSubject
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, "Subject") && h.Value != "" {
			return h.Value
		}
	}
	return noSubject
}
