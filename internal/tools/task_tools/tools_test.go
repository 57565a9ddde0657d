package task_tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/oauth2"

	"github.com/jvoss/taskpilot/internal/router"
	"github.com/jvoss/taskpilot/internal/server"
)

type fakeStore struct {
	hasToken bool
	tokenErr error
}

func (f *fakeStore) Token(_ context.Context) (*oauth2.Token, error) {
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return &oauth2.Token{AccessToken: "tok"}, nil
}

func (f *fakeStore) HasToken() bool { return f.hasToken }

func (f *fakeStore) Exchange(_ context.Context, _ string) error {
	f.hasToken = true
	return nil
}

type fakeRouter struct {
	env  router.Envelope
	task string
}

func (f *fakeRouter) Route(_ context.Context, task string) router.Envelope {
	f.task = task
	return f.env
}

func newServerContext(t *testing.T, authorized bool) *server.ServerContext {
	t.Helper()

	conf := &oauth2.Config{ClientID: "id", ClientSecret: "secret"}
	sc := server.NewServerContext(context.Background(), &fakeStore{hasToken: authorized}, server.NewOAuthFlow(conf), nil)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func routeRequest(task any) mcp.CallToolRequest {
	args := map[string]interface{}{}
	if task != nil {
		args["task"] = task
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "route_task",
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil {
		t.Fatal("nil tool result")
	}
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleRouteTask_MissingTask(t *testing.T) {
	sc := newServerContext(t, true)
	rt := &fakeRouter{}

	for name, task := range map[string]any{
		"absent":     nil,
		"empty":      "",
		"whitespace": "   ",
		"wrong type": 42,
	} {
		result, err := handleRouteTask(context.Background(), routeRequest(task), sc, rt)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if !result.IsError {
			t.Errorf("%s: expected error result for missing task", name)
		}
	}

	if rt.task != "" {
		t.Errorf("router should not be called for invalid input, got %q", rt.task)
	}
}

func TestHandleRouteTask_Unauthorized(t *testing.T) {
	sc := newServerContext(t, false)
	rt := &fakeRouter{}

	result, err := handleRouteTask(context.Background(), routeRequest("summarize my emails"), sc, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env router.Envelope
	if err := json.Unmarshal([]byte(resultText(t, result)), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.Status != router.StatusAuthRequired {
		t.Errorf("expected status %q, got %q", router.StatusAuthRequired, env.Status)
	}
	if rt.task != "" {
		t.Errorf("router should not be called without a credential, got %q", rt.task)
	}
}

func TestHandleRouteTask_DeadCredentialRejected(t *testing.T) {
	// A stored credential whose refresh fails must be treated like a
	// missing one: auth_required, and the router is never invoked.
	conf := &oauth2.Config{ClientID: "id", ClientSecret: "secret"}
	store := &fakeStore{hasToken: true, tokenErr: errors.New("failed to refresh Google credential: invalid_grant")}
	sc := server.NewServerContext(context.Background(), store, server.NewOAuthFlow(conf), nil)
	t.Cleanup(func() { _ = sc.Shutdown() })
	rt := &fakeRouter{}

	result, err := handleRouteTask(context.Background(), routeRequest("summarize my emails"), sc, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env router.Envelope
	if err := json.Unmarshal([]byte(resultText(t, result)), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.Status != router.StatusAuthRequired {
		t.Errorf("expected status %q, got %q", router.StatusAuthRequired, env.Status)
	}
	if rt.task != "" {
		t.Errorf("router should not be called with a dead credential, got %q", rt.task)
	}
}

func TestHandleRouteTask_ReturnsEnvelopeJSON(t *testing.T) {
	sc := newServerContext(t, true)
	rt := &fakeRouter{env: router.Envelope{Status: router.StatusMessage, Message: "Hello!"}}

	result, err := handleRouteTask(context.Background(), routeRequest("say hi"), sc, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rt.task != "say hi" {
		t.Errorf("expected router to receive %q, got %q", "say hi", rt.task)
	}

	var env router.Envelope
	if err := json.Unmarshal([]byte(resultText(t, result)), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.Status != router.StatusMessage || env.Message != "Hello!" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestHandleAuthStatus(t *testing.T) {
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "auth_status"},
	}

	sc := newServerContext(t, false)
	result, err := handleAuthStatus(context.Background(), request, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "Not authorized") {
		t.Errorf("expected not-authorized message, got %q", resultText(t, result))
	}

	sc = newServerContext(t, true)
	result, err = handleAuthStatus(context.Background(), request, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "Authorized") {
		t.Errorf("expected authorized message, got %q", resultText(t, result))
	}
}
