package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jvoss/taskpilot/internal/instrumentation"
	"github.com/jvoss/taskpilot/internal/logging"
	"github.com/jvoss/taskpilot/internal/router"
)

// TaskRouter routes one task to one envelope. Implemented by *router.Router.
type TaskRouter interface {
	Route(ctx context.Context, task string) router.Envelope
}

// taskRequest is the body of POST /tasks.
type taskRequest struct {
	Task string `json:"task"`
}

// errorResponse is the body of non-200 responses.
type errorResponse struct {
	Error string `json:"error"`
}

// authStatusResponse is the body of GET /auth/status.
type authStatusResponse struct {
	Authorized bool `json:"authorized"`
}

// callbackHTML is shown in the browser tab after a successful authorization.
const callbackHTML = `<!DOCTYPE html>
<html>
<body>
<h2>Authorization successful. You can close this tab.</h2>
<script>window.close();</script>
</body>
</html>
`

// handleTasks is POST /tasks: the single routing endpoint. The credential
// gate runs before anything else; without a credential the request is
// rejected with 401 and no model call is made. Every routed outcome,
// including parse and execution failures, is HTTP 200 with an envelope.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: expected {\"task\": \"...\"}"})
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "task is required"})
		return
	}

	if !s.sc.Authorized() {
		writeJSON(w, http.StatusUnauthorized, router.AuthRequired())
		return
	}

	ctx, span := instrumentation.StartTaskSpan(r.Context())
	defer span.End()

	env := s.router.Route(ctx, req.Task)

	span.SetAttributes(statusSpanAttrs(env)...)
	if env.Status == router.StatusError {
		instrumentation.SetSpanError(span, errForEnvelope(env))
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	writeJSON(w, http.StatusOK, env)
}

// handleAuthorize is GET /authorize: redirects the browser to the Google
// consent page.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	url, err := s.sc.OAuth().BeginURL()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to begin authorization", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to begin authorization"})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// handleOAuthCallback is GET /oauth2callback: Google redirects here with the
// authorization code. A successful exchange persists the credential and
// tells the user to close the tab.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		s.recordAuth(ctx, instrumentation.OAuthResultFailure)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "authorization denied: " + errParam})
		return
	}

	if !s.sc.OAuth().VerifyState(r.URL.Query().Get("state")) {
		s.recordAuth(ctx, instrumentation.OAuthResultFailure)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid oauth state"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.recordAuth(ctx, instrumentation.OAuthResultFailure)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing authorization code"})
		return
	}

	if err := s.sc.Store().Exchange(ctx, code); err != nil {
		s.logger.ErrorContext(ctx, "oauth code exchange failed", logging.Err(err))
		s.recordAuth(ctx, instrumentation.OAuthResultFailure)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to exchange authorization code"})
		return
	}

	s.recordAuth(ctx, instrumentation.OAuthResultSuccess)
	s.logger.InfoContext(ctx, "google authorization completed")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(callbackHTML))
}

// handleAuthStatus is GET /auth/status: reports whether a credential exists.
func (s *Server) handleAuthStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, authStatusResponse{Authorized: s.sc.Authorized()})
}

func (s *Server) recordAuth(ctx context.Context, result string) {
	if s.metrics != nil {
		s.metrics.RecordOAuthAuth(ctx, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
