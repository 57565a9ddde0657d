package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultEndpoint is the Gemini REST API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-pro"

	// DefaultTimeout bounds a single generateContent call. The router has no
	// retry policy, so a hung call would otherwise block the request forever.
	DefaultTimeout = 60 * time.Second

	// maxErrorBodySize caps how much of an error response body is read into
	// the returned error.
	maxErrorBodySize = 4096
)

// Config holds the settings for the Gemini client.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the model name, e.g. "gemini-2.5-pro".
	Model string

	// Endpoint overrides the API base URL, mainly for tests.
	Endpoint string

	// HTTPClient overrides the transport. A default client with
	// DefaultTimeout is used when nil.
	HTTPClient *http.Client
}

// Client calls the Gemini generateContent endpoint. It performs exactly one
// outbound call per Extract invocation, with no retries.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Gemini client from config.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GEMINI_API_KEY)")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{config: config, client: client}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// Extract builds the extraction prompt for task and returns the model's raw
// reply text. today anchors the prompt's embedded date. Transport and
// provider errors are returned as errors; the caller degrades them to a
// plain-message outcome.
func (c *Client) Extract(ctx context.Context, task string, today time.Time) (string, error) {
	prompt := BuildPrompt(task, today)
	return c.Generate(ctx, prompt)
}

// Generate sends a single-turn prompt and returns the concatenated text of
// the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.config.Endpoint, c.config.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// API key goes in a header rather than the URL so it never lands in logs.
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(detail))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var text string
	for _, p := range genResp.Candidates[0].Content.Parts {
		text += p.Text
	}

	return text, nil
}

// Gemini API wire types.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
			Role  string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}
