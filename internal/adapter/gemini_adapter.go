package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultGeminiBaseURL is the default Gemini API endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiModel is the model the prompt flows run on.
	DefaultGeminiModel = "gemini-2.0-flash"

	// DefaultTimeout is the default HTTP client timeout for the flows backend.
	DefaultTimeout = 60 * time.Second
)

// GeminiAdapter runs structured-output prompts against Google Gemini.
// It backs the rewrite and summarize flows; chat completions never use it.
type GeminiAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	timeout    time.Duration
}

// GeminiAdapterOption is a functional option for configuring GeminiAdapter.
type GeminiAdapterOption func(*GeminiAdapter)

// WithBaseURL sets a custom base URL for the Gemini API.
func WithBaseURL(url string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithModel sets the Gemini model name.
func WithModel(model string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		if model != "" {
			g.model = model
		}
	}
}

// WithHTTPClient sets a custom HTTP client. The client itself is never modified.
func WithHTTPClient(client *http.Client) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero keeps the client's own.
func WithTimeout(timeout time.Duration) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.timeout = timeout
	}
}

// NewGeminiAdapter creates a new GeminiAdapter with the given API key.
func NewGeminiAdapter(apiKey string, opts ...GeminiAdapterOption) *GeminiAdapter {
	g := &GeminiAdapter{
		apiKey:  apiKey,
		baseURL: DefaultGeminiBaseURL,
		model:   DefaultGeminiModel,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.timeout > 0 {
		client := *g.httpClient
		client.Timeout = g.timeout
		g.httpClient = &client
	}

	return g
}

// Name returns the provider identifier.
func (g *GeminiAdapter) Name() string {
	return "gemini"
}

// Model returns the configured Gemini model.
func (g *GeminiAdapter) Model() string {
	return g.model
}

// GenerateStructured sends prompt as a single user turn and asks Gemini to
// answer with JSON matching schema. It returns the raw JSON text of the first
// candidate. Failures are *CompletionError values, normalized the same way as
// chat completions.
func (g *GeminiAdapter) GenerateStructured(ctx context.Context, prompt string, schema *GeminiSchema) ([]byte, error) {
	geminiReq := g.buildRequest(prompt, schema)

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, newCompletionError(KindTransport, 0, err, MsgTransportFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, normalizeHTTPError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newCompletionError(KindTransport, resp.StatusCode, err, MsgBodyReadFailure)
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, newCompletionError(KindMalformedResponse, resp.StatusCode, err,
			"Received non-JSON response from API. Body: %s...", truncate(string(respBody), excerptLimit))
	}

	if geminiResp.PromptFeedback != nil && geminiResp.PromptFeedback.BlockReason != "" {
		return nil, newCompletionError(KindUpstreamPayload, resp.StatusCode, nil,
			"Prompt was blocked by the model: %s", geminiResp.PromptFeedback.BlockReason)
	}

	text := geminiResp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, newCompletionError(KindMalformedResponse, resp.StatusCode, nil, "Model returned no output.")
	}

	return []byte(text), nil
}

// buildRequest wraps the rendered prompt in a generateContent request.
func (g *GeminiAdapter) buildRequest(prompt string, schema *GeminiSchema) GeminiRequest {
	req := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
	}

	if schema != nil {
		req.GenerationConfig = &GeminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	return req
}

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents         []GeminiContent         `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

// GeminiGenerationConfig contains generation parameters.
type GeminiGenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *GeminiSchema `json:"responseSchema,omitempty"`
}

// GeminiSchema is the OpenAPI subset Gemini accepts for structured output.
type GeminiSchema struct {
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	Properties  map[string]*GeminiSchema `json:"properties,omitempty"`
	Required    []string                 `json:"required,omitempty"`
}

// GeminiResponse represents a Gemini generateContent response.
type GeminiResponse struct {
	Candidates     []GeminiCandidate     `json:"candidates"`
	PromptFeedback *GeminiPromptFeedback `json:"promptFeedback,omitempty"`
}

// GeminiCandidate represents a single generated candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

// GeminiPromptFeedback reports why a prompt was rejected.
type GeminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// Text concatenates the text parts of the first candidate.
func (r *GeminiResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
