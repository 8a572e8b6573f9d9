package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpn/promptpal/internal/domain"
)

// ChatAdapter sends a single prompt to OpenRouter or DashScope and normalizes
// the two providers' success and error shapes into a Result.
// It holds no per-request state and is safe for concurrent use.
type ChatAdapter struct {
	endpoints  map[domain.ProviderType]string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// ChatAdapterOption is a functional option for configuring ChatAdapter.
type ChatAdapterOption func(*ChatAdapter)

// WithOpenRouterURL overrides the OpenRouter chat-completions endpoint.
func WithOpenRouterURL(url string) ChatAdapterOption {
	return func(a *ChatAdapter) {
		a.endpoints[domain.ProviderOpenRouter] = url
	}
}

// WithDashScopeURL overrides the DashScope generation endpoint.
func WithDashScopeURL(url string) ChatAdapterOption {
	return func(a *ChatAdapter) {
		a.endpoints[domain.ProviderDashScope] = url
	}
}

// WithChatHTTPClient sets a custom HTTP client.
func WithChatHTTPClient(client *http.Client) ChatAdapterOption {
	return func(a *ChatAdapter) {
		a.httpClient = client
	}
}

// WithChatTimeout bounds each upstream call. Zero keeps the transport default.
func WithChatTimeout(timeout time.Duration) ChatAdapterOption {
	return func(a *ChatAdapter) {
		a.timeout = timeout
	}
}

// WithChatLogger sets a custom logger.
func WithChatLogger(logger *slog.Logger) ChatAdapterOption {
	return func(a *ChatAdapter) {
		a.logger = logger
	}
}

// NewChatAdapter creates a ChatAdapter pointed at the public endpoints.
func NewChatAdapter(opts ...ChatAdapterOption) *ChatAdapter {
	a := &ChatAdapter{
		endpoints: map[domain.ProviderType]string{
			domain.ProviderOpenRouter: domain.DefaultOpenRouterURL,
			domain.ProviderDashScope:  domain.DefaultDashScopeURL,
		},
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.timeout > 0 {
		client := *a.httpClient
		client.Timeout = a.timeout
		a.httpClient = &client
	}

	return a
}

// Endpoint returns the URL requests for the given provider are sent to.
func (a *ChatAdapter) Endpoint(provider domain.ProviderType) string {
	return a.endpoints[provider]
}

// Complete validates the input, sends exactly one POST to the provider chosen
// by model and normalizes the outcome. No retries are attempted.
func (a *ChatAdapter) Complete(ctx context.Context, prompt, model, apiKey string) Result {
	provider := domain.SelectProvider(model)

	if strings.TrimSpace(prompt) == "" {
		return failed(provider, newCompletionError(KindValidation, 0, nil, MsgMissingPrompt))
	}
	if strings.TrimSpace(apiKey) == "" {
		return failed(provider, newCompletionError(KindValidation, 0, nil, MsgMissingAPIKey))
	}

	var body any
	if provider == domain.ProviderOpenRouter {
		body = newOpenRouterRequest(model, prompt)
	} else {
		body = newDashScopeRequest(model, prompt)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return failed(provider, newCompletionError(KindValidation, 0, err, "Failed to encode request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoints[provider], bytes.NewReader(payload))
	if err != nil {
		return failed(provider, newCompletionError(KindTransport, 0, err, MsgTransportFailure))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.Warn("upstream request failed",
			slog.String("provider", string(provider)),
			slog.String("model", model),
			slog.String("error", err.Error()),
		)
		return failed(provider, newCompletionError(KindTransport, 0, err, MsgTransportFailure))
	}
	defer resp.Body.Close()

	result := a.handleResponse(resp, provider)

	if result.OK() {
		a.logger.Debug("completion received",
			slog.String("provider", string(provider)),
			slog.String("model", model),
			slog.Duration("latency", time.Since(start)),
		)
	} else {
		a.logger.Warn("completion failed",
			slog.String("provider", string(provider)),
			slog.String("model", model),
			slog.Int("status", resp.StatusCode),
			slog.String("kind", string(result.Err.Kind)),
			slog.String("message", result.Err.Message),
		)
	}

	return result
}

// handleResponse applies the normalization rules to a received response.
func (a *ChatAdapter) handleResponse(resp *http.Response, provider domain.ProviderType) Result {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(provider, normalizeHTTPError(resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(provider, newCompletionError(KindTransport, resp.StatusCode, err, MsgBodyReadFailure))
	}

	parsed, err := decodeJSON(raw)
	if err != nil {
		return failed(provider, newCompletionError(KindMalformedResponse, resp.StatusCode, err,
			"Received non-JSON response from API. Body: %s...", truncate(string(raw), excerptLimit)))
	}

	envelope, _ := parsed.(map[string]any)
	if msg, ok := embeddedError(envelope); ok {
		return failed(provider, newCompletionError(KindUpstreamPayload, resp.StatusCode, nil, "%s", msg))
	}

	text, placeholder := extractText(parsed, provider)
	if text != "" {
		return Result{Text: text, Provider: provider}
	}

	if truthy(envelope["code"]) && truthy(envelope["message"]) {
		return failed(provider, newCompletionError(KindUpstreamPayload, resp.StatusCode, nil,
			"API reported error: %s (Code: %s)", jsString(envelope["message"]), jsString(envelope["code"])))
	}

	return Result{Text: placeholder, Provider: provider}
}

// extractText reads only the provider's text path from the decoded payload;
// the rest of the body is ignored. A missing or falsy value yields "" and the
// provider's placeholder.
func extractText(payload any, provider domain.ProviderType) (text, placeholder string) {
	obj, _ := payload.(map[string]any)

	if provider == domain.ProviderOpenRouter {
		choices, _ := obj["choices"].([]any)
		if len(choices) == 0 {
			return "", MsgNoOpenRouterOutput
		}
		first, _ := choices[0].(map[string]any)
		message, _ := first["message"].(map[string]any)
		return textValue(message["content"]), MsgNoOpenRouterOutput
	}

	output, _ := obj["output"].(map[string]any)
	return textValue(output["text"]), MsgNoDashScopeOutput
}

func textValue(v any) string {
	if !truthy(v) {
		return ""
	}
	return jsString(v)
}
