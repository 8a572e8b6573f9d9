package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpn/promptpal/internal/domain"
)

// mockUpstream records what it received and replies with a fixed response.
type mockUpstream struct {
	server *httptest.Server
	calls  int32

	lastPath atomic.Value // string
	lastAuth atomic.Value // string
	lastCT   atomic.Value // string
	lastBody atomic.Value // []byte

	replyCT   string
	replyCode int
	replyBody string
}

func newMockUpstream(t *testing.T, code int, contentType, body string) *mockUpstream {
	t.Helper()
	m := &mockUpstream{replyCT: contentType, replyCode: code, replyBody: body}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.calls, 1)
		raw, _ := io.ReadAll(r.Body)
		m.lastPath.Store(r.URL.Path)
		m.lastAuth.Store(r.Header.Get("Authorization"))
		m.lastCT.Store(r.Header.Get("Content-Type"))
		m.lastBody.Store(raw)

		if m.replyCT != "" {
			w.Header().Set("Content-Type", m.replyCT)
		}
		w.WriteHeader(m.replyCode)
		io.WriteString(w, m.replyBody)
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockUpstream) callCount() int32 {
	return atomic.LoadInt32(&m.calls)
}

// newTestAdapter points both providers at the same mock, on distinct paths.
func newTestAdapter(m *mockUpstream) *ChatAdapter {
	return NewChatAdapter(
		WithOpenRouterURL(m.server.URL+"/openrouter"),
		WithDashScopeURL(m.server.URL+"/dashscope"),
		WithChatLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

const (
	openRouterModel = "deepseek/deepseek-chat-v3-0324:free"
	dashScopeModel  = "qwen-turbo"
	testKey         = "sk-test-key"
)

func TestChatAdapter_Validation(t *testing.T) {
	m := newMockUpstream(t, http.StatusOK, "application/json", `{}`)
	a := newTestAdapter(m)

	tests := []struct {
		name    string
		prompt  string
		apiKey  string
		wantMsg string
	}{
		{"empty prompt", "", testKey, MsgMissingPrompt},
		{"blank prompt", "   \n\t", testKey, MsgMissingPrompt},
		{"empty key", "hello", "", MsgMissingAPIKey},
		{"blank key", "hello", "  ", MsgMissingAPIKey},
		{"both missing reports prompt first", "", "", MsgMissingPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, model := range []string{openRouterModel, dashScopeModel} {
				res := a.Complete(context.Background(), tt.prompt, model, tt.apiKey)
				if res.OK() {
					t.Fatalf("Complete() succeeded, want validation error")
				}
				if res.Err.Kind != KindValidation {
					t.Errorf("Kind = %s, want %s", res.Err.Kind, KindValidation)
				}
				if res.ErrorMessage() != tt.wantMsg {
					t.Errorf("ErrorMessage() = %q, want %q", res.ErrorMessage(), tt.wantMsg)
				}
				if res.Text != "" {
					t.Errorf("Text = %q, want empty on error", res.Text)
				}
			}
		})
	}

	if n := m.callCount(); n != 0 {
		t.Errorf("upstream received %d calls, want 0", n)
	}
}

func TestChatAdapter_OpenRouterRequestShape(t *testing.T) {
	m := newMockUpstream(t, http.StatusOK, "application/json",
		`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`)
	a := newTestAdapter(m)

	res := a.Complete(context.Background(), "Say hi", openRouterModel, testKey)

	if !res.OK() {
		t.Fatalf("Complete() error = %s", res.ErrorMessage())
	}
	if res.Text != "hello" {
		t.Errorf("Text = %q, want hello", res.Text)
	}
	if res.Provider != domain.ProviderOpenRouter {
		t.Errorf("Provider = %s, want openrouter", res.Provider)
	}
	if path := m.lastPath.Load().(string); path != "/openrouter" {
		t.Errorf("path = %s, want /openrouter", path)
	}
	if auth := m.lastAuth.Load().(string); auth != "Bearer "+testKey {
		t.Errorf("Authorization = %q, want bearer key", auth)
	}
	if ct := m.lastCT.Load().(string); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var sent OpenRouterRequest
	if err := json.Unmarshal(m.lastBody.Load().([]byte), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	want := OpenRouterRequest{
		Model:    openRouterModel,
		Messages: []OpenRouterMessage{{Role: "user", Content: "Say hi"}},
	}
	if !reflect.DeepEqual(sent, want) {
		t.Errorf("request body = %+v, want %+v", sent, want)
	}
}

func TestChatAdapter_DashScopeRequestShape(t *testing.T) {
	m := newMockUpstream(t, http.StatusOK, "application/json", `{"output":{"text":"hi"}}`)
	a := newTestAdapter(m)

	res := a.Complete(context.Background(), "Say hi", dashScopeModel, testKey)

	if !res.OK() {
		t.Fatalf("Complete() error = %s", res.ErrorMessage())
	}
	if res.Text != "hi" {
		t.Errorf("Text = %q, want hi", res.Text)
	}
	if res.Provider != domain.ProviderDashScope {
		t.Errorf("Provider = %s, want dashscope", res.Provider)
	}
	if path := m.lastPath.Load().(string); path != "/dashscope" {
		t.Errorf("path = %s, want /dashscope", path)
	}
	if auth := m.lastAuth.Load().(string); auth != "Bearer "+testKey {
		t.Errorf("Authorization = %q, want bearer key", auth)
	}

	var sent map[string]any
	if err := json.Unmarshal(m.lastBody.Load().([]byte), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	want := map[string]any{
		"model": dashScopeModel,
		"input": map[string]any{"prompt": "Say hi"},
	}
	if !reflect.DeepEqual(sent, want) {
		t.Errorf("request body = %v, want %v", sent, want)
	}
}

func TestChatAdapter_SuccessResponses(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		body     string
		wantText string
		wantErr  string
		wantKind ErrorKind
	}{
		{
			name:     "openrouter missing choices gives placeholder",
			model:    openRouterModel,
			body:     `{"choices":[]}`,
			wantText: MsgNoOpenRouterOutput,
		},
		{
			name:     "openrouter empty content gives placeholder",
			model:    openRouterModel,
			body:     `{"choices":[{"message":{"content":""}}]}`,
			wantText: MsgNoOpenRouterOutput,
		},
		{
			name:     "dashscope missing output gives placeholder",
			model:    dashScopeModel,
			body:     `{"request_id":"abc"}`,
			wantText: MsgNoDashScopeOutput,
		},
		{
			name:     "dashscope code and message in success envelope",
			model:    dashScopeModel,
			body:     `{"code":429,"message":"rate limited"}`,
			wantErr:  "API reported error: rate limited (Code: 429)",
			wantKind: KindUpstreamPayload,
		},
		{
			name:     "string code in success envelope",
			model:    dashScopeModel,
			body:     `{"code":"InvalidApiKey","message":"Invalid API-key provided."}`,
			wantErr:  "API reported error: Invalid API-key provided. (Code: InvalidApiKey)",
			wantKind: KindUpstreamPayload,
		},
		{
			name:     "code without message is not an error",
			model:    dashScopeModel,
			body:     `{"code":"Throttling"}`,
			wantText: MsgNoDashScopeOutput,
		},
		{
			name:     "text wins over code and message",
			model:    dashScopeModel,
			body:     `{"output":{"text":"fine"},"code":"x","message":"y"}`,
			wantText: "fine",
		},
		{
			name:     "embedded error object",
			model:    openRouterModel,
			body:     `{"error":{"message":"Provider returned error","code":502}}`,
			wantErr:  "Provider returned error",
			wantKind: KindUpstreamPayload,
		},
		{
			name:     "embedded error without message",
			model:    openRouterModel,
			body:     `{"error":{"code":502}}`,
			wantErr:  MsgUnknownDataError,
			wantKind: KindUpstreamPayload,
		},
		{
			name:     "embedded error string",
			model:    openRouterModel,
			body:     `{"error":"quota exceeded"}`,
			wantErr:  "quota exceeded",
			wantKind: KindUpstreamPayload,
		},
		{
			name:     "falsy embedded error is ignored",
			model:    openRouterModel,
			body:     `{"error":null,"choices":[{"message":{"content":"ok"}}]}`,
			wantText: "ok",
		},
		{
			name:     "malformed success body",
			model:    openRouterModel,
			body:     `<html>gateway</html>`,
			wantErr:  "Received non-JSON response from API. Body: <html>gateway</html>...",
			wantKind: KindMalformedResponse,
		},
		{
			name:     "openrouter numeric id is ignored",
			model:    openRouterModel,
			body:     `{"id":12345,"choices":[{"message":{"content":"hello"}}]}`,
			wantText: "hello",
		},
		{
			name:     "openrouter string index is ignored",
			model:    openRouterModel,
			body:     `{"choices":[{"index":"0","message":{"content":"hello"}}]}`,
			wantText: "hello",
		},
		{
			name:     "dashscope fractional usage is ignored",
			model:    dashScopeModel,
			body:     `{"output":{"text":"hello"},"usage":{"input_tokens":1.5}}`,
			wantText: "hello",
		},
		{
			name:     "openrouter choice without message gives placeholder",
			model:    openRouterModel,
			body:     `{"choices":["oops"]}`,
			wantText: MsgNoOpenRouterOutput,
		},
		{
			name:     "non-object payload falls back to placeholder",
			model:    dashScopeModel,
			body:     `[1,2,3]`,
			wantText: MsgNoDashScopeOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockUpstream(t, http.StatusOK, "application/json", tt.body)
			res := newTestAdapter(m).Complete(context.Background(), "prompt", tt.model, testKey)

			if tt.wantErr == "" {
				if !res.OK() {
					t.Fatalf("Complete() error = %q, want text %q", res.ErrorMessage(), tt.wantText)
				}
				if res.Text != tt.wantText {
					t.Errorf("Text = %q, want %q", res.Text, tt.wantText)
				}
				return
			}

			if res.OK() {
				t.Fatalf("Complete() = %q, want error %q", res.Text, tt.wantErr)
			}
			if res.ErrorMessage() != tt.wantErr {
				t.Errorf("ErrorMessage() = %q, want %q", res.ErrorMessage(), tt.wantErr)
			}
			if res.Err.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", res.Err.Kind, tt.wantKind)
			}
			if res.Text != "" {
				t.Errorf("Text = %q, want empty on error", res.Text)
			}
		})
	}
}

func TestChatAdapter_HTTPErrors(t *testing.T) {
	longBody := strings.Repeat("x", 500)

	tests := []struct {
		name        string
		code        int
		contentType string
		body        string
		wantMsg     string
		wantKind    ErrorKind
	}{
		{
			name:        "error.message",
			code:        http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"error":{"message":"bad key","code":401}}`,
			wantMsg:     "API Error 401: Unauthorized. bad key",
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "top-level message",
			code:        http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body:        `{"code":"InvalidParameter","message":"Model not exist."}`,
			wantMsg:     "API Error 400: Bad Request. Model not exist.",
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "errors array",
			code:        http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"errors":[{"message":"first"},{"message":"second"}]}`,
			wantMsg:     "API Error 422: Unprocessable Entity. first",
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "unrecognized object is dumped",
			code:        http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"detail":"boom"}`,
			wantMsg:     `API Error 500: Internal Server Error. Full error JSON: {"detail":"boom"}...`,
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "empty object",
			code:        http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{}`,
			wantMsg:     "API Error 500: Internal Server Error. " + MsgEmptyJSONObject,
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "json null",
			code:        http.StatusBadGateway,
			contentType: "application/json",
			body:        `null`,
			wantMsg:     "API Error 502: Bad Gateway. Unexpected or malformed JSON. Raw text: null...",
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "declared json that is not",
			code:        http.StatusBadGateway,
			contentType: "application/json",
			body:        `<html>bad gateway</html>`,
			wantMsg:     "API Error 502: Bad Gateway. Received non-JSON response despite Content-Type. Body: <html>bad gateway</html>...",
			wantKind:    KindMalformedResponse,
		},
		{
			name:        "plain text body",
			code:        http.StatusServiceUnavailable,
			contentType: "text/plain",
			body:        "  upstream overloaded \n",
			wantMsg:     "API Error 503: Service Unavailable. upstream overloaded",
			wantKind:    KindUpstreamHTTP,
		},
		{
			name:        "empty plain body",
			code:        http.StatusForbidden,
			contentType: "text/plain",
			body:        "   ",
			wantMsg:     "API Error 403: Forbidden. " + MsgEmptyResponseBody,
			wantKind:    KindUpstreamHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockUpstream(t, tt.code, tt.contentType, tt.body)
			res := newTestAdapter(m).Complete(context.Background(), "prompt", openRouterModel, testKey)

			if res.OK() {
				t.Fatalf("Complete() succeeded with %q, want error", res.Text)
			}
			if res.ErrorMessage() != tt.wantMsg {
				t.Errorf("ErrorMessage() = %q, want %q", res.ErrorMessage(), tt.wantMsg)
			}
			if res.Err.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", res.Err.Kind, tt.wantKind)
			}
			if res.Err.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", res.Err.StatusCode, tt.code)
			}
		})
	}

	t.Run("malformed excerpt is truncated", func(t *testing.T) {
		m := newMockUpstream(t, http.StatusBadGateway, "application/json", "{"+longBody)
		res := newTestAdapter(m).Complete(context.Background(), "prompt", dashScopeModel, testKey)

		want := "API Error 502: Bad Gateway. Received non-JSON response despite Content-Type. Body: {" +
			strings.Repeat("x", 199) + "..."
		if res.ErrorMessage() != want {
			t.Errorf("ErrorMessage() = %q, want %q", res.ErrorMessage(), want)
		}
		if strings.Contains(res.ErrorMessage(), strings.Repeat("x", 200)) {
			t.Error("excerpt exceeds 200 characters")
		}
	})

	t.Run("json dump is truncated", func(t *testing.T) {
		m := newMockUpstream(t, http.StatusBadRequest, "application/json", `{"detail":"`+longBody+`"}`)
		res := newTestAdapter(m).Complete(context.Background(), "prompt", dashScopeModel, testKey)

		dump := strings.TrimSuffix(strings.TrimPrefix(res.ErrorMessage(), "API Error 400: Bad Request. Full error JSON: "), "...")
		if len([]rune(dump)) != 200 {
			t.Errorf("dump length = %d, want 200", len([]rune(dump)))
		}
	})
}

// failingBody errors on the first read and panics on any second one,
// so a retried read would fail the test.
type failingBody struct {
	reads int
}

func (b *failingBody) Read(p []byte) (int, error) {
	b.reads++
	if b.reads > 1 {
		panic("response body read twice")
	}
	return 0, errors.New("connection reset by peer")
}

func (b *failingBody) Close() error { return nil }

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestChatAdapter_BodyReadFailure(t *testing.T) {
	body := &failingBody{}
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Status:     "500 Internal Server Error",
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       body,
			Request:    r,
		}, nil
	})}

	a := NewChatAdapter(
		WithChatHTTPClient(client),
		WithChatLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	res := a.Complete(context.Background(), "prompt", dashScopeModel, testKey)

	want := "API Error 500: Internal Server Error. " + MsgBodyReadFailure
	if res.ErrorMessage() != want {
		t.Errorf("ErrorMessage() = %q, want %q", res.ErrorMessage(), want)
	}
	if res.Err.Kind != KindTransport {
		t.Errorf("Kind = %s, want %s", res.Err.Kind, KindTransport)
	}
	if body.reads != 1 {
		t.Errorf("body read %d times, want 1", body.reads)
	}
}

func TestChatAdapter_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	a := NewChatAdapter(
		WithOpenRouterURL(url),
		WithChatLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	res := a.Complete(context.Background(), "prompt", openRouterModel, testKey)

	if res.OK() {
		t.Fatal("Complete() succeeded against a closed server")
	}
	if res.Err.Kind != KindTransport {
		t.Errorf("Kind = %s, want %s", res.Err.Kind, KindTransport)
	}
	if res.ErrorMessage() != MsgTransportFailure {
		t.Errorf("ErrorMessage() = %q, want %q", res.ErrorMessage(), MsgTransportFailure)
	}
	if errors.Unwrap(res.Err) == nil {
		t.Error("transport error should wrap its cause")
	}
	if strings.Contains(res.ErrorMessage(), testKey) {
		t.Error("error message leaks the API key")
	}
}

func TestChatAdapter_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	a := NewChatAdapter(
		WithDashScopeURL(server.URL),
		WithChatTimeout(50*time.Millisecond),
		WithChatLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	res := a.Complete(context.Background(), "prompt", dashScopeModel, testKey)

	if res.OK() || res.Err.Kind != KindTransport {
		t.Fatalf("Complete() = %+v, want transport error", res)
	}
}

func TestChatAdapter_Idempotent(t *testing.T) {
	bodies := map[string]string{
		"success": `{"output":{"text":"same"}}`,
		"error":   `{"code":429,"message":"rate limited"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			m := newMockUpstream(t, http.StatusOK, "application/json", body)
			a := newTestAdapter(m)

			first := a.Complete(context.Background(), "prompt", dashScopeModel, testKey)
			second := a.Complete(context.Background(), "prompt", dashScopeModel, testKey)

			if !reflect.DeepEqual(first, second) {
				t.Errorf("results differ: %+v vs %+v", first, second)
			}
			if n := m.callCount(); n != 2 {
				t.Errorf("upstream calls = %d, want exactly one per Complete", n)
			}
		})
	}
}

func TestNewChatAdapter_Defaults(t *testing.T) {
	a := NewChatAdapter()

	if got := a.Endpoint(domain.ProviderOpenRouter); got != domain.DefaultOpenRouterURL {
		t.Errorf("openrouter endpoint = %s, want %s", got, domain.DefaultOpenRouterURL)
	}
	if got := a.Endpoint(domain.ProviderDashScope); got != domain.DefaultDashScopeURL {
		t.Errorf("dashscope endpoint = %s, want %s", got, domain.DefaultDashScopeURL)
	}
	if a.httpClient.Timeout != 0 {
		t.Errorf("default timeout = %s, want none", a.httpClient.Timeout)
	}
}
