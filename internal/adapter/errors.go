package adapter

import (
	"fmt"

	"github.com/hpn/promptpal/internal/domain"
)

// ErrorKind classifies why a completion failed.
type ErrorKind string

const (
	// KindValidation means a required field was missing; no request was sent.
	KindValidation ErrorKind = "validation_error"

	// KindTransport covers network failures and unreadable bodies.
	KindTransport ErrorKind = "transport_error"

	// KindUpstreamHTTP is a non-2xx response from the provider.
	KindUpstreamHTTP ErrorKind = "upstream_http_error"

	// KindUpstreamPayload is a 2xx response whose payload reports a failure.
	KindUpstreamPayload ErrorKind = "upstream_payload_error"

	// KindMalformedResponse is a body that should have been JSON but was not.
	KindMalformedResponse ErrorKind = "malformed_response_error"
)

// Fixed user-facing messages.
const (
	MsgMissingPrompt      = "Please enter a prompt."
	MsgMissingAPIKey      = "Please enter an API key."
	MsgTransportFailure   = "Failed to get response. Check API key, model selection, or network."
	MsgBodyReadFailure    = "Failed to read response body."
	MsgEmptyJSONObject    = "API returned an empty JSON object."
	MsgEmptyResponseBody  = "API returned an empty response body."
	MsgUnknownDataError   = "Unknown error occurred from API data."
	MsgNoOpenRouterOutput = "No response content from model."
	MsgNoDashScopeOutput  = "No response text from model."
)

// CompletionError is the single normalized error shape produced by the adapters.
// Error returns Message unchanged so it can be shown to the user verbatim.
type CompletionError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int   // upstream HTTP status, 0 when no response was received
	Err        error // underlying cause, if any
}

func (e *CompletionError) Error() string {
	return e.Message
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

func newCompletionError(kind ErrorKind, status int, cause error, format string, args ...any) *CompletionError {
	return &CompletionError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: status,
		Err:        cause,
	}
}

// Result is the outcome of one completion: either Text or Err, never both.
type Result struct {
	// Text is the completion on success.
	Text string

	// Provider is the upstream the request was routed to.
	Provider domain.ProviderType

	// Err is set on failure.
	Err *CompletionError
}

// OK reports whether the completion succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrorMessage returns the human-readable failure, or "" on success.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

func failed(provider domain.ProviderType, err *CompletionError) Result {
	return Result{Provider: provider, Err: err}
}
