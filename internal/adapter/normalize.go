package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	// excerptLimit bounds raw bodies and JSON dumps quoted in error messages.
	excerptLimit = 200

	// malformedExcerptLimit bounds the excerpt for JSON that is neither an
	// object with content nor "{}".
	malformedExcerptLimit = 100
)

// normalizeHTTPError turns a non-2xx response into a CompletionError.
// The body is read exactly once; a failed read is reported as is and never retried.
func normalizeHTTPError(resp *http.Response) *CompletionError {
	status := resp.StatusCode
	prefix := "API Error " + strconv.Itoa(status) + ": " + statusText(resp) + "."

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newCompletionError(KindTransport, status, err, "%s %s", prefix, MsgBodyReadFailure)
	}
	text := string(raw)

	if !isJSONContentType(resp.Header.Get("Content-Type")) {
		detail := strings.TrimSpace(text)
		if detail == "" {
			detail = MsgEmptyResponseBody
		}
		return newCompletionError(KindUpstreamHTTP, status, nil, "%s %s", prefix, detail)
	}

	parsed, err := decodeJSON(raw)
	if err != nil {
		return newCompletionError(KindMalformedResponse, status, err,
			"%s Received non-JSON response despite Content-Type. Body: %s...", prefix, truncate(text, excerptLimit))
	}

	return newCompletionError(KindUpstreamHTTP, status, nil, "%s %s", prefix, errorDetail(parsed, text))
}

// errorDetail picks the most specific human message out of a parsed error body.
func errorDetail(parsed any, raw string) string {
	obj, _ := parsed.(map[string]any)

	if errObj, ok := obj["error"].(map[string]any); ok && truthy(errObj["message"]) {
		return jsString(errObj["message"])
	}
	if truthy(obj["message"]) {
		return jsString(obj["message"])
	}
	if list, ok := obj["errors"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok && truthy(first["message"]) {
			return jsString(first["message"])
		}
	}

	if isNonEmptyContainer(parsed) {
		return "Full error JSON: " + truncate(compactJSON(parsed), excerptLimit) + "..."
	}
	if strings.TrimSpace(raw) == "{}" {
		return MsgEmptyJSONObject
	}
	return "Unexpected or malformed JSON. Raw text: " + truncate(raw, malformedExcerptLimit) + "..."
}

// embeddedError returns the message of an application-level failure carried
// inside a 2xx payload: a truthy "error" field.
func embeddedError(payload map[string]any) (string, bool) {
	errVal, ok := payload["error"]
	if !ok || !truthy(errVal) {
		return "", false
	}
	switch v := errVal.(type) {
	case map[string]any:
		if truthy(v["message"]) {
			return jsString(v["message"]), true
		}
	case string:
		return v, true
	}
	return MsgUnknownDataError, true
}

// decodeJSON parses raw into generic values, keeping numbers as json.Number
// so codes render the way the upstream sent them.
func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

func isJSONContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "application/json")
}

// statusText returns the reason phrase the server sent, falling back to the
// canonical text for the code.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// jsString renders a decoded JSON value the way string interpolation would.
func jsString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return compactJSON(t)
	}
}

func isNonEmptyContainer(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return false
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
