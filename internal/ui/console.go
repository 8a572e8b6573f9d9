package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/hpn/promptpal/internal/domain"
)

// Output is where console messages are written. Tests may swap it.
var Output io.Writer = color.Output

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETION OUTPUT
// ══════════════════════════════════════════════════════════════════════════════

// PrintGenerating announces an outbound call.
// Format: [OPENROUTER] model · Generating response...
func PrintGenerating(provider domain.ProviderType, model string) {
	infoBadge.Fprintf(Output, "[%s]", strings.ToUpper(string(provider)))
	fmt.Fprint(Output, " ")
	accentText.Fprint(Output, model)
	mutedText.Fprintln(Output, " · Generating response...")
}

// PrintResponse prints the model's reply under a heading.
func PrintResponse(text string) {
	fmt.Fprintln(Output)
	neonBlue.Fprintln(Output, "AI Response")
	mutedText.Fprintln(Output, strings.Repeat("─", 40))
	fmt.Fprintln(Output, text)
	fmt.Fprintln(Output)
}

// PrintError prints a failure message.
// Format: [ERROR] message
func PrintError(msg string) {
	errorBadge.Fprint(Output, " ERROR ")
	fmt.Fprint(Output, " ")
	errorText.Fprintln(Output, msg)
}

// PrintWarning prints a non-fatal problem.
func PrintWarning(msg string) {
	warningBadge.Fprint(Output, "[WARN]")
	fmt.Fprint(Output, " ")
	warningText.Fprintln(Output, msg)
}

// PrintCopied confirms a clipboard copy.
func PrintCopied() {
	successBadge.Fprint(Output, " COPIED ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Response copied to clipboard.")
}

// PrintSaved confirms the response was written to path.
func PrintSaved(path string) {
	successBadge.Fprint(Output, " SAVED ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, path)
}

// ══════════════════════════════════════════════════════════════════════════════
// MODEL CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// PrintModelTable writes the catalog as an aligned table, marking the default.
func PrintModelTable(w io.Writer, models []domain.ModelOption, defaultModel string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tLABEL\tMODEL\tPROVIDER")
	for _, m := range models {
		marker := ""
		if m.Value == defaultModel {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, m.Label, m.Value, m.Provider().DisplayName())
	}
	return tw.Flush()
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(host string, port int, defaultModel string, flowsEnabled bool) {
	fmt.Fprintln(Output)
	infoBadge.Fprint(Output, "[SERVER]")
	fmt.Fprint(Output, " Listening on ")
	neonBlue.Fprintf(Output, "http://%s:%d\n", host, port)

	infoBadge.Fprint(Output, "[SERVER]")
	fmt.Fprint(Output, " Default model: ")
	accentText.Fprint(Output, defaultModel)
	fmt.Fprint(Output, " | Flows: ")
	if flowsEnabled {
		successText.Fprintln(Output, "enabled")
	} else {
		warningText.Fprintln(Output, "disabled")
	}

	fmt.Fprintln(Output)
	printEndpoints()
}

// printEndpoints prints the available API endpoints.
func printEndpoints() {
	endpoints := []struct {
		method, path, desc string
	}{
		{"POST", "/v1/complete", "Chat completion"},
		{"GET", "/v1/models", "List models"},
		{"POST", "/v1/flows/rewrite-prompt", "Rewrite a prompt"},
		{"POST", "/v1/flows/summarize-expanded-thought", "Summarize a thought"},
		{"GET", "/health", "Health check"},
	}

	mutedText.Fprintln(Output, "  ┌──────────────────────────────────────────────────────────────────────────┐")
	for _, e := range endpoints {
		mutedText.Fprint(Output, "  │ ")
		if e.method == "POST" {
			methodPOST.Fprint(Output, " POST ")
		} else {
			methodGET.Fprint(Output, " GET  ")
		}
		fmt.Fprintf(Output, " %-38s", e.path)
		mutedText.Fprintf(Output, "%-26s", e.desc)
		mutedText.Fprintln(Output, " │")
	}
	mutedText.Fprintln(Output, "  └──────────────────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(Output)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Fprintln(Output)
	warningBadge.Fprint(Output, "[SHUTDOWN]")
	warningText.Fprintln(Output, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Server stopped. Goodbye! 👋")
}

// MaskKey returns a short masked version of an API key.
// Format: xxxx...xxxx
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
