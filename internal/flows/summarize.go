package flows

import (
	"context"
	"text/template"

	"github.com/hpn/promptpal/internal/adapter"
)

// SummarizeExpandedThoughtInput is the text to condense.
type SummarizeExpandedThoughtInput struct {
	ExpandedThought string `json:"expandedThought" validate:"required"`
}

// SummarizeExpandedThoughtOutput is a concise summary of the input.
type SummarizeExpandedThoughtOutput struct {
	Summary string `json:"summary" validate:"required"`
}

var summarizeExpandedThoughtFlow = definition{
	name: "summarizeExpandedThoughtFlow",
	prompt: template.Must(template.New("summarizeExpandedThoughtPrompt").Parse(
		`You are an expert summarizer, skilled at condensing complex text into its key points.

Please summarize the following expanded thought:

{{.ExpandedThought}}`)),
	schema: &adapter.GeminiSchema{
		Type: "OBJECT",
		Properties: map[string]*adapter.GeminiSchema{
			"summary": {
				Type:        "STRING",
				Description: "A concise summary of the expanded thought.",
			},
		},
		Required: []string{"summary"},
	},
}

// SummarizeExpandedThought condenses an expanded thought into its key points.
func (r *Runner) SummarizeExpandedThought(ctx context.Context, in SummarizeExpandedThoughtInput) (SummarizeExpandedThoughtOutput, error) {
	return run[SummarizeExpandedThoughtInput, SummarizeExpandedThoughtOutput](ctx, r, summarizeExpandedThoughtFlow, in)
}
