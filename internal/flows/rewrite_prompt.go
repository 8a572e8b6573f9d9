package flows

import (
	"context"
	"text/template"

	"github.com/hpn/promptpal/internal/adapter"
)

// RewritePromptInput is the prompt to rewrite and the model it should suit.
type RewritePromptInput struct {
	Prompt string `json:"prompt" validate:"required"`
	Model  string `json:"model" validate:"required"`
}

// RewritePromptOutput holds the prompt optimized for the requested model.
type RewritePromptOutput struct {
	RewrittenPrompt string `json:"rewrittenPrompt" validate:"required"`
}

var rewritePromptFlow = definition{
	name: "rewritePromptFlow",
	prompt: template.Must(template.New("rewritePromptPrompt").Parse(
		`You are an AI prompt optimizer. Your job is to rewrite the user's prompt to be better suited for the specified AI model.

Original Prompt: {{.Prompt}}
AI Model: {{.Model}}

Rewrite the prompt to be more effective for the AI model. Consider the model's strengths and weaknesses, its training data, and its typical use cases. The rewritten prompt should be clear, concise, and specific.

Rewritten Prompt:`)),
	schema: &adapter.GeminiSchema{
		Type: "OBJECT",
		Properties: map[string]*adapter.GeminiSchema{
			"rewrittenPrompt": {
				Type:        "STRING",
				Description: "The rewritten prompt optimized for the specified AI model.",
			},
		},
		Required: []string{"rewrittenPrompt"},
	},
}

// RewritePrompt rewrites a prompt so it works better with in.Model.
func (r *Runner) RewritePrompt(ctx context.Context, in RewritePromptInput) (RewritePromptOutput, error) {
	return run[RewritePromptInput, RewritePromptOutput](ctx, r, rewritePromptFlow, in)
}
