// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to hide two differently shaped chat APIs behind
// one call that always yields a normalized Result.
package adapter

import (
	"context"
)

// ChatCompleter defines the interface for the dual-provider chat adapter.
type ChatCompleter interface {
	// Complete routes the prompt to the provider selected by model and
	// returns the completion text or a normalized error. It never returns a
	// raw transport or decoding error.
	Complete(ctx context.Context, prompt, model, apiKey string) Result
}

var _ ChatCompleter = (*ChatAdapter)(nil)
