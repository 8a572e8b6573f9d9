// Package flows implements the one-shot prompt helpers backed by a generative model:
// rewriting a prompt for a target model and summarizing an expanded thought.
//
// Every flow follows the same steps: validate the input, render a prompt template,
// make a single structured-output call, then decode and validate the output.
package flows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hpn/promptpal/internal/adapter"
)

// Generator produces a JSON document that conforms to schema.
type Generator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *adapter.GeminiSchema) ([]byte, error)
}

var _ Generator = (*adapter.GeminiAdapter)(nil)

// MsgOutputMismatch is returned when the model output cannot be decoded into the flow's output type.
const MsgOutputMismatch = "Model output did not match the expected schema."

// Runner executes flows against a Generator. It is safe for concurrent use.
type Runner struct {
	gen      Generator
	validate *validator.Validate
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for flow diagnostics.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner backed by gen.
func NewRunner(gen Generator, opts ...RunnerOption) *Runner {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	r := &Runner{
		gen:      gen,
		validate: v,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// definition binds a flow name to its prompt template and output schema.
type definition struct {
	name   string
	prompt *template.Template
	schema *adapter.GeminiSchema
}

func run[In, Out any](ctx context.Context, r *Runner, def definition, in In) (Out, error) {
	var out Out
	start := time.Now()

	if err := r.validate.Struct(in); err != nil {
		return out, invalidInput(err)
	}

	var prompt bytes.Buffer
	if err := def.prompt.Execute(&prompt, in); err != nil {
		return out, fmt.Errorf("%s: render prompt: %w", def.name, err)
	}

	raw, err := r.gen.GenerateStructured(ctx, prompt.String(), def.schema)
	if err != nil {
		r.logger.Warn("flow failed",
			slog.String("flow", def.name),
			slog.Any("error", err),
		)
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, outputMismatch(err)
	}
	if err := r.validate.Struct(out); err != nil {
		return out, outputMismatch(err)
	}

	r.logger.Debug("flow completed",
		slog.String("flow", def.name),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// invalidInput turns validator failures into a validation CompletionError.
func invalidInput(err error) *adapter.CompletionError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &adapter.CompletionError{Kind: adapter.KindValidation, Message: err.Error(), Err: err}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			problems = append(problems, fe.Field()+" is required")
			continue
		}
		problems = append(problems, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
	}
	return &adapter.CompletionError{
		Kind:    adapter.KindValidation,
		Message: "Invalid input: " + strings.Join(problems, "; ") + ".",
		Err:     err,
	}
}

func outputMismatch(err error) *adapter.CompletionError {
	return &adapter.CompletionError{
		Kind:    adapter.KindMalformedResponse,
		Message: MsgOutputMismatch,
		Err:     err,
	}
}

// jsonFieldName reports fields by their wire name in validation errors.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}
