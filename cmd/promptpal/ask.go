package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hpn/promptpal/internal/domain"
	"github.com/hpn/promptpal/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DefaultDownloadName is the file --download writes to.
const DefaultDownloadName = "ai_response.txt"

func newAskCmd(a *app) *cobra.Command {
	var (
		model    string
		apiKey   string
		output   string
		download bool
		copyOut  bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a prompt to the selected model and print the reply",
		Long: `Send a prompt to the selected model and print the reply.

The prompt is taken from the arguments, or from stdin when none are given.
The API key is asked for without echo when --api-key is not set; it is never read from the environment.`,
		Example: `  promptpal ask --model qwen-plus "Explain goroutines in one paragraph"
  echo "Write a haiku" | promptpal ask --model meta-llama/llama-3-8b-instruct --download`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if model == "" {
				model = a.cfg.DefaultModel
			}
			if _, ok := domain.FindModel(a.cfg.Models, model); !ok {
				ui.PrintWarning(fmt.Sprintf("%q is not in the model catalog; sending it to %s anyway.",
					model, domain.SelectProvider(model).DisplayName()))
			}
			// An empty prompt fails before the key matters, so don't ask for one.
			if apiKey == "" && strings.TrimSpace(prompt) != "" {
				if apiKey, err = readKey(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			ui.PrintGenerating(domain.SelectProvider(model), model)

			result := a.chatAdapter().Complete(cmd.Context(), prompt, model, apiKey)
			if !result.OK() {
				return result.Err
			}

			ui.PrintResponse(result.Text)

			if download && output == "" {
				output = DefaultDownloadName
			}
			if output != "" {
				if err := writeResponseFile(output, result.Text); err != nil {
					return err
				}
				ui.PrintSaved(output)
			}

			if copyOut {
				if err := clipboard.WriteAll(result.Text); err != nil {
					ui.PrintWarning("Could not copy to clipboard: " + err.Error())
				} else {
					ui.PrintCopied()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model id; ids containing \"/\" go to OpenRouter, others to DashScope (default from config)")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "API key for the selected provider (prompted when omitted)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the response to this file")
	cmd.Flags().BoolVar(&download, "download", false, "write the response to "+DefaultDownloadName)
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the response to the clipboard")

	return cmd
}

// readPrompt joins the arguments, or reads stdin when there are none.
// An interactive terminal with no arguments yields an empty prompt.
func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isTerminal(in) {
		return "", nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// readKey is swapped in tests that need to observe the key prompt.
var readKey = readAPIKey

// readAPIKey asks for the key without echo. Without a terminal it returns
// an empty key so the adapter reports the missing credential.
func readAPIKey(in io.Reader, prompt io.Writer) (string, error) {
	if !isTerminal(in) {
		return "", nil
	}
	f := in.(*os.File)

	fmt.Fprint(prompt, "API key: ")
	key, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeResponseFile saves the reply as a plain UTF-8 text file.
func writeResponseFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}
