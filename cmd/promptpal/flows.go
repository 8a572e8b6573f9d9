package main

import (
	"errors"
	"fmt"

	"github.com/hpn/promptpal/internal/flows"
	"github.com/spf13/cobra"
)

var errFlowsDisabled = errors.New("prompt flows are not configured: set flows.api_key or GEMINI_API_KEY")

func newRewriteCmd(a *app) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "rewrite [prompt...]",
		Short: "Rewrite a prompt so it suits the target model better",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := a.flowRunner()
			if runner == nil {
				return errFlowsDisabled
			}
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if model == "" {
				model = a.cfg.DefaultModel
			}

			out, err := runner.RewritePrompt(cmd.Context(), flows.RewritePromptInput{
				Prompt: prompt,
				Model:  model,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.RewrittenPrompt)
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model the prompt is rewritten for (default from config)")
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [text...]",
		Short: "Summarize an expanded thought into its key points",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := a.flowRunner()
			if runner == nil {
				return errFlowsDisabled
			}
			text, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			out, err := runner.SummarizeExpandedThought(cmd.Context(), flows.SummarizeExpandedThoughtInput{
				ExpandedThought: text,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Summary)
			return err
		},
	}
}
