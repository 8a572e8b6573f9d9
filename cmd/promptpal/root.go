package main

import (
	"log/slog"

	"github.com/hpn/promptpal/internal/adapter"
	"github.com/hpn/promptpal/internal/config"
	"github.com/hpn/promptpal/internal/domain"
	"github.com/hpn/promptpal/internal/flows"
	"github.com/hpn/promptpal/internal/ui"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	configPath string
	cfg        *config.Configuration
	logger     *slog.Logger
	closeLog   func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "promptpal",
		Short:         "Send prompts to OpenRouter or DashScope models",
		Long:          "promptpal routes a prompt to OpenRouter (model ids containing \"/\") or DashScope (everything else)\nand normalizes whatever comes back into a single answer or error message.",
		Version:       ui.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default: ./config.yaml, ./configs, /etc/promptpal, ~/.promptpal)")

	root.AddCommand(
		newServeCmd(a),
		newAskCmd(a),
		newModelsCmd(a),
		newRewriteCmd(a),
		newSummarizeCmd(a),
	)

	return root
}

// load reads configuration and installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.GetConfigWithPath(a.configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.closeLog = cfg, logger, closeLog
	return nil
}

// close releases the log file, if one was opened. It is safe to call twice.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	closeLog := a.closeLog
	a.closeLog = nil
	return closeLog()
}

// chatAdapter builds the completion adapter from the configured upstreams.
func (a *app) chatAdapter() *adapter.ChatAdapter {
	openRouter, _ := a.cfg.GetProvider(domain.ProviderOpenRouter)
	dashScope, _ := a.cfg.GetProvider(domain.ProviderDashScope)

	return adapter.NewChatAdapter(
		adapter.WithOpenRouterURL(openRouter.URL),
		adapter.WithDashScopeURL(dashScope.URL),
		adapter.WithChatTimeout(a.cfg.Upstream.Timeout()),
		adapter.WithChatLogger(a.logger),
	)
}

// flowRunner returns nil when no flows backend is configured.
func (a *app) flowRunner() *flows.Runner {
	if !a.cfg.Flows.Enabled() {
		return nil
	}

	gemini := adapter.NewGeminiAdapter(a.cfg.Flows.APIKey,
		adapter.WithBaseURL(a.cfg.Flows.BaseURL),
		adapter.WithModel(a.cfg.Flows.Model),
		adapter.WithTimeout(a.cfg.Flows.Timeout()),
	)
	a.logger.Debug("flows backend configured",
		slog.String("backend", gemini.Name()),
		slog.String("model", gemini.Model()),
	)
	return flows.NewRunner(gemini, flows.WithLogger(a.logger))
}
