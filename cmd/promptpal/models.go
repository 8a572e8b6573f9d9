package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpn/promptpal/internal/domain"
	"github.com/hpn/promptpal/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// modelEntry is one catalog row in json and yaml output.
type modelEntry struct {
	Label    string              `json:"label" yaml:"label"`
	Value    string              `json:"value" yaml:"value"`
	Provider domain.ProviderType `json:"provider" yaml:"provider"`
	Default  bool                `json:"default,omitempty" yaml:"default,omitempty"`
}

func newModelsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the selectable models and where they are routed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeModels(cmd.OutOrStdout(), format, a.cfg.Models, a.cfg.DefaultModel)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func writeModels(w io.Writer, format string, models []domain.ModelOption, defaultModel string) error {
	if format == "table" {
		return ui.PrintModelTable(w, models, defaultModel)
	}

	entries := make([]modelEntry, len(models))
	for i, m := range models {
		entries[i] = modelEntry{
			Label:    m.Label,
			Value:    m.Value,
			Provider: m.Provider(),
			Default:  m.Value == defaultModel,
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}
