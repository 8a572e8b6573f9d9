// Package main is the entry point for the promptpal CLI and server.
package main

import (
	"context"
	"os"

	"github.com/hpn/promptpal/internal/ui"
	"github.com/spf13/cobra"
)

func main() {
	a := &app{}
	if err := run(context.Background(), a, newRootCmd(a)); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

// run executes the command tree and closes the log file whether or not the
// command failed. cobra skips post-run hooks after an error.
func run(ctx context.Context, a *app, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	return err
}
