package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/ember/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// render prints v as indented JSON when --json is set and text() otherwise.
func render(cmd *cobra.Command, opts *rootOptions, v any, text func() string) error {
	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), text())
	return err
}

// withSpinner shows a spinner on stderr while fn runs, for interactive text output only.
func withSpinner(cmd *cobra.Command, a *App, opts *rootOptions, message string, fn func() error) error {
	if opts.json || !a.interactive() {
		return fn()
	}
	stop := formatter.StartSpinner(cmd.ErrOrStderr(), message)
	defer stop()
	return fn()
}
