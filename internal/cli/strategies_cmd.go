package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/cli/formatter"
	"github.com/alexanderramin/ember/internal/service"
	"github.com/spf13/cobra"
)

func newStrategiesCmd(a *App, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Manage the strategy knowledge base",
	}
	cmd.AddCommand(newStrategiesImportCmd(a, opts), newStrategiesListCmd(a, opts))
	return cmd
}

func newStrategiesImportCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Embed and store strategy documents from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return app.InputError("strategies import", "open %s: %v", args[0], err)
			}
			defer f.Close()

			docs, err := service.ReadStrategyFile(f)
			if err != nil {
				return err
			}
			var n int
			err = withSpinner(cmd, a, opts, fmt.Sprintf("Embedding %d strategies...", len(docs)), func() error {
				var err error
				n, err = a.Strategies.ImportStrategies(cmd.Context(), docs)
				return err
			})
			if err != nil {
				return err
			}
			return render(cmd, opts, map[string]int{"imported": n}, func() string {
				return fmt.Sprintf("Imported %d strategies.\n", n)
			})
		},
	}
}

func newStrategiesListCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored strategy documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.Strategies.ListStrategies(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, opts, toStrategyViews(docs), func() string {
				return formatter.FormatStrategies(docs)
			})
		},
	}
}
