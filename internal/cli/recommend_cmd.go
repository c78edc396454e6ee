package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRecommendCmd(a *App, opts *rootOptions) *cobra.Command {
	var analysisID string
	cmd := &cobra.Command{
		Use:   "recommend [user-id]",
		Short: "Generate recommendations for a fresh or existing analysis",
		Long: `Generate personalized recommendations.

With a user ID, a fresh analysis runs first. With --analysis, recommendations
are generated against that stored analysis instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if analysisID == "" && len(args) == 0 {
				return app.InputError("recommend", "give a user ID or --analysis")
			}

			var res *app.RecommendResult
			err := withSpinner(cmd, a, opts, "Generating recommendations...", func() error {
				var err error
				if analysisID != "" {
					res, err = a.Recommend.Generate(cmd.Context(), analysisID)
				} else {
					res, err = a.Recommend.GenerateLatest(cmd.Context(), args[0])
				}
				return err
			})
			if err != nil {
				var appErr *app.Error
				if errors.As(err, &appErr) && appErr.Kind == app.KindGeneration && !opts.json {
					fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatStrategyFallback(appErr.Strategies))
				}
				return err
			}
			if len(args) == 1 && res.Analysis != nil && res.Analysis.UserID != args[0] {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim(fmt.Sprintf("note: analysis belongs to user %s", res.Analysis.UserID)))
			}
			return render(cmd, opts, toRecommendView(res), func() string {
				return formatter.FormatRecommendations(res)
			})
		},
	}
	cmd.Flags().StringVar(&analysisID, "analysis", "", "Use this stored analysis instead of running a new one")
	return cmd
}
