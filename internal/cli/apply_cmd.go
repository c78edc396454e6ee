package cli

import (
	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/cli/formatter"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/spf13/cobra"
)

func newApplyCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <recommendation-id>",
		Short: "Turn a recommendation's steps into tasks and calendar blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Apply.Apply(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, opts, toApplyView(res), func() string {
				return formatter.FormatApplyResult(res)
			})
		},
	}
}

func newApplyAllCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-all <user-id>",
		Short: "Apply every unapplied recommendation for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcomes, err := a.Apply.ApplyAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			views := make([]outcomeView, 0, len(outcomes))
			for _, o := range outcomes {
				v := outcomeView{RecommendationID: o.RecommendationID, Title: o.Title, Result: toApplyView(o.Result)}
				if o.Err != nil {
					v.Error = o.Err.Error()
				}
				views = append(views, v)
			}
			return render(cmd, opts, views, func() string {
				return formatter.FormatApplyOutcomes(outcomes)
			})
		},
	}
}

func newStatusCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "status <recommendation-id> <in_progress|cancelled>",
		Short:     "Move an applied recommendation to in progress or cancelled",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.StatusInProgress), string(domain.StatusCancelled)},
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.ApplicationStatus(args[1])
			if status != domain.StatusInProgress && status != domain.StatusCancelled {
				return app.InputError("status", "unknown status %q (want in_progress or cancelled)", args[1])
			}
			application, err := a.Apply.UpdateStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			return render(cmd, opts, toApplicationView(application), func() string {
				return formatter.FormatApplication(application)
			})
		},
	}
}
