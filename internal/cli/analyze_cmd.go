package cli

import (
	"github.com/alexanderramin/ember/internal/cli/formatter"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <user-id>",
		Short: "Score a user's current burnout risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var analysis *domain.BurnoutAnalysis
			err := withSpinner(cmd, a, opts, "Analyzing workload and check-ins...", func() error {
				var err error
				analysis, err = a.Analyze.Analyze(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			return render(cmd, opts, toAnalysisView(analysis), func() string {
				return formatter.FormatAnalysis(analysis)
			})
		},
	}
}

func newHistoryCmd(a *App, opts *rootOptions) *cobra.Command {
	var (
		limit int
		level levelFlag
	)
	cmd := &cobra.Command{
		Use:   "history <user-id>",
		Short: "List past analyses, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.History.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			filtered := make([]*domain.BurnoutAnalysis, 0, len(history))
			for _, h := range history {
				if level.match(h) {
					filtered = append(filtered, h)
				}
			}
			history = filtered
			views := make([]*analysisView, 0, len(history))
			for _, h := range history {
				views = append(views, toAnalysisView(h))
			}
			return render(cmd, opts, views, func() string {
				return formatter.FormatHistory(history, a.now())
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum analyses to show (0 for all)")
	cmd.Flags().Var(&level, "level", "Only show analyses at this level (GREEN, YELLOW, RED)")
	return cmd
}

func newProfileCmd(a *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Show the learned behavioral baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.History.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var view *profileView
			if p != nil {
				view = &profileView{
					UserID:         p.UserID,
					BaselineScore:  p.BaselineScore,
					StressTriggers: p.StressTriggers,
					TrendDirection: p.TrendDirection,
					SampleDays:     p.SampleDays,
					UpdatedAt:      p.UpdatedAt,
				}
			}
			return render(cmd, opts, view, func() string {
				return formatter.FormatProfile(p, a.ProfileMinDays)
			})
		},
	}
}
