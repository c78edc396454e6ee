package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/messagebus"
	"github.com/alexanderramin/ember/internal/service"
	"github.com/spf13/cobra"
)

// App holds the use cases the commands drive.
type App struct {
	Analyze    app.AnalyzeUseCase
	History    app.HistoryUseCase
	Recommend  app.RecommendUseCase
	Apply      app.ApplyUseCase
	Feedback   app.FeedbackUseCase
	Strategies app.StrategyUseCase

	// Watch is nil when no message bus is configured.
	Watch *WatchDeps

	// ProfileMinDays is shown when no profile has been learned yet.
	ProfileMinDays int
	IsInteractive  func() bool
	Now            func() time.Time
}

// WatchDeps wires the long-running watcher.
type WatchDeps struct {
	Mutations  messagebus.TaskMutationSubscriber
	Reanalysis service.ReanalysisTrigger
	// MetricsAddr serves MetricsHandler at /metrics when both are set.
	MetricsAddr    string
	MetricsHandler http.Handler
}

type rootOptions struct {
	json bool
}

// NewRootCmd creates the top-level "ember" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ember",
		Short:         "Burnout analysis and recommendations from your tasks, calendar and check-ins",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Print machine-readable JSON")

	root.AddCommand(
		newAnalyzeCmd(a, opts),
		newHistoryCmd(a, opts),
		newProfileCmd(a, opts),
		newRecommendCmd(a, opts),
		newApplyCmd(a, opts),
		newApplyAllCmd(a, opts),
		newStatusCmd(a, opts),
		newFeedbackCmd(a, opts),
		newStrategiesCmd(a, opts),
		newWatchCmd(a),
	)
	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// ExitCode maps an error to the process exit status: 2 for bad input,
// 3 for an unavailable dependency, 4 for unusable model output, 5 for a
// concurrent update, 1 otherwise.
func ExitCode(err error) int {
	var appErr *app.Error
	if !errors.As(err, &appErr) {
		return 1
	}
	switch appErr.Kind {
	case app.KindInput:
		return 2
	case app.KindDependency:
		return 3
	case app.KindGeneration:
		return 4
	case app.KindConsistency:
		return 5
	default:
		return 1
	}
}
