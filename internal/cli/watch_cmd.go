package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/messagebus"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze users as their tasks change",
		Long: `Subscribe to task mutations on the message bus and schedule a
background re-analysis for each affected user. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.Watch
			if w == nil || w.Mutations == nil || w.Reanalysis == nil {
				return app.InputError("watch", "no message bus configured; set EMBER_NATS_URL")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var srv *http.Server
			if w.MetricsAddr != "" && w.MetricsHandler != nil {
				mux := http.NewServeMux()
				mux.Handle("/metrics", w.MetricsHandler)
				srv = &http.Server{Addr: w.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						fmt.Fprintf(cmd.ErrOrStderr(), "metrics server: %v\n", err)
					}
				}()
				fmt.Fprintf(out, "Serving metrics on %s/metrics\n", w.MetricsAddr)
			}

			var mu sync.Mutex
			err := w.Mutations.SubscribeTaskMutations(func(m messagebus.TaskMutation) {
				if m.UserID == "" {
					return
				}
				w.Reanalysis.Trigger(m.UserID)
				mu.Lock()
				fmt.Fprintf(out, "%s task %s for %s, re-analysis scheduled\n", m.Action, m.TaskID, m.UserID)
				mu.Unlock()
			})
			if err != nil {
				if srv != nil {
					_ = srv.Close()
				}
				return app.DependencyError("watch", err)
			}
			fmt.Fprintln(out, "Watching task mutations. Ctrl-C to stop.")

			<-ctx.Done()
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}
			return nil
		},
	}
}
