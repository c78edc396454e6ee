package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/metrics"
)

const defaultReanalysisTimeout = 30 * time.Second

// ReanalysisHook runs best-effort background analyses after task changes.
// Concurrent triggers for the same user share one run. Failures are logged
// and never reach the caller.
type ReanalysisHook struct {
	analyzer app.AnalyzeUseCase
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	group singleflight.Group
	wg    sync.WaitGroup
}

func NewReanalysisHook(analyzer app.AnalyzeUseCase, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *ReanalysisHook {
	if timeout <= 0 {
		timeout = defaultReanalysisTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReanalysisHook{analyzer: analyzer, timeout: timeout, logger: logger, metrics: m}
}

// Trigger schedules a re-analysis of userID and returns immediately.
func (h *ReanalysisHook) Trigger(userID string) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_, _, shared := h.group.Do(userID, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
			defer cancel()

			a, err := h.analyzer.Analyze(ctx, userID)
			if err != nil {
				h.logger.Warn("background re-analysis failed", "user_id", userID, "error", err)
				h.record("error")
				return nil, err
			}
			h.logger.Info("background re-analysis complete", "user_id", userID,
				"final_score", a.FinalScore, "level", string(a.Level))
			h.record("ok")
			return a, nil
		})
		if shared {
			h.record("shared")
		}
	}()
}

// Wait blocks until every scheduled re-analysis has finished.
func (h *ReanalysisHook) Wait() {
	h.wg.Wait()
}

func (h *ReanalysisHook) record(result string) {
	if h.metrics != nil {
		h.metrics.Reanalyses.WithLabelValues(result).Inc()
	}
}

var _ ReanalysisTrigger = (*ReanalysisHook)(nil)
