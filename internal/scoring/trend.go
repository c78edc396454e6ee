package scoring

import (
	"time"

	"github.com/alexanderramin/ember/internal/domain"
)

// TrendOptions controls trend computation.
type TrendOptions struct {
	// Window is how many prior analyses the current score is compared with.
	Window int
	// StableBand is the percentage change inside which the trend is stable.
	StableBand float64
}

// ComputeTrend compares current against the mean of the newest Window
// analyses in history. history is newest first and excludes the current run.
func ComputeTrend(current float64, level domain.BurnoutLevel, history []*domain.BurnoutAnalysis, now time.Time, opts TrendOptions) domain.Trend {
	var (
		sum float64
		n   int
	)
	for _, a := range history {
		if n == opts.Window {
			break
		}
		if a.AnalyzedAt.After(now) {
			continue
		}
		sum += a.FinalScore
		n++
	}

	trend := domain.Trend{Direction: domain.TrendStable, SampleSize: n}
	if n > 0 {
		mean := sum / float64(n)
		switch {
		case mean > 0:
			trend.ChangePercentage = Round1((current - mean) / mean * 100)
		case current > 0:
			trend.ChangePercentage = 100
		}
		switch {
		case trend.ChangePercentage > opts.StableBand:
			trend.Direction = domain.TrendRising
		case trend.ChangePercentage < -opts.StableBand:
			trend.Direction = domain.TrendFalling
		}
	}
	trend.DaysAtCurrentLevel = daysAtLevel(level, history, now)
	return trend
}

// daysAtLevel counts whole days since the oldest analysis in the unbroken run
// of analyses at level, walking back from the newest.
func daysAtLevel(level domain.BurnoutLevel, history []*domain.BurnoutAnalysis, now time.Time) int {
	var oldest *domain.BurnoutAnalysis
	for _, a := range history {
		if a.Level != level {
			break
		}
		oldest = a
	}
	if oldest == nil {
		return 0
	}
	days := int(now.Sub(oldest.AnalyzedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
