package domain

import (
	"sort"
	"time"
)

// WorkloadBreakdown holds the four normalized (0-100) workload sub-scores.
type WorkloadBreakdown struct {
	TaskLoad         float64 `json:"task_load"`
	MeetingLoad      float64 `json:"meeting_load"`
	Overwork         float64 `json:"overwork"`
	DeadlinePressure float64 `json:"deadline_pressure"`
}

// Dimensions returns the breakdown keyed by dimension name.
func (b WorkloadBreakdown) Dimensions() map[string]float64 {
	return map[string]float64{
		DimensionTaskLoad:         b.TaskLoad,
		DimensionMeetingLoad:      b.MeetingLoad,
		DimensionOverwork:         b.Overwork,
		DimensionDeadlinePressure: b.DeadlinePressure,
	}
}

// BurnoutSignals are the boolean burnout markers detected in qualitative text.
type BurnoutSignals struct {
	EmotionalExhaustion bool `json:"emotional_exhaustion"`
	Overwhelm           bool `json:"overwhelm"`
	Cynicism            bool `json:"cynicism"`
}

// Count returns how many signals are set.
func (s BurnoutSignals) Count() int {
	n := 0
	for _, b := range []bool{s.EmotionalExhaustion, s.Overwhelm, s.Cynicism} {
		if b {
			n++
		}
	}
	return n
}

// Active returns the names of the set signals in a stable order.
func (s BurnoutSignals) Active() []string {
	var out []string
	if s.EmotionalExhaustion {
		out = append(out, "emotional_exhaustion")
	}
	if s.Overwhelm {
		out = append(out, "overwhelm")
	}
	if s.Cynicism {
		out = append(out, "cynicism")
	}
	return out
}

// SentimentSummary is the persisted outcome of sentiment analysis for one run.
type SentimentSummary struct {
	Status     SentimentStatus `json:"status"`
	Polarity   string          `json:"polarity,omitempty"`
	Score      float64         `json:"score"`
	Themes     []string        `json:"themes"`
	Signals    BurnoutSignals  `json:"signals"`
	Summary    string          `json:"summary,omitempty"`
	EntryCount int             `json:"entry_count"`
}

// Trend compares the current score against recent history.
type Trend struct {
	Direction          TrendDirection `json:"direction"`
	ChangePercentage   float64        `json:"change_percentage"`
	DaysAtCurrentLevel int            `json:"days_at_current_level"`
	SampleSize         int            `json:"sample_size"`
}

// Contribution reports how the final score was assembled.
type Contribution struct {
	WorkloadWeight  float64 `json:"workload_weight"`
	SentimentWeight float64 `json:"sentiment_weight"`
	WorkloadPart    float64 `json:"workload_part"`
	SentimentPart   float64 `json:"sentiment_part"`
}

// BurnoutAnalysis is one append-only analysis run.
type BurnoutAnalysis struct {
	ID                  string
	UserID              string
	FinalScore          float64
	Level               BurnoutLevel
	WorkloadScore       float64
	SentimentAdjustment float64
	Breakdown           WorkloadBreakdown
	Contribution        Contribution
	Metrics             UserMetrics
	Sentiment           SentimentSummary
	Insights            []string
	Trend               Trend
	Degraded            bool
	AnalyzedAt          time.Time
}

// PrimaryIssues returns dimension names at or above threshold, highest first.
func (a *BurnoutAnalysis) PrimaryIssues(threshold float64) []string {
	type dim struct {
		name  string
		value float64
	}
	var dims []dim
	for name, v := range a.Breakdown.Dimensions() {
		if v >= threshold {
			dims = append(dims, dim{name, v})
		}
	}
	sort.Slice(dims, func(i, j int) bool {
		if dims[i].value != dims[j].value {
			return dims[i].value > dims[j].value
		}
		return dims[i].name < dims[j].name
	})
	out := make([]string, len(dims))
	for i, d := range dims {
		out[i] = d.name
	}
	return out
}

// BehavioralProfile is the single learned baseline row for a user.
type BehavioralProfile struct {
	UserID         string
	BaselineScore  float64
	StressTriggers []string
	TrendDirection TrendDirection
	SampleDays     int
	Version        int
	UpdatedAt      time.Time
}
