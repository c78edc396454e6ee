package messagebus

import (
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
)

const (
	subjectRoot       = "ember"
	analysisSubject   = subjectRoot + ".analysis"
	taskSubject       = subjectRoot + ".tasks"
	EventAnalysisDone = "analysis.completed"
)

// AnalysisEvent is the payload published on ember.analysis.<user_id>.
type AnalysisEvent struct {
	Type                string                   `json:"type"`
	AnalysisID          string                   `json:"analysis_id"`
	UserID              string                   `json:"user_id"`
	FinalScore          float64                  `json:"final_score"`
	Level               domain.BurnoutLevel      `json:"level"`
	WorkloadScore       float64                  `json:"workload_score"`
	SentimentAdjustment float64                  `json:"sentiment_adjustment"`
	Breakdown           domain.WorkloadBreakdown `json:"breakdown"`
	Trend               domain.Trend             `json:"trend"`
	Degraded            bool                     `json:"degraded"`
	AnalyzedAt          time.Time                `json:"analyzed_at"`
}

// NewAnalysisEvent builds the event for a.
func NewAnalysisEvent(a *domain.BurnoutAnalysis) AnalysisEvent {
	return AnalysisEvent{
		Type:                EventAnalysisDone,
		AnalysisID:          a.ID,
		UserID:              a.UserID,
		FinalScore:          a.FinalScore,
		Level:               a.Level,
		WorkloadScore:       a.WorkloadScore,
		SentimentAdjustment: a.SentimentAdjustment,
		Breakdown:           a.Breakdown,
		Trend:               a.Trend,
		Degraded:            a.Degraded,
		AnalyzedAt:          a.AnalyzedAt,
	}
}

// TaskMutation is what the task collaborator publishes on ember.tasks.<user_id>
// whenever it creates, updates or completes a task.
type TaskMutation struct {
	UserID string    `json:"user_id"`
	TaskID string    `json:"task_id"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// AnalysisSubject returns the subject analyses for userID are published on.
func AnalysisSubject(userID string) string {
	return analysisSubject + "." + token(userID)
}

// TaskSubject returns the task mutation subject for userID.
func TaskSubject(userID string) string {
	return taskSubject + "." + token(userID)
}

// token makes s safe as a single subject token.
func token(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
