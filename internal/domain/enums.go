package domain

type BurnoutLevel string

const (
	LevelGreen  BurnoutLevel = "GREEN"
	LevelYellow BurnoutLevel = "YELLOW"
	LevelRed    BurnoutLevel = "RED"
)

type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"high": true, "medium": true, "low": true,
}

type EntryType string

const (
	EntryDiary      EntryType = "diary"
	EntryCheckIn    EntryType = "check_in"
	EntryTranscript EntryType = "transcript"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// IsActive reports whether a task still counts toward the user's open load.
func (s TaskStatus) IsActive() bool {
	return s == TaskTodo || s == TaskInProgress
}

type SentimentStatus string

const (
	SentimentOK               SentimentStatus = "ok"
	SentimentInsufficientData SentimentStatus = "insufficient_data"
	SentimentDegraded         SentimentStatus = "degraded"
)

type ActionKind string

const (
	ActionTask      ActionKind = "task"
	ActionTimeBlock ActionKind = "time_block"
)

type ConstraintKind string

const (
	ConstraintNoPTO         ConstraintKind = "no_pto"
	ConstraintNoNewMeetings ConstraintKind = "no_new_meetings"
	ConstraintCustom        ConstraintKind = "custom"
)

// Workload dimension names. Also used as stress trigger identifiers.
const (
	DimensionTaskLoad          = "task_load"
	DimensionMeetingLoad       = "meeting_load"
	DimensionOverwork          = "overwork"
	DimensionDeadlinePressure  = "deadline_pressure"
	DimensionNegativeSentiment = "negative_sentiment"
)
