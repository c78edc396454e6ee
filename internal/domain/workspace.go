package domain

import "time"

// Task is the task collaborator's view of a unit of work.
type Task struct {
	ID             string
	UserID         string
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	DueDate        *time.Time
	AssignedTo     string
	CanDelegate    bool
	EstimatedHours float64
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// IsOverdue reports whether an active task is past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status.IsActive() && t.DueDate != nil && t.DueDate.Before(now)
}

// Meeting is the calendar collaborator's view of an event.
type Meeting struct {
	ID          string
	UserID      string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	Attendees   []string
	IsRecurring bool
	IsOptional  bool
}

// Duration returns the meeting length, never negative.
func (m *Meeting) Duration() time.Duration {
	d := m.EndTime.Sub(m.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// TaskInput is what the applier asks the task collaborator to create.
type TaskInput struct {
	UserID         string
	Title          string
	Description    string
	Priority       Priority
	DueDate        *time.Time
	EstimatedHours float64
}

// EventInput is what the applier asks the calendar collaborator to create.
type EventInput struct {
	UserID     string
	Title      string
	Start      time.Time
	End        time.Time
	IsOptional bool
}
