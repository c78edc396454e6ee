package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMetrics is returned by UserMetrics.Validate for out-of-range values.
var ErrInvalidMetrics = errors.New("invalid user metrics")

// UserMetrics is the normalized workload snapshot for one user at one point in time.
// It is recomputed for every analysis and never persisted on its own.
type UserMetrics struct {
	ActiveTasks         int     `json:"active_tasks"`
	OverdueTasks        int     `json:"overdue_tasks"`
	DueThisWeek         int     `json:"due_this_week"`
	CompletedTasks      int     `json:"completed_tasks"`
	CompletionRate      float64 `json:"completion_rate"`
	MeetingsToday       int     `json:"meetings_today"`
	MeetingHoursToday   float64 `json:"meeting_hours_today"`
	BackToBackMeetings  int     `json:"back_to_back_meetings"`
	WeekendSessions     int     `json:"weekend_sessions"`
	LateNightSessions   int     `json:"late_night_sessions"`
	ConsecutiveWorkDays int     `json:"consecutive_work_days"`
}

// Validate rejects negative counts and rates outside [0, 1].
func (m UserMetrics) Validate() error {
	counts := map[string]int{
		"active_tasks":          m.ActiveTasks,
		"overdue_tasks":         m.OverdueTasks,
		"due_this_week":         m.DueThisWeek,
		"completed_tasks":       m.CompletedTasks,
		"meetings_today":        m.MeetingsToday,
		"back_to_back_meetings": m.BackToBackMeetings,
		"weekend_sessions":      m.WeekendSessions,
		"late_night_sessions":   m.LateNightSessions,
		"consecutive_work_days": m.ConsecutiveWorkDays,
	}
	for name, v := range counts {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidMetrics, name, v)
		}
	}
	if m.OverdueTasks > m.ActiveTasks {
		return fmt.Errorf("%w: overdue_tasks (%d) exceeds active_tasks (%d)", ErrInvalidMetrics, m.OverdueTasks, m.ActiveTasks)
	}
	if m.MeetingHoursToday < 0 {
		return fmt.Errorf("%w: meeting_hours_today must be >= 0", ErrInvalidMetrics)
	}
	if m.CompletionRate < 0 || m.CompletionRate > 1 {
		return fmt.Errorf("%w: completion_rate must be in [0,1], got %.3f", ErrInvalidMetrics, m.CompletionRate)
	}
	return nil
}

// QualitativeEntry is a free-text signal (diary, check-in, transcript) owned by a user.
type QualitativeEntry struct {
	ID        string
	UserID    string
	Content   string
	EntryType EntryType
	CreatedAt time.Time
}
