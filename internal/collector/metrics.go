package collector

import (
	"sort"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
)

// ComputeMetrics derives the workload snapshot from raw tasks and meetings.
// Day boundaries, weekends and late nights are evaluated in now's location.
func ComputeMetrics(tasks []*domain.Task, meetings []*domain.Meeting, now time.Time, opts Options) domain.UserMetrics {
	var m domain.UserMetrics
	loc := now.Location()
	today := startOfDay(now)
	weekEnd := EndOfWeek(now)

	for _, t := range tasks {
		switch {
		case t.Status.IsActive():
			m.ActiveTasks++
			if t.DueDate == nil {
				continue
			}
			due := t.DueDate.In(loc)
			if due.Before(now) {
				m.OverdueTasks++
			} else if !due.After(weekEnd) {
				m.DueThisWeek++
			}
		case t.Status == domain.TaskDone:
			m.CompletedTasks++
		}
	}
	if total := m.CompletedTasks + m.ActiveTasks; total > 0 {
		m.CompletionRate = float64(m.CompletedTasks) / float64(total)
	}

	todays := meetingsOn(meetings, today)
	m.MeetingsToday = len(todays)
	var hours time.Duration
	for _, mt := range todays {
		hours += mt.Duration()
	}
	m.MeetingHoursToday = hours.Hours()
	m.BackToBackMeetings = CountBackToBack(todays, opts.BackToBackGap)

	activity := activityTimes(tasks, meetings, now, opts.ActivityDays)
	days := make(map[string]bool)
	for _, at := range activity {
		local := at.In(loc)
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			m.WeekendSessions++
		}
		if h := local.Hour(); h >= 22 || h < 6 {
			m.LateNightSessions++
		}
		days[dayKey(local)] = true
	}
	m.ConsecutiveWorkDays = streak(days, today)
	return m
}

// CountBackToBack counts adjacent meeting pairs separated by at most gap.
func CountBackToBack(meetings []*domain.Meeting, gap time.Duration) int {
	sorted := append([]*domain.Meeting(nil), meetings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	n := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartTime.Sub(sorted[i-1].EndTime) <= gap {
			n++
		}
	}
	return n
}

// EndOfWeek returns the last instant of the Sunday ending now's week.
func EndOfWeek(now time.Time) time.Time {
	daysLeft := (7 - int(now.Weekday())) % 7
	return startOfDay(now).AddDate(0, 0, daysLeft+1).Add(-time.Nanosecond)
}

func meetingsOn(meetings []*domain.Meeting, day time.Time) []*domain.Meeting {
	next := day.AddDate(0, 0, 1)
	var out []*domain.Meeting
	for _, m := range meetings {
		start := m.StartTime.In(day.Location())
		if !start.Before(day) && start.Before(next) {
			out = append(out, m)
		}
	}
	return out
}

// activityTimes collects meeting starts and task completions in the trailing window.
func activityTimes(tasks []*domain.Task, meetings []*domain.Meeting, now time.Time, windowDays int) []time.Time {
	from := startOfDay(now).AddDate(0, 0, -(windowDays - 1))
	in := func(t time.Time) bool { return !t.Before(from) && !t.After(now) }

	var out []time.Time
	for _, m := range meetings {
		if in(m.StartTime) {
			out = append(out, m.StartTime)
		}
	}
	for _, t := range tasks {
		if t.CompletedAt != nil && in(*t.CompletedAt) {
			out = append(out, *t.CompletedAt)
		}
	}
	return out
}

// streak counts consecutive active days ending today, or yesterday when
// today has no activity yet.
func streak(days map[string]bool, today time.Time) int {
	day := today
	if !days[dayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[dayKey(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
