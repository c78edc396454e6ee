package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/repository"
)

// Workspace is the read side of the task, calendar and qualitative-data collaborators.
type Workspace interface {
	ListTasks(ctx context.Context, userID string) ([]*domain.Task, error)
	ListMeetings(ctx context.Context, userID string, from, to time.Time) ([]*domain.Meeting, error)
	ListEntries(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.QualitativeEntry, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
}

// Snapshot is everything one analysis run needs about a user.
type Snapshot struct {
	User    *domain.UserProfile
	Metrics domain.UserMetrics
	Tasks   []*domain.Task
	// Meetings spans the activity window through the coming week.
	Meetings    []*domain.Meeting
	Entries     []*domain.QualitativeEntry
	CollectedAt time.Time
}

// UpcomingMeetings returns meetings that start at or after the collection time.
func (s *Snapshot) UpcomingMeetings() []*domain.Meeting {
	var out []*domain.Meeting
	for _, m := range s.Meetings {
		if !m.StartTime.Before(s.CollectedAt) {
			out = append(out, m)
		}
	}
	return out
}

// Options tunes the collector windows.
type Options struct {
	BackToBackGap time.Duration
	ActivityDays  int
	LookbackDays  int
	MaxEntries    int
	Location      *time.Location
}

// DefaultOptions returns the standard windows in the local time zone.
func DefaultOptions() Options {
	return Options{ActivityDays: 7, LookbackDays: 14, MaxEntries: 50, Location: time.Local}
}

// Collector gathers the workload and qualitative context for an analysis.
type Collector struct {
	users     UserLookup
	workspace Workspace
	opts      Options
	now       func() time.Time
}

func New(users UserLookup, workspace Workspace, opts Options) *Collector {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ActivityDays <= 0 {
		opts.ActivityDays = 7
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 14
	}
	return &Collector{users: users, workspace: workspace, opts: opts, now: time.Now}
}

// WithClock overrides the time source.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// Collect builds the snapshot for userID. An unknown user is an input error.
func (c *Collector) Collect(ctx context.Context, userID string) (*Snapshot, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.InputError("collect", "unknown user %q", userID)
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	now := c.now().In(c.opts.Location)
	today := startOfDay(now)
	from := today.AddDate(0, 0, -(c.opts.ActivityDays - 1))
	to := today.AddDate(0, 0, 8)

	tasks, err := c.workspace.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	meetings, err := c.workspace.ListMeetings(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	entries, err := c.workspace.ListEntries(ctx, userID, now.AddDate(0, 0, -c.opts.LookbackDays), c.opts.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	metrics := ComputeMetrics(tasks, meetings, now, c.opts)
	if err := metrics.Validate(); err != nil {
		return nil, app.InputError("collect", "%v", err)
	}

	return &Snapshot{
		User:        user,
		Metrics:     metrics,
		Tasks:       tasks,
		Meetings:    meetings,
		Entries:     entries,
		CollectedAt: now,
	}, nil
}
