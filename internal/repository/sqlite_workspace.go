package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/google/uuid"
)

// SQLiteWorkspaceRepo is the default task, calendar and qualitative-data
// collaborator, backed by the local database.
type SQLiteWorkspaceRepo struct {
	db db.DBTX
}

// NewSQLiteWorkspaceRepo creates a new SQLiteWorkspaceRepo.
func NewSQLiteWorkspaceRepo(conn db.DBTX) *SQLiteWorkspaceRepo {
	return &SQLiteWorkspaceRepo{db: conn}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date,
	assigned_to, can_delegate, estimated_hours, completed_at, created_at`

func (r *SQLiteWorkspaceRepo) ListTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var (
			t                domain.Task
			status, priority string
			due, completed   sql.NullString
			canDelegate      int
			createdAt        string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &priority, &due,
			&t.AssignedTo, &canDelegate, &t.EstimatedHours, &completed, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Status = domain.TaskStatus(status)
		t.Priority = domain.Priority(priority)
		t.DueDate = parseNullableTime(due)
		t.CompletedAt = parseNullableTime(completed)
		t.CanDelegate = intToBool(canDelegate)
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing task created_at: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// ListMeetings returns meetings starting in [from, to), ordered by start.
func (r *SQLiteWorkspaceRepo) ListMeetings(ctx context.Context, userID string, from, to time.Time) ([]*domain.Meeting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, start_time, end_time, attendees, is_recurring, is_optional
		FROM meetings WHERE user_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*domain.Meeting
	for rows.Next() {
		var (
			m                   domain.Meeting
			start, end, people  string
			recurring, optional int
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &start, &end, &people, &recurring, &optional); err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		if m.StartTime, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("parsing meeting start: %w", err)
		}
		if m.EndTime, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("parsing meeting end: %w", err)
		}
		if err := fromJSON(people, &m.Attendees); err != nil {
			return nil, fmt.Errorf("decoding attendees: %w", err)
		}
		m.IsRecurring = intToBool(recurring)
		m.IsOptional = intToBool(optional)
		meetings = append(meetings, &m)
	}
	return meetings, rows.Err()
}

// ListEntries returns entries created at or after since, newest first.
func (r *SQLiteWorkspaceRepo) ListEntries(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.QualitativeEntry, error) {
	query := `SELECT id, user_id, content, entry_type, created_at FROM qualitative_entries
		WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC`
	args := []any{userID, formatTime(since)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.QualitativeEntry
	for rows.Next() {
		var (
			e                    domain.QualitativeEntry
			entryType, createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &entryType, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.EntryType = domain.EntryType(entryType)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing entry created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *SQLiteWorkspaceRepo) CreateTask(ctx context.Context, in domain.TaskInput) (string, error) {
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	t := &domain.Task{
		ID:             uuid.New().String(),
		UserID:         in.UserID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         domain.TaskTodo,
		Priority:       priority,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.InsertTask(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (r *SQLiteWorkspaceRepo) CreateEvent(ctx context.Context, in domain.EventInput) (string, error) {
	if !in.End.After(in.Start) {
		return "", fmt.Errorf("event %q: end must be after start", in.Title)
	}
	m := &domain.Meeting{
		ID:         uuid.New().String(),
		UserID:     in.UserID,
		Title:      in.Title,
		StartTime:  in.Start,
		EndTime:    in.End,
		IsOptional: in.IsOptional,
	}
	if err := r.InsertMeeting(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (r *SQLiteWorkspaceRepo) InsertTask(ctx context.Context, t *domain.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, string(t.Status), string(t.Priority),
		nullableTimeToString(t.DueDate), t.AssignedTo, boolToInt(t.CanDelegate), t.EstimatedHours,
		nullableTimeToString(t.CompletedAt), formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteWorkspaceRepo) InsertMeeting(ctx context.Context, m *domain.Meeting) error {
	attendees, err := toJSON(m.Attendees)
	if err != nil {
		return fmt.Errorf("encoding attendees: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meetings (id, user_id, title, start_time, end_time, attendees, is_recurring, is_optional, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Title, formatTime(m.StartTime), formatTime(m.EndTime), attendees,
		boolToInt(m.IsRecurring), boolToInt(m.IsOptional), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("inserting meeting: %w", err)
	}
	return nil
}

func (r *SQLiteWorkspaceRepo) InsertEntry(ctx context.Context, e *domain.QualitativeEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.EntryType == "" {
		e.EntryType = domain.EntryDiary
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO qualitative_entries (id, user_id, content, entry_type, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Content, string(e.EntryType), formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}
