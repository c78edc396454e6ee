package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, ctx context.Context, repo *SQLiteUserRepo) *domain.UserProfile {
	t.Helper()
	u := testutil.NewTestUser()
	require.NoError(t, repo.Create(ctx, u))
	return u
}

func TestWorkspaceRepo_Tasks(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, ctx, NewSQLiteUserRepo(db))
	repo := NewSQLiteWorkspaceRepo(db)

	due := time.Now().UTC().Add(24 * time.Hour)
	done := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.InsertTask(ctx, testutil.NewTestTask(u.ID, "write report", testutil.WithTaskDue(due))))
	require.NoError(t, repo.InsertTask(ctx, testutil.NewTestTask(u.ID, "ship fix", testutil.WithCompletedAt(done))))

	tasks, err := repo.ListTasks(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "write report", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))
	assert.Equal(t, domain.TaskDone, tasks[1].Status)
	require.NotNil(t, tasks[1].CompletedAt)
}

func TestWorkspaceRepo_CreateTask_Defaults(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, ctx, NewSQLiteUserRepo(db))
	repo := NewSQLiteWorkspaceRepo(db)

	id, err := repo.CreateTask(ctx, domain.TaskInput{UserID: u.ID, Title: "Delegate review"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	tasks, err := repo.ListTasks(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, domain.TaskTodo, tasks[0].Status)
	assert.Equal(t, domain.PriorityMedium, tasks[0].Priority)
}

func TestWorkspaceRepo_ListMeetings_Window(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, ctx, NewSQLiteUserRepo(db))
	repo := NewSQLiteWorkspaceRepo(db)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertMeeting(ctx, testutil.NewTestMeeting(u.ID, day.Add(14*time.Hour), time.Hour)))
	require.NoError(t, repo.InsertMeeting(ctx, testutil.NewTestMeeting(u.ID, day.Add(9*time.Hour), time.Hour, testutil.WithRecurring())))
	require.NoError(t, repo.InsertMeeting(ctx, testutil.NewTestMeeting(u.ID, day.Add(24*time.Hour), time.Hour)))

	meetings, err := repo.ListMeetings(ctx, u.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, 9, meetings[0].StartTime.Hour())
	assert.True(t, meetings[0].IsRecurring)
	assert.Equal(t, time.Hour, meetings[1].Duration())
}

func TestWorkspaceRepo_CreateEvent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, ctx, NewSQLiteUserRepo(db))
	repo := NewSQLiteWorkspaceRepo(db)

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	_, err := repo.CreateEvent(ctx, domain.EventInput{UserID: u.ID, Title: "bad", Start: start, End: start})
	assert.Error(t, err)

	id, err := repo.CreateEvent(ctx, domain.EventInput{UserID: u.ID, Title: "Focus block", Start: start, End: start.Add(30 * time.Minute)})
	require.NoError(t, err)

	meetings, err := repo.ListMeetings(ctx, u.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, id, meetings[0].ID)
	assert.Equal(t, "Focus block", meetings[0].Title)
}

func TestWorkspaceRepo_ListEntries_NewestFirstWithLimit(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, ctx, NewSQLiteUserRepo(db))
	repo := NewSQLiteWorkspaceRepo(db)

	now := time.Now().UTC()
	require.NoError(t, repo.InsertEntry(ctx, testutil.NewTestEntry(u.ID, "old", now.AddDate(0, 0, -30))))
	require.NoError(t, repo.InsertEntry(ctx, testutil.NewTestEntry(u.ID, "two days", now.AddDate(0, 0, -2))))
	require.NoError(t, repo.InsertEntry(ctx, testutil.NewTestEntry(u.ID, "today", now)))

	entries, err := repo.ListEntries(ctx, u.ID, now.AddDate(0, 0, -14), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "today", entries[0].Content)
	assert.Equal(t, domain.EntryDiary, entries[0].EntryType)

	limited, err := repo.ListEntries(ctx, u.ID, now.AddDate(0, 0, -60), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "today", limited[0].Content)
}
