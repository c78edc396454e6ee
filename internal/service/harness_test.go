package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/collector"
	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/recommend"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/retrieval"
	"github.com/alexanderramin/ember/internal/sentiment"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Wednesday afternoon.
var clock = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return clock }

type harness struct {
	db        *sql.DB
	users     *repository.SQLiteUserRepo
	workspace *repository.SQLiteWorkspaceRepo
	analyses  *repository.SQLiteAnalysisRepo
	profiles  *repository.SQLiteProfileRepo
	recs      *repository.SQLiteRecommendationRepo
	apps      *repository.SQLiteApplicationRepo
	feedback  *repository.SQLiteFeedbackRepo

	llm      *testutil.FakeLLM
	embedder *testutil.FakeEmbedder
	index    *retrieval.Index
	cfg      *config.Config

	analysis  *AnalysisService
	recommend *RecommendationService
	apply     *ApplyService
}

func newHarness(t *testing.T, applyOpts ...ApplyOption) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	h := &harness{
		db:        database,
		users:     repository.NewSQLiteUserRepo(database),
		workspace: repository.NewSQLiteWorkspaceRepo(database),
		analyses:  repository.NewSQLiteAnalysisRepo(database),
		profiles:  repository.NewSQLiteProfileRepo(database),
		recs:      repository.NewSQLiteRecommendationRepo(database),
		apps:      repository.NewSQLiteApplicationRepo(database),
		feedback:  repository.NewSQLiteFeedbackRepo(database),
		llm:       testutil.NewFakeLLM(),
		embedder:  testutil.NewFakeEmbedder(),
		cfg:       config.Default(),
	}
	h.index = retrieval.NewIndex(h.embedder, repository.NewSQLiteStrategyRepo(database))
	require.NoError(t, h.index.Load(context.Background()))

	col := collector.New(h.users, h.workspace, collector.Options{
		ActivityDays: 7,
		LookbackDays: 14,
		MaxEntries:   50,
		Location:     time.UTC,
	}).WithClock(fixedClock)

	h.analysis = NewAnalysisService(col, sentiment.NewAnalyzer(h.llm, time.Second), h.analyses, h.profiles, h.cfg,
		WithOutcomeTracking(h.apps))
	h.recommend = NewRecommendationService(h.analyses, h.users, h.workspace, h.index,
		recommend.NewGenerator(h.llm, time.Second), h.analysis, testutil.NewTestUoW(database), nil)
	h.recommend.now = fixedClock

	opts := append([]ApplyOption{WithApplyClock(fixedClock)}, applyOpts...)
	h.apply = NewApplyService(h.recs, h.apps, h.analyses, h.users, h.analysis, testutil.NewTestUoW(database), opts...)
	return h
}

func (h *harness) seedUser(t *testing.T, opts ...testutil.UserOption) *domain.UserProfile {
	t.Helper()
	u := testutil.NewTestUser(opts...)
	require.NoError(t, h.users.Create(context.Background(), u))
	return u
}

// seedOverloaded gives userID 15 open tasks (5 overdue) and six meetings
// today, four of them back to back.
func (h *harness) seedOverloaded(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	yesterday := clock.AddDate(0, 0, -1)
	for i := 0; i < 15; i++ {
		var opts []testutil.TaskOption
		if i < 5 {
			opts = append(opts, testutil.WithTaskDue(yesterday))
		}
		require.NoError(t, h.workspace.InsertTask(ctx, testutil.NewTestTask(userID, "open task", opts...)))
	}

	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	starts := []time.Duration{9 * time.Hour, 10 * time.Hour, 11 * time.Hour, 12 * time.Hour}
	for _, s := range starts {
		require.NoError(t, h.workspace.InsertMeeting(ctx, testutil.NewTestMeeting(userID, day.Add(s), time.Hour)))
	}
	require.NoError(t, h.workspace.InsertMeeting(ctx, testutil.NewTestMeeting(userID, day.Add(14*time.Hour), 30*time.Minute)))
	require.NoError(t, h.workspace.InsertMeeting(ctx, testutil.NewTestMeeting(userID, day.Add(16*time.Hour), 30*time.Minute)))
}

func (h *harness) seedRecommendation(t *testing.T, userID, title string, steps ...string) *domain.Recommendation {
	t.Helper()
	ctx := context.Background()
	a := testutil.NewTestAnalysis(userID, 62, testutil.WithAnalyzedAt(clock.Add(-time.Hour)))
	require.NoError(t, h.analyses.Create(ctx, a))
	rec := testutil.NewTestRecommendation(userID, a.ID, title, steps...)
	require.NoError(t, h.recs.Create(ctx, rec))
	return rec
}

func (h *harness) taskCount(t *testing.T, userID string) int {
	t.Helper()
	tasks, err := h.workspace.ListTasks(context.Background(), userID)
	require.NoError(t, err)
	return len(tasks)
}

func unitVec(dims, axis int) []float32 {
	v := make([]float32, dims)
	v[axis] = 1
	return v
}
