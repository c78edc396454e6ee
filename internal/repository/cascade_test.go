package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_UserToRecommendationChain verifies users -> analyses ->
// recommendations -> applications -> action items cascade together.
func TestCascadeDelete_UserToRecommendationChain(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	users := NewSQLiteUserRepo(database)
	analyses := NewSQLiteAnalysisRepo(database)
	recs := NewSQLiteRecommendationRepo(database)
	apps := NewSQLiteApplicationRepo(database)

	u := testutil.NewTestUser()
	require.NoError(t, users.Create(ctx, u))
	a := testutil.NewTestAnalysis(u.ID, 55)
	require.NoError(t, analyses.Create(ctx, a))
	rec := testutil.NewTestRecommendation(u.ID, a.ID, "Batch email", "Check email twice a day")
	require.NoError(t, recs.Create(ctx, rec))
	application := &domain.RecommendationApplication{ID: "app-1", RecommendationID: rec.ID, UserID: u.ID, Status: domain.StatusApplied}
	require.NoError(t, apps.Create(ctx, application))
	require.NoError(t, apps.CreateActionItem(ctx, &domain.ActionItem{
		ID: "item-1", ApplicationID: application.ID, Text: "Check email twice a day",
		Kind: domain.ActionTask, Priority: domain.PriorityMedium,
	}))

	_, err := database.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID)
	require.NoError(t, err)

	_, err = analyses.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = recs.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = apps.GetByRecommendation(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	items, err := apps.ListActionItems(ctx, application.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// TestCascadeDelete_AnalysisToRecommendations verifies analyses -> recommendations.
func TestCascadeDelete_AnalysisToRecommendations(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	u := testutil.NewTestUser()
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, u))
	a := testutil.NewTestAnalysis(u.ID, 80)
	require.NoError(t, NewSQLiteAnalysisRepo(database).Create(ctx, a))
	recs := NewSQLiteRecommendationRepo(database)
	rec := testutil.NewTestRecommendation(u.ID, a.ID, "Take a walk")
	require.NoError(t, recs.Create(ctx, rec))

	_, err := database.ExecContext(ctx, `DELETE FROM burnout_analyses WHERE id = ?`, a.ID)
	require.NoError(t, err)

	list, err := recs.ListByAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
