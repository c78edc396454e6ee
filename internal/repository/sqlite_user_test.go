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

func TestUserRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	end := time.Now().UTC().AddDate(0, 1, 0)
	u := testutil.NewTestUser(
		testutil.WithRole("staff engineer"),
		testutil.WithAvoidedCategories("travel"),
		testutil.WithConstraint(domain.Constraint{Kind: domain.ConstraintNoPTO, Description: "release freeze", End: &end}),
	)
	require.NoError(t, repo.Create(ctx, u))

	fetched, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, fetched.Name)
	assert.Equal(t, "staff engineer", fetched.Role)
	assert.Equal(t, []string{"travel"}, fetched.AvoidedCategories)
	require.Len(t, fetched.Constraints, 1)
	assert.Equal(t, domain.ConstraintNoPTO, fetched.Constraints[0].Kind)
	require.NotNil(t, fetched.Constraints[0].End)
	assert.True(t, end.Equal(*fetched.Constraints[0].End))
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)

	_, err := repo.GetByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	u := testutil.NewTestUser()
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, u), ErrDuplicate)
}

func TestUserRepo_UpsertPreferences(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	u := testutil.NewTestUser()
	require.NoError(t, repo.Create(ctx, u))

	u.AcceptedCategories = []string{"focus", "boundaries"}
	require.NoError(t, repo.UpsertPreferences(ctx, u))

	fetched, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"focus", "boundaries"}, fetched.AcceptedCategories)
	assert.Empty(t, fetched.AvoidedCategories)
}
