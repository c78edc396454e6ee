package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, opts ...Option) (*Index, *testutil.FakeEmbedder, repository.StrategyRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := repository.NewSQLiteStrategyRepo(database)
	emb := testutil.NewFakeEmbedder()
	return NewIndex(emb, store, opts...), emb, store
}

func TestIndex_Search_RanksAndFiltersBySimilarity(t *testing.T) {
	ctx := context.Background()
	ix, emb, _ := newTestIndex(t)
	emb.Overrides["q"] = []float32{1, 0}

	_, err := ix.Add(ctx, []domain.StrategyDocument{
		testutil.NewTestStrategy("orthogonal", "maintenance", 0, 1),
		testutil.NewTestStrategy("exact", "acute_overload", 1, 0),
		testutil.NewTestStrategy("diagonal", "elevated_strain", 1, 1),
	})
	require.NoError(t, err)

	matches, err := ix.Search(ctx, "q")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Document.Title)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
	assert.Equal(t, "diagonal", matches[1].Document.Title)
	assert.InDelta(t, 0.7071, matches[1].Similarity, 1e-3)
}

func TestIndex_Search_RespectsTopK(t *testing.T) {
	ctx := context.Background()
	ix, emb, _ := newTestIndex(t, WithTopK(2), WithMinSimilarity(0))
	emb.Overrides["q"] = []float32{1, 0}

	for _, v := range [][]float32{{1, 0.1}, {1, 0.2}, {1, 0.3}, {1, 0.4}} {
		_, err := ix.Add(ctx, []domain.StrategyDocument{testutil.NewTestStrategy("s", "c", v...)})
		require.NoError(t, err)
	}

	matches, err := ix.Search(ctx, "q")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
	assert.InDelta(t, Normalize([]float32{1, 0.1})[0], matches[0].Similarity, 1e-6)
}

func TestIndex_Search_TiesPreferNewer(t *testing.T) {
	ctx := context.Background()
	ix, emb, _ := newTestIndex(t, WithTopK(1))
	emb.Overrides["q"] = []float32{1, 0}

	older := testutil.NewTestStrategy("older", "c", 1, 0)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testutil.NewTestStrategy("newer", "c", 1, 0)
	_, err := ix.Add(ctx, []domain.StrategyDocument{older, newer})
	require.NoError(t, err)

	matches, err := ix.Search(ctx, "q")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "newer", matches[0].Document.Title)
}

func TestIndex_Search_SkipsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	ix, emb, _ := newTestIndex(t)
	emb.Overrides["q"] = []float32{1, 0}

	_, err := ix.Add(ctx, []domain.StrategyDocument{testutil.NewTestStrategy("3d", "c", 1, 0, 0)})
	require.NoError(t, err)

	matches, err := ix.Search(ctx, "q")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndex_Search_EmbeddingFailureIsDependencyError(t *testing.T) {
	ix, emb, _ := newTestIndex(t)
	emb.Err = errors.New("connection refused")

	_, err := ix.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.KindDependency))
}

func TestIndex_Add_EmbedsAndPersists(t *testing.T) {
	ctx := context.Background()
	ix, emb, store := newTestIndex(t)

	added, err := ix.Add(ctx, []domain.StrategyDocument{{Title: "Time blocking", Text: "Reserve focus hours", Category: "elevated_strain"}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotEmpty(t, added[0].ID)
	assert.Equal(t, 1, emb.Calls())

	reloaded := NewIndex(emb, store)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 1, reloaded.Len())
	assert.Equal(t, "Time blocking", reloaded.Documents()[0].Title)
	assert.Len(t, reloaded.Documents()[0].Embedding, 64)
}

func TestIndex_Retrieve_UsesSynthesizedQuery(t *testing.T) {
	ctx := context.Background()
	ix, _, _ := newTestIndex(t, WithMinSimilarity(0.1))

	_, err := ix.Add(ctx, []domain.StrategyDocument{
		{Title: "Meeting audit", Text: "meeting overload and back-to-back meetings", Category: CategoryAcuteOverload},
		{Title: "Gardening", Text: "plant tomatoes in spring", Category: CategoryMaintenance},
	})
	require.NoError(t, err)

	a := testutil.NewTestAnalysis("u1", 82, testutil.WithBreakdown(domain.WorkloadBreakdown{MeetingLoad: 100}))
	matches, err := ix.Retrieve(ctx, a)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Meeting audit", matches[0].Document.Title)
}

func TestIndex_ConcurrentSearch(t *testing.T) {
	ctx := context.Background()
	ix, emb, _ := newTestIndex(t)
	emb.Overrides["q"] = []float32{1, 0}
	_, err := ix.Add(ctx, []domain.StrategyDocument{testutil.NewTestStrategy("exact", "c", 1, 0)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := ix.Search(ctx, "q")
			if err == nil && len(m) != 1 {
				err = errors.New("unexpected match count")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}
