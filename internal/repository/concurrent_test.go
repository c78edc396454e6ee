package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isBusy(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}

// TestConcurrentAccess_ProfileSave_SingleWinner races writers holding the same
// profile version. Exactly one update may land; the rest must see a lost update.
func TestConcurrentAccess_ProfileSave_SingleWinner(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	ctx := context.Background()

	u := testutil.NewTestUser()
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, u))
	repo := NewSQLiteProfileRepo(database)
	require.NoError(t, repo.Save(ctx, &domain.BehavioralProfile{UserID: u.ID, BaselineScore: 40}))

	const writers = 8
	var (
		wg        sync.WaitGroup
		wins      atomic.Int32
		conflicts atomic.Int32
	)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()
			for attempt := 0; attempt < 50; attempt++ {
				p := &domain.BehavioralProfile{UserID: u.ID, BaselineScore: float64(50 + writer), Version: 1}
				err := repo.Save(ctx, p)
				switch {
				case err == nil:
					wins.Add(1)
					return
				case errors.Is(err, ErrConcurrentUpdate):
					conflicts.Add(1)
					return
				case isBusy(err):
					time.Sleep(time.Duration(attempt+1) * time.Millisecond)
				default:
					t.Errorf("writer %d: %v", writer, err)
					return
				}
			}
			t.Errorf("writer %d: database stayed busy", writer)
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), conflicts.Load())

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
}

// TestConcurrentAccess_HistoryReadsDuringWrites verifies that analysis history
// reads see consistent rows while new analyses are appended.
func TestConcurrentAccess_HistoryReadsDuringWrites(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	ctx := context.Background()

	u := testutil.NewTestUser()
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, u))
	repo := NewSQLiteAnalysisRepo(database)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			a := testutil.NewTestAnalysis(u.ID, float64(i*5))
			for attempt := 0; ; attempt++ {
				err := repo.Create(ctx, a)
				if err == nil {
					break
				}
				if !isBusy(err) || attempt > 50 {
					t.Errorf("writer: analysis %d: %v", i, err)
					return
				}
				time.Sleep(time.Millisecond)
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				history, err := repo.ListByUser(ctx, u.ID, time.Time{}, 0)
				if err != nil {
					if isBusy(err) {
						continue
					}
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				for _, a := range history {
					if a.ID == "" || a.UserID != u.ID {
						t.Errorf("reader %d: inconsistent row %s", reader, fmt.Sprint(a.ID))
					}
				}
			}
		}(r)
	}
	wg.Wait()

	history, err := repo.ListByUser(ctx, u.ID, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, history, 20)
}
