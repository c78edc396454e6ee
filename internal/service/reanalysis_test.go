package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingAnalyzer struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error) {
	b.calls.Add(1)
	if b.release != nil {
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return &domain.BurnoutAnalysis{UserID: userID, FinalScore: 42, Level: domain.LevelYellow}, nil
}

func TestReanalysisHook_CoalescesConcurrentTriggers(t *testing.T) {
	analyzer := &blockingAnalyzer{release: make(chan struct{})}
	hook := NewReanalysisHook(analyzer, time.Second, nil, nil)

	for i := 0; i < 5; i++ {
		hook.Trigger("user-1")
	}
	require.Eventually(t, func() bool { return analyzer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(analyzer.release)
	hook.Wait()

	assert.Equal(t, int32(1), analyzer.calls.Load())
}

func TestReanalysisHook_UsersRunIndependently(t *testing.T) {
	analyzer := &blockingAnalyzer{}
	hook := NewReanalysisHook(analyzer, time.Second, nil, nil)

	hook.Trigger("user-1")
	hook.Trigger("user-2")
	hook.Wait()
	assert.Equal(t, int32(2), analyzer.calls.Load())
}

func TestReanalysisHook_FailureIsLoggedNotRaised(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	analyzer := &blockingAnalyzer{err: errors.New("collector offline")}
	hook := NewReanalysisHook(analyzer, time.Second, logger, nil)

	hook.Trigger("user-1")
	hook.Wait()
	assert.Contains(t, buf.String(), "background re-analysis failed")
	assert.Contains(t, buf.String(), "collector offline")
}

func TestReanalysisHook_TimeoutBoundsRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	analyzer := &blockingAnalyzer{release: make(chan struct{})}
	hook := NewReanalysisHook(analyzer, 20*time.Millisecond, logger, nil)

	start := time.Now()
	hook.Trigger("user-1")
	hook.Wait()
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, buf.String(), "deadline exceeded")
}

func TestReanalysisHook_RunsRealAnalysis(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	hook := NewReanalysisHook(h.analysis, time.Second, nil, nil)

	hook.Trigger(u.ID)
	hook.Wait()

	latest, err := h.analyses.Latest(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelGreen, latest.Level)
}

func TestUserLocks_SerializePerUser(t *testing.T) {
	locks := newUserLocks()
	var (
		active  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("user-1")
			defer unlock()
			n := active.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, locks.size())
}

func TestUserLocks_DifferentUsersDoNotBlock(t *testing.T) {
	locks := newUserLocks()
	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for b blocked on a")
	}
	assert.Equal(t, 1, locks.size())
	unlockA()
	assert.Zero(t, locks.size())
}
