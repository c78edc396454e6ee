package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/llm"
)

func TestNew_ReturnsSharedInstance(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestLLMObserver_CountsSuccessAndFailure(t *testing.T) {
	m := New()
	obs := NewLLMObserver(m)

	ok := m.LLMRequests.WithLabelValues("sentiment", "llama3.2", "true")
	failed := m.LLMRequests.WithLabelValues("sentiment", "llama3.2", "false")
	timeouts := m.LLMErrors.WithLabelValues("sentiment", "TIMEOUT")
	beforeOK, beforeFailed, beforeTimeouts := testutil.ToFloat64(ok), testutil.ToFloat64(failed), testutil.ToFloat64(timeouts)

	obs.OnCallComplete(llm.LLMCallEvent{Task: llm.TaskSentiment, Model: "llama3.2", LatencyMs: 120, Success: true, Attempts: 1})
	obs.OnCallComplete(llm.LLMCallEvent{Task: llm.TaskSentiment, Model: "llama3.2", LatencyMs: 30000, ErrorCode: "TIMEOUT", Attempts: 2})

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
	assert.Equal(t, beforeTimeouts+1, testutil.ToFloat64(timeouts))
}

func TestRecordAnalysis(t *testing.T) {
	m := New()
	red := m.AnalysesTotal.WithLabelValues("RED", "true")
	before := testutil.ToFloat64(red)

	m.RecordAnalysis(&domain.BurnoutAnalysis{FinalScore: 82, Level: domain.LevelRed, Degraded: true}, 150*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(red))
}

func TestRecordGeneration(t *testing.T) {
	m := New()
	workload := m.RecommendationsGenerated.WithLabelValues("workload")
	beforeKept, beforeFiltered := testutil.ToFloat64(workload), testutil.ToFloat64(m.RecommendationsFiltered)

	m.RecordGeneration([]*domain.Recommendation{{Category: "workload"}, {Category: "workload"}}, 3)

	assert.Equal(t, beforeKept+2, testutil.ToFloat64(workload))
	assert.Equal(t, beforeFiltered+3, testutil.ToFloat64(m.RecommendationsFiltered))
}
