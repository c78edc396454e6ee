package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_EveryTaskHasThirtySecondDeadline(t *testing.T) {
	cfg := DefaultConfig()
	for _, task := range Tasks {
		assert.Equal(t, 30*time.Second, cfg.Timeout(task), task)
	}
}

func TestLoadConfig_GlobalAndPerTaskOverrides(t *testing.T) {
	t.Setenv("EMBER_LLM_TIMEOUT_MS", "9000")
	t.Setenv("EMBER_LLM_SENTIMENT_TIMEOUT_MS", "15000")
	t.Setenv("EMBER_LLM_RECOMMEND_TEMPERATURE", "0.8")
	t.Setenv("EMBER_LLM_RECOMMEND_MAX_TOKENS", "4096")
	t.Setenv("EMBER_LLM_EMBED_MODEL", "mxbai-embed-large")
	t.Setenv("EMBER_LLM_ENABLED", "false")

	cfg := LoadConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskSentiment))
	assert.Equal(t, 30000, cfg.TaskTimeout(TaskRecommend))
	assert.InDelta(t, 0.8, cfg.Tasks[TaskRecommend].Temperature, 1e-9)
	assert.Equal(t, 4096, cfg.Tasks[TaskRecommend].MaxTokens)
	assert.InDelta(t, 0.1, cfg.Tasks[TaskSentiment].Temperature, 1e-9)
	assert.Equal(t, "mxbai-embed-large", cfg.EmbedModel)
}

func TestLoadConfig_IgnoresBadValues(t *testing.T) {
	t.Setenv("EMBER_LLM_RECOMMEND_TIMEOUT_MS", "not-a-number")
	t.Setenv("EMBER_LLM_SENTIMENT_TEMPERATURE", "7")
	t.Setenv("EMBER_LLM_MAX_RETRIES", "-1")
	t.Setenv("EMBER_LLM_LOG_CALLS", "sometimes")

	cfg := LoadConfig()

	assert.Equal(t, 30000, cfg.TaskTimeout(TaskRecommend))
	assert.InDelta(t, 0.1, cfg.Tasks[TaskSentiment].Temperature, 1e-9)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.False(t, cfg.LogCalls)
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tasks = map[TaskType]TaskConfig{}
	cfg.TimeoutMs = 1234

	assert.Equal(t, 1234, cfg.TaskTimeout(TaskSentiment))
	assert.Equal(t, 1234*time.Millisecond, cfg.Timeout(TaskRecommend))
}
