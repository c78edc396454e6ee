package llm

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// TaskType names a prompt family. Each one has its own sampling settings and
// deadline.
type TaskType string

const (
	TaskSentiment TaskType = "sentiment"
	TaskRecommend TaskType = "recommend"
)

// Tasks lists every task type the engine issues.
var Tasks = []TaskType{TaskSentiment, TaskRecommend}

type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // 0 means use LLMConfig.TimeoutMs
}

type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	EmbedModel string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

const defaultTimeoutMs = 30000

// DefaultConfig targets a local Ollama. Sentiment runs cold and short;
// recommendations get more room and a little more variety.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		EmbedModel: "nomic-embed-text",
		TimeoutMs:  defaultTimeoutMs,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskSentiment: {Temperature: 0.1, MaxTokens: 512, TimeoutMs: defaultTimeoutMs},
			TaskRecommend: {Temperature: 0.4, MaxTokens: 2048, TimeoutMs: defaultTimeoutMs},
		},
	}
}

// LoadConfig overlays EMBER_LLM_* environment variables on DefaultConfig.
// Per-task settings use EMBER_LLM_<TASK>_{TIMEOUT_MS,TEMPERATURE,MAX_TOKENS}.
// Unparseable or out-of-range values are ignored.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	envBool("EMBER_LLM_ENABLED", &cfg.Enabled)
	envBool("EMBER_LLM_LOG_CALLS", &cfg.LogCalls)
	envString("EMBER_LLM_ENDPOINT", &cfg.Endpoint)
	envString("EMBER_LLM_MODEL", &cfg.Model)
	envString("EMBER_LLM_EMBED_MODEL", &cfg.EmbedModel)
	envInt("EMBER_LLM_TIMEOUT_MS", 1, &cfg.TimeoutMs)
	envInt("EMBER_LLM_MAX_RETRIES", 0, &cfg.MaxRetries)

	for _, task := range Tasks {
		prefix := "EMBER_LLM_" + strings.ToUpper(string(task)) + "_"
		tc := cfg.Tasks[task]
		envInt(prefix+"TIMEOUT_MS", 1, &tc.TimeoutMs)
		envInt(prefix+"MAX_TOKENS", 1, &tc.MaxTokens)
		if v, ok := os.LookupEnv(prefix + "TEMPERATURE"); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 2 {
				tc.Temperature = f
			}
		}
		cfg.Tasks[task] = tc
	}
	return cfg
}

// TaskTimeout returns the deadline for task in milliseconds.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// Timeout is TaskTimeout as a duration.
func (c LLMConfig) Timeout(task TaskType) time.Duration {
	return time.Duration(c.TaskTimeout(task)) * time.Millisecond
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	if b, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		*dst = b
	}
}

func envInt(name string, min int, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil && n >= min {
		*dst = n
	}
}
