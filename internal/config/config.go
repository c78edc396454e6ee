package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Dimensions holds one value per workload dimension.
type Dimensions struct {
	TaskLoad         float64 `yaml:"task_load"`
	MeetingLoad      float64 `yaml:"meeting_load"`
	Overwork         float64 `yaml:"overwork"`
	DeadlinePressure float64 `yaml:"deadline_pressure"`
}

func (d Dimensions) sum() float64 {
	return d.TaskLoad + d.MeetingLoad + d.Overwork + d.DeadlinePressure
}

type WorkloadConfig struct {
	Targets Dimensions `yaml:"targets"`
	Weights Dimensions `yaml:"weights"`
}

type CollectorConfig struct {
	BackToBackGapMinutes int `yaml:"back_to_back_gap_minutes"`
	ActivityDays         int `yaml:"activity_days"`
}

type SentimentConfig struct {
	LookbackDays int `yaml:"lookback_days"`
	MaxEntries   int `yaml:"max_entries"`
}

type TrendConfig struct {
	// Window counts prior analyses, not days.
	Window     int     `yaml:"window"`
	StableBand float64 `yaml:"stable_band_pct"`
}

type PatternConfig struct {
	MinDays           int     `yaml:"min_days"`
	BaselineDays      int     `yaml:"baseline_days"`
	HighScoreMargin   float64 `yaml:"high_score_margin"`
	ElevatedDimension float64 `yaml:"elevated_dimension"`
	ElevatedSentiment float64 `yaml:"elevated_sentiment"`
	TriggerShare      float64 `yaml:"trigger_share"`
	MaxUpdateAttempts int     `yaml:"max_update_attempts"`
}

type RetrievalConfig struct {
	TopK          int     `yaml:"top_k"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

type ReanalysisConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Config holds application configuration.
type Config struct {
	DBPath     string           `yaml:"db_path"`
	Workload   WorkloadConfig   `yaml:"workload"`
	Collector  CollectorConfig  `yaml:"collector"`
	Sentiment  SentimentConfig  `yaml:"sentiment"`
	Trend      TrendConfig      `yaml:"trend"`
	Patterns   PatternConfig    `yaml:"patterns"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Reanalysis ReanalysisConfig `yaml:"reanalysis"`
	NATS       NATSConfig       `yaml:"nats"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: defaultDBPath(),
		Workload: WorkloadConfig{
			Targets: Dimensions{TaskLoad: 10, MeetingLoad: 5, Overwork: 5, DeadlinePressure: 10},
			Weights: Dimensions{TaskLoad: 0.3, MeetingLoad: 0.3, Overwork: 0.2, DeadlinePressure: 0.2},
		},
		Collector: CollectorConfig{BackToBackGapMinutes: 0, ActivityDays: 7},
		Sentiment: SentimentConfig{LookbackDays: 14, MaxEntries: 50},
		Trend:     TrendConfig{Window: 7, StableBand: 5},
		Patterns: PatternConfig{
			MinDays:           7,
			BaselineDays:      30,
			HighScoreMargin:   10,
			ElevatedDimension: 70,
			ElevatedSentiment: 5,
			TriggerShare:      0.5,
			MaxUpdateAttempts: 3,
		},
		Retrieval:  RetrievalConfig{TopK: 5, MinSimilarity: 0.35},
		Reanalysis: ReanalysisConfig{TimeoutSeconds: 30},
		Metrics:    MetricsConfig{Addr: ":9464"},
	}
}

// Load reads the config file (if any) over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromFile(Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if path == "" {
		return os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("EMBER_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("EMBER_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("EMBER_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("EMBER_RETRIEVAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.TopK = n
		}
	}
}

// Validate rejects configurations the scoring pipeline cannot run with.
func (c *Config) Validate() error {
	t := c.Workload.Targets
	for name, v := range map[string]float64{
		"task_load": t.TaskLoad, "meeting_load": t.MeetingLoad,
		"overwork": t.Overwork, "deadline_pressure": t.DeadlinePressure,
	} {
		if v <= 0 {
			return fmt.Errorf("workload target %s must be > 0, got %v", name, v)
		}
	}
	w := c.Workload.Weights
	if w.TaskLoad < 0 || w.MeetingLoad < 0 || w.Overwork < 0 || w.DeadlinePressure < 0 {
		return fmt.Errorf("workload weights must be non-negative")
	}
	if math.Abs(w.sum()-1) > 1e-6 {
		return fmt.Errorf("workload weights must sum to 1, got %.4f", w.sum())
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be > 0")
	}
	if c.Retrieval.MinSimilarity < -1 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("retrieval min_similarity must be in [-1,1]")
	}
	if c.Patterns.MinDays <= 0 || c.Patterns.BaselineDays <= 0 {
		return fmt.Errorf("pattern min_days and baseline_days must be > 0")
	}
	if c.Patterns.MaxUpdateAttempts <= 0 {
		return fmt.Errorf("pattern max_update_attempts must be > 0")
	}
	if c.Trend.Window <= 0 {
		return fmt.Errorf("trend window must be > 0")
	}
	return nil
}

// Path returns the config file location.
// Priority: $EMBER_CONFIG > ~/.config/ember/config.yaml
func Path() string {
	if p := os.Getenv("EMBER_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ember", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ember.db"
	}
	return filepath.Join(home, ".ember", "ember.db")
}
