// Package config loads the engine configuration: an optional HJSON file
// layered over defaults, with environment overrides for secrets. Every
// tunable the engine recognizes lives here so call sites never hard-code
// business constants.
package config

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// Config is the full recognized option surface.
type Config struct {
	// Retrieval
	SimilarityThreshold float64 `json:"similarity_threshold"`
	TopK                int     `json:"top_k"`

	// Indexing
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
	MinChunkLen  int `json:"min_chunk_length"`
	IndexWorkers int `json:"index_workers"`

	// Forecasting
	ForecastHorizonYears int     `json:"forecast_horizon_years"`
	GrowthDecayBase      float64 `json:"growth_decay_base"`
	ConsensusWeight      float64 `json:"consensus_weight"`

	// External services
	RetryMaxAttempts int `json:"retry_max_attempts"`
	RetryBackoffMS   int `json:"retry_backoff_ms"`
	RequestTimeoutMS int `json:"request_timeout_ms"`

	LLMModel   string `json:"llm_model"`
	EmbedModel string `json:"embed_model"`

	// Quality assessment
	LowConfidenceThreshold float64 `json:"low_confidence_threshold"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // "json" or "console"
}

// Default returns the recognized defaults.
func Default() Config {
	return Config{
		SimilarityThreshold:    0.75,
		TopK:                   10,
		ChunkSize:              1000,
		ChunkOverlap:           200,
		MinChunkLen:            200,
		IndexWorkers:           4,
		ForecastHorizonYears:   5,
		GrowthDecayBase:        0.95,
		ConsensusWeight:        0.6,
		RetryMaxAttempts:       3,
		RetryBackoffMS:         500,
		RequestTimeoutMS:       60000,
		LLMModel:               "gemini-2.0-flash",
		EmbedModel:             "gemini-embedding-001",
		LowConfidenceThreshold: 0.5,
		LogLevel:               "info",
		LogFormat:              "console",
	}
}

// Load reads an HJSON config file over the defaults. A missing path is not
// an error: the defaults stand. An unreadable or invalid file is an error;
// silently running with half a config would be worse.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := hjson.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects option values the engine cannot honor.
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", c.SimilarityThreshold)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.ForecastHorizonYears <= 0 {
		return fmt.Errorf("forecast_horizon_years must be positive, got %d", c.ForecastHorizonYears)
	}
	if c.GrowthDecayBase <= 0 || c.GrowthDecayBase > 1 {
		return fmt.Errorf("growth_decay_base must be in (0,1], got %v", c.GrowthDecayBase)
	}
	if c.RetryMaxAttempts <= 0 {
		return fmt.Errorf("retry_max_attempts must be positive, got %d", c.RetryMaxAttempts)
	}
	return nil
}
