package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	DocsightAPIKey string

	// Worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentDocs int

	// Upload limits
	MaxUploadBytes int64

	// Collection lifecycle
	CollectionTTL time.Duration

	// Query
	QueryDeadline  time.Duration
	CosineWeight   float64
	PersonaWeight  float64
	TopSections    int
	TopSentences   int
	MinSentenceLen int
	MaxSentenceLen int

	// Persona vocabulary override file (optional)
	VocabPath string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocsightAPIKey: os.Getenv("DOCSIGHT_API_KEY"),

		WorkerCount:       envInt("WORKER_COUNT", 4),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentDocs: envInt("MAX_CONCURRENT_DOCS", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		CollectionTTL: envDuration("COLLECTION_TTL", 1*time.Hour),

		QueryDeadline:  envDuration("QUERY_DEADLINE", 60*time.Second),
		CosineWeight:   envFloat("COSINE_WEIGHT", 0.7),
		PersonaWeight:  envFloat("PERSONA_WEIGHT", 0.3),
		TopSections:    envInt("TOP_SECTIONS", 5),
		TopSentences:   envInt("TOP_SENTENCES", 3),
		MinSentenceLen: envInt("MIN_SENTENCE_LEN", 40),
		MaxSentenceLen: envInt("MAX_SENTENCE_LEN", 300),

		VocabPath: os.Getenv("VOCAB_PATH"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentDocs <= 0 {
		cfg.MaxConcurrentDocs = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.CollectionTTL <= 0 {
		cfg.CollectionTTL = 1 * time.Hour
	}
	if cfg.QueryDeadline <= 0 {
		cfg.QueryDeadline = 60 * time.Second
	}
	if cfg.TopSections <= 0 {
		cfg.TopSections = 5
	}
	if cfg.TopSentences <= 0 {
		cfg.TopSentences = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocsightAPIKey == "" {
		return fmt.Errorf("DOCSIGHT_API_KEY is required")
	}
	if c.CosineWeight < 0 || c.PersonaWeight < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}
	if sum := c.CosineWeight + c.PersonaWeight; sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("COSINE_WEIGHT + PERSONA_WEIGHT must sum to 1, got %v", sum)
	}
	if c.MinSentenceLen >= c.MaxSentenceLen {
		return fmt.Errorf("MIN_SENTENCE_LEN must be below MAX_SENTENCE_LEN")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
