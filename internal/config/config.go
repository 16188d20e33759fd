package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	ChatModel       string `yaml:"chat_model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent model calls
}

type VectorConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	IndexName string `yaml:"index_name"`
}

// QueueConfig is the per-queue policy: worker count, retry ceiling with
// exponential backoff, and a sliding-window rate limit.
type QueueConfig struct {
	Concurrency   int           `yaml:"concurrency"`
	MaxAttempts   int           `yaml:"max_attempts"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	RateLimit     int           `yaml:"rate_limit"`
	RateWindow    time.Duration `yaml:"rate_window"`
}

type QueuesConfig struct {
	Document QueueConfig `yaml:"document"`
	Invoice  QueueConfig `yaml:"invoice"`
	// Finished jobs kept for inspection before eviction.
	Retention int `yaml:"retention"`
}

type PipelineConfig struct {
	MinContentChars int    `yaml:"min_content_chars"`
	ChunkTokens     int    `yaml:"chunk_tokens"`
	OverlapTokens   int    `yaml:"overlap_tokens"`
	BatchSize       int    `yaml:"batch_size"`
	TempDir         string `yaml:"temp_dir"`
}

type SecurityConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Vector   VectorConfig   `yaml:"vector"`
	Queues   QueuesConfig   `yaml:"queues"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies .env/environment overrides for
// secrets, fills defaults and validates the required fields.
func LoadConfig(path string, dev bool) (*Config, error) {
	// Optional .env next to the binary; absence is not an error.
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides for secrets.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Security.JWTSecret = v
	}

	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Security.JWTSecret == "" {
		return nil, errors.New("security.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gpt-4o-mini"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Vector.IndexName == "" {
		cfg.Vector.IndexName = "freight-documents"
	}

	cfg.Queues.Document = normalizeQueue(cfg.Queues.Document, QueueConfig{
		Concurrency:   3,
		MaxAttempts:   3,
		InitialDelay:  2 * time.Second,
		BackoffFactor: 2,
		RateLimit:     30,
		RateWindow:    time.Minute,
	})
	cfg.Queues.Invoice = normalizeQueue(cfg.Queues.Invoice, QueueConfig{
		Concurrency:   1,
		MaxAttempts:   2,
		InitialDelay:  2 * time.Second,
		BackoffFactor: 2,
		RateLimit:     12,
		RateWindow:    time.Minute,
	})
	if cfg.Queues.Retention <= 0 {
		cfg.Queues.Retention = 100
	}

	if cfg.Pipeline.MinContentChars <= 0 {
		cfg.Pipeline.MinContentChars = 20
	}
	if cfg.Pipeline.ChunkTokens <= 0 {
		cfg.Pipeline.ChunkTokens = 400
	}
	if cfg.Pipeline.OverlapTokens <= 0 {
		cfg.Pipeline.OverlapTokens = 50
	}
	if cfg.Pipeline.BatchSize <= 0 {
		cfg.Pipeline.BatchSize = 20
	}
	if cfg.Pipeline.TempDir == "" {
		cfg.Pipeline.TempDir = os.TempDir()
	}

	if cfg.Security.TokenTTL <= 0 {
		cfg.Security.TokenTTL = 24 * time.Hour
	}
}

func normalizeQueue(q, def QueueConfig) QueueConfig {
	if q.Concurrency <= 0 {
		q.Concurrency = def.Concurrency
	}
	if q.MaxAttempts <= 0 {
		q.MaxAttempts = def.MaxAttempts
	}
	if q.InitialDelay <= 0 {
		q.InitialDelay = def.InitialDelay
	}
	if q.BackoffFactor < 1 {
		q.BackoffFactor = def.BackoffFactor
	}
	if q.RateLimit <= 0 {
		q.RateLimit = def.RateLimit
	}
	if q.RateWindow <= 0 {
		q.RateWindow = def.RateWindow
	}
	return q
}
