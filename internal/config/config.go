// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper. It is
// passed explicitly into constructors; nothing reads the environment at
// call time.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Summary SummaryConfig `mapstructure:"summary"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// FetchConfig governs the page fetcher.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// SummaryConfig controls the two-tier summarizer.
type SummaryConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	MaxTokens      int64  `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxSentences   int    `mapstructure:"max_sentences"`
}

// WorkerConfig sizes the job execution pool.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	QueueDepth  int `mapstructure:"queue_depth"`
}

// QueueConfig selects and configures the job transport.
type QueueConfig struct {
	Provider       string `mapstructure:"provider"`
	ProjectID      string `mapstructure:"project_id"`
	TopicID        string `mapstructure:"topic_id"`
	SubscriptionID string `mapstructure:"subscription_id"`
}

// StoreConfig selects and configures the job result store.
type StoreConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGESIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_seconds", 20)
	v.SetDefault("summary.model", "claude-haiku-4-5")
	v.SetDefault("summary.max_tokens", 2048)
	v.SetDefault("summary.timeout_seconds", 90)
	v.SetDefault("summary.max_sentences", 8)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queue_depth", 64)
	v.SetDefault("queue.provider", "memory")
	v.SetDefault("store.provider", "memory")
	v.SetDefault("logging.development", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Summary.TimeoutSeconds <= 0 {
		return fmt.Errorf("summary.timeout_seconds must be > 0")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be > 0")
	}
	switch c.Queue.Provider {
	case "memory":
	case "pubsub":
		if c.Queue.ProjectID == "" || c.Queue.TopicID == "" {
			return fmt.Errorf("queue.project_id and queue.topic_id must be set when queue.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown queue provider: %s", c.Queue.Provider)
	}
	switch c.Store.Provider {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set when store.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	return nil
}

// FetchTimeout converts the fetch timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// SummaryTimeout converts the remote summary timeout config into a duration.
func (c Config) SummaryTimeout() time.Duration {
	return time.Duration(c.Summary.TimeoutSeconds) * time.Second
}
