package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Gate     GateConfig     `mapstructure:"gate"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UpstreamConfig describes the third-party site the map statistics are scraped from
type UpstreamConfig struct {
	// IslandURLTemplate is the detail document URL, %s is replaced by the map code
	IslandURLTemplate string `mapstructure:"island_url_template"`
	// SeriesURLTemplate is the one-month player count endpoint, %s is replaced by the resource ID
	SeriesURLTemplate string        `mapstructure:"series_url_template"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// StatsConfig holds the aggregation and forecasting parameters
type StatsConfig struct {
	Timezone      string  `mapstructure:"timezone"` // Calendar-day boundary zone (e.g., "Europe/Berlin", "+02:00", "UTC")
	Method        string  `mapstructure:"method"`   // holt_winters, holt_winters_additive, seasonal_naive
	Horizon       int     `mapstructure:"horizon"`
	Alpha         float64 `mapstructure:"alpha"`
	Beta          float64 `mapstructure:"beta"`
	Gamma         float64 `mapstructure:"gamma"`
	SeasonLength  int     `mapstructure:"season_length"`
	ClampNegative bool    `mapstructure:"clamp_negative"`
}

// GateConfig configures the per-session request/cooldown gate
type GateConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures int           `mapstructure:"max_failures"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
	Store       string        `mapstructure:"store"` // memory (default), redis
	RedisURL    string        `mapstructure:"redis_url"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// QueueConfig represents the stats event publisher configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"` // nats, redis, kafka, memory; empty disables publishing
	URL      string `mapstructure:"url"`  // e.g., nats://localhost:4222, redis://localhost:6379
	Subject  string `mapstructure:"subject"`
	Compress bool   `mapstructure:"compress"` // snappy-compress event payloads

	RedisStream  string   `mapstructure:"redis_stream"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream config: %w", err)
	}

	if err := c.Stats.Validate(); err != nil {
		return fmt.Errorf("stats config: %w", err)
	}

	if err := c.Gate.Validate(); err != nil {
		return fmt.Errorf("gate config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates the upstream URL templates
func (c *UpstreamConfig) Validate() error {
	if strings.Count(c.IslandURLTemplate, "%s") != 1 {
		return fmt.Errorf("island_url_template must contain exactly one %%s")
	}
	if strings.Count(c.SeriesURLTemplate, "%s") != 1 {
		return fmt.Errorf("series_url_template must contain exactly one %%s")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	return nil
}

// Validate validates forecasting parameters
func (c *StatsConfig) Validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("stats.horizon must be at least 1")
	}
	if c.SeasonLength < 1 {
		return fmt.Errorf("stats.season_length must be at least 1")
	}
	for name, v := range map[string]float64{"alpha": c.Alpha, "beta": c.Beta, "gamma": c.Gamma} {
		if v < 0 || v > 1 {
			return fmt.Errorf("stats.%s must be within [0, 1], got %v", name, v)
		}
	}
	return nil
}

// Validate validates gate configuration
func (c *GateConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxFailures < 1 {
		return fmt.Errorf("gate.max_failures must be at least 1")
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("gate.cooldown must be positive")
	}
	switch c.Store {
	case "", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("gate.redis_url is required for redis store")
		}
	default:
		return fmt.Errorf("gate.store must be 'memory' or 'redis'")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch strings.ToLower(c.Type) {
	case "", "memory":
		return nil
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("unsupported queue.type: %s", c.Type)
	}
	if c.Subject == "" {
		return fmt.Errorf("queue.subject is required")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
