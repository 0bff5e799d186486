package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fortnite-insight")
	}

	setDefaults(v)

	// FNI_SERVER_HTTP_PORT overrides server.http_port
	v.SetEnvPrefix("FNI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("upstream.island_url_template", d.Upstream.IslandURLTemplate)
	v.SetDefault("upstream.series_url_template", d.Upstream.SeriesURLTemplate)
	v.SetDefault("upstream.user_agent", d.Upstream.UserAgent)
	v.SetDefault("upstream.timeout", d.Upstream.Timeout)

	v.SetDefault("stats.timezone", d.Stats.Timezone)
	v.SetDefault("stats.method", d.Stats.Method)
	v.SetDefault("stats.horizon", d.Stats.Horizon)
	v.SetDefault("stats.alpha", d.Stats.Alpha)
	v.SetDefault("stats.beta", d.Stats.Beta)
	v.SetDefault("stats.gamma", d.Stats.Gamma)
	v.SetDefault("stats.season_length", d.Stats.SeasonLength)
	v.SetDefault("stats.clamp_negative", d.Stats.ClampNegative)

	v.SetDefault("gate.enabled", d.Gate.Enabled)
	v.SetDefault("gate.max_failures", d.Gate.MaxFailures)
	v.SetDefault("gate.cooldown", d.Gate.Cooldown)
	v.SetDefault("gate.store", d.Gate.Store)
	v.SetDefault("gate.key_prefix", d.Gate.KeyPrefix)

	v.SetDefault("queue.subject", d.Queue.Subject)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Upstream: UpstreamConfig{
			IslandURLTemplate: "https://fortnite.gg/island?code=%s",
			SeriesURLTemplate: "https://fortnite.gg/player-count-graph?range=1m&id=%s",
			UserAgent:         defaultUserAgent,
			Timeout:           30 * time.Second,
		},
		Stats: StatsConfig{
			Timezone:      "UTC",
			Method:        "holt_winters",
			Horizon:       30,
			Alpha:         0.3,
			Beta:          0.1,
			Gamma:         0.05,
			SeasonLength:  7,
			ClampNegative: true,
		},
		Gate: GateConfig{
			Enabled:     true,
			MaxFailures: 3,
			Cooldown:    30 * time.Second,
			Store:       "memory",
			KeyPrefix:   "fni:gate",
		},
		Queue: QueueConfig{
			Subject:     "stats.computed",
			RedisStream: "fni-stats",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
