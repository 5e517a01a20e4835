// Package config loads and validates application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is constructed once at
// process start and passed into every component constructor.
type Config struct {
	Positions  PositionsConfig  `mapstructure:"positions"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	State      StateConfig      `mapstructure:"state"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Workers    WorkersConfig    `mapstructure:"workers"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PositionsConfig locates the positions feed.
type PositionsConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Key       string `mapstructure:"key"`
	Region    string `mapstructure:"region"`
	LocalFile string `mapstructure:"local_file"` // used in dry-run mode
}

// MarketDataConfig holds market data API settings.
type MarketDataConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RequestDelay time.Duration `mapstructure:"request_delay"` // minimum gap between requests per worker
	SecondsLimit int           `mapstructure:"seconds_limit"`
	MinutesLimit int           `mapstructure:"minutes_limit"`
}

// AlertsConfig holds every detector threshold.
type AlertsConfig struct {
	ThresholdPercent   float64       `mapstructure:"threshold_percent"`
	ThresholdTiers     []float64     `mapstructure:"threshold_tiers"` // ascending, e.g. [10, 12, 14]
	FiveSecondsPercent float64       `mapstructure:"five_seconds_percent"`
	TenSecondsPercent  float64       `mapstructure:"ten_seconds_percent"`
	FifteenSecondsPct  float64       `mapstructure:"fifteen_seconds_percent"`
	MinutesPercent     float64       `mapstructure:"minutes_percent"`
	EnableRetrigger    bool          `mapstructure:"enable_retrigger"`
	RetriggerCooldown  time.Duration `mapstructure:"retrigger_cooldown"`
	PollInterval       time.Duration `mapstructure:"poll_interval"` // --serve mode
}

// StateConfig holds Redis alert-state settings.
type StateConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// NotifyConfig holds per-channel notification settings.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Slack    WebhookConfig  `mapstructure:"slack"`
	Discord  WebhookConfig  `mapstructure:"discord"`
	Voice    WebhookConfig  `mapstructure:"voice"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// WebhookConfig holds a single webhook channel.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// KafkaConfig holds alert event publishing settings.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// WorkersConfig sizes the shared worker pool.
type WorkersConfig struct {
	PoolSize int `mapstructure:"pool_size"`
}

// ServerConfig holds the --serve mode HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional YAML file with environment
// variable overrides (prefix OPTIONWATCH).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OPTIONWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("positions.bucket", "")
	v.SetDefault("positions.key", "positions.json")
	v.SetDefault("positions.region", "us-east-1")
	v.SetDefault("positions.local_file", "positions.json")

	v.SetDefault("market_data.base_url", "https://api.polygon.io")
	v.SetDefault("market_data.timeout", "15s")
	v.SetDefault("market_data.request_delay", "50ms")
	v.SetDefault("market_data.seconds_limit", 3600)
	v.SetDefault("market_data.minutes_limit", 60)

	v.SetDefault("alerts.threshold_percent", 7.0)
	v.SetDefault("alerts.threshold_tiers", []float64{10.0, 12.0, 14.0})
	v.SetDefault("alerts.five_seconds_percent", 1.5)
	v.SetDefault("alerts.ten_seconds_percent", 2.0)
	v.SetDefault("alerts.fifteen_seconds_percent", 2.5)
	v.SetDefault("alerts.minutes_percent", 3.0)
	v.SetDefault("alerts.enable_retrigger", false)
	v.SetDefault("alerts.retrigger_cooldown", "1h")
	v.SetDefault("alerts.poll_interval", "3m")

	v.SetDefault("state.redis_addr", "localhost:6379")
	v.SetDefault("state.redis_db", 0)
	v.SetDefault("state.ttl", "168h") // 7 days

	v.SetDefault("notify.kafka.topic", "alert-events")

	v.SetDefault("workers.pool_size", 25)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("logging.level", "info")
}

// Validate checks required settings. Failures abort the pass before any work.
func (c *Config) Validate(dryRun bool) error {
	if c.MarketData.APIKey == "" {
		return fmt.Errorf("market_data.api_key is required")
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if c.MarketData.Timeout <= 0 {
		return fmt.Errorf("market_data.timeout must be positive")
	}
	if c.Alerts.ThresholdPercent <= 0 {
		return fmt.Errorf("alerts.threshold_percent must be positive")
	}
	for i, tier := range c.Alerts.ThresholdTiers {
		if tier <= c.Alerts.ThresholdPercent {
			return fmt.Errorf("alerts.threshold_tiers[%d] must exceed alerts.threshold_percent", i)
		}
	}
	if c.Alerts.EnableRetrigger && c.Alerts.RetriggerCooldown <= 0 {
		return fmt.Errorf("alerts.retrigger_cooldown must be positive when retriggering is enabled")
	}
	if c.Workers.PoolSize < 1 {
		return fmt.Errorf("workers.pool_size must be at least 1")
	}

	if dryRun {
		if c.Positions.LocalFile == "" {
			return fmt.Errorf("positions.local_file is required in dry-run mode")
		}
		return nil
	}

	if c.Positions.Bucket == "" {
		return fmt.Errorf("positions.bucket is required")
	}
	if c.Positions.Key == "" {
		return fmt.Errorf("positions.key is required")
	}
	if c.State.RedisAddr == "" {
		return fmt.Errorf("state.redis_addr is required")
	}
	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "") {
		return fmt.Errorf("notify.telegram.bot_token and chat_id are required when telegram is enabled")
	}
	if c.Notify.Slack.Enabled && c.Notify.Slack.URL == "" {
		return fmt.Errorf("notify.slack.url is required when slack is enabled")
	}
	if c.Notify.Discord.Enabled && c.Notify.Discord.URL == "" {
		return fmt.Errorf("notify.discord.url is required when discord is enabled")
	}
	if c.Notify.Voice.Enabled && c.Notify.Voice.URL == "" {
		return fmt.Errorf("notify.voice.url is required when voice is enabled")
	}
	if c.Notify.Kafka.Enabled && len(c.Notify.Kafka.Brokers) == 0 {
		return fmt.Errorf("notify.kafka.brokers is required when kafka is enabled")
	}
	return nil
}
