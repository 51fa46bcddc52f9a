// Package config loads and validates hostmerge configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Mode selects what kind of entries the pipeline extracts.
const (
	ModeDomains = "domains"
	ModeIPv4    = "ipv4"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Sources SourcesConfig `mapstructure:"sources"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Health  HealthConfig  `mapstructure:"health"`
	History HistoryConfig `mapstructure:"history"`
	Output  OutputConfig  `mapstructure:"output"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourcesConfig locates the source list and its upstream index.
type SourcesConfig struct {
	File           string `mapstructure:"file"`
	IndexURL       string `mapstructure:"index_url"`
	AdditionalFile string `mapstructure:"additional_file"`
}

// FetchConfig governs the download pool.
type FetchConfig struct {
	Concurrency    int    `mapstructure:"concurrency"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// HealthConfig tunes the per-source failure cooldown.
type HealthConfig struct {
	StatePath    string `mapstructure:"state_path"`
	Threshold    int    `mapstructure:"threshold"`
	CooldownDays int    `mapstructure:"cooldown_days"`
}

// HistoryConfig selects and tunes the daily count log.
type HistoryConfig struct {
	Backend   string `mapstructure:"backend"` // csv or postgres
	Retention int    `mapstructure:"retention"`
	CSVPath   string `mapstructure:"csv_path"`
	DSN       string `mapstructure:"dsn"`
	Table     string `mapstructure:"table"`
}

// OutputConfig describes the merged artifact.
type OutputConfig struct {
	Mode      string `mapstructure:"mode"` // domains or ipv4
	Path      string `mapstructure:"path"`
	Sinkhole  string `mapstructure:"sinkhole"`
	Title     string `mapstructure:"title"`
	Provider  string `mapstructure:"provider"` // local, gcs or noop
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// NotifyConfig selects the notification sink.
type NotifyConfig struct {
	Provider      string `mapstructure:"provider"` // telegram, pubsub, log or noop
	TelegramToken string `mapstructure:"telegram_token"`
	TelegramChat  int64  `mapstructure:"telegram_chat"`
	ProjectID     string `mapstructure:"project_id"`
	TopicID       string `mapstructure:"topic_id"`
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HOSTMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("hostmerge")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hostmerge/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
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
	v.SetDefault("sources.file", "sources.txt")
	v.SetDefault("sources.index_url", "https://v.firebog.net/hosts/lists.php?type=tick")
	v.SetDefault("sources.additional_file", "additional_sources.txt")
	v.SetDefault("fetch.concurrency", 8)
	v.SetDefault("fetch.timeout_seconds", 20)
	v.SetDefault("fetch.user_agent", "hostmerge/1.0 (+https://github.com/wakuvilla/hostmerge)")
	v.SetDefault("health.state_path", "error_tracker.json")
	v.SetDefault("health.threshold", 3)
	v.SetDefault("health.cooldown_days", 60)
	v.SetDefault("history.backend", "csv")
	v.SetDefault("history.retention", 30)
	v.SetDefault("history.csv_path", "counts_history.csv")
	v.SetDefault("history.table", "daily_counts")
	v.SetDefault("output.mode", ModeDomains)
	v.SetDefault("output.path", "unified_hosts.txt")
	v.SetDefault("output.sinkhole", "0.0.0.0")
	v.SetDefault("output.title", "Wakuvilla/hosts")
	v.SetDefault("output.provider", "local")
	v.SetDefault("notify.provider", "log")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Sources.File == "" {
		return fmt.Errorf("sources.file must be set")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Health.Threshold <= 0 {
		return fmt.Errorf("health.threshold must be > 0")
	}
	if c.Health.CooldownDays <= 0 {
		return fmt.Errorf("health.cooldown_days must be > 0")
	}
	if c.History.Retention <= 0 {
		return fmt.Errorf("history.retention must be > 0")
	}
	switch c.History.Backend {
	case "csv", "postgres":
	default:
		return fmt.Errorf("history.backend must be csv or postgres, got %q", c.History.Backend)
	}
	if c.History.Backend == "postgres" && c.History.DSN == "" {
		return fmt.Errorf("history.dsn must be set when history.backend is postgres")
	}
	switch c.Output.Mode {
	case ModeDomains, ModeIPv4:
	default:
		return fmt.Errorf("output.mode must be %s or %s, got %q", ModeDomains, ModeIPv4, c.Output.Mode)
	}
	if c.Output.Provider == "gcs" && c.Output.GCSBucket == "" {
		return fmt.Errorf("output.gcs_bucket must be set when output.provider is gcs")
	}
	if c.Notify.Provider == "telegram" && c.Notify.TelegramToken == "" {
		return fmt.Errorf("notify.telegram_token must be set when notify.provider is telegram")
	}
	if c.Notify.Provider == "pubsub" && (c.Notify.ProjectID == "" || c.Notify.TopicID == "") {
		return fmt.Errorf("notify.project_id and notify.topic_id must be set when notify.provider is pubsub")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
