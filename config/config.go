// Package config loads application configuration from file and
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the notifier.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Forum    ForumConfig    `mapstructure:"forum"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
}

// ForumConfig describes the Discourse instance to sync from.
type ForumConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Login      string        `mapstructure:"login"`
	Password   string        `mapstructure:"password"`
	CookieName string        `mapstructure:"cookie_name"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	Timeout    time.Duration `mapstructure:"timeout"`
	TZOffset   int           `mapstructure:"tz_offset"`
}

// SyncConfig controls the cursor and poll cadence.
type SyncConfig struct {
	CursorPath string        `mapstructure:"cursor_path"`
	Interval   time.Duration `mapstructure:"interval"`
}

// RedisConfig points at the subscription store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelegramConfig configures the outbound sender.
type TelegramConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
	Mock    bool   `mapstructure:"mock"`
}

// ServerConfig configures the webhook listener.
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Secret    string `mapstructure:"secret"`
	QueueSize int    `mapstructure:"queue_size"`
}

// FillDefaults populates zero-valued optional fields.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Forum.CookieName == "" {
		c.Forum.CookieName = "_t"
	}
	if c.Forum.SessionTTL == 0 {
		c.Forum.SessionTTL = 6 * time.Hour
	}
	if c.Forum.Timeout == 0 {
		c.Forum.Timeout = 30 * time.Second
	}
	if c.Sync.CursorPath == "" {
		c.Sync.CursorPath = "last_post_id"
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 30 * time.Second
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.QueueSize == 0 {
		c.Server.QueueSize = 64
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Forum.BaseURL == "" {
		return fmt.Errorf("forum.base_url is required")
	}
	if c.Forum.Login == "" || c.Forum.Password == "" {
		return fmt.Errorf("forum.login and forum.password are required")
	}
	if !c.Telegram.Mock && c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required unless telegram.mock is set")
	}
	if c.Server.Secret == "" {
		return fmt.Errorf("server.secret is required")
	}
	return nil
}

// Load reads configuration from the given file (or the default search
// path when empty) plus the COW_ environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cow-notifier")
	}
	v.SetEnvPrefix("COW")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
