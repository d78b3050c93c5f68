package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/uzjobs/receptionbot/core/database"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// AdminConfig identifies the review channel and the users allowed to review.
type AdminConfig struct {
	ChatID  int64   `yaml:"chat_id" envconfig:"ADMIN_CHAT_ID"`
	UserIDs []int64 `yaml:"user_ids" envconfig:"ADMIN_USER_IDS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
	File   string `yaml:"file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// RateLimitConfig holds settings for the per-user message limiter.
type RateLimitConfig struct {
	// Count messages allowed within WindowMS; 0 disables limiting.
	Count    int `yaml:"count" envconfig:"RATE_LIMIT_COUNT"`
	WindowMS int `yaml:"window_ms" envconfig:"RATE_LIMIT_WINDOW_MS"`
}

// PhotoConfig declares acceptance rules for the portrait photo step.
type PhotoConfig struct {
	MinWidth  int     `yaml:"min_width" envconfig:"PHOTO_MIN_WIDTH"`
	MinHeight int     `yaml:"min_height" envconfig:"PHOTO_MIN_HEIGHT"`
	MaxWidth  int     `yaml:"max_width" envconfig:"PHOTO_MAX_WIDTH"`
	MaxHeight int     `yaml:"max_height" envconfig:"PHOTO_MAX_HEIGHT"`
	MinRatio  float64 `yaml:"min_ratio" envconfig:"PHOTO_MIN_RATIO"`
	MaxRatio  float64 `yaml:"max_ratio" envconfig:"PHOTO_MAX_RATIO"`
	// HashDistance is the maximum hamming distance (bits out of 256)
	// between two portraits still considered the same person.
	HashDistance int `yaml:"hash_distance" envconfig:"PHOTO_HASH_DISTANCE"`
}

// BlobConfig points at the image storage upload endpoint.
type BlobConfig struct {
	UploadURL    string `yaml:"upload_url" envconfig:"BLOB_UPLOAD_URL"`
	UploadPreset string `yaml:"upload_preset" envconfig:"BLOB_UPLOAD_PRESET"`
	Folder       string `yaml:"folder" envconfig:"BLOB_FOLDER"`
}

// SessionConfig tunes the in-memory conversation session store.
type SessionConfig struct {
	// TTLMinutes evicts sessions idle longer than this; 0 -> default 24h.
	TTLMinutes int `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
}

// Config aggregates all bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Admin     AdminConfig     `yaml:"admin"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  database.Config `yaml:"database"`
	Photo     PhotoConfig     `yaml:"photo"`
	Blob      BlobConfig      `yaml:"blob"`
	Session   SessionConfig   `yaml:"session"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Admin.ChatID == 0 {
		return fmt.Errorf("admin.chat_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.RateLimit.Count < 0 {
		return fmt.Errorf("rate_limit.count must be >= 0")
	}
	if cfg.RateLimit.Count > 0 && cfg.RateLimit.WindowMS <= 0 {
		cfg.RateLimit.WindowMS = 60_000
	}

	normalizePhoto(&cfg.Photo)

	if cfg.Session.TTLMinutes < 0 {
		return fmt.Errorf("session.ttl_minutes must be >= 0")
	}

	return nil
}

func normalizePhoto(p *PhotoConfig) {
	if p.MinWidth <= 0 {
		p.MinWidth = 600
	}
	if p.MinHeight <= 0 {
		p.MinHeight = 800
	}
	if p.MaxWidth <= 0 {
		p.MaxWidth = 4000
	}
	if p.MaxHeight <= 0 {
		p.MaxHeight = 4000
	}
	if p.MinRatio <= 0 {
		p.MinRatio = 0.6
	}
	if p.MaxRatio <= 0 {
		p.MaxRatio = 0.9
	}
	if p.HashDistance <= 0 {
		p.HashDistance = 10
	}
}
