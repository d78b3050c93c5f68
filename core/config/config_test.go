package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Admin.ChatID = -100500
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run mode = %q, want longpoll default", cfg.Telegram.RunMode)
	}
	p := cfg.Photo
	if p.MinWidth != 600 || p.MinHeight != 800 || p.MaxWidth != 4000 || p.MaxHeight != 4000 {
		t.Errorf("photo dimension defaults not applied: %+v", p)
	}
	if p.MinRatio != 0.6 || p.MaxRatio != 0.9 || p.HashDistance != 10 {
		t.Errorf("photo ratio defaults not applied: %+v", p)
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "token"},
		{"missing admin chat", func(c *Config) { c.Admin.ChatID = 0 }, "admin.chat_id"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = "webhook" }, "webhook.url"},
		{"negative rate limit", func(c *Config) { c.RateLimit.Count = -1 }, "rate_limit"},
		{"negative session ttl", func(c *Config) { c.Session.TTLMinutes = -5 }, "session.ttl_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestNormalizeWebhook(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	cfg.Webhook.URL = "https://bot.example.com/hook"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeWebhook {
		t.Errorf("run mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRateLimitWindowDefault(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Count = 20
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.RateLimit.WindowMS != 60_000 {
		t.Errorf("window = %d, want 60000 default", cfg.RateLimit.WindowMS)
	}
}
