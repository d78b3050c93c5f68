package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/uzjobs/receptionbot/core/config"
)

func TestBuildPollerWebhook(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = coreconfig.RunModeWebhook
	cfg.Webhook = coreconfig.WebhookConfig{
		URL:    "https://bot.example.uz/hook",
		Listen: "0.0.0.0",
		Port:   8443,
	}

	p := BuildPoller(cfg)
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("poller = %T, want *tele.Webhook", p)
	}
	if wh.Listen != "0.0.0.0:8443" {
		t.Errorf("listen = %q, want 0.0.0.0:8443", wh.Listen)
	}
	if wh.Endpoint.PublicURL != "https://bot.example.uz/hook" {
		t.Errorf("public url = %q", wh.Endpoint.PublicURL)
	}
}

func TestBuildPollerLongpoll(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = coreconfig.RunModeLongpoll

	lp, ok := BuildPoller(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatal("want *tele.LongPoller for longpoll mode")
	}
	if lp.Timeout != DefaultLongPollTimeout {
		t.Errorf("timeout = %v, want %v", lp.Timeout, DefaultLongPollTimeout)
	}

	cfg.Telegram.LongPollTimeoutSeconds = 25
	lp = BuildPoller(cfg).(*tele.LongPoller)
	if lp.Timeout != 25*time.Second {
		t.Errorf("timeout = %v, want 25s", lp.Timeout)
	}
}
