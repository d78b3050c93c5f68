package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/uzjobs/receptionbot/core/logger"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Count of updates allowed per user within Window.
	Count  int
	Window time.Duration
	// ExcludeCallbacks lets button presses through without counting, so
	// multi-select keyboards stay responsive.
	ExcludeCallbacks bool
	OnLimited        tele.HandlerFunc
}

// RateLimitMiddleware returns a middleware that caps the number of updates
// accepted from one user inside a sliding window.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu   sync.Mutex
		seen = make(map[int64][]time.Time)
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Count <= 0 || opts.Window <= 0 {
				return next(c)
			}
			if opts.ExcludeCallbacks && c.Callback() != nil {
				return next(c)
			}

			now := time.Now()
			cutoff := now.Add(-opts.Window)

			mu.Lock()
			stamps := seen[user.ID]
			kept := stamps[:0]
			for _, ts := range stamps {
				if ts.After(cutoff) {
					kept = append(kept, ts)
				}
			}
			if len(kept) >= opts.Count {
				seen[user.ID] = kept
				mu.Unlock()
				logger.TG.Warn("rate limit",
					slog.String("event", "tg.rate_limit"),
					slog.Int64("user_id", user.ID),
					slog.Int("count", len(kept)),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			seen[user.ID] = append(kept, now)
			mu.Unlock()
			return next(c)
		}
	}
}
