package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/uzjobs/receptionbot/core/logger"
	"github.com/uzjobs/receptionbot/core/telegram/callbacks"
	tghelpers "github.com/uzjobs/receptionbot/core/telegram/helpers"
)

// LoggerMiddleware logs a single receipt line per update and sets the rid
// used by downstream handlers for correlated logging.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID, userID := int64(0), int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		attrs := []slog.Attr{
			slog.String("rid", rid),
			slog.Int("update_id", upd.ID),
			slog.Int64("user_id", userID),
			slog.Int64("chat_id", chatID),
		}
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("kind", "callback"),
				slog.String("cb_key", callbacks.Key(c)))
		case upd.Message != nil && upd.Message.Photo != nil:
			attrs = append(attrs, slog.String("kind", "photo"))
		case upd.Message != nil && upd.Message.Document != nil:
			attrs = append(attrs, slog.String("kind", "document"))
		case upd.Message != nil && upd.Message.Contact != nil:
			attrs = append(attrs, slog.String("kind", "contact"))
		case upd.Message != nil:
			attrs = append(attrs, slog.String("kind", "text"))
		}
		logger.TG.LogAttrs(ctx, slog.LevelDebug, "update.received", attrs...)

		start := time.Now()
		err := next(c)
		took := logger.RoundMS(time.Since(start))

		status := "ok"
		summary := []slog.Attr{
			slog.String("status", status),
			slog.String("rid", rid),
			slog.Int64("user_id", userID),
			slog.Duration("duration", took),
		}
		if err != nil {
			summary[0] = slog.String("status", "fail")
			summary = append(summary, slog.String("err", err.Error()))
			logger.TG.LogAttrs(ctx, slog.LevelError, "update.handled", summary...)
			return err
		}
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "update.handled", summary...)
		return nil
	}
}
