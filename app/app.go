// Package app wires configuration, storage, the flow engine and the
// admin notifier into a runnable Telegram bot.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/jmoiron/sqlx"

	"github.com/uzjobs/receptionbot/blob"
	coreconfig "github.com/uzjobs/receptionbot/core/config"
	"github.com/uzjobs/receptionbot/core/database"
	"github.com/uzjobs/receptionbot/core/logger"
	coretelegram "github.com/uzjobs/receptionbot/core/telegram"
	"github.com/uzjobs/receptionbot/core/telegram/callbacks"
	"github.com/uzjobs/receptionbot/core/telegram/helpers"
	"github.com/uzjobs/receptionbot/core/telegram/middleware"
	"github.com/uzjobs/receptionbot/flow"
	"github.com/uzjobs/receptionbot/flow/session"
	"github.com/uzjobs/receptionbot/notify"
	"github.com/uzjobs/receptionbot/photo"
	"github.com/uzjobs/receptionbot/storage"
)

const (
	defaultSessionTTL    = 24 * time.Hour
	sessionSweepInterval = 10 * time.Minute
	adminCallbackKey     = "AD"
)

// App owns the long-lived pieces of the bot. The Telegram-facing parts
// are finished in onStart, once the bot instance exists.
type App struct {
	cfg *coreconfig.Config
	db  *sqlx.DB

	sessions *session.Store
	files    *telegramFiles

	engine       *flow.Engine
	notifier     *notify.Notifier
	adminHandler tele.HandlerFunc

	startedAt time.Time
}

// Bootstrap initializes the logger, connects to the database, applies
// migrations and prepares the session store.
func Bootstrap(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	startedAt := time.Now()

	if err := logger.Init(logger.Settings{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		File:    cfg.Logging.File,
		Profile: cfg.Logging.Profile,
	}); err != nil {
		return nil, fmt.Errorf("app: logger init failed: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database initialization failed: %w", err)
	}
	if err := database.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("app: migrations failed: %w", err)
	}

	ttl := defaultSessionTTL
	if cfg.Session.TTLMinutes > 0 {
		ttl = time.Duration(cfg.Session.TTLMinutes) * time.Minute
	}

	return &App{
		cfg:       cfg,
		db:        db,
		sessions:  session.NewStore(ttl),
		files:     &telegramFiles{},
		startedAt: startedAt,
	}, nil
}

// RunOptions assembles the Telegram runtime configuration for this app.
func (a *App) RunOptions() coretelegram.RunOptions {
	middlewares := []coretelegram.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	if a.cfg.RateLimit.Count > 0 {
		middlewares = append(middlewares, coretelegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Count:            a.cfg.RateLimit.Count,
				Window:           time.Duration(a.cfg.RateLimit.WindowMS) * time.Millisecond,
				ExcludeCallbacks: true,
			}),
		})
	}
	middlewares = append(middlewares, coretelegram.Middleware{
		Name: "logger",
		Use:  middleware.LoggerMiddleware,
	})

	routes := []coretelegram.Route{
		{Endpoint: "/start", Handler: a.handleStart},
		{Endpoint: "/cancel", Handler: a.handleCancel},
		{Endpoint: tele.OnText, Handler: a.handleUpdate},
		{Endpoint: tele.OnPhoto, Handler: a.handleUpdate},
		{Endpoint: tele.OnDocument, Handler: a.handleUpdate},
		{Endpoint: tele.OnContact, Handler: a.handleUpdate},
		{Endpoint: tele.OnCallback, Handler: a.handleCallback},
	}

	commands := []tele.Command{
		{Text: "start", Description: "Anketani boshlash"},
		{Text: "cancel", Description: "Anketani bekor qilish"},
	}

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Middlewares: middlewares,
		Routes:      routes,
		Commands:    commands,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}
}

// onStart finishes wiring once the bot exists: file downloads, the admin
// notifier and the flow engine all need the live bot instance. Runs
// before the bot starts consuming updates.
func (a *App) onStart(ctx context.Context, bot *tele.Bot) error {
	a.files.bot = bot

	apps := storage.NewApplicationRepo(a.db)
	answers := storage.NewAnswerRepo(a.db)
	files := storage.NewFileRepo(a.db)
	vacancies := storage.NewVacancyRepo(a.db)

	var uploader blob.Uploader
	if a.cfg.Blob.UploadURL != "" {
		uploader = blob.NewHTTPUploader(
			coretelegram.BuildHTTPClient(),
			a.cfg.Blob.UploadURL,
			a.cfg.Blob.UploadPreset,
			a.cfg.Blob.Folder,
		)
	}

	a.notifier = notify.New(bot, a.cfg.Admin.ChatID, apps, answers, files)
	adminGate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		UserIDs: a.cfg.Admin.UserIDs,
		OnReject: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Ruxsat yo'q"})
		},
	})
	a.adminHandler = adminGate(a.notifier.HandleAdmin)

	a.engine = flow.NewEngine(flow.Deps{
		Sessions:   a.sessions,
		Apps:       apps,
		Answers:    answers,
		Files:      files,
		Vacancies:  vacancies,
		Downloader: a.files,
		Uploader:   uploader,
		Notifier:   a.notifier,
		Rules:      photoRules(a.cfg.Photo),
	})

	go a.sessions.Janitor(ctx, sessionSweepInterval)

	logger.L.With("component", "app").Info("app ready",
		slog.String("event", "ready"),
		slog.Int64("admin_chat_id", a.cfg.Admin.ChatID),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(a.startedAt))),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ *tele.Bot) error {
	logger.L.With("component", "app").Info("shutting down...",
		slog.String("event", "shutdown"),
	)
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("app: database close failed: %w", err)
	}
	return nil
}

func (a *App) handleStart(c tele.Context) error {
	helpers.WithHandler(c, "start")
	return a.engine.Start(c)
}

func (a *App) handleCancel(c tele.Context) error {
	helpers.WithHandler(c, "cancel")
	return a.engine.CancelCommand(c)
}

func (a *App) handleUpdate(c tele.Context) error {
	helpers.WithHandler(c, "flow")
	return a.engine.Handle(c)
}

// handleCallback routes review-channel button presses to the notifier;
// everything else belongs to the applicant flow.
func (a *App) handleCallback(c tele.Context) error {
	if callbacks.Key(c) == adminCallbackKey {
		helpers.WithHandler(c, "admin")
		return a.adminHandler(c)
	}
	helpers.WithHandler(c, "flow")
	return a.engine.Handle(c)
}

func photoRules(p coreconfig.PhotoConfig) photo.Rules {
	return photo.Rules{
		MinWidth:     p.MinWidth,
		MinHeight:    p.MinHeight,
		MaxWidth:     p.MaxWidth,
		MaxHeight:    p.MaxHeight,
		MinRatio:     p.MinRatio,
		MaxRatio:     p.MaxRatio,
		HashDistance: p.HashDistance,
	}
}

// telegramFiles downloads inbound Telegram files through the bot API.
// The bot field is assigned in onStart, before update handling begins.
type telegramFiles struct {
	bot *tele.Bot
}

func (t *telegramFiles) Download(ctx context.Context, fileID string) ([]byte, error) {
	rc, err := t.bot.File(&tele.File{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	logger.Debug(ctx, "photo", "file.downloaded",
		slog.String("file_id", fileID),
		slog.Int("bytes", len(data)),
	)
	return data, nil
}
