package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/uzjobs/receptionbot/core/logger"
	"github.com/uzjobs/receptionbot/core/telegram/callbacks"
	"github.com/uzjobs/receptionbot/core/telegram/helpers"
	"github.com/uzjobs/receptionbot/core/telegram/keyboard"
	"github.com/uzjobs/receptionbot/storage"
)

const component = "notify"

// ApplicationStore is the slice of the application repository the
// notifier consumes.
type ApplicationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*storage.Application, error)
	Approve(ctx context.Context, id uuid.UUID, reviewerID int64) error
	Reject(ctx context.Context, id uuid.UUID, reason string, reviewerID int64) error
}

// AnswerStore lists the answers of an application.
type AnswerStore interface {
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]storage.Answer, error)
}

// FileStore reads uploaded attachments by slot.
type FileStore interface {
	GetBySlot(ctx context.Context, applicationID uuid.UUID, slot storage.FileSlot) (*storage.File, error)
}

// rejectReasons is the closed set offered to the reviewer.
var rejectReasons = []struct {
	code  string
	label string
	text  string
}{
	{"NO_EXP", "📚 Tajriba yetarli emas", "Tajriba yetarli emas"},
	{"WEAK_COMM", "🗣️ Muloqot qobiliyati past", "Muloqot qobiliyati past"},
	{"DOCS_MISSING", "📄 Hujjatlar yetishmaydi", "Hujjatlar yetishmaydi"},
	{"NO_SKILLS", "💻 Kompyuter bilimi yetarli emas", "Kompyuter bilimi yetarli emas"},
	{"OTHER", "➕ Boshqa", "Boshqa sabab"},
}

func reasonText(code string) string {
	for _, r := range rejectReasons {
		if r.code == code {
			return r.text
		}
	}
	return "Boshqa sabab"
}

// Notifier dispatches submitted applications to the admin review chat
// and applies the reviewers' decisions.
type Notifier struct {
	bot       *tele.Bot
	adminChat int64
	apps      ApplicationStore
	answers   AnswerStore
	files     FileStore
}

func New(bot *tele.Bot, adminChat int64, apps ApplicationStore, answers AnswerStore, files FileStore) *Notifier {
	return &Notifier{
		bot:       bot,
		adminChat: adminChat,
		apps:      apps,
		answers:   answers,
		files:     files,
	}
}

// Submitted sends the review message with approve/reject/contact
// controls, attaching the portrait when one was uploaded.
func (n *Notifier) Submitted(ctx context.Context, applicationID uuid.UUID) error {
	app, err := n.apps.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return fmt.Errorf("application %s not found", applicationID)
	}

	answers, err := n.answers.ListByApplication(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}
	portrait, err := n.files.GetBySlot(ctx, applicationID, storage.SlotHalfBody)
	if err != nil {
		return fmt.Errorf("load portrait: %w", err)
	}

	summary := AdminSummary(answers, applicationID, time.Now())
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Tasdiqlash", Unique: "AD", Data: "APPROVE|" + applicationID.String()},
			{Text: "❌ Rad etish", Unique: "AD", Data: "REJECT|" + applicationID.String()},
		},
		[]keyboard.InlineBtn{
			{Text: "👤 Foydalanuvchi bilan bog'lanish", Unique: "AD", Data: "CONTACT|" + strconv.FormatInt(app.TelegramID, 10)},
		},
	)

	chat := &tele.Chat{ID: n.adminChat}
	if portrait != nil {
		photo := &tele.Photo{
			File:    tele.File{FileID: portrait.TelegramFileID},
			Caption: summary,
		}
		_, err = n.bot.Send(chat, photo, tele.ModeMarkdown, markup)
	} else {
		_, err = n.bot.Send(chat, summary, tele.ModeMarkdown, markup)
	}
	if err != nil {
		return fmt.Errorf("send review message: %w", err)
	}

	logger.Info(ctx, component, "review.dispatched",
		slog.String("application_id", applicationID.String()),
	)
	return nil
}

// HandleAdmin routes AD| callbacks from the review chat.
func (n *Notifier) HandleAdmin(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	defer func() { _ = c.Respond() }()

	payload := callbacks.Payload(c)
	action, rest, _ := strings.Cut(payload, "|")

	switch action {
	case "APPROVE":
		return n.approve(ctx, c, rest)
	case "REJECT":
		return n.askRejectReason(c, rest)
	case "REJ_REASON":
		id, code, _ := strings.Cut(rest, "|")
		return n.reject(ctx, c, id, code)
	case "CONTACT":
		return c.Send(fmt.Sprintf("👤 Foydalanuvchi bilan bog'lanish: tg://user?id=%s", rest))
	}
	return nil
}

// editReview rewrites the review message, whether it was sent as plain
// text or as a photo caption.
func editReview(c tele.Context, text string, opts ...interface{}) error {
	if err := c.Edit(text, opts...); err != nil {
		return c.EditCaption(text, opts...)
	}
	return nil
}

func (n *Notifier) approve(ctx context.Context, c tele.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("parse application id: %w", err)
	}
	if err := n.apps.Approve(ctx, id, c.Sender().ID); err != nil {
		return err
	}

	if app, err := n.apps.GetByID(ctx, id); err == nil && app != nil {
		_, err := n.bot.Send(&tele.User{ID: app.TelegramID},
			"✅ *Tabriklaymiz! Anketangiz tasdiqlandi.*\n\nTez orada administratorlarimiz siz bilan bog'lanadi.",
			tele.ModeMarkdown,
		)
		if err != nil {
			logger.Warn(ctx, component, "applicant.notify_failed", slog.String("err", err.Error()))
		}
	}

	logger.Info(ctx, component, "application.approved",
		slog.String("application_id", id.String()),
		slog.Int64("reviewer_id", c.Sender().ID),
	)
	return editReview(c, fmt.Sprintf("✅ Anketa #%s tasdiqlandi", ShortID(id)))
}

func (n *Notifier) askRejectReason(c tele.Context, rawID string) error {
	btns := make([]keyboard.InlineBtn, 0, len(rejectReasons))
	for _, r := range rejectReasons {
		btns = append(btns, keyboard.InlineBtn{
			Text:   r.label,
			Unique: "AD",
			Data:   "REJ_REASON|" + rawID + "|" + r.code,
		})
	}
	return editReview(c, "❌ Rad etish sababini tanlang:", keyboard.InlineButtonsNPerRow(btns, 2))
}

func (n *Notifier) reject(ctx context.Context, c tele.Context, rawID, code string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("parse application id: %w", err)
	}
	if err := n.apps.Reject(ctx, id, code, c.Sender().ID); err != nil {
		return err
	}

	text := reasonText(code)
	if app, err := n.apps.GetByID(ctx, id); err == nil && app != nil {
		_, err := n.bot.Send(&tele.User{ID: app.TelegramID},
			fmt.Sprintf("❌ *Anketangiz rad etildi.*\n\nSabab: %s\n\nBatafsil ma'lumot uchun administrator bilan bog'laning.", text),
			tele.ModeMarkdown,
		)
		if err != nil {
			logger.Warn(ctx, component, "applicant.notify_failed", slog.String("err", err.Error()))
		}
	}

	logger.Info(ctx, component, "application.rejected",
		slog.String("application_id", id.String()),
		slog.String("reason", code),
		slog.Int64("reviewer_id", c.Sender().ID),
	)
	return editReview(c, fmt.Sprintf("❌ Anketa #%s rad etildi\nSabab: %s", ShortID(id), text))
}
