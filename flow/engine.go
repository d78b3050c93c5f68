package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/uzjobs/receptionbot/blob"
	"github.com/uzjobs/receptionbot/core/logger"
	"github.com/uzjobs/receptionbot/core/telegram/callbacks"
	"github.com/uzjobs/receptionbot/core/telegram/helpers"
	"github.com/uzjobs/receptionbot/flow/session"
	"github.com/uzjobs/receptionbot/photo"
	"github.com/uzjobs/receptionbot/storage"
)

const component = "flow"

// Deps bundles the collaborators the engine is wired with. A nil
// Uploader keeps only the Telegram file id for accepted photos.
type Deps struct {
	Sessions   *session.Store
	Apps       ApplicationStore
	Answers    AnswerStore
	Files      FileStore
	Vacancies  VacancyStore
	Downloader Downloader
	Uploader   blob.Uploader
	Notifier   Notifier
	Rules      photo.Rules
}

// Engine is the questionnaire state machine. One instance serves all
// applicants; per-applicant state lives in the session store.
type Engine struct {
	deps Deps
}

func NewEngine(deps Deps) *Engine {
	return &Engine{deps: deps}
}

// Start handles /start: resume an in-flight application or begin a new
// one.
func (e *Engine) Start(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := c.Sender().ID

	if s, ok := e.deps.Sessions.Get(uid); ok && s.CurrentStep != string(StepSubmitted) {
		return e.promptResume(c, s)
	}

	app, err := e.deps.Apps.FindActive(ctx, uid)
	if err != nil {
		return e.failTurn(ctx, c, err)
	}
	if app != nil {
		s := e.rebuild(ctx, uid, app)
		return e.promptResume(c, s)
	}
	return e.begin(ctx, c)
}

// CancelCommand handles /cancel outside of step keyboards.
func (e *Engine) CancelCommand(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := c.Sender().ID

	s, ok := e.deps.Sessions.Get(uid)
	if !ok {
		app, err := e.deps.Apps.FindActive(ctx, uid)
		if err != nil {
			return e.failTurn(ctx, c, err)
		}
		if app == nil {
			return helpers.SendMD(c, "Bekor qilinadigan anketa yo'q. Boshlash uchun /start bosing.")
		}
		s = e.rebuild(ctx, uid, app)
	}
	return e.cancel(ctx, c, s)
}

// Handle is the single entry point for every non-command update.
func (e *Engine) Handle(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := c.Sender().ID

	if c.Callback() != nil {
		// Selection tokens are acknowledged exactly once, whether or not
		// the step consumes them.
		defer func() { _ = c.Respond() }()
	}

	s, ok := e.deps.Sessions.Get(uid)
	if !ok {
		app, err := e.deps.Apps.FindActive(ctx, uid)
		if err != nil {
			return e.failTurn(ctx, c, err)
		}
		if app == nil {
			if c.Callback() != nil {
				return nil
			}
			return helpers.SendMD(c, "Anketa boshlash uchun /start bosing.")
		}
		s = e.rebuild(ctx, uid, app)
	}

	if s.AwaitResume {
		return e.handleResumeChoice(ctx, c, s)
	}
	return e.dispatch(ctx, c, s, buildInput(c))
}

// dispatch routes one inbound event to the current step and applies the
// returned outcome.
func (e *Engine) dispatch(ctx context.Context, c tele.Context, s *session.Session, in Input) error {
	step := StepKey(s.CurrentStep)
	def, ok := steps[step]
	if !ok {
		return helpers.SendMD(c, "Anketangiz allaqachon topshirilgan. Yangi anketa uchun /start bosing.")
	}

	if in.IsCallback() {
		switch in.Callback {
		case NavCancel:
			return e.cancel(ctx, c, s)
		case NavBack:
			if def.allowBack {
				return e.back(ctx, c, s)
			}
			return nil
		case NavSkip:
			if def.allowSkip {
				if def.skipKey != "" {
					if err := e.saveAnswer(ctx, s, def.skipKey, "", storage.FieldText); err != nil {
						return e.failTurn(ctx, c, err)
					}
				}
				return e.advance(ctx, c, s, step)
			}
			// steps with sub-dialogs interpret skip themselves
		}
	}

	out, err := def.handle(e, ctx, c, s, in)
	if err != nil {
		return e.failTurn(ctx, c, err)
	}

	switch out.Kind {
	case OutcomeAnswer, OutcomeSkip:
		return e.advance(ctx, c, s, step)
	case OutcomeBack:
		return e.back(ctx, c, s)
	case OutcomeCancel:
		return e.cancel(ctx, c, s)
	case OutcomeRetry:
		return e.renderStepHint(ctx, c, s, out.Hint)
	default:
		return nil
	}
}

// advance records the completed step and prompts the next one.
func (e *Engine) advance(ctx context.Context, c tele.Context, s *session.Session, step StepKey) error {
	s.PushHistory(string(step))
	next := Next(step, s)
	s.CurrentStep = string(next)
	s.ResetPhase()

	if err := e.deps.Apps.UpdateStep(ctx, s.ApplicationID, string(next)); err != nil {
		return e.failTurn(ctx, c, err)
	}
	logger.Debug(ctx, component, "step.advance",
		slog.String("from", string(step)),
		slog.String("to", string(next)),
	)

	if next == StepSubmitted {
		e.deps.Sessions.Delete(s.TelegramID)
		return nil
	}
	return e.renderStep(ctx, c, s)
}

// back re-enters the most recently completed step; its scratch value is
// left as-is.
func (e *Engine) back(ctx context.Context, c tele.Context, s *session.Session) error {
	prev := s.PopHistory(string(FirstStep))
	s.CurrentStep = prev
	s.ResetPhase()

	if err := e.deps.Apps.UpdateStep(ctx, s.ApplicationID, prev); err != nil {
		return e.failTurn(ctx, c, err)
	}
	return e.renderStep(ctx, c, s)
}

// cancel terminates the flow from any step.
func (e *Engine) cancel(ctx context.Context, c tele.Context, s *session.Session) error {
	if err := e.deps.Apps.UpdateStatus(ctx, s.ApplicationID, storage.StatusCancelled); err != nil {
		return e.failTurn(ctx, c, err)
	}
	e.deps.Sessions.Delete(s.TelegramID)
	logger.Info(ctx, component, "flow.cancelled",
		slog.String("application_id", s.ApplicationID.String()),
	)
	return e.replacePrompt(c, s, "❌ *Anketa bekor qilindi.*\n\nQaytadan boshlash uchun /start bosing.", nil)
}

// begin creates a fresh application and prompts the first step.
func (e *Engine) begin(ctx context.Context, c tele.Context) error {
	uid := c.Sender().ID

	first := FirstStep
	vacancies, err := e.deps.Vacancies.ListActive(ctx)
	if err != nil {
		return e.failTurn(ctx, c, err)
	}
	if len(vacancies) > 0 {
		first = StepVacancy
	}

	app, err := e.deps.Apps.Create(ctx, uid, string(first), nil)
	if err != nil {
		return e.failTurn(ctx, c, err)
	}
	s := session.New(uid, app.ID, string(first))
	e.deps.Sessions.Put(uid, s)

	logger.Info(ctx, component, "flow.started",
		slog.String("application_id", app.ID.String()),
	)

	if err := helpers.SendMD(c, welcomeText); err != nil {
		return err
	}
	return e.renderStep(ctx, c, s)
}

// rebuild recreates the in-memory session from the durable application
// after a restart. Scratch answers that gate later behavior are restored
// from their durable rows.
func (e *Engine) rebuild(ctx context.Context, uid int64, app *storage.Application) *session.Session {
	s := session.New(uid, app.ID, app.CurrentStep)
	s.VacancyID = app.VacancyID

	if ans, err := e.deps.Answers.GetByKey(ctx, app.ID, "exp_has"); err == nil && ans != nil {
		has := ans.FieldValue == "YES"
		s.Experience.HasExperience = &has
	}
	if ans, err := e.deps.Answers.GetByKey(ctx, app.ID, "photo_hash"); err == nil && ans != nil {
		s.Files.PhotoHash = ans.FieldValue
	}

	e.deps.Sessions.Put(uid, s)
	return s
}

func (e *Engine) promptResume(c tele.Context, s *session.Session) error {
	s.AwaitResume = true
	markup := inlineRows(
		[]btnSpec{{"✅ Davom ettirish", NavResume}, {"🔄 Yangidan boshlash", NavRestart}},
	)
	return e.replacePrompt(c, s,
		"📝 *Sizda tugallanmagan anketa bor.*\n\nDavom ettirasizmi yoki yangidan boshlaysizmi?",
		markup,
	)
}

func (e *Engine) handleResumeChoice(ctx context.Context, c tele.Context, s *session.Session) error {
	switch callbacks.Data(c) {
	case NavResume:
		s.AwaitResume = false
		return e.renderStep(ctx, c, s)
	case NavRestart:
		if err := e.deps.Apps.UpdateStatus(ctx, s.ApplicationID, storage.StatusCancelled); err != nil {
			return e.failTurn(ctx, c, err)
		}
		e.deps.Sessions.Delete(s.TelegramID)
		return e.begin(ctx, c)
	default:
		return e.promptResume(c, s)
	}
}

// renderStep replaces the previous prompt with the current step's one.
func (e *Engine) renderStep(ctx context.Context, c tele.Context, s *session.Session) error {
	return e.renderStepHint(ctx, c, s, "")
}

func (e *Engine) renderStepHint(ctx context.Context, c tele.Context, s *session.Session, hint string) error {
	def, ok := steps[StepKey(s.CurrentStep)]
	if !ok {
		return nil
	}
	text, markup, err := def.prompt(e, ctx, s)
	if err != nil {
		return e.failTurn(ctx, c, err)
	}
	if hint != "" {
		text = hint + "\n\n" + text
	}
	return e.replacePrompt(c, s, text, markup)
}

// replacePrompt deletes the previous bot prompt and sends a new one, so
// the chat keeps a single live prompt.
func (e *Engine) replacePrompt(c tele.Context, s *session.Session, text string, markup *tele.ReplyMarkup) error {
	if s.LastBotMessageID != 0 {
		_ = c.Bot().Delete(&tele.StoredMessage{
			MessageID: strconv.Itoa(s.LastBotMessageID),
			ChatID:    c.Chat().ID,
		})
		s.LastBotMessageID = 0
	}
	msg, err := e.send(c, text, markup)
	if err != nil {
		return err
	}
	s.LastBotMessageID = msg.ID
	return nil
}

// editPrompt rewrites the current prompt in place, falling back to
// delete-and-send when the edit is refused.
func (e *Engine) editPrompt(c tele.Context, s *session.Session, text string, markup *tele.ReplyMarkup) error {
	if s.LastBotMessageID != 0 {
		stored := &tele.StoredMessage{
			MessageID: strconv.Itoa(s.LastBotMessageID),
			ChatID:    c.Chat().ID,
		}
		if _, err := c.Bot().Edit(stored, text, tele.ModeMarkdown, markup); err == nil {
			return nil
		}
	}
	return e.replacePrompt(c, s, text, markup)
}

func (e *Engine) send(c tele.Context, text string, markup *tele.ReplyMarkup) (*tele.Message, error) {
	if markup != nil {
		return c.Bot().Send(c.Chat(), text, tele.ModeMarkdown, markup)
	}
	return c.Bot().Send(c.Chat(), text, tele.ModeMarkdown)
}

func (e *Engine) saveAnswer(ctx context.Context, s *session.Session, key, value string, ft storage.FieldType) error {
	if err := e.deps.Answers.Upsert(ctx, s.ApplicationID, key, value, ft); err != nil {
		return fmt.Errorf("save answer %s: %w", key, err)
	}
	return nil
}

// failTurn informs the applicant, logs, and aborts the turn. Durable
// progress stays at the last successfully persisted step.
func (e *Engine) failTurn(ctx context.Context, c tele.Context, err error) error {
	logger.Error(ctx, component, "turn.failed", slog.String("err", err.Error()))
	_ = helpers.SendMD(c, "Xatolik yuz berdi. /start bilan qayta urinib ko'ring, anketangiz saqlanib qolgan.")
	return err
}

// buildInput normalizes a Telegram update into the engine's event shape.
func buildInput(c tele.Context) Input {
	var in Input
	if c.Callback() != nil {
		in.Callback = callbacks.Data(c)
		return in
	}
	if m := c.Message(); m != nil {
		in.Text = strings.TrimSpace(m.Text)
		if m.Photo != nil {
			in.PhotoID = m.Photo.FileID
		}
		if m.Document != nil {
			in.DocumentID = m.Document.FileID
		}
		in.Contact = m.Contact
	}
	return in
}
