package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/uzjobs/receptionbot/core/telegram/callbacks"
	"github.com/uzjobs/receptionbot/core/telegram/keyboard"
	"github.com/uzjobs/receptionbot/flow/session"
	"github.com/uzjobs/receptionbot/notify"
	"github.com/uzjobs/receptionbot/photo"
	"github.com/uzjobs/receptionbot/storage"
	"github.com/uzjobs/receptionbot/validate"
)

// stepDef binds one step's prompt rendering and event handling. Cancel
// is available everywhere; back and skip only where declared.
type stepDef struct {
	prompt    func(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error)
	handle    func(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error)
	allowBack bool
	allowSkip bool
	// skipKey is the answer key recorded with an empty value when the
	// step is skipped, so the durable row distinguishes "skipped" from
	// "never reached".
	skipKey string
}

const (
	welcomeText = "✨ *Assalomu alaykum! Anketa to'ldirishni boshlaymiz*\n\n" +
		"Savollarga javob berish orqali ishga qabul jarayonini boshlaysiz.\n" +
		"Har bir savolga to'g'ri va to'liq javob bering.\n\n" +
		"Boshlash uchun birinchi savolga javob bering 👇"

	submittedText = "✅ *Anketa topshirildi!*\n\n" +
		"Sizning anketangiz qabul qilindi. Tez orada adminlar bog'lanadi."

	useButtonsHint = "Iltimos, quyidagi tugmalardan birini tanlang 👇"
	sendTextHint   = "Iltimos, matn yuboring ✍️"
)

// btnSpec pairs a label with raw "NAME|payload" callback data.
type btnSpec struct {
	text string
	data string
}

func toInlineBtn(spec btnSpec) keyboard.InlineBtn {
	name, payload := callbacks.Parse(spec.data)
	return keyboard.InlineBtn{Text: spec.text, Unique: name, Data: payload}
}

func inlineRows(rows ...[]btnSpec) *tele.ReplyMarkup {
	out := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, spec := range row {
			btns = append(btns, toInlineBtn(spec))
		}
		out = append(out, btns)
	}
	return keyboard.InlineButtonsRows(out...)
}

// navRows appends the navigation affordances, each on its own row.
func navRows(back, skip bool) [][]keyboard.InlineBtn {
	var rows [][]keyboard.InlineBtn
	if skip {
		rows = append(rows, []keyboard.InlineBtn{toInlineBtn(btnSpec{"⏭ O'tkazib yuborish", NavSkip})})
	}
	if back {
		rows = append(rows, []keyboard.InlineBtn{toInlineBtn(btnSpec{"⬅️ Orqaga", NavBack})})
	}
	rows = append(rows, []keyboard.InlineBtn{toInlineBtn(btnSpec{"❌ Bekor qilish", NavCancel})})
	return rows
}

func promptMarkup(main []btnSpec, columns int, back, skip bool) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(main))
	for _, spec := range main {
		btns = append(btns, toInlineBtn(spec))
	}
	rows := keyboard.ChunkRows(btns, columns)
	rows = append(rows, navRows(back, skip)...)
	return keyboard.InlineButtonsRows(rows...)
}

// textStep builds a free-text step. The validator returns the cleaned
// value or a non-empty hint to re-prompt with.
func textStep(answerKey string, ft storage.FieldType, promptText string, back, skip bool,
	validator func(string) (string, string), assign func(*session.Session, string)) stepDef {
	def := stepDef{
		allowBack: back,
		allowSkip: skip,
		prompt: func(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
			return promptText, promptMarkup(nil, 1, back, skip), nil
		},
		handle: func(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
			if in.IsCallback() {
				return stay, nil
			}
			if in.Text == "" || strings.HasPrefix(in.Text, "/") {
				return retry(sendTextHint), nil
			}
			clean := validate.SanitizeText(in.Text)
			if validator != nil {
				var hint string
				clean, hint = validator(in.Text)
				if hint != "" {
					return retry(hint), nil
				}
			}
			if err := e.saveAnswer(ctx, s, answerKey, clean, ft); err != nil {
				return Outcome{}, err
			}
			if assign != nil {
				assign(s, clean)
			}
			return answered, nil
		},
	}
	if skip {
		def.skipKey = answerKey
	}
	return def
}

// choiceStep builds a single-choice step over a closed callback set.
// Anything outside the set is ignored and the prompt stands.
func choiceStep(answerKey, unique, promptText string, buttons []btnSpec, columns int, back bool,
	assign func(*session.Session, string)) stepDef {
	return stepDef{
		allowBack: back,
		prompt: func(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
			return promptText, promptMarkup(buttons, columns, back, false), nil
		},
		handle: func(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
			if !in.IsCallback() {
				return retry(useButtonsHint), nil
			}
			name, _ := callbacks.Parse(in.Callback)
			if name != unique {
				return stay, nil
			}
			if err := e.saveAnswer(ctx, s, answerKey, in.Callback, storage.FieldSingleChoice); err != nil {
				return Outcome{}, err
			}
			if assign != nil {
				assign(s, in.Callback)
			}
			return answered, nil
		},
	}
}

type multiOpt struct {
	key   string
	label string
}

func multiMarkup(opts []multiOpt, selected map[string]bool, back bool) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, o := range opts {
		label := o.label
		if selected[o.key] {
			label = "✅ " + label
		}
		rows = append(rows, []keyboard.InlineBtn{toInlineBtn(btnSpec{label, "M|T|" + o.key})})
	}
	rows = append(rows, []keyboard.InlineBtn{toInlineBtn(btnSpec{"✅ Tayyor", "M|DONE"})})
	rows = append(rows, navRows(back, false)...)
	return keyboard.InlineButtonsRows(rows...)
}

func selectedKeys(opts []multiOpt, selected map[string]bool) []string {
	keys := make([]string, 0, len(selected))
	for _, o := range opts {
		if selected[o.key] {
			keys = append(keys, o.key)
		}
	}
	return keys
}

func marshalList(keys []string) string {
	raw, _ := json.Marshal(keys)
	return string(raw)
}

// steps is populated in init so handlers may re-render the current
// step's prompt through the table itself.
var steps map[StepKey]stepDef

func init() {
	steps = buildSteps()
}

func buildSteps() map[StepKey]stepDef {
	m := map[StepKey]stepDef{
		StepVacancy: {
			prompt: promptVacancy,
			handle: handleVacancy,
		},

		StepFullName: textStep("full_name", storage.FieldText,
			"👤 *Ism, familiyangizni kiriting:*\n\nMasalan: *Alisher Karimov*",
			false, false,
			func(raw string) (string, string) {
				clean := validate.SanitizeText(raw)
				if !validate.Name(clean) {
					return "", "😕 Ism-familiya noto'g'ri. Qaytadan kiriting."
				}
				return clean, ""
			},
			func(s *session.Session, v string) { s.Personal.FullName = v }),

		StepBirthDate: textStep("birth_date", storage.FieldDate,
			"📅 *Tug'ilgan sanangiz:*\n\nFormat: *DD.MM.YYYY* (masalan: *24.03.2004*)",
			true, false,
			func(raw string) (string, string) {
				clean := validate.NormalizeBirthDate(validate.SanitizeText(raw))
				if _, ok := validate.BirthDate(clean); !ok {
					return "", "😕 Sana noto'g'ri formatda. Masalan: *24.03.2004*"
				}
				return clean, ""
			},
			func(s *session.Session, v string) { s.Personal.BirthDate = v }),

		StepAddress: textStep("address", storage.FieldText,
			"📍 *Yashash manzilingiz (shahar/tuman):*\n\nMasalan: *Toshkent, Chilonzor*",
			true, false, nil,
			func(s *session.Session, v string) { s.Personal.Address = v }),

		StepPhone: phoneStep(),

		StepMarital: choiceStep("marital_status", "MAR",
			"💍 *Oilaviy holatingiz?*",
			[]btnSpec{
				{"Bo'ydoq / Turmush qurmagan", "MAR|SINGLE"},
				{"Uylangan / Turmush qurgan", "MAR|MARRIED"},
				{"Ajrashgan", "MAR|DIVORCED"},
			}, 1, true,
			func(s *session.Session, v string) { s.Personal.MaritalStatus = v }),

		StepEduType: choiceStep("education_type", "EDU",
			"🎓 *Oxirgi tugatgan o'quv yurt turi?*",
			[]btnSpec{
				{"🏫 Maktab", "EDU|SCHOOL"},
				{"🏢 Kollej", "EDU|COLLEGE"},
				{"🎓 Oliy ta'lim", "EDU|HIGHER"},
			}, 1, true,
			func(s *session.Session, v string) { s.Education.Type = v }),

		StepEduSpeciality: textStep("speciality", storage.FieldText,
			"📚 *Mutaxassisligingiz (yo'nalish):*",
			true, false, nil,
			func(s *session.Session, v string) { s.Education.Speciality = v }),

		StepEduCerts: {
			allowBack: true,
			prompt:    promptEduCerts,
			handle:    handleEduCerts,
		},

		StepExpGate: {
			allowBack: true,
			prompt: func(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
				return "💼 *Oldin biror joyda ishlaganmisiz?*",
					promptMarkup([]btnSpec{{"✅ Ha", "EXP|YES"}, {"❌ Yo'q", "EXP|NO"}}, 2, true, false),
					nil
			},
			handle: handleExpGate,
		},

		StepExpCompany: textStep("exp_company", storage.FieldText,
			"💼 *Oldin qayerda ishlagansiz?*\n\nMasalan: *Klinika / Call-center / Do'kon*",
			true, false, nil,
			func(s *session.Session, v string) { s.Experience.Company = v }),

		StepExpDuration: {
			allowBack: true,
			prompt:    promptExpDuration,
			handle:    handleExpDuration,
		},

		StepExpPosition: textStep("exp_position", storage.FieldText,
			"👔 *Qaysi lavozimda ishlagansiz?*",
			true, false, nil,
			func(s *session.Session, v string) { s.Experience.Position = v }),

		StepExpLeaveReason: textStep("exp_leave_reason", storage.FieldText,
			"❓ *Ishdan ketish sababi?*",
			true, true, nil,
			func(s *session.Session, v string) { s.Experience.LeaveReason = v }),

		StepExpCanWorkHowLong: textStep("exp_can_work_how_long", storage.FieldText,
			"🕒 *Biz bilan qancha muddat ishlay olasiz?*\n\nMasalan: *1 yil*, *2+ yil*, *aniq emas*",
			true, false, nil,
			func(s *session.Session, v string) { s.Experience.CanWorkHowLong = v }),

		StepSkillsComputer: {
			allowBack: true,
			prompt: func(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
				return "💻 *Kompyuterda ishlay olasizmi? (Word/Excel/Telegram/CRM)*\n\nBir nechta tanlang:",
					multiMarkup(skillOptions, s.Selected, true), nil
			},
			handle: handleSkills,
		},

		StepFitCommunication: choiceStep("communication_skill", "COMM",
			"🗣️ *Muloqot qobiliyatingiz qanday?*",
			[]btnSpec{
				{"A'lo", "COMM|EXCELLENT"},
				{"Yaxshi", "COMM|GOOD"},
				{"O'rtacha", "COMM|AVERAGE"},
			}, 1, true,
			func(s *session.Session, v string) { s.Fit.Communication = v }),

		StepFitCalls: choiceStep("can_answer_calls", "CALLS",
			"📞 *Telefon qo'ng'iroqlariga javob bera olasizmi?*",
			[]btnSpec{{"✅ Ha", "CALLS|YES"}, {"❌ Yo'q", "CALLS|NO"}}, 1, true,
			func(s *session.Session, v string) { s.Fit.Calls = v }),

		StepFitClientExp: choiceStep("client_experience", "CLIENT",
			"🤝 *Mijozlar bilan ishlash tajribangiz bormi?*",
			[]btnSpec{{"✅ Ha", "CLIENT|YES"}, {"❌ Yo'q", "CLIENT|NO"}}, 1, true,
			func(s *session.Session, v string) { s.Fit.ClientExp = v }),

		StepFitDress: choiceStep("dress_code", "DRESS",
			"👔 *Kiyinish madaniyatiga rioya qilasizmi?*",
			[]btnSpec{{"✅ Ha", "DRESS|YES"}, {"❌ Yo'q", "DRESS|NO"}}, 1, true,
			func(s *session.Session, v string) { s.Fit.Dress = v }),

		StepFitStress: choiceStep("stress_tolerance", "STRESS",
			"💪 *Stressga chidamliligingiz qanday?*",
			[]btnSpec{
				{"Yuqori", "STRESS|HIGH"},
				{"O'rtacha", "STRESS|MID"},
				{"Past", "STRESS|LOW"},
			}, 1, true,
			func(s *session.Session, v string) { s.Fit.Stress = v }),

		StepWorkShift: choiceStep("work_shift", "SHIFT",
			"⏰ *Qaysi ish vaqtida ishlay olasiz?*",
			[]btnSpec{{"⚡ To'liq stavka", "SHIFT|FULL"}, {"🕐 Yarim stavka", "SHIFT|HALF"}}, 1, true,
			func(s *session.Session, v string) { s.Logistics.Shift = v }),

		StepWorkSalary: textStep("expected_salary", storage.FieldText,
			"💰 *Oylik kutilmangiz qancha?*\n\nMasalan: *3 000 000 so'm*",
			true, false, nil,
			func(s *session.Session, v string) { s.Logistics.Salary = v }),

		StepWorkStartDate: textStep("start_date", storage.FieldText,
			"🚀 *Qachondan ish boshlay olasiz?*\n\nMasalan: *01.03.2026* yoki *bugun/ertaga*",
			true, false, nil,
			func(s *session.Session, v string) { s.Logistics.StartDate = v }),

		StepFilePhoto: {
			allowBack: true,
			prompt:    promptPhoto,
			handle:    handlePhoto,
		},

		StepFilePassport: optionalFileStep("PASS", storage.SlotPassport,
			"🪪 *Pasport nusxasini yubora olasizmi?* (ixtiyoriy)",
			"📎 *Pasport nusxasini yuboring* (rasm yoki fayl):",
			func(s *session.Session) { s.Files.PassportSaved = true }),

		StepFileRecommendation: optionalFileStep("REC", storage.SlotRecommendation,
			"📄 *Tavsiyanoma bormi?* (ixtiyoriy)",
			"📎 *Tavsiyanomani yuboring* (rasm yoki fayl):",
			func(s *session.Session) { s.Files.RecommendationSave = true }),

		StepReview: {
			prompt: promptReview,
			handle: handleReview,
		},
	}
	return m
}

// phoneStep also accepts a shared Telegram contact as the answer.
func phoneStep() stepDef {
	def := textStep("phone", storage.FieldPhone,
		"📞 *Telefon raqamingiz:*\n\nMasalan: *+998901234567*",
		true, false,
		func(raw string) (string, string) {
			clean := validate.SanitizeText(raw)
			if !validate.Phone(clean) {
				return "", "😕 Telefon raqam noto'g'ri. Masalan: *+998901234567*"
			}
			return clean, ""
		},
		func(s *session.Session, v string) { s.Personal.Phone = v })

	inner := def.handle
	def.handle = func(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
		if in.Contact != nil {
			in.Text = in.Contact.PhoneNumber
			in.Contact = nil
		}
		return inner(e, ctx, c, s, in)
	}
	return def
}

func promptVacancy(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
	vacancies, err := e.deps.Vacancies.ListActive(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(vacancies) > 12 {
		vacancies = vacancies[:12]
	}
	specs := make([]btnSpec, 0, len(vacancies))
	for _, v := range vacancies {
		specs = append(specs, btnSpec{v.Title, "VAC|" + v.ID.String()})
	}
	return "📌 *Qaysi vakansiyaga topshirasiz?*", promptMarkup(specs, 1, false, false), nil
}

func handleVacancy(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if !in.IsCallback() {
		return retry(useButtonsHint), nil
	}
	name, payload := callbacks.Parse(in.Callback)
	if name != "VAC" {
		return stay, nil
	}
	id, err := uuid.Parse(payload)
	if err != nil {
		return stay, nil
	}
	vac, err := e.deps.Vacancies.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if vac == nil || !vac.Active {
		// the button may outlive the vacancy
		return retry("Bu vakansiya endi mavjud emas, boshqasini tanlang."), nil
	}
	if err := e.deps.Apps.SetVacancy(ctx, s.ApplicationID, id); err != nil {
		return Outcome{}, err
	}
	s.VacancyID = &id
	return answered, nil
}

func handleExpGate(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if !in.IsCallback() {
		return retry(useButtonsHint), nil
	}
	name, payload := callbacks.Parse(in.Callback)
	if name != "EXP" || (payload != "YES" && payload != "NO") {
		return stay, nil
	}
	if err := e.saveAnswer(ctx, s, "exp_has", payload, storage.FieldSingleChoice); err != nil {
		return Outcome{}, err
	}
	has := payload == "YES"
	s.Experience.HasExperience = &has
	return answered, nil
}

var skillOptions = []multiOpt{
	{"WORD", "📝 Word"},
	{"EXCEL", "📊 Excel"},
	{"TELEGRAM", "📱 Telegram"},
	{"CRM", "📋 CRM"},
	{"GOOGLE_SHEETS", "📈 Google Sheets"},
}

func handleSkills(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if !in.IsCallback() {
		return retry(useButtonsHint), nil
	}
	name, payload := callbacks.Parse(in.Callback)
	if name != "M" {
		return stay, nil
	}
	if key, ok := strings.CutPrefix(payload, "T|"); ok {
		s.Selected[key] = !s.Selected[key]
		text, markup, _ := steps[StepSkillsComputer].prompt(e, ctx, s)
		if err := e.editPrompt(c, s, text, markup); err != nil {
			return Outcome{}, err
		}
		return stay, nil
	}
	if payload != "DONE" {
		return stay, nil
	}
	keys := selectedKeys(skillOptions, s.Selected)
	if err := e.saveAnswer(ctx, s, "computer_skills", marshalList(keys), storage.FieldMultiChoice); err != nil {
		return Outcome{}, err
	}
	return answered, nil
}

var certOptions = []multiOpt{
	{"ENGLISH", "🇬🇧 Ingliz"},
	{"ARABIC", "🇸🇦 Arab"},
	{"RUSSIAN", "🇷🇺 Rus"},
	{"GERMAN", "🇩🇪 Nemis"},
	{"KOREAN", "🇰🇷 Koreys"},
	{"TURKISH", "🇹🇷 Turk"},
	{"UZBEK", "🟩 Ona tili"},
	{"MATH", "➗ Matematika"},
	{"PHYSICS", "🧲 Fizika"},
	{"CHEMISTRY", "🧪 Kimyo"},
	{"BIOLOGY", "🧬 Biologiya"},
	{"HISTORY", "📜 Tarix"},
	{"LAW", "⚖️ Huquq"},
	{"OTHER", "➕ Boshqa"},
}

// languageCerts are the certificate keys that get a follow-up level
// question.
var languageCerts = map[string]bool{
	"ENGLISH": true, "ARABIC": true, "RUSSIAN": true,
	"GERMAN": true, "KOREAN": true, "TURKISH": true, "UZBEK": true,
}

var levelButtons = []btnSpec{
	{"A1", "LVL|A1"}, {"A2", "LVL|A2"}, {"B1", "LVL|B1"},
	{"B2", "LVL|B2"}, {"C1", "LVL|C1"}, {"C2", "LVL|C2"},
	{"IELTS", "LVL|IELTS"}, {"TOEFL", "LVL|TOEFL"}, {"Boshqa", "LVL|OTHER"},
}

const (
	phaseLevel       = "level"
	phaseLevelCustom = "level_custom"
	phaseAwaitFile   = "await_file"
	phaseCustomText  = "custom_text"
)

func promptEduCerts(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
	switch s.Phase {
	case phaseLevel:
		if len(s.LevelQueue) == 0 {
			break
		}
		cur := s.LevelQueue[0]
		return fmt.Sprintf("🏷️ *%s* darajangiz?", cur),
			promptMarkup(levelButtons, 3, true, true), nil
	case phaseLevelCustom:
		if len(s.LevelQueue) == 0 {
			break
		}
		cur := s.LevelQueue[0]
		return fmt.Sprintf("✍️ *%s* darajani yozing (masalan: B2 / IELTS 6.5):", cur),
			promptMarkup(nil, 1, true, false), nil
	}
	return "📜 *Qaysi til/fandan sertifikatingiz bor? (bir nechta tanlang)*",
		multiMarkup(certOptions, s.Selected, true), nil
}

func handleEduCerts(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	switch s.Phase {
	case phaseLevel:
		return handleCertLevel(e, ctx, c, s, in)
	case phaseLevelCustom:
		return handleCertLevelCustom(e, ctx, c, s, in)
	}

	if !in.IsCallback() {
		return retry(useButtonsHint), nil
	}
	name, payload := callbacks.Parse(in.Callback)
	if name != "M" {
		return stay, nil
	}
	if key, ok := strings.CutPrefix(payload, "T|"); ok {
		s.Selected[key] = !s.Selected[key]
		text, markup, _ := promptEduCerts(e, ctx, s)
		if err := e.editPrompt(c, s, text, markup); err != nil {
			return Outcome{}, err
		}
		return stay, nil
	}
	if payload != "DONE" {
		return stay, nil
	}

	keys := selectedKeys(certOptions, s.Selected)
	if err := e.saveAnswer(ctx, s, "certificates", marshalList(keys), storage.FieldMultiChoice); err != nil {
		return Outcome{}, err
	}
	s.Education.Certificates = keys
	s.Education.Levels = map[string]string{}
	for _, k := range keys {
		if languageCerts[k] {
			s.LevelQueue = append(s.LevelQueue, k)
		}
	}
	if len(s.LevelQueue) == 0 {
		return finishCertLevels(e, ctx, s)
	}
	s.Phase = phaseLevel
	return stay, rerender(e, ctx, c, s)
}

func handleCertLevel(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if !in.IsCallback() {
		return retry(useButtonsHint), nil
	}
	if in.Callback == NavSkip {
		// skip the remaining level questions, keep what was collected
		return finishCertLevels(e, ctx, s)
	}
	name, payload := callbacks.Parse(in.Callback)
	if name != "LVL" {
		return stay, nil
	}
	if payload == "OTHER" {
		s.Phase = phaseLevelCustom
		return stay, rerender(e, ctx, c, s)
	}
	return recordCertLevel(e, ctx, c, s, payload)
}

func handleCertLevelCustom(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if in.IsCallback() {
		return stay, nil
	}
	if in.Text == "" || strings.HasPrefix(in.Text, "/") {
		return retry(sendTextHint), nil
	}
	s.Phase = phaseLevel
	return recordCertLevel(e, ctx, c, s, validate.SanitizeText(in.Text))
}

func recordCertLevel(e *Engine, ctx context.Context, c tele.Context, s *session.Session, level string) (Outcome, error) {
	if len(s.LevelQueue) == 0 {
		return finishCertLevels(e, ctx, s)
	}
	s.Education.Levels[s.LevelQueue[0]] = level
	s.LevelQueue = s.LevelQueue[1:]
	if len(s.LevelQueue) == 0 {
		return finishCertLevels(e, ctx, s)
	}
	return stay, rerender(e, ctx, c, s)
}

func finishCertLevels(e *Engine, ctx context.Context, s *session.Session) (Outcome, error) {
	raw, _ := json.Marshal(s.Education.Levels)
	if err := e.saveAnswer(ctx, s, "certificates_level", string(raw), storage.FieldText); err != nil {
		return Outcome{}, err
	}
	return answered, nil
}

func rerender(e *Engine, ctx context.Context, c tele.Context, s *session.Session) error {
	text, markup, err := promptEduCerts(e, ctx, s)
	if err != nil {
		return err
	}
	return e.replacePrompt(c, s, text, markup)
}

var durationButtons = []btnSpec{
	{"0–6 oy", "DUR|0_6"},
	{"6–12 oy", "DUR|6_12"},
	{"1–2 yil", "DUR|1_2Y"},
	{"2+ yil", "DUR|2P"},
	{"Qo'lda yozaman", "DUR|CUSTOM"},
}

func promptExpDuration(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
	if s.Phase == phaseCustomText {
		return "⏳ *Muddatni yozing:* (masalan: 8 oy)", promptMarkup(nil, 1, true, false), nil
	}
	return "⏳ *Qancha muddat ishlagansiz?*", promptMarkup(durationButtons, 1, true, false), nil
}

func handleExpDuration(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if s.Phase == phaseCustomText {
		if in.IsCallback() {
			return stay, nil
		}
		if in.Text == "" || strings.HasPrefix(in.Text, "/") {
			return retry(sendTextHint), nil
		}
		clean := validate.SanitizeText(in.Text)
		if !validate.Duration(clean) {
			return retry("⏳ Masalan: *8 oy* yoki *2 yil*"), nil
		}
		return saveDuration(e, ctx, s, clean)
	}

	if !in.IsCallback() {
		return retry(useButtonsHint), nil
	}
	name, payload := callbacks.Parse(in.Callback)
	if name != "DUR" {
		return stay, nil
	}
	if payload == "CUSTOM" {
		s.Phase = phaseCustomText
		text, markup, _ := promptExpDuration(e, ctx, s)
		if err := e.replacePrompt(c, s, text, markup); err != nil {
			return Outcome{}, err
		}
		return stay, nil
	}
	return saveDuration(e, ctx, s, in.Callback)
}

func saveDuration(e *Engine, ctx context.Context, s *session.Session, value string) (Outcome, error) {
	if err := e.saveAnswer(ctx, s, "exp_duration", value, storage.FieldSingleChoice); err != nil {
		return Outcome{}, err
	}
	s.Experience.Duration = value
	return answered, nil
}

const photoPromptText = "📸 *Belidan yuqori rasm yuboring*\n\n" +
	"✅ *To'g'ri misol:*\n" +
	"• Yuz aniq ko'rinishi kerak\n" +
	"• Fon oddiy bo'lishi kerak\n" +
	"• Rasm tik formatda (enidan balandligi katta)\n" +
	"• Kamida 600x800 piksel\n\n" +
	"❌ *Noto'g'ri misol:*\n" +
	"• Pasport 3x4 skan qilmang\n" +
	"• To'liq gavda rasm emas\n" +
	"• Juda kichik yoki loyqa rasm\n\n" +
	"Rasmni yuboring:"

const photoRulesText = "📸 *QOIDA: Belidan yuqori rasm*\n\n" +
	"🔹 *TO'G'RI:*\n" +
	"• Yuz va yelka qismi aniq\n" +
	"• Fon oddiy (devor yoki bir xil rang)\n" +
	"• Rasm aniq va yorug'\n" +
	"• Portret formatda\n\n" +
	"🔸 *NOTO'G'RI:*\n" +
	"• Pasport 3x4 skan\n" +
	"• To'liq gavda (oyoqdan boshgacha)\n" +
	"• Juda kichkina rasm\n" +
	"• Guruhda tushgan rasm\n" +
	"• Filtr qilingan yoki yuzi berkitilgan"

func promptPhoto(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
	rows := [][]keyboard.InlineBtn{
		{toInlineBtn(btnSpec{"📋 Qoidani ko'rsat", PhotoRules})},
	}
	rows = append(rows, navRows(true, false)...)
	return photoPromptText, keyboard.InlineButtonsRows(rows...), nil
}

func handlePhoto(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if in.IsCallback() {
		switch in.Callback {
		case PhotoRules:
			return retry(photoRulesText), nil
		case PhotoRetry:
			return retry(""), nil
		}
		return stay, nil
	}
	if in.PhotoID == "" {
		return retry("Iltimos, rasm yuboring."), nil
	}

	data, err := e.deps.Downloader.Download(ctx, in.PhotoID)
	if err != nil {
		return Outcome{}, fmt.Errorf("download photo: %w", err)
	}

	acc, err := photo.Validate(data, e.deps.Rules)
	if err != nil {
		var rej *photo.RejectionError
		if errors.As(err, &rej) {
			return retry(rej.Message), nil
		}
		return Outcome{}, err
	}

	prev := s.Files.PhotoHash
	if ans, err := e.deps.Answers.GetByKey(ctx, s.ApplicationID, "photo_hash"); err != nil {
		return Outcome{}, err
	} else if ans != nil {
		prev = ans.FieldValue
	}
	curr := photo.Fingerprint(acc.Image)
	if err := photo.CheckFingerprint(prev, curr, e.deps.Rules); err != nil {
		var rej *photo.RejectionError
		if errors.As(err, &rej) {
			return retry(rej.Message), nil
		}
		return Outcome{}, err
	}

	var url, publicID *string
	if e.deps.Uploader != nil {
		obj, err := e.deps.Uploader.Upload(ctx, acc.Bytes)
		if err != nil {
			return Outcome{}, fmt.Errorf("upload photo: %w", err)
		}
		url, publicID = &obj.URL, &obj.PublicID
	}

	meta := storage.FileMeta{Width: acc.Width, Height: acc.Height, Ratio: acc.Ratio, Kind: "photo"}
	if err := e.deps.Files.Save(ctx, s.ApplicationID, storage.SlotHalfBody, in.PhotoID, url, publicID, meta); err != nil {
		return Outcome{}, err
	}
	if err := e.saveAnswer(ctx, s, "photo_hash", curr, storage.FieldText); err != nil {
		return Outcome{}, err
	}
	s.Files.PhotoHash = curr
	s.Files.PhotoSaved = true
	return answered, nil
}

// optionalFileStep asks whether the applicant has the document, then
// accepts a photo or file with skip allowed.
func optionalFileStep(unique string, slot storage.FileSlot, askText, fileText string, mark func(*session.Session)) stepDef {
	return stepDef{
		allowBack: true,
		prompt: func(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
			if s.Phase == phaseAwaitFile {
				return fileText, promptMarkup(nil, 1, true, true), nil
			}
			buttons := []btnSpec{
				{"✅ Ha, yuboraman", unique + "|YES"},
				{"⏭ Hozir yo'q", unique + "|NO"},
			}
			return askText, promptMarkup(buttons, 1, true, false), nil
		},
		handle: func(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
			if s.Phase == phaseAwaitFile {
				if in.Callback == NavSkip {
					return answered, nil
				}
				fileID, kind := in.PhotoID, "photo"
				if fileID == "" {
					fileID, kind = in.DocumentID, "document"
				}
				if fileID == "" {
					return retry("Iltimos, rasm yoki fayl yuboring."), nil
				}
				meta := storage.FileMeta{Kind: kind}
				if err := e.deps.Files.Save(ctx, s.ApplicationID, slot, fileID, nil, nil, meta); err != nil {
					return Outcome{}, err
				}
				if mark != nil {
					mark(s)
				}
				return answered, nil
			}

			if !in.IsCallback() {
				return retry(useButtonsHint), nil
			}
			name, payload := callbacks.Parse(in.Callback)
			if name != unique {
				return stay, nil
			}
			switch payload {
			case "YES":
				s.Phase = phaseAwaitFile
				text, markup, _ := steps[StepKey(s.CurrentStep)].prompt(e, ctx, s)
				if err := e.replacePrompt(c, s, text, markup); err != nil {
					return Outcome{}, err
				}
				return stay, nil
			case "NO":
				return answered, nil
			}
			return stay, nil
		},
	}
}

func promptReview(e *Engine, ctx context.Context, s *session.Session) (string, *tele.ReplyMarkup, error) {
	answers, err := e.deps.Answers.ListByApplication(ctx, s.ApplicationID)
	if err != nil {
		return "", nil, err
	}
	files, err := e.deps.Files.ListByApplication(ctx, s.ApplicationID)
	if err != nil {
		return "", nil, err
	}
	summary := notify.ApplicantSummary(answers, files, s.ApplicationID)
	text := "📄 *Anketa tayyor!*\n\n" +
		"Quyidagi ma'lumotlarni tekshirib chiqing:\n\n" + summary +
		"\n\nTasdiqlaysizmi yoki tahrir qilasizmi?"
	markup := inlineRows(
		[]btnSpec{{"✅ Tasdiqlash", ConfirmSubmit}, {"✏️ Tahrirlash", ConfirmEdit}},
		[]btnSpec{{"❌ Bekor qilish", NavCancel}},
	)
	return text, markup, nil
}

func handleReview(e *Engine, ctx context.Context, c tele.Context, s *session.Session, in Input) (Outcome, error) {
	if !in.IsCallback() {
		return retry("Iltimos, tugmalardan foydalaning 👇"), nil
	}
	switch in.Callback {
	case ConfirmEdit:
		return Outcome{Kind: OutcomeBack}, nil
	case ConfirmSubmit:
		if err := e.deps.Apps.UpdateStatus(ctx, s.ApplicationID, storage.StatusSubmitted); err != nil {
			return Outcome{}, err
		}
		if e.deps.Notifier != nil {
			if err := e.deps.Notifier.Submitted(ctx, s.ApplicationID); err != nil {
				return Outcome{}, fmt.Errorf("notify admins: %w", err)
			}
		}
		if err := e.replacePrompt(c, s, submittedText, nil); err != nil {
			return Outcome{}, err
		}
		return answered, nil
	}
	return stay, nil
}
