package flow

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/uzjobs/receptionbot/flow/session"
	"github.com/uzjobs/receptionbot/storage"
)

type fakeAnswers struct {
	byKey map[string]storage.Answer
}

func newFakeAnswers() *fakeAnswers {
	return &fakeAnswers{byKey: map[string]storage.Answer{}}
}

func (f *fakeAnswers) Upsert(_ context.Context, applicationID uuid.UUID, fieldKey, value string, fieldType storage.FieldType) error {
	f.byKey[fieldKey] = storage.Answer{
		ApplicationID: applicationID,
		FieldKey:      fieldKey,
		FieldValue:    value,
		FieldType:     fieldType,
	}
	return nil
}

func (f *fakeAnswers) GetByKey(_ context.Context, _ uuid.UUID, fieldKey string) (*storage.Answer, error) {
	a, ok := f.byKey[fieldKey]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeAnswers) ListByApplication(_ context.Context, _ uuid.UUID) ([]storage.Answer, error) {
	out := make([]storage.Answer, 0, len(f.byKey))
	for _, a := range f.byKey {
		out = append(out, a)
	}
	return out, nil
}

type fakeApps struct {
	active    *storage.Application
	steps     []string
	statuses  []storage.Status
	vacancyID *uuid.UUID
}

func (f *fakeApps) Create(_ context.Context, telegramID int64, initialStep string, vacancyID *uuid.UUID) (*storage.Application, error) {
	app := &storage.Application{
		ID:          uuid.New(),
		TelegramID:  telegramID,
		Status:      storage.StatusInProgress,
		CurrentStep: initialStep,
		VacancyID:   vacancyID,
	}
	f.active = app
	return app, nil
}

func (f *fakeApps) FindActive(_ context.Context, _ int64) (*storage.Application, error) {
	return f.active, nil
}

func (f *fakeApps) UpdateStep(_ context.Context, _ uuid.UUID, step string) error {
	f.steps = append(f.steps, step)
	return nil
}

func (f *fakeApps) UpdateStatus(_ context.Context, _ uuid.UUID, status storage.Status) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeApps) SetVacancy(_ context.Context, _, vacancyID uuid.UUID) error {
	f.vacancyID = &vacancyID
	return nil
}

type fakeVacancies struct {
	items []storage.Vacancy
}

func (f *fakeVacancies) ListActive(_ context.Context) ([]storage.Vacancy, error) {
	out := make([]storage.Vacancy, 0, len(f.items))
	for _, v := range f.items {
		if v.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVacancies) GetByID(_ context.Context, id uuid.UUID) (*storage.Vacancy, error) {
	for _, v := range f.items {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, nil
}

func newTestEngine() (*Engine, *fakeAnswers, *fakeApps, *fakeVacancies) {
	answers := newFakeAnswers()
	apps := &fakeApps{}
	vacancies := &fakeVacancies{}
	e := NewEngine(Deps{
		Sessions:  session.NewStore(time.Hour),
		Apps:      apps,
		Answers:   answers,
		Vacancies: vacancies,
	})
	return e, answers, apps, vacancies
}

func newTestSession(step StepKey) *session.Session {
	return session.New(1, uuid.New(), string(step))
}

func TestFullNameStep(t *testing.T) {
	e, answers, _, _ := newTestEngine()
	s := newTestSession(StepFullName)
	def := steps[StepFullName]

	out, err := def.handle(e, context.Background(), nil, s, Input{Text: "  Alisher   Karimov "})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("outcome = %v, want answer", out.Kind)
	}
	saved := answers.byKey["full_name"]
	if saved.FieldValue != "Alisher Karimov" {
		t.Errorf("saved %q, want sanitized name", saved.FieldValue)
	}
	if saved.FieldType != storage.FieldText {
		t.Errorf("field type = %s, want TEXT", saved.FieldType)
	}
	if s.Personal.FullName != "Alisher Karimov" {
		t.Errorf("scratch full name = %q", s.Personal.FullName)
	}
}

func TestFullNameStepRejects(t *testing.T) {
	e, answers, _, _ := newTestEngine()
	s := newTestSession(StepFullName)
	def := steps[StepFullName]

	tests := []struct {
		name string
		in   Input
		hint bool
	}{
		{"too short", Input{Text: "Al"}, true},
		{"digits", Input{Text: "Karimov 1990"}, true},
		{"empty", Input{Text: ""}, true},
		{"command", Input{Text: "/help"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := def.handle(e, context.Background(), nil, s, tt.in)
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if out.Kind != OutcomeRetry {
				t.Fatalf("outcome = %v, want retry", out.Kind)
			}
			if tt.hint && out.Hint == "" {
				t.Error("retry hint is empty")
			}
		})
	}
	if len(answers.byKey) != 0 {
		t.Errorf("rejected input persisted: %v", answers.byKey)
	}
}

func TestTextStepIgnoresCallbacks(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := newTestSession(StepAddress)
	out, err := steps[StepAddress].handle(e, context.Background(), nil, s, Input{Callback: "MAR|SINGLE"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeStay {
		t.Fatalf("outcome = %v, want stay", out.Kind)
	}
}

func TestBirthDateStepNormalizes(t *testing.T) {
	e, answers, _, _ := newTestEngine()
	s := newTestSession(StepBirthDate)

	out, err := steps[StepBirthDate].handle(e, context.Background(), nil, s, Input{Text: "24/03/2004"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("outcome = %v, want answer", out.Kind)
	}
	if got := answers.byKey["birth_date"].FieldValue; got != "24.03.2004" {
		t.Errorf("saved %q, want canonical 24.03.2004", got)
	}
}

func TestPhoneStepAcceptsContact(t *testing.T) {
	e, answers, _, _ := newTestEngine()
	s := newTestSession(StepPhone)

	in := Input{Contact: &tele.Contact{PhoneNumber: "+998901234567"}}
	out, err := steps[StepPhone].handle(e, context.Background(), nil, s, in)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("outcome = %v, want answer", out.Kind)
	}
	if got := answers.byKey["phone"].FieldValue; got != "+998901234567" {
		t.Errorf("saved %q", got)
	}
}

func TestMaritalChoice(t *testing.T) {
	e, answers, _, _ := newTestEngine()
	s := newTestSession(StepMarital)
	def := steps[StepMarital]

	out, err := def.handle(e, context.Background(), nil, s, Input{Text: "bo'ydoq"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeRetry || out.Hint != useButtonsHint {
		t.Fatalf("text on choice step: outcome = %v hint %q", out.Kind, out.Hint)
	}

	out, err = def.handle(e, context.Background(), nil, s, Input{Callback: "EDU|SCHOOL"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeStay {
		t.Fatalf("foreign callback: outcome = %v, want stay", out.Kind)
	}

	out, err = def.handle(e, context.Background(), nil, s, Input{Callback: "MAR|SINGLE"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("outcome = %v, want answer", out.Kind)
	}
	saved := answers.byKey["marital_status"]
	if saved.FieldValue != "MAR|SINGLE" || saved.FieldType != storage.FieldSingleChoice {
		t.Errorf("saved %q (%s)", saved.FieldValue, saved.FieldType)
	}
	if s.Personal.MaritalStatus != "MAR|SINGLE" {
		t.Errorf("scratch marital = %q", s.Personal.MaritalStatus)
	}
}

func TestExpGate(t *testing.T) {
	tests := []struct {
		callback string
		want     *bool
		saved    string
	}{
		{"EXP|YES", boolPtr(true), "YES"},
		{"EXP|NO", boolPtr(false), "NO"},
		{"EXP|MAYBE", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.callback, func(t *testing.T) {
			e, answers, _, _ := newTestEngine()
			s := newTestSession(StepExpGate)

			out, err := steps[StepExpGate].handle(e, context.Background(), nil, s, Input{Callback: tt.callback})
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if tt.want == nil {
				if out.Kind != OutcomeStay || s.Experience.HasExperience != nil {
					t.Fatal("unknown payload should be ignored")
				}
				return
			}
			if out.Kind != OutcomeAnswer {
				t.Fatalf("outcome = %v, want answer", out.Kind)
			}
			if s.Experience.HasExperience == nil || *s.Experience.HasExperience != *tt.want {
				t.Errorf("gate flag = %v, want %v", s.Experience.HasExperience, *tt.want)
			}
			if got := answers.byKey["exp_has"].FieldValue; got != tt.saved {
				t.Errorf("saved %q, want %q", got, tt.saved)
			}
		})
	}
}

func TestVacancyPick(t *testing.T) {
	e, _, apps, vacancies := newTestEngine()
	s := newTestSession(StepVacancy)
	id := uuid.New()
	vacancies.items = []storage.Vacancy{{ID: id, Title: "Qabulxona", Active: true}}

	out, err := handleVacancy(e, context.Background(), nil, s, Input{Callback: "VAC|not-a-uuid"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeStay {
		t.Fatalf("bad uuid: outcome = %v, want stay", out.Kind)
	}

	out, err = handleVacancy(e, context.Background(), nil, s, Input{Callback: "VAC|" + uuid.NewString()})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeRetry {
		t.Fatalf("unknown vacancy: outcome = %v, want retry", out.Kind)
	}

	out, err = handleVacancy(e, context.Background(), nil, s, Input{Callback: "VAC|" + id.String()})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("outcome = %v, want answer", out.Kind)
	}
	if apps.vacancyID == nil || *apps.vacancyID != id {
		t.Error("vacancy not persisted")
	}
	if s.VacancyID == nil || *s.VacancyID != id {
		t.Error("vacancy not kept in session")
	}
}

func TestSkillsDone(t *testing.T) {
	e, answers, _, _ := newTestEngine()
	s := newTestSession(StepSkillsComputer)
	s.Selected["EXCEL"] = true
	s.Selected["WORD"] = true

	out, err := handleSkills(e, context.Background(), nil, s, Input{Callback: "M|DONE"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Kind != OutcomeAnswer {
		t.Fatalf("outcome = %v, want answer", out.Kind)
	}

	var keys []string
	if err := json.Unmarshal([]byte(answers.byKey["computer_skills"].FieldValue), &keys); err != nil {
		t.Fatalf("saved value is not a JSON list: %v", err)
	}
	// catalogue order, not click order
	if len(keys) != 2 || keys[0] != "WORD" || keys[1] != "EXCEL" {
		t.Errorf("keys = %v, want [WORD EXCEL]", keys)
	}
}

func TestRebuildRestoresDurableScratch(t *testing.T) {
	e, answers, apps, _ := newTestEngine()
	appID := uuid.New()
	_ = answers.Upsert(context.Background(), appID, "exp_has", "NO", storage.FieldSingleChoice)
	_ = answers.Upsert(context.Background(), appID, "photo_hash", "deadbeef", storage.FieldText)
	apps.active = &storage.Application{
		ID:          appID,
		TelegramID:  1,
		Status:      storage.StatusInProgress,
		CurrentStep: string(StepFilePhoto),
	}

	s := e.rebuild(context.Background(), 1, apps.active)
	if s.CurrentStep != string(StepFilePhoto) {
		t.Errorf("current step = %q", s.CurrentStep)
	}
	if s.Experience.HasExperience == nil || *s.Experience.HasExperience {
		t.Error("gate flag not restored")
	}
	if s.Files.PhotoHash != "deadbeef" {
		t.Errorf("photo hash = %q", s.Files.PhotoHash)
	}
	if _, ok := e.deps.Sessions.Get(1); !ok {
		t.Error("rebuilt session not stored")
	}
}
