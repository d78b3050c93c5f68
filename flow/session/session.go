// Package session keeps the per-applicant conversation state between
// Telegram updates. Sessions are an in-memory shadow of the durable
// application row and may be rebuilt from it after a restart.
package session

import (
	"github.com/google/uuid"
)

// Personal holds the identity answers of the applicant.
type Personal struct {
	FullName      string
	BirthDate     string
	Address       string
	Phone         string
	MaritalStatus string
}

// Education holds schooling and certificate answers.
type Education struct {
	Type       string
	Speciality string
	// Certificates are the selected certificate keys; Levels maps a
	// language certificate key to its declared level.
	Certificates []string
	Levels       map[string]string
}

// Experience holds the prior-employment answers. HasExperience is nil
// until the gate step is answered.
type Experience struct {
	HasExperience  *bool
	Company        string
	Duration       string
	Position       string
	LeaveReason    string
	CanWorkHowLong string
}

// Fit holds the reception-suitability answers.
type Fit struct {
	Communication string
	Calls         string
	ClientExp     string
	Dress         string
	Stress        string
}

// Logistics holds work-condition answers.
type Logistics struct {
	Shift     string
	Salary    string
	StartDate string
}

// Files tracks which upload slots were filled and the accepted portrait
// fingerprint.
type Files struct {
	PhotoHash          string
	PhotoSaved         bool
	PassportSaved      bool
	RecommendationSave bool
}

// Session is the live conversation state of one applicant.
type Session struct {
	TelegramID    int64
	ApplicationID uuid.UUID
	VacancyID     *uuid.UUID

	// CurrentStep mirrors applications.current_step; the durable column
	// wins after a restart.
	CurrentStep string
	History     []string

	Personal   Personal
	Education  Education
	Experience Experience
	Fit        Fit
	Logistics  Logistics
	Files      Files

	// Phase is step-local sub-dialog state (multi-select toggles done,
	// level loop, custom text branch, optional-file pre-ask).
	Phase string
	// Selected carries the in-progress multi-select toggles.
	Selected map[string]bool
	// LevelQueue lists certificate keys still awaiting a level answer;
	// the head is the one currently asked.
	LevelQueue []string

	// AwaitResume is set while the continue-or-restart prompt is shown.
	AwaitResume bool

	// LastBotMessageID is the prompt to delete before sending the next
	// one, so the chat does not accumulate stale prompts.
	LastBotMessageID int
}

// New returns an empty session positioned at the given step.
func New(telegramID int64, applicationID uuid.UUID, step string) *Session {
	return &Session{
		TelegramID:    telegramID,
		ApplicationID: applicationID,
		CurrentStep:   step,
		Selected:      map[string]bool{},
	}
}

// PushHistory records a completed step for back navigation.
func (s *Session) PushHistory(step string) {
	s.History = append(s.History, step)
}

// PopHistory returns the most recently completed step, or fallback when
// the history is empty.
func (s *Session) PopHistory(fallback string) string {
	if len(s.History) == 0 {
		return fallback
	}
	last := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return last
}

// ResetPhase clears step-local sub-dialog state when a step is entered.
func (s *Session) ResetPhase() {
	s.Phase = ""
	s.Selected = map[string]bool{}
	s.LevelQueue = nil
}
