package flow

import tele "gopkg.in/telebot.v4"

// Input is the normalized shape of one inbound applicant event.
type Input struct {
	Text       string
	Callback   string
	PhotoID    string
	DocumentID string
	Contact    *tele.Contact
}

// IsCallback reports whether the event is a button press.
func (in Input) IsCallback() bool { return in.Callback != "" }

// OutcomeKind tags the result of dispatching an event to a step.
type OutcomeKind uint8

const (
	// OutcomeRetry re-renders the current prompt, optionally with a hint.
	OutcomeRetry OutcomeKind = iota
	// OutcomeStay leaves the step as-is; the handler already updated the
	// prompt in place (multi-select toggles, sub-dialog phases).
	OutcomeStay
	// OutcomeAnswer completes the step; the handler persisted its value.
	OutcomeAnswer
	// OutcomeBack returns to the most recently completed step.
	OutcomeBack
	// OutcomeCancel terminates the whole flow.
	OutcomeCancel
	// OutcomeSkip completes an optional step with an empty value.
	OutcomeSkip
)

// Outcome is the tagged result a step handler returns to the dispatch
// loop. Navigation is ordinary data, never a panic or sentinel error.
type Outcome struct {
	Kind OutcomeKind
	// Hint prefixes the re-rendered prompt on OutcomeRetry.
	Hint string
}

func retry(hint string) Outcome { return Outcome{Kind: OutcomeRetry, Hint: hint} }

var (
	stay     = Outcome{Kind: OutcomeStay}
	answered = Outcome{Kind: OutcomeAnswer}
)

// Reserved callback payloads shared by every step keyboard.
const (
	NavBack    = "NAV|BACK"
	NavCancel  = "NAV|CANCEL"
	NavSkip    = "NAV|SKIP"
	NavResume  = "NAV|RESUME"
	NavRestart = "NAV|RESTART"

	PhotoRules = "PHOTO|RULES"
	PhotoRetry = "PHOTO|RETRY"

	ConfirmSubmit = "CONFIRM|SUBMIT"
	ConfirmEdit   = "CONFIRM|EDIT"
)
