// Package review drives the interactive confirmation loop between
// generation and the final commit: present a candidate message, let the
// user commit, regenerate, edit the message or the instructions, or
// walk away.
package review

import "fmt"

// State is the position of a review session.
type State int

const (
	// Reviewing presents the current candidate and waits for a choice.
	Reviewing State = iota
	// Editing waits for an edited message from the editor.
	Editing
	// EditingInstructions waits for edited custom instructions.
	EditingInstructions
	// Confirming is terminal; the commit is being applied.
	Confirming
	// Cancelled is terminal; the repository stays untouched.
	Cancelled
)

func (s State) String() string {
	switch s {
	case Reviewing:
		return "reviewing"
	case Editing:
		return "editing"
	case EditingInstructions:
		return "editing-instructions"
	case Confirming:
		return "confirming"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// EventKind enumerates the inputs a session reacts to.
type EventKind int

const (
	Regenerate EventKind = iota
	Edit
	EditInstructions
	Confirm
	Cancel
	// TextSubmitted delivers the editor result for Editing and
	// EditingInstructions.
	TextSubmitted
	// TextAborted reports that the editor was closed without saving.
	TextAborted
)

func (k EventKind) String() string {
	switch k {
	case Regenerate:
		return "regenerate"
	case Edit:
		return "edit"
	case EditInstructions:
		return "edit-instructions"
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	case TextSubmitted:
		return "text-submitted"
	case TextAborted:
		return "text-aborted"
	default:
		return "unknown"
	}
}

// Event is one discrete input. Text is only meaningful for
// TextSubmitted.
type Event struct {
	Kind EventKind
	Text string
}

// Outcome tells the driver what follow-up action an event requires.
type Outcome int

const (
	// OutcomeNone requires nothing; present the session again.
	OutcomeNone Outcome = iota
	// OutcomeOpenEditor asks the driver to collect text seeded with
	// EditorSeed and feed back TextSubmitted or TextAborted.
	OutcomeOpenEditor
	// OutcomeRegenerate asks the driver to produce a fresh candidate
	// with the session's current instructions.
	OutcomeRegenerate
	// OutcomeCommit asks the driver to apply the commit.
	OutcomeCommit
	// OutcomeAbort ends the session without touching the repository.
	OutcomeAbort
)

// Session holds the candidate message and custom instructions under
// review. Transitions are pure: Apply mutates only the session and
// reports the follow-up action as an Outcome.
type Session struct {
	state        State
	message      string
	instructions string
}

// NewSession starts a session in Reviewing over the given candidate.
func NewSession(message, instructions string) *Session {
	return &Session{state: Reviewing, message: message, instructions: instructions}
}

func (s *Session) State() State         { return s.state }
func (s *Session) Message() string      { return s.message }
func (s *Session) Instructions() string { return s.instructions }

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool {
	return s.state == Confirming || s.state == Cancelled
}

// SetMessage replaces the candidate, typically after a regeneration.
func (s *Session) SetMessage(message string) {
	s.message = message
}

// EditorSeed is the text the editor should open with in the current
// state.
func (s *Session) EditorSeed() string {
	switch s.state {
	case Editing:
		return s.message
	case EditingInstructions:
		return s.instructions
	default:
		return ""
	}
}

// Apply advances the session by one event. Events that make no sense
// in the current state leave the session unchanged and return an
// error.
func (s *Session) Apply(event Event) (Outcome, error) {
	switch s.state {
	case Reviewing:
		return s.applyReviewing(event)
	case Editing:
		return s.applyEditing(event)
	case EditingInstructions:
		return s.applyEditingInstructions(event)
	default:
		return OutcomeNone, fmt.Errorf("session already %s", s.state)
	}
}

func (s *Session) applyReviewing(event Event) (Outcome, error) {
	switch event.Kind {
	case Confirm:
		s.state = Confirming
		return OutcomeCommit, nil
	case Cancel:
		s.state = Cancelled
		return OutcomeAbort, nil
	case Regenerate:
		return OutcomeRegenerate, nil
	case Edit:
		s.state = Editing
		return OutcomeOpenEditor, nil
	case EditInstructions:
		s.state = EditingInstructions
		return OutcomeOpenEditor, nil
	default:
		return OutcomeNone, s.invalid(event)
	}
}

func (s *Session) applyEditing(event Event) (Outcome, error) {
	switch event.Kind {
	case TextSubmitted:
		s.message = event.Text
		s.state = Reviewing
		return OutcomeNone, nil
	case TextAborted:
		s.state = Reviewing
		return OutcomeNone, nil
	default:
		return OutcomeNone, s.invalid(event)
	}
}

// Editing the instructions implies the current candidate no longer
// reflects them, so a successful edit regenerates.
func (s *Session) applyEditingInstructions(event Event) (Outcome, error) {
	switch event.Kind {
	case TextSubmitted:
		s.instructions = event.Text
		s.state = Reviewing
		return OutcomeRegenerate, nil
	case TextAborted:
		s.state = Reviewing
		return OutcomeNone, nil
	default:
		return OutcomeNone, s.invalid(event)
	}
}

func (s *Session) invalid(event Event) error {
	return fmt.Errorf("event %s not valid while %s", event.Kind, s.state)
}
