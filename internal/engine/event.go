package engine

import "studyhall/internal/model"

// EventKind enumerates everything that can happen to a session: user
// commands, timer expirations, and the janitor's idle probe. All of
// them funnel through Engine.Dispatch and are consumed one at a time
// by the owning actor.
type EventKind string

const (
	EventJoin      EventKind = "join"
	EventStart     EventKind = "start"
	EventAction    EventKind = "action"
	EventAdvance   EventKind = "advance"
	EventPause     EventKind = "pause"
	EventResume    EventKind = "resume"
	EventForceEnd  EventKind = "force_end"
	EventTimeout   EventKind = "timeout"
	EventIdleCheck EventKind = "idle_check"
)

// Control names the reaction-style controls for quiz and flashcard
// sessions.
type Control string

const (
	ControlShowAnswer    Control = "showAnswer"
	ControlNext          Control = "next"
	ControlMarkCorrect   Control = "markCorrect"
	ControlMarkIncorrect Control = "markIncorrect"
	ControlEnd           Control = "end"
)

// Event targets a session either by id or by (channel, type). The
// zero values of unused fields are ignored by the actor.
type Event struct {
	Kind      EventKind
	SessionID string
	ChannelID string
	Type      model.SessionType
	UserID    string

	Action  model.ActionKind // for EventAction
	Choice  int              // submit_answer
	Control Control          // control
	Text    string           // add_image
	Force   bool             // start: initiator override of the lobby gate

	timerGen uint64 // set by the clock on timeout events
}

// Result is the synchronous reply to a dispatched event.
type Result struct {
	Session *model.Session // post-event snapshot
	Points  int            // points awarded, submit_answer only
	Correct bool           // submit_answer only
}
