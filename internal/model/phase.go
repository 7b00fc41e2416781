package model

import "time"

// ActionKind classifies the typed user actions a phase may accept.
type ActionKind string

const (
	ActionSubmitAnswer ActionKind = "submit_answer"
	ActionControl      ActionKind = "control"
	ActionAddImage     ActionKind = "add_image"
)

// EffectKind names the side effect a phase runs on entry or timeout.
type EffectKind string

const (
	EffectNone            EffectKind = ""
	EffectAnnouncePhase   EffectKind = "announce_phase"
	EffectAnnounceSpeaker EffectKind = "announce_speaker"
	EffectRevealAnswer    EffectKind = "reveal_answer"
	EffectSummarize       EffectKind = "summarize"
)

// PhaseDefinition is the static descriptor of one stage in a session
// type's fixed sequence. Sequences are finite and acyclic; running off
// the end of the sequence closes the session.
type PhaseDefinition struct {
	Name      string
	Duration  time.Duration // 0 = untimed
	Allowed   map[ActionKind]bool
	Speaker   string // debate slot label, empty = shared floor
	OnEnter   EffectKind
	OnTimeout EffectKind
}

// Allows reports whether the phase accepts the given action kind.
func (p PhaseDefinition) Allows(kind ActionKind) bool {
	return p.Allowed[kind]
}

// Timed reports whether the phase carries a deadline.
func (p PhaseDefinition) Timed() bool {
	return p.Duration > 0
}
