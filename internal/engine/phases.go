package engine

import (
	"fmt"
	"time"

	"studyhall/internal/model"
)

// typeProfile captures the static differences between session types:
// whether creation lands in the lobby and how many participants the
// start gate wants by default.
type typeProfile struct {
	skipLobby       bool
	minParticipants int
}

func profileFor(typ model.SessionType, cfg model.SessionConfig) typeProfile {
	switch typ {
	case model.SessionQuiz:
		min := cfg.MinParticipants
		if min <= 0 {
			min = 1
		}
		return typeProfile{minParticipants: min}
	case model.SessionDebate:
		min := cfg.MinParticipants
		if min <= 0 {
			min = 2
		}
		return typeProfile{minParticipants: min}
	default: // whiteboard: no gate, straight to Active(0)
		return typeProfile{skipLobby: true}
	}
}

type debateSlot struct {
	name     string
	speaker  string // slot label; empty = shared floor
	duration time.Duration
}

// debateFormats maps a format name to its fixed speaker-slot sequence.
var debateFormats = map[string][]debateSlot{
	"quick": {
		{"opening-proponent", "proponent", 60 * time.Second},
		{"opening-opponent", "opponent", 60 * time.Second},
		{"closing-floor", "", 60 * time.Second},
	},
	"standard": {
		{"opening-proponent", "proponent", 120 * time.Second},
		{"opening-opponent", "opponent", 120 * time.Second},
		{"rebuttal-proponent", "proponent", 90 * time.Second},
		{"rebuttal-opponent", "opponent", 90 * time.Second},
		{"crossfire", "", 120 * time.Second},
		{"closing-proponent", "proponent", 60 * time.Second},
		{"closing-opponent", "opponent", 60 * time.Second},
	},
}

// buildPhases expands a session type and its content into the fixed,
// finite phase sequence the actor walks through. The last phase is
// always terminal: advancing past it closes the session.
func buildPhases(typ model.SessionType, cfg model.SessionConfig, content []model.ContentItem) ([]model.PhaseDefinition, error) {
	switch typ {
	case model.SessionQuiz:
		if len(content) == 0 {
			return nil, fmt.Errorf("quiz session needs at least one content item: %w", ErrContentUnavailable)
		}
		flashcard := cfg.Mode == "flashcard"
		perQuestion := time.Duration(cfg.TimePerQuestionSec) * time.Second
		if !flashcard && cfg.TimePerQuestionSec == 0 {
			perQuestion = 30 * time.Second
		}
		phases := make([]model.PhaseDefinition, 0, len(content))
		for i := range content {
			p := model.PhaseDefinition{
				Name:    fmt.Sprintf("question-%d", i+1),
				Allowed: map[model.ActionKind]bool{model.ActionSubmitAnswer: true, model.ActionControl: true},
				OnEnter: model.EffectAnnouncePhase,
			}
			if flashcard {
				// Flashcards are untimed and driven entirely by controls.
				p.Name = fmt.Sprintf("card-%d", i+1)
				p.Allowed = map[model.ActionKind]bool{model.ActionControl: true}
			} else {
				p.Duration = perQuestion
				p.OnTimeout = model.EffectRevealAnswer
			}
			phases = append(phases, p)
		}
		return phases, nil

	case model.SessionDebate:
		format := cfg.Format
		if format == "" {
			format = "quick"
		}
		slots, ok := debateFormats[format]
		if !ok {
			return nil, fmt.Errorf("unknown debate format %q: %w", format, ErrInvalidAction)
		}
		phases := make([]model.PhaseDefinition, 0, len(slots))
		for _, s := range slots {
			phases = append(phases, model.PhaseDefinition{
				Name:      s.name,
				Duration:  s.duration,
				Speaker:   s.speaker,
				Allowed:   map[model.ActionKind]bool{},
				OnEnter:   model.EffectAnnounceSpeaker,
				OnTimeout: model.EffectAnnounceSpeaker,
			})
		}
		return phases, nil

	case model.SessionWhiteboard:
		// One untimed capture phase; termination is always manual and
		// produces the summary request.
		return []model.PhaseDefinition{{
			Name:    "capture",
			Allowed: map[model.ActionKind]bool{model.ActionAddImage: true},
			OnEnter: model.EffectAnnouncePhase,
		}}, nil
	}
	return nil, fmt.Errorf("unknown session type %q: %w", typ, ErrInvalidAction)
}
