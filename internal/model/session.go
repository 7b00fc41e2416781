package model

import "time"

type SessionType string

const (
	SessionQuiz       SessionType = "quiz"
	SessionDebate     SessionType = "debate"
	SessionWhiteboard SessionType = "whiteboard"
)

// ValidType reports whether t names a known session type.
func ValidType(t SessionType) bool {
	switch t {
	case SessionQuiz, SessionDebate, SessionWhiteboard:
		return true
	}
	return false
}

type SessionState string

const (
	StateLobby  SessionState = "lobby"
	StateActive SessionState = "active"
	StatePaused SessionState = "paused"
	StateClosed SessionState = "closed"
)

// SessionConfig carries the per-session knobs supplied on the start
// command. Zero values fall back to type defaults inside the engine.
type SessionConfig struct {
	Source             string `json:"source,omitempty"`             // material handed to the content adapter
	QuestionCount      int    `json:"questionCount,omitempty"`      // quiz
	TimePerQuestionSec int    `json:"timePerQuestionSec,omitempty"` // quiz, 0 = 30s default
	BasePoints         int    `json:"basePoints,omitempty"`         // quiz
	MinParticipants    int    `json:"minParticipants,omitempty"`    // lobby gate
	Mode               string `json:"mode,omitempty"`               // quiz: "standard" or "flashcard"
	Format             string `json:"format,omitempty"`             // debate: "quick" or "standard"
}

// Session is one interactive run bound to exactly one channel and one
// session type. It is mutated only by its owning actor; everything the
// rest of the system sees is a snapshot copy.
type Session struct {
	ID            string                  `json:"id" bson:"_id"`
	ChannelID     string                  `json:"channelId" bson:"channelId"`
	Type          SessionType             `json:"type" bson:"type"`
	State         SessionState            `json:"state" bson:"state"`
	CurrentPhase  int                     `json:"currentPhase" bson:"currentPhase"`
	PhaseDeadline *time.Time              `json:"phaseDeadline,omitempty" bson:"phaseDeadline,omitempty"`
	CreatedAt     time.Time               `json:"createdAt" bson:"createdAt"`
	Config        SessionConfig           `json:"config" bson:"config"`
	Content       []ContentItem           `json:"content" bson:"content"`
	Participants  map[string]*Participant `json:"participants" bson:"participants"`
}

// Snapshot returns a deep copy safe to hand outside the owning actor.
func (s *Session) Snapshot() *Session {
	cp := *s
	if s.PhaseDeadline != nil {
		d := *s.PhaseDeadline
		cp.PhaseDeadline = &d
	}
	cp.Content = append([]ContentItem(nil), s.Content...)
	cp.Participants = make(map[string]*Participant, len(s.Participants))
	for id, p := range s.Participants {
		pc := *p
		pc.Answers = append([]Answer(nil), p.Answers...)
		cp.Participants[id] = &pc
	}
	return &cp
}
