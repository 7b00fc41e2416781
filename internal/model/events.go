package model

// OutputType enumerates the events the engine produces for the
// transport layer to render.
type OutputType string

const (
	EventPhaseAnnounced OutputType = "phase_announced"
	EventAnswerRevealed OutputType = "answer_revealed"
	EventScoreUpdated   OutputType = "score_updated"
	EventSessionClosed  OutputType = "session_closed"
	EventSummaryReady   OutputType = "summary_ready"
	EventActionRejected OutputType = "action_rejected"
)

// OutputEvent is the envelope handed to emitters (WebSocket hub,
// recorder). Payload is one of the typed payload structs below.
type OutputEvent struct {
	Type        OutputType  `json:"type"`
	SessionID   string      `json:"sessionId"`
	ChannelID   string      `json:"channelId"`
	SessionType SessionType `json:"sessionType"`
	Payload     interface{} `json:"payload,omitempty"`
}

type PhaseAnnouncedPayload struct {
	Phase       int      `json:"phase"`
	Name        string   `json:"name"`
	Prompt      string   `json:"prompt,omitempty"`
	Choices     []string `json:"choices,omitempty"`
	Speaker     string   `json:"speaker,omitempty"`
	SpeakerUser string   `json:"speakerUser,omitempty"`
	DurationSec int      `json:"durationSec,omitempty"`
}

type AnswerRevealedPayload struct {
	Phase         int    `json:"phase"`
	CorrectIndex  int    `json:"correctIndex"`
	CorrectChoice string `json:"correctChoice,omitempty"`
	Back          string `json:"back,omitempty"`
}

type ScoreUpdatedPayload struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Total  int    `json:"total"`
}

type ScoreEntry struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// SessionClosedPayload carries the final snapshot so downstream
// consumers (archive, leaderboard, summarizer) never need to reach
// back into engine state.
type SessionClosedPayload struct {
	Reason           string       `json:"reason"`
	FinalScores      []ScoreEntry `json:"finalScores,omitempty"`
	SummaryRequested bool         `json:"summaryRequested,omitempty"`
	Snapshot         *Session     `json:"-"`
}

type SummaryReadyPayload struct {
	Summary string `json:"summary"`
}

type ActionRejectedPayload struct {
	UserID string `json:"userId,omitempty"`
	Reason string `json:"reason"`
}
