package model

import "time"

type ParticipantStatus string

const (
	ParticipantActive       ParticipantStatus = "active"
	ParticipantDisconnected ParticipantStatus = "disconnected"
)

// Participant is one user's standing within a session. A user id
// appears at most once per session; for quizzes the score is monotone
// non-decreasing and only the active phase's scoring rule may raise it.
type Participant struct {
	UserID       string            `json:"userId" bson:"userId"`
	JoinedAt     time.Time         `json:"joinedAt" bson:"joinedAt"`
	Score        int               `json:"score" bson:"score"`
	LastActionAt time.Time         `json:"lastActionAt" bson:"lastActionAt"`
	Answers      []Answer          `json:"answers" bson:"answers"`
	Status       ParticipantStatus `json:"status" bson:"status"`
}

// Answer is one submitted response, recorded in submission order.
type Answer struct {
	Phase       int       `json:"phase" bson:"phase"`
	Choice      int       `json:"choice" bson:"choice"`
	Correct     bool      `json:"correct" bson:"correct"`
	Points      int       `json:"points" bson:"points"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}
