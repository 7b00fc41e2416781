package model

import "time"

type ContentKind string

const (
	ContentQuestion  ContentKind = "question"
	ContentFlashcard ContentKind = "flashcard"
	ContentTopic     ContentKind = "topic"
	ContentNote      ContentKind = "note"
)

// ContentItem is one opaque unit of session content: a quiz question
// with choices, a flashcard, a debate topic/turn, or a captured
// whiteboard note. The engine never interprets it beyond what the
// active phase needs; items are immutable once appended.
type ContentItem struct {
	Kind         ContentKind `json:"kind" bson:"kind"`
	Prompt       string      `json:"prompt,omitempty" bson:"prompt,omitempty"`
	Choices      []string    `json:"choices,omitempty" bson:"choices,omitempty"`
	CorrectIndex int         `json:"correctIndex,omitempty" bson:"correctIndex,omitempty"`
	Back         string      `json:"back,omitempty" bson:"back,omitempty"`
	Text         string      `json:"text,omitempty" bson:"text,omitempty"`
	AddedBy      string      `json:"addedBy,omitempty" bson:"addedBy,omitempty"`
	AddedAt      time.Time   `json:"addedAt,omitempty" bson:"addedAt,omitempty"`
}
