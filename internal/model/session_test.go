package model

import (
	"testing"
	"time"
)

func TestSnapshotIsDeepCopy(t *testing.T) {
	deadline := time.Now().Add(time.Minute)
	orig := &Session{
		ID:            "s_1",
		ChannelID:     "chan1",
		Type:          SessionQuiz,
		State:         StateActive,
		PhaseDeadline: &deadline,
		Content: []ContentItem{
			{Kind: ContentQuestion, Prompt: "q1", Choices: []string{"a", "b"}},
		},
		Participants: map[string]*Participant{
			"alice": {UserID: "alice", Score: 50, Answers: []Answer{{Phase: 0, Choice: 1}}},
		},
	}

	snap := orig.Snapshot()

	// Mutating the original must not show through the snapshot. The
	// deadline mutation below writes through the shared pointer, so save
	// the expected value first.
	want := deadline
	orig.State = StateClosed
	*orig.PhaseDeadline = orig.PhaseDeadline.Add(time.Hour)
	orig.Content = append(orig.Content, ContentItem{Kind: ContentNote, Text: "late"})
	orig.Participants["alice"].Score = 999
	orig.Participants["alice"].Answers = append(orig.Participants["alice"].Answers, Answer{Phase: 1})
	orig.Participants["bob"] = &Participant{UserID: "bob"}

	if snap.State != StateActive {
		t.Fatalf("state leaked: %s", snap.State)
	}
	if !snap.PhaseDeadline.Equal(want) {
		t.Fatalf("deadline leaked: %v", snap.PhaseDeadline)
	}
	if len(snap.Content) != 1 {
		t.Fatalf("content leaked: %d items", len(snap.Content))
	}
	if snap.Participants["alice"].Score != 50 || len(snap.Participants["alice"].Answers) != 1 {
		t.Fatalf("participant leaked: %+v", snap.Participants["alice"])
	}
	if _, ok := snap.Participants["bob"]; ok {
		t.Fatal("new participant leaked into snapshot")
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []SessionType{SessionQuiz, SessionDebate, SessionWhiteboard} {
		if !ValidType(typ) {
			t.Fatalf("%s should be valid", typ)
		}
	}
	if ValidType("karaoke") {
		t.Fatal("unknown type should be invalid")
	}
}
