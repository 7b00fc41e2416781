package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"studyhall/internal/model"
)

func TestWhiteboardSkipsLobby(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	ctx := context.Background()

	sess, err := eng.StartSession(ctx, "chan1", model.SessionWhiteboard, model.SessionConfig{}, nil, "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.State != model.StateActive {
		t.Fatalf("whiteboard must open active, got %s", sess.State)
	}
	if sess.PhaseDeadline != nil {
		t.Fatal("capture phase is untimed")
	}

	// There is no lobby to join.
	_, err = eng.Dispatch(ctx, Event{Kind: EventJoin, SessionID: sess.ID, UserID: "bob"})
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for join, got %v", err)
	}
}

func TestWhiteboardCapturesRegisterContributors(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	ctx := context.Background()

	sess, err := eng.StartSession(ctx, "chan1", model.SessionWhiteboard, model.SessionConfig{}, nil, "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 5; i++ {
		user := "alice"
		if i%2 == 1 {
			user = "bob"
		}
		if _, err := eng.Dispatch(ctx, Event{
			Kind: EventAction, SessionID: sess.ID, UserID: user,
			Action: model.ActionAddImage, Text: fmt.Sprintf("note %d", i+1),
		}); err != nil {
			t.Fatalf("capture %d: %v", i+1, err)
		}
	}

	snap, err := eng.GetSessionByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(snap.Content) != 5 {
		t.Fatalf("want 5 captures, got %d", len(snap.Content))
	}
	if len(snap.Participants) != 2 {
		t.Fatalf("contributors must register as participants, got %d", len(snap.Participants))
	}
	for _, item := range snap.Content {
		if item.Kind != model.ContentNote || item.AddedBy == "" {
			t.Fatalf("capture missing attribution: %+v", item)
		}
	}
}

func TestWhiteboardRejectsAnswers(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	ctx := context.Background()

	sess, err := eng.StartSession(ctx, "chan1", model.SessionWhiteboard, model.SessionConfig{}, nil, "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err = eng.Dispatch(ctx, Event{
		Kind: EventAction, SessionID: sess.ID, UserID: "alice",
		Action: model.ActionSubmitAnswer, Choice: 0,
	})
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestWhiteboardCloseRequestsSummary(t *testing.T) {
	eng, rec := testEngine(t, Options{})
	ctx := context.Background()

	sess, err := eng.StartSession(ctx, "chan1", model.SessionWhiteboard, model.SessionConfig{}, nil, "alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := eng.Dispatch(ctx, Event{
		Kind: EventAction, SessionID: sess.ID, UserID: "alice",
		Action: model.ActionAddImage, Text: "the quadratic formula",
	}); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := eng.EndSession(ctx, sess.ID); err != nil {
		t.Fatalf("end: %v", err)
	}

	ev := rec.waitFor(t, model.EventSessionClosed, time.Second)
	payload := ev.Payload.(model.SessionClosedPayload)
	if !payload.SummaryRequested {
		t.Fatal("whiteboard close must request a summary")
	}
	if payload.Snapshot == nil || len(payload.Snapshot.Content) != 1 {
		t.Fatalf("close payload must carry the captured content, got %+v", payload.Snapshot)
	}

	// Ending twice stays a no-op and emits exactly one close.
	if err := eng.EndSession(ctx, sess.ID); err != nil {
		t.Fatalf("second end: %v", err)
	}
	if got := len(rec.byType(model.EventSessionClosed)); got != 1 {
		t.Fatalf("want one session_closed, got %d", got)
	}
}
