package ws

import (
	"encoding/json"
	"testing"
	"time"

	"studyhall/internal/model"
)

func waitSubscribers(t *testing.T, h *Hub, channelID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.Subscribers(channelID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("channel %s never reached %d subscribers", channelID, want)
}

func TestHubRoutesEventsByChannel(t *testing.T) {
	h := NewHub(nil)

	conn1 := &Connection{ChannelID: "chan1", UserID: "alice", Send: make(chan []byte, 8), Hub: h}
	conn2 := &Connection{ChannelID: "chan2", UserID: "bob", Send: make(chan []byte, 8), Hub: h}
	h.Register(conn1)
	h.Register(conn2)
	waitSubscribers(t, h, "chan1", 1)
	waitSubscribers(t, h, "chan2", 1)

	h.Emit(model.OutputEvent{
		Type:      model.EventPhaseAnnounced,
		SessionID: "s_1",
		ChannelID: "chan1",
		Payload:   model.PhaseAnnouncedPayload{Phase: 0, Name: "question-1"},
	})

	select {
	case raw := <-conn1.Send:
		var ev model.OutputEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Type != model.EventPhaseAnnounced || ev.ChannelID != "chan1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("chan1 subscriber never got the event")
	}

	select {
	case raw := <-conn2.Send:
		t.Fatalf("chan2 subscriber got a chan1 event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub(nil)

	conn := &Connection{ChannelID: "chan1", UserID: "alice", Send: make(chan []byte, 8), Hub: h}
	h.Register(conn)
	waitSubscribers(t, h, "chan1", 1)

	h.Unregister(conn)
	waitSubscribers(t, h, "chan1", 0)

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub(nil)

	conn := &Connection{ChannelID: "chan1", UserID: "alice", Send: make(chan []byte, 1), Hub: h}
	h.Register(conn)
	waitSubscribers(t, h, "chan1", 1)

	// The second event finds the buffer full and is dropped rather than
	// blocking the hub.
	for i := 0; i < 3; i++ {
		h.Emit(model.OutputEvent{Type: model.EventScoreUpdated, ChannelID: "chan1"})
	}

	time.Sleep(50 * time.Millisecond)
	if got := len(conn.Send); got != 1 {
		t.Fatalf("want 1 buffered event, got %d", got)
	}
	if h.Subscribers("chan1") != 1 {
		t.Fatal("slow subscriber must stay registered")
	}
}
