package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studyhall/internal/engine"
	"studyhall/internal/model"
)

func TestGenerateFallsBackToMock(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)

	items, err := c.Generate(context.Background(), model.SessionQuiz, model.SessionConfig{QuestionCount: 4})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("want 4 mock questions, got %d", len(items))
	}
	for _, it := range items {
		if it.Kind != model.ContentQuestion || len(it.Choices) != 4 {
			t.Fatalf("malformed mock question: %+v", it)
		}
		if it.CorrectIndex < 0 || it.CorrectIndex >= len(it.Choices) {
			t.Fatalf("correct index out of range: %+v", it)
		}
	}
}

func TestGenerateFlashcardMock(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)

	items, err := c.Generate(context.Background(), model.SessionQuiz, model.SessionConfig{QuestionCount: 2, Mode: "flashcard"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 cards, got %d", len(items))
	}
	for _, it := range items {
		if it.Kind != model.ContentFlashcard || it.Back == "" {
			t.Fatalf("malformed mock card: %+v", it)
		}
	}
}

func TestGenerateWhiteboardIsEmpty(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)
	items, err := c.Generate(context.Background(), model.SessionWhiteboard, model.SessionConfig{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if items != nil {
		t.Fatalf("whiteboards start empty, got %d items", len(items))
	}
}

func chatServer(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("missing bearer token")
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func TestGenerateParsesServiceReply(t *testing.T) {
	reply := `[{"kind":"question","prompt":"2+2?","choices":["3","4","5","6"],"correctIndex":1}]`
	srv := chatServer(t, reply, http.StatusOK)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	items, err := c.Generate(context.Background(), model.SessionQuiz, model.SessionConfig{Source: "arithmetic"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 || items[0].Prompt != "2+2?" || items[0].CorrectIndex != 1 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestGenerateRejectsMalformedReply(t *testing.T) {
	srv := chatServer(t, "sorry, no JSON today", http.StatusOK)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	_, err := c.Generate(context.Background(), model.SessionQuiz, model.SessionConfig{})
	if !errors.Is(err, engine.ErrContentUnavailable) {
		t.Fatalf("expected ErrContentUnavailable for malformed reply, got %v", err)
	}
}

func TestGenerateSurfacesServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	_, err := c.Generate(context.Background(), model.SessionQuiz, model.SessionConfig{})
	if !errors.Is(err, engine.ErrContentUnavailable) {
		t.Fatalf("expected ErrContentUnavailable for 503 from service, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	srv := chatServer(t, "A tidy recap of the session.", http.StatusOK)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	items := []model.ContentItem{{Kind: model.ContentNote, Text: "photosynthesis diagram"}}
	got, err := c.Summarize(context.Background(), items)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got != "A tidy recap of the session." {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestSummarizeMockCountsNotes(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)
	items := []model.ContentItem{
		{Kind: model.ContentNote, Text: "a"},
		{Kind: model.ContentNote, Text: "b"},
	}
	got, err := c.Summarize(context.Background(), items)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(got, "2") {
		t.Fatalf("mock summary should mention the note count, got %q", got)
	}
}
