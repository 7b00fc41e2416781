package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"studyhall/internal/engine"
	"studyhall/internal/model"
)

// Client talks to an AI content service that answers prompts with
// JSON. When no API key is configured it falls back to canned content
// so the engine stays usable in development.
type Client struct {
	baseURL   string
	apiKey    string
	modelName string
	client    *http.Client
	log       *zap.Logger
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "mistral-large-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		modelName: cfg.Model,
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       log,
	}
}

func (c *Client) enabled() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// Generate produces the ordered content sequence for a new session.
// Whiteboards start empty; their content accumulates from captures.
func (c *Client) Generate(ctx context.Context, typ model.SessionType, cfg model.SessionConfig) ([]model.ContentItem, error) {
	if typ == model.SessionWhiteboard {
		return nil, nil
	}
	if !c.enabled() {
		return c.mockGenerate(typ, cfg), nil
	}

	prompt := c.buildGeneratePrompt(typ, cfg)
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w: %v", engine.ErrContentUnavailable, err)
	}

	var items []model.ContentItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("content generation returned malformed items: %w: %v", engine.ErrContentUnavailable, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("content generation returned no items: %w", engine.ErrContentUnavailable)
	}
	return items, nil
}

// Summarize condenses captured whiteboard notes into a single text.
func (c *Client) Summarize(ctx context.Context, items []model.ContentItem) (string, error) {
	if !c.enabled() {
		return c.mockSummary(items), nil
	}

	var sb strings.Builder
	for _, it := range items {
		sb.WriteString("- ")
		sb.WriteString(it.Text)
		sb.WriteString("\n")
	}
	prompt := fmt.Sprintf(`Summarize the following whiteboard notes from a study session into a short,
well-structured recap. Return plain text only.

Notes:
%s`, sb.String())

	return c.complete(ctx, prompt)
}

// complete posts a chat completion request and returns the first
// message's text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.modelName,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content service returned %d", resp.StatusCode)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from content service")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) buildGeneratePrompt(typ model.SessionType, cfg model.SessionConfig) string {
	switch typ {
	case model.SessionQuiz:
		count := cfg.QuestionCount
		if count <= 0 {
			count = 5
		}
		if cfg.Mode == "flashcard" {
			return fmt.Sprintf(`Create %d flashcards from the material below. Return ONLY a JSON array
where each element matches: {"kind":"flashcard","prompt":"front of card","back":"back of card"}

Material:
%s`, count, cfg.Source)
		}
		return fmt.Sprintf(`Create %d multiple-choice quiz questions from the material below. Return
ONLY a JSON array where each element matches:
{"kind":"question","prompt":"question text","choices":["a","b","c","d"],"correctIndex":0}

Material:
%s`, count, cfg.Source)
	case model.SessionDebate:
		return fmt.Sprintf(`Create one debate topic from the material below. Return ONLY a JSON array
with a single element matching: {"kind":"topic","prompt":"resolved: ..."}

Material:
%s`, cfg.Source)
	}
	return ""
}

func (c *Client) mockGenerate(typ model.SessionType, cfg model.SessionConfig) []model.ContentItem {
	c.log.Warn("content service not configured, using mock content", zap.String("type", string(typ)))
	switch typ {
	case model.SessionQuiz:
		count := cfg.QuestionCount
		if count <= 0 {
			count = 3
		}
		items := make([]model.ContentItem, 0, count)
		for i := 0; i < count; i++ {
			if cfg.Mode == "flashcard" {
				items = append(items, model.ContentItem{
					Kind:   model.ContentFlashcard,
					Prompt: fmt.Sprintf("Sample card %d (front)", i+1),
					Back:   fmt.Sprintf("Sample card %d (back)", i+1),
				})
				continue
			}
			items = append(items, model.ContentItem{
				Kind:         model.ContentQuestion,
				Prompt:       fmt.Sprintf("Sample question %d?", i+1),
				Choices:      []string{"Option A", "Option B", "Option C", "Option D"},
				CorrectIndex: i % 4,
			})
		}
		return items
	case model.SessionDebate:
		return []model.ContentItem{{
			Kind:   model.ContentTopic,
			Prompt: "Resolved: sample debate topic (content service not configured)",
		}}
	}
	return nil
}

func (c *Client) mockSummary(items []model.ContentItem) string {
	return fmt.Sprintf("Session recap: %d notes captured (content service not configured).", len(items))
}
