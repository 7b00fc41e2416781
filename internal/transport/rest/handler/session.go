package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"studyhall/internal/auth"
	"studyhall/internal/content"
	"studyhall/internal/engine"
	"studyhall/internal/model"
)

// SessionHandler handles the session command surface: create, join,
// answers, controls, captures, and lifecycle operations.
type SessionHandler struct {
	eng     *engine.Engine
	adapter content.Adapter
	authSvc *auth.Service
}

func NewSessionHandler(eng *engine.Engine, adapter content.Adapter, authSvc *auth.Service) *SessionHandler {
	return &SessionHandler{eng: eng, adapter: adapter, authSvc: authSvc}
}

type CreateSessionRequest struct {
	Type   model.SessionType   `json:"type"`
	UserID string              `json:"userId"`
	Config model.SessionConfig `json:"config"`
}

// Create handles POST /v1/channels/{channelID}/sessions. Content is
// generated before the session is registered, so a failed generation
// never leaves a half-built session behind.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channelID"]

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if !model.ValidType(req.Type) {
		writeError(w, http.StatusBadRequest, "unknown session type")
		return
	}

	items, err := h.adapter.Generate(r.Context(), req.Type, req.Config)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	sess, err := h.eng.StartSession(r.Context(), channelID, req.Type, req.Config, items, req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	token, err := h.authSvc.GenerateParticipantToken(channelID, req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": sess,
		"token":   token,
	})
}

// ListByChannel handles GET /v1/channels/{channelID}/sessions
func (h *SessionHandler) ListByChannel(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channelID"]
	sessions := h.eng.ListActive(r.Context(), channelID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// ListAll handles GET /v1/sessions (host only, diagnostics)
func (h *SessionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	sessions := h.eng.ListActive(r.Context(), "")
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// Get handles GET /v1/sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	sess, err := h.eng.GetSessionByID(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type userRequest struct {
	UserID string `json:"userId"`
	Force  bool   `json:"force,omitempty"`
}

// Join handles POST /v1/sessions/{sessionID}/join. On success the
// caller receives a channel-scoped token for the event stream.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.eng.Dispatch(r.Context(), engine.Event{
		Kind:      engine.EventJoin,
		SessionID: sessionID,
		UserID:    req.UserID,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	token, err := h.authSvc.GenerateParticipantToken(res.Session.ChannelID, req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": res.Session,
		"token":   token,
	})
}

// Start handles POST /v1/sessions/{sessionID}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.eng.Dispatch(r.Context(), engine.Event{
		Kind:      engine.EventStart,
		SessionID: sessionID,
		UserID:    req.UserID,
		Force:     req.Force,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Session)
}

type SubmitAnswerRequest struct {
	UserID string `json:"userId"`
	Choice int    `json:"choice"`
}

// SubmitAnswer handles POST /v1/sessions/{sessionID}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.eng.Dispatch(r.Context(), engine.Event{
		Kind:      engine.EventAction,
		SessionID: sessionID,
		UserID:    req.UserID,
		Action:    model.ActionSubmitAnswer,
		Choice:    req.Choice,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"correct": res.Correct,
		"points":  res.Points,
	})
}

type ControlRequest struct {
	UserID  string `json:"userId"`
	Control string `json:"control"`
}

// Control handles POST /v1/sessions/{sessionID}/controls
func (h *SessionHandler) Control(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.eng.Dispatch(r.Context(), engine.Event{
		Kind:      engine.EventAction,
		SessionID: sessionID,
		UserID:    req.UserID,
		Action:    model.ActionControl,
		Control:   engine.Control(req.Control),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Session)
}

type AddImageRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// AddImage handles POST /v1/sessions/{sessionID}/images. First-time
// contributors are registered as participants, so the response also
// carries a stream token.
func (h *SessionHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req AddImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.eng.Dispatch(r.Context(), engine.Event{
		Kind:      engine.EventAction,
		SessionID: sessionID,
		UserID:    req.UserID,
		Action:    model.ActionAddImage,
		Text:      req.Text,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	token, err := h.authSvc.GenerateParticipantToken(res.Session.ChannelID, req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": res.Session,
		"token":   token,
	})
}

// Advance handles POST /v1/sessions/{sessionID}/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, engine.EventAdvance)
}

// Pause handles POST /v1/sessions/{sessionID}/pause
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, engine.EventPause)
}

// Resume handles POST /v1/sessions/{sessionID}/resume
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, engine.EventResume)
}

func (h *SessionHandler) lifecycle(w http.ResponseWriter, r *http.Request, kind engine.EventKind) {
	sessionID := mux.Vars(r)["sessionID"]

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	res, err := h.eng.Dispatch(r.Context(), engine.Event{
		Kind:      kind,
		SessionID: sessionID,
		UserID:    req.UserID,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Session)
}

// Leave handles POST /v1/sessions/{sessionID}/leave
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.eng.MarkDisconnected(r.Context(), sessionID, req.UserID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// End handles DELETE /v1/sessions/{sessionID}. Ending an unknown or
// already closed session is a no-op.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	if err := h.eng.EndSession(r.Context(), sessionID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
