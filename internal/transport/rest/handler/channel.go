package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"studyhall/internal/archive"
	"studyhall/internal/cache"
)

// ChannelHandler serves the per-channel derived views: the cumulative
// leaderboard and the closed-session archive.
type ChannelHandler struct {
	leaderboard cache.Leaderboard // nil when Redis is disabled
	archive     archive.Repo      // nil when Mongo is disabled
}

func NewChannelHandler(leaderboard cache.Leaderboard, repo archive.Repo) *ChannelHandler {
	return &ChannelHandler{leaderboard: leaderboard, archive: repo}
}

// Leaderboard handles GET /v1/channels/{channelID}/leaderboard
func (h *ChannelHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard is not configured")
		return
	}
	channelID := mux.Vars(r)["channelID"]
	limit := queryInt(r, "limit", 10)

	entries, err := h.leaderboard.Top(r.Context(), channelID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// Archive handles GET /v1/channels/{channelID}/archive (host only)
func (h *ChannelHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive is not configured")
		return
	}
	channelID := mux.Vars(r)["channelID"]
	limit := queryInt(r, "limit", 20)

	records, err := h.archive.ListByChannel(r.Context(), channelID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
