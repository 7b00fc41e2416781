package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"studyhall/internal/archive"
	"studyhall/internal/auth"
	"studyhall/internal/cache"
	"studyhall/internal/content"
	"studyhall/internal/engine"
	"studyhall/internal/transport/rest/handler"
	"studyhall/internal/transport/rest/middleware"
	"studyhall/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *auth.Service
	Engine      *engine.Engine
	Adapter     content.Adapter
	Leaderboard cache.Leaderboard
	Archive     archive.Repo
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.Engine, c.Adapter, c.AuthService)
	channelHandler := handler.NewChannelHandler(c.Leaderboard, c.Archive)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, nil)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	v1.HandleFunc("/channels/{channelID}/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/channels/{channelID}/sessions", sessionHandler.ListByChannel).Methods("GET", "OPTIONS")
	v1.HandleFunc("/channels/{channelID}/leaderboard", channelHandler.Leaderboard).Methods("GET", "OPTIONS")

	v1.HandleFunc("/sessions/{sessionID}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}", sessionHandler.End).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/start", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/answers", sessionHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/controls", sessionHandler.Control).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/images", sessionHandler.AddImage).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/pause", sessionHandler.Pause).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/resume", sessionHandler.Resume).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionID}/leave", sessionHandler.Leave).Methods("POST", "OPTIONS")

	// WebSocket event stream (public with token in query param)
	v1.HandleFunc("/ws/channels/{channelID}", wsHandler.ChannelWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/sessions", sessionHandler.ListAll).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/channels/{channelID}/archive", channelHandler.Archive).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
