// Package config loads server configuration from the environment,
// with a .env file picked up in development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	RedisAddr     string
	MongoURI      string
	MongoDatabase string

	JWTSecret    string
	HostUsername string
	HostPassword string

	ContentBaseURL string
	ContentAPIKey  string
	ContentModel   string

	IdleThreshold   time.Duration
	JanitorInterval time.Duration
}

// Load reads configuration from the environment. Redis and Mongo are
// optional: empty values disable the leaderboard and archive.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPPort: getEnv("PORT", "8080"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "studyhall"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		HostUsername: os.Getenv("HOST_USERNAME"),
		HostPassword: os.Getenv("HOST_PASSWORD"),

		ContentBaseURL: getEnv("CONTENT_BASE_URL", "https://api.mistral.ai"),
		ContentAPIKey:  os.Getenv("CONTENT_API_KEY"),
		ContentModel:   getEnv("CONTENT_MODEL", "mistral-large-latest"),

		IdleThreshold:   getDuration("IDLE_THRESHOLD", 10*time.Minute),
		JanitorInterval: getDuration("JANITOR_INTERVAL", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
