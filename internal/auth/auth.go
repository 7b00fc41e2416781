// Package auth issues and validates the JWT tokens used by the
// gateway: host tokens for diagnostics routes and channel-scoped
// participant tokens for the event stream.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

type ParticipantClaims struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
	jwt.RegisteredClaims
}

type Service struct {
	hostUsername string
	hostPassword string
	jwtSecret    []byte
}

type Config struct {
	HostUsername string
	HostPassword string
	JWTSecret    string
}

func NewService(cfg Config) *Service {
	if cfg.HostUsername == "" {
		cfg.HostUsername = "admin"
	}
	if cfg.HostPassword == "" {
		cfg.HostPassword = "password123"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "super-secret-key-change-in-production"
	}
	return &Service{
		hostUsername: cfg.HostUsername,
		hostPassword: cfg.HostPassword,
		jwtSecret:    []byte(cfg.JWTSecret),
	}
}

// Login validates host credentials and returns a signed token.
func (s *Service) Login(username, password string) (string, string, error) {
	if username != s.hostUsername || password != s.hostPassword {
		return "", "", ErrInvalidCredentials
	}
	hostID := "host_" + uuid.New().String()[:8]
	claims := &HostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", "", err
	}
	return token, hostID, nil
}

// ValidateHostToken parses a host JWT and returns its claims.
func (s *Service) ValidateHostToken(tokenString string) (*HostClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HostClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*HostClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateParticipantToken creates a channel-scoped token handed out
// on join; the event stream requires it.
func (s *Service) GenerateParticipantToken(channelID, userID string) (string, error) {
	claims := &ParticipantClaims{
		ChannelID: channelID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ValidateParticipantToken parses a participant JWT and returns its
// claims.
func (s *Service) ValidateParticipantToken(tokenString string) (*ParticipantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ParticipantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*ParticipantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
