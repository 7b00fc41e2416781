package auth

import (
	"errors"
	"testing"
)

func TestLoginAndValidate(t *testing.T) {
	svc := NewService(Config{HostUsername: "teach", HostPassword: "s3cret", JWTSecret: "test-secret"})

	token, hostID, err := svc.Login("teach", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || hostID == "" {
		t.Fatal("login returned empty token or host id")
	}

	claims, err := svc.ValidateHostToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.HostID != hostID {
		t.Fatalf("host id mismatch: %s vs %s", claims.HostID, hostID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(Config{HostUsername: "teach", HostPassword: "s3cret"})
	if _, _, err := svc.Login("teach", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestParticipantTokenIsChannelScoped(t *testing.T) {
	svc := NewService(Config{JWTSecret: "test-secret"})

	token, err := svc.GenerateParticipantToken("chan1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateParticipantToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.ChannelID != "chan1" || claims.UserID != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokensFromAnotherSecretAreRejected(t *testing.T) {
	a := NewService(Config{JWTSecret: "secret-a"})
	b := NewService(Config{JWTSecret: "secret-b"})

	token, err := a.GenerateParticipantToken("chan1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := b.ValidateParticipantToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := b.ValidateHostToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for host parse, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.ValidateHostToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
