package auth_test

import (
	"testing"
	"time"

	"reservation-agent/internal/auth"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !auth.CheckPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := auth.MakeToken("admin", "secret", time.Minute)
	if err != nil {
		t.Fatalf("MakeToken: %v", err)
	}

	claims, err := auth.ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "admin" {
		t.Errorf("subject = %q", claims.Subject)
	}

	if _, err := auth.ParseToken(tok, "other-secret"); err == nil {
		t.Error("token accepted with wrong secret")
	}
	if _, err := auth.ParseToken("garbage", "secret"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestExpiredToken(t *testing.T) {
	tok, err := auth.MakeToken("admin", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("MakeToken: %v", err)
	}
	if _, err := auth.ParseToken(tok, "secret"); err == nil {
		t.Error("expired token accepted")
	}
}

func TestJoinTokenRoundTrip(t *testing.T) {
	tok, err := auth.MakeJoinToken("call-abc", "caller-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("MakeJoinToken: %v", err)
	}

	claims, err := auth.ParseJoinToken(tok, "secret")
	if err != nil {
		t.Fatalf("ParseJoinToken: %v", err)
	}
	if claims.Room != "call-abc" || claims.Identity != "caller-1" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := auth.ParseJoinToken(tok, "other"); err == nil {
		t.Error("join token accepted with wrong secret")
	}
}
