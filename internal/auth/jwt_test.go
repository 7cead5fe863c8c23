package auth

import (
	"strings"
	"testing"
)

const testSecret = "test-secret"

func TestIssueAndParseUserToken(t *testing.T) {
	raw, err := IssueUserToken(testSecret, "user-1", "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseUserToken(testSecret, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", claims.Email)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, _ := IssueUserToken(testSecret, "user-1", "alice", "")
	if _, err := ParseUserToken("other-secret", raw); err == nil {
		t.Error("token signed with different secret was accepted")
	}
}

func TestParseRejectsTampered(t *testing.T) {
	raw, _ := IssueUserToken(testSecret, "user-1", "alice", "")
	parts := strings.Split(raw, ".")
	tampered := parts[0] + ".eyJ1c2VybmFtZSI6ImV2ZSJ9." + parts[2]
	if _, err := ParseUserToken(testSecret, tampered); err == nil {
		t.Error("tampered token was accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseUserToken(testSecret, "not-a-jwt"); err == nil {
		t.Error("garbage token was accepted")
	}
}
