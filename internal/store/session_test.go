package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/josplay/checkpoint/internal/database"
	"github.com/josplay/checkpoint/internal/token"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), db
}

func TestSessionCreate(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	raw, sess, err := ss.Create("admin@example.com")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(raw) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(raw))
	}
	if sess.TokenHash != token.Hash(raw) {
		t.Error("stored hash does not match token")
	}
	if sess.Email != "admin@example.com" {
		t.Errorf("email = %q, want admin@example.com", sess.Email)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl < 7*24*time.Hour-time.Minute || ttl > 7*24*time.Hour {
		t.Errorf("expiry %v from now, want ~7d", ttl)
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	raw, created, _ := ss.Create("admin@example.com")

	sess, err := ss.GetByToken(raw)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %s, want %s", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionExpiredIsNil(t *testing.T) {
	ss, db := setupSessionTestDB(t)

	raw, created, _ := ss.Create("admin@example.com")
	past := time.Now().UTC().Add(-time.Minute)
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, created.ID); err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}

	sess, err := ss.GetByToken(raw)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	raw, _, _ := ss.Create("admin@example.com")

	if err := ss.Delete(raw); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sess, err := ss.GetByToken(raw)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}

	// Deleting again is not an error
	if err := ss.Delete(raw); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss, db := setupSessionTestDB(t)

	_, live, _ := ss.Create("admin@example.com")
	_, stale, _ := ss.Create("admin@example.com")
	past := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, stale.ID); err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}

	var remaining int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, live.ID).Scan(&remaining); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if remaining != 1 {
		t.Error("live session was deleted")
	}
}
