package store

import (
	"testing"

	"github.com/josplay/checkpoint/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func strPtr(s string) *string { return &s }

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", strPtr("alice@example.com"), "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Error("expected non-empty id")
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want alice", u.Username)
	}
	if u.Email == nil || *u.Email != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", u.Email)
	}
	if u.PasswordHash != "hash" {
		t.Errorf("password hash = %q, want hash", u.PasswordHash)
	}
}

func TestUserCreateWithoutEmail(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("bob", nil, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != nil {
		t.Errorf("email = %v, want nil", u.Email)
	}
}

func TestUserUsernameUnique(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", nil, ""); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice", nil, ""); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestUserEmailUnique(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", strPtr("a@example.com"), ""); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("bob", strPtr("a@example.com"), ""); err == nil {
		t.Error("expected error for duplicate email")
	}
	// Multiple users without email are fine
	if _, err := us.Create("carol", nil, ""); err != nil {
		t.Fatalf("create user without email: %v", err)
	}
	if _, err := us.Create("dave", nil, ""); err != nil {
		t.Fatalf("create second user without email: %v", err)
	}
}

func TestUserGetByIdentifier(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("alice", strPtr("alice@example.com"), "hash")

	byName, err := us.GetByIdentifier("alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Error("lookup by username failed")
	}

	byEmail, err := us.GetByIdentifier("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID {
		t.Error("lookup by email failed")
	}

	missing, err := us.GetByIdentifier("nobody")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown identifier")
	}
}

func TestUserFindOrCreate(t *testing.T) {
	us := setupUserTestDB(t)

	first, err := us.FindOrCreate("josplay")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	second, err := us.FindOrCreate("josplay")
	if err != nil {
		t.Fatalf("find or create again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second call created a new user: %s != %s", first.ID, second.ID)
	}
}
