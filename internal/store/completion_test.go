package store

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/josplay/checkpoint/internal/database"
	"github.com/josplay/checkpoint/internal/model"
)

func setupCompletionTestDB(t *testing.T) (*CompletionStore, *model.User, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("alice", nil, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewCompletionStore(db), u, db
}

func TestToggleFlipSequence(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	completed, err := cs.Toggle(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !completed {
		t.Error("first toggle = false, want true")
	}

	completed, err = cs.Toggle(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if completed {
		t.Error("second toggle = true, want false")
	}

	// The row survives with completed=false; it is never deleted.
	c, err := cs.Get(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("get completion: %v", err)
	}
	if c == nil {
		t.Fatal("row deleted by untoggle")
	}
	if c.Completed {
		t.Error("completed = true, want false")
	}
}

func TestGet(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	c, err := cs.Get(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("get untouched: %v", err)
	}
	if c != nil {
		t.Errorf("untouched achievement = %+v, want nil", c)
	}

	cs.Toggle(u.ID, "ach_1")

	c, err = cs.Get(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c == nil || !c.Completed {
		t.Fatalf("completion = %+v, want completed", c)
	}
	if c.UserID != u.ID || c.AchievementID != "ach_1" {
		t.Errorf("identity fields wrong: %+v", c)
	}
}

func TestToggleClearsCompletedAt(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	cs.Toggle(u.ID, "ach_1")

	c, err := cs.Get(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("get completion: %v", err)
	}
	if c.CompletedAt == nil {
		t.Error("completed_at not set after marking complete")
	}

	cs.Toggle(u.ID, "ach_1")
	c, err = cs.Get(u.ID, "ach_1")
	if err != nil {
		t.Fatalf("get completion: %v", err)
	}
	if c.CompletedAt != nil {
		t.Error("completed_at still set after unmarking")
	}
}

func TestGetStatus(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	cs.Toggle(u.ID, "ach_1")
	cs.Toggle(u.ID, "ach_2")
	cs.Toggle(u.ID, "ach_2") // flip back off

	status, err := cs.GetStatus(u.ID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if !status["ach_1"] {
		t.Error("ach_1 should be completed")
	}
	if status["ach_2"] {
		t.Error("ach_2 should not be completed")
	}
	if status["ach_3"] {
		t.Error("untouched id should be false")
	}
}

func TestSyncLocalAdditiveOnly(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	// Server state: ach_2, ach_3
	cs.Toggle(u.ID, "ach_2")
	cs.Toggle(u.ID, "ach_3")

	// Anonymous local cache: ach_1, ach_2
	added, err := cs.SyncLocal(u.ID, []string{"ach_1", "ach_2"})
	if err != nil {
		t.Fatalf("sync local: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}

	ids, _ := cs.CompletedIDs(u.ID)
	want := []string{"ach_1", "ach_2", "ach_3"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("completed ids = %v, want %v", ids, want)
	}
}

func TestSyncLocalNeverShrinksServerSet(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	cs.Toggle(u.ID, "ach_1")
	cs.Toggle(u.ID, "ach_2")

	// Empty/stale local cache must not remove anything
	added, err := cs.SyncLocal(u.ID, nil)
	if err != nil {
		t.Fatalf("sync local: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}

	ids, _ := cs.CompletedIDs(u.ID)
	if len(ids) != 2 {
		t.Errorf("server set shrank to %v", ids)
	}
}

func TestBulkReplace(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	// Server state: b, c
	cs.Toggle(u.ID, "b")
	cs.Toggle(u.ID, "c")

	result, err := cs.BulkReplace(u.ID, []string{"a", "b"})
	if err != nil {
		t.Fatalf("bulk replace: %v", err)
	}
	want := model.SyncResult{Synced: 2, Added: 1, Removed: 1}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}

	ids, _ := cs.CompletedIDs(u.ID)
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("completed ids = %v, want [a b]", ids)
	}
}

func TestBulkReplaceIdempotent(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)

	set := []string{"a", "b", "c"}
	if _, err := cs.BulkReplace(u.ID, set); err != nil {
		t.Fatalf("first bulk replace: %v", err)
	}

	result, err := cs.BulkReplace(u.ID, set)
	if err != nil {
		t.Fatalf("second bulk replace: %v", err)
	}
	if result.Added != 0 || result.Removed != 0 {
		t.Errorf("second call changed state: %+v", result)
	}
}

func TestBulkReplaceKeepsRows(t *testing.T) {
	cs, u, db := setupCompletionTestDB(t)

	cs.BulkReplace(u.ID, []string{"a", "b"})
	cs.BulkReplace(u.ID, []string{"a"})

	// "b" is unmarked, not deleted
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM completions WHERE user_id = ?`, u.ID).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2", count)
	}
}

func TestCompletionTouchesUser(t *testing.T) {
	cs, u, _ := setupCompletionTestDB(t)
	db := cs.db

	var before, after string
	db.QueryRow(`SELECT updated_at FROM users WHERE id = ?`, u.ID).Scan(&before)

	cs.Toggle(u.ID, "ach_1")

	db.QueryRow(`SELECT updated_at FROM users WHERE id = ?`, u.ID).Scan(&after)
	if before == after {
		t.Error("users.updated_at not bumped by toggle")
	}
}
