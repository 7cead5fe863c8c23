package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josplay/checkpoint/internal/model"
	"github.com/josplay/checkpoint/internal/reconcile"
)

// CompletionStore persists per-user achievement completion flags.
// Rows are flipped in place and never deleted: the boolean carries the
// state, the row carries the history.
type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	var completedAt sql.NullTime
	err := scanner.Scan(&c.ID, &c.UserID, &c.AchievementID, &c.Completed, &completedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return &c, nil
}

const completionCols = `id, user_id, achievement_id, completed, completed_at, updated_at`

// Get returns the completion row for (userID, achievementID), or nil if the
// user never touched that achievement.
func (s *CompletionStore) Get(userID, achievementID string) (*model.Completion, error) {
	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM completions WHERE user_id = ? AND achievement_id = ?`,
		userID, achievementID,
	)
	c, err := scanCompletion(row)
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// Toggle flips the completion flag for (userID, achievementID) and returns
// the new state. The flip is a single atomic upsert, so the returned value
// is exactly what was persisted even under concurrent toggles.
func (s *CompletionStore) Toggle(userID, achievementID string) (bool, error) {
	now := time.Now().UTC()

	var completed bool
	err := s.db.QueryRow(
		`INSERT INTO completions (id, user_id, achievement_id, completed, completed_at, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?)
		 ON CONFLICT (user_id, achievement_id) DO UPDATE SET
		   completed = 1 - completions.completed,
		   completed_at = CASE WHEN completions.completed THEN NULL ELSE excluded.completed_at END,
		   updated_at = excluded.updated_at
		 RETURNING completed`,
		uuid.NewString(), userID, achievementID, now, now,
	).Scan(&completed)
	if err != nil {
		return false, fmt.Errorf("toggle completion: %w", err)
	}

	if err := s.touchUser(s.db, userID, now); err != nil {
		return false, err
	}
	return completed, nil
}

// GetStatus returns the completion flag for every achievement the user has
// ever touched. Absent ids are implicitly false.
func (s *CompletionStore) GetStatus(userID string) (map[string]bool, error) {
	rows, err := s.db.Query(
		`SELECT achievement_id, completed FROM completions WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	defer rows.Close()

	status := make(map[string]bool)
	for rows.Next() {
		var id string
		var completed bool
		if err := rows.Scan(&id, &completed); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		status[id] = completed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status: %w", err)
	}
	return status, nil
}

// CompletedIDs returns the ids currently marked complete, in stable order.
func (s *CompletionStore) CompletedIDs(userID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT achievement_id FROM completions WHERE user_id = ? AND completed = 1 ORDER BY achievement_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get completed ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed ids: %w", err)
	}
	return ids, nil
}

// SyncLocal folds a client-local completion set into server state.
// Additive only: ids the server already has stay untouched, and nothing is
// ever removed because the local cache lacks it. Returns how many ids were
// newly marked complete.
func (s *CompletionStore) SyncLocal(userID string, localIDs []string) (int, error) {
	current, err := s.CompletedIDs(userID)
	if err != nil {
		return 0, err
	}

	toAdd := reconcile.Additions(current, localIDs)
	if len(toAdd) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin sync-local tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, id := range toAdd {
		if err := s.markCompleted(tx, userID, id, now); err != nil {
			return 0, err
		}
	}
	if err := s.touchUser(tx, userID, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sync-local tx: %w", err)
	}
	return len(toAdd), nil
}

// BulkReplace makes the user's completed set exactly equal to completedIDs,
// applying additions and removals in one transaction. Calling it again with
// the same set reports added=0, removed=0.
func (s *CompletionStore) BulkReplace(userID string, completedIDs []string) (model.SyncResult, error) {
	current, err := s.CompletedIDs(userID)
	if err != nil {
		return model.SyncResult{}, err
	}

	toAdd, toRemove := reconcile.Diff(current, completedIDs)
	result := model.SyncResult{
		Synced:  len(completedIDs),
		Added:   len(toAdd),
		Removed: len(toRemove),
	}
	if len(toAdd) == 0 && len(toRemove) == 0 {
		return result, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("begin bulk-replace tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, id := range toAdd {
		if err := s.markCompleted(tx, userID, id, now); err != nil {
			return model.SyncResult{}, err
		}
	}
	for _, id := range toRemove {
		_, err := tx.Exec(
			`UPDATE completions SET completed = 0, completed_at = NULL, updated_at = ?
			 WHERE user_id = ? AND achievement_id = ?`,
			now, userID, id,
		)
		if err != nil {
			return model.SyncResult{}, fmt.Errorf("unmark completion: %w", err)
		}
	}
	if err := s.touchUser(tx, userID, now); err != nil {
		return model.SyncResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.SyncResult{}, fmt.Errorf("commit bulk-replace tx: %w", err)
	}
	return result, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *CompletionStore) markCompleted(e execer, userID, achievementID string, now time.Time) error {
	_, err := e.Exec(
		`INSERT INTO completions (id, user_id, achievement_id, completed, completed_at, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?)
		 ON CONFLICT (user_id, achievement_id) DO UPDATE SET
		   completed = 1,
		   completed_at = excluded.completed_at,
		   updated_at = excluded.updated_at`,
		uuid.NewString(), userID, achievementID, now, now,
	)
	if err != nil {
		return fmt.Errorf("mark completion: %w", err)
	}
	return nil
}

// touchUser bumps users.updated_at so public progress reads expose a
// truthful lastUpdated.
func (s *CompletionStore) touchUser(e execer, userID string, now time.Time) error {
	_, err := e.Exec(`UPDATE users SET updated_at = ? WHERE id = ?`, now, userID)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}
