package model

import "time"

// Completion records whether a user has completed one achievement.
// Rows are flipped in place, never deleted, so completed_at survives as
// history when an achievement is unmarked and re-marked.
type Completion struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	AchievementID string     `json:"achievement_id"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SyncResult reports what a full (symmetric) sync changed.
type SyncResult struct {
	Synced  int `json:"synced"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}
