package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josplay/checkpoint/internal/model"
	"github.com/josplay/checkpoint/internal/token"
)

// SessionTTL is how long an admin session stays valid after verification.
const SessionTTL = 7 * 24 * time.Hour

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var sess model.Session
	err := scanner.Scan(&sess.ID, &sess.Email, &sess.TokenHash, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

const sessionCols = `id, email, token_hash, expires_at, created_at`

// Create opens a session for the email and returns the raw bearer token
// for the cookie. Only the hash is stored.
func (s *SessionStore) Create(email string) (string, *model.Session, error) {
	raw, err := token.Generate()
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, email, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, token.Hash(raw), now.Add(SessionTTL), now,
	)
	if err != nil {
		return "", nil, fmt.Errorf("insert session: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return "", nil, fmt.Errorf("read back session: %w", err)
	}
	return raw, sess, nil
}

// GetByToken resolves a raw cookie token to its session. Returns nil for
// unknown or expired tokens; expiry is checked lazily here, not evicted.
func (s *SessionStore) GetByToken(raw string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token_hash = ?`, token.Hash(raw))
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return nil, nil
	}
	return sess, nil
}

// Delete removes the session for a raw token. Deleting a missing session
// is not an error, so logout is idempotent.
func (s *SessionStore) Delete(raw string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token_hash = ?`, token.Hash(raw))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
