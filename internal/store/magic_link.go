package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josplay/checkpoint/internal/model"
	"github.com/josplay/checkpoint/internal/token"
)

// MagicLinkTTL is how long an issued magic link stays valid.
const MagicLinkTTL = 15 * time.Minute

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLink, error) {
	var ml model.MagicLink
	var usedAt sql.NullTime

	err := scanner.Scan(&ml.ID, &ml.Email, &ml.TokenHash, &ml.ExpiresAt, &usedAt, &ml.CreatedAt)
	if err != nil {
		return nil, err
	}

	if usedAt.Valid {
		ml.UsedAt = &usedAt.Time
	}
	return &ml, nil
}

const magicLinkCols = `id, email, token_hash, expires_at, used_at, created_at`

// Create issues a new magic link for the email and returns the raw token.
// Only the hash is stored. Any previous pending links for the same email
// are invalidated first, so at most one link is live per address.
func (s *MagicLinkStore) Create(email string) (string, *model.MagicLink, error) {
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`UPDATE magic_links SET used_at = ? WHERE email = ? AND used_at IS NULL AND expires_at > ?`,
		now, email, now,
	)
	if err != nil {
		return "", nil, fmt.Errorf("invalidate previous links: %w", err)
	}

	raw, err := token.Generate()
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO magic_links (id, email, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, token.Hash(raw), now.Add(MagicLinkTTL), now,
	)
	if err != nil {
		return "", nil, fmt.Errorf("insert magic link: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE id = ?`, id)
	ml, err := scanMagicLink(row)
	if err != nil {
		return "", nil, fmt.Errorf("read back magic link: %w", err)
	}
	return raw, ml, nil
}

// Consume verifies a raw token and marks it used, enforcing single use.
// It returns ErrTokenInvalid for unknown tokens, ErrTokenUsed for consumed
// ones, and ErrTokenExpired for stale ones. The used_at write is
// conditional on the row still being unused, so two concurrent calls with
// the same token yield exactly one success.
func (s *MagicLinkStore) Consume(raw string) (*model.MagicLink, error) {
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE token_hash = ?`, token.Hash(raw))
	ml, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("get magic link: %w", err)
	}

	if ml.UsedAt != nil {
		return nil, ErrTokenUsed
	}
	now := time.Now().UTC()
	if now.After(ml.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	result, err := s.db.Exec(
		`UPDATE magic_links SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		now, ml.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark magic link used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Lost the race against a concurrent verification.
		return nil, ErrTokenUsed
	}

	ml.UsedAt = &now
	return ml, nil
}

// DeleteExpired removes links past their expiry. Expiry is otherwise
// evaluated lazily at verification time.
func (s *MagicLinkStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM magic_links WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
