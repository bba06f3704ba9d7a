package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

var ErrSessionNotFound = errors.New("session not found")

// StoredSession is the durable half of a browser session: the identity
// provider's tokens. Nothing else about the user is persisted.
type StoredSession struct {
	UserID         string
	Email          string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SessionRepository keys rows by a blake2b hash of the cookie value, so a
// leaked table cannot be replayed as cookies.
type SessionRepository struct {
	db  *DB
	now func() time.Time
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// WithClock replaces the clock; tests only.
func (r *SessionRepository) WithClock(now func() time.Time) *SessionRepository {
	r.now = now
	return r
}

func HashSessionID(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// Save inserts or replaces the session stored under id.
func (r *SessionRepository) Save(ctx context.Context, id string, s StoredSession) error {
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions (id_hash, user_id, email, access_token, refresh_token, token_expires_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id_hash) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`),
		HashSessionID(id), s.UserID, s.Email, s.AccessToken, s.RefreshToken,
		unix(s.TokenExpiresAt), unix(s.ExpiresAt), s.CreatedAt.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns ErrSessionNotFound for unknown or expired sessions; expired
// rows are removed on the way.
func (r *SessionRepository) Get(ctx context.Context, id string) (*StoredSession, error) {
	var (
		s                                               StoredSession
		tokenExpiresAt, expiresAt, createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT user_id, email, access_token, refresh_token, token_expires_at, expires_at, created_at, updated_at
		FROM sessions
		WHERE id_hash = ?
	`), HashSessionID(id)).Scan(
		&s.UserID, &s.Email, &s.AccessToken, &s.RefreshToken,
		&tokenExpiresAt, &expiresAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.TokenExpiresAt = fromUnix(tokenExpiresAt)
	s.ExpiresAt = fromUnix(expiresAt)
	s.CreatedAt = fromUnix(createdAt)
	s.UpdatedAt = fromUnix(updatedAt)

	if !s.ExpiresAt.IsZero() && !r.now().Before(s.ExpiresAt) {
		_ = r.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM sessions WHERE id_hash = ?"), HashSessionID(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions past their expiry and reports how many went.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM sessions WHERE expires_at <= ?"), r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
