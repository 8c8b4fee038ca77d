// Package auth supplies the "current User | none" boundary for the web
// client. Credential verification belongs to the backend API; this package
// only issues local session ids for users the backend accepted and maps
// session cookies back to user identities.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"gainfully/internal/feed"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Session ties a random id to the backend user it was issued for. The user
// projection is stored alongside so rendering a page needs no profile fetch.
type Session struct {
	ID        string
	User      feed.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service manages sessions in the local sqlite store.
type Service struct {
	db  *sql.DB
	ttl time.Duration
}

func NewService(db *sql.DB, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{db: db, ttl: ttl}
}

// CreateSession issues a new session for a user the backend authenticated.
func (s *Service) CreateSession(ctx context.Context, user feed.User) (*Session, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	sessionID := base64.URLEncoding.EncodeToString(b)

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, user_id, user_name, user_email, user_location, expires_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, user.ID, user.Name, user.Email, user.Location, expiresAt,
	)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        sessionID,
		User:      user,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateSession resolves a session id to the user it was issued for.
// Expired or unknown ids return ErrSessionNotFound.
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	err := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, user_name, user_email, user_location, created_at, expires_at
        FROM sessions
        WHERE id = ? AND expires_at > ?`,
		sessionID, time.Now(),
	).Scan(
		&session.ID,
		&session.User.ID,
		&session.User.Name,
		&session.User.Email,
		&session.User.Location,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// InvalidateSession removes a session.
func (s *Service) InvalidateSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (s *Service) CleanExpiredSessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	return err
}
