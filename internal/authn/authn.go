// Package authn handles room-player credentials and session tokens.
// Passwords are hashed with bcrypt and sessions are opaque UUID tokens
// held in memory, mirroring the teacher's Identity/Validator shape
// from its bot-token HTTP auth package but applied to local room
// players instead of an external callback.
package authn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/coder/quartz"
)

// ErrInvalidToken indicates the session token is unknown or expired.
var ErrInvalidToken = errors.New("authn: invalid token")

// ErrWrongPassword indicates a credential check failed.
var ErrWrongPassword = errors.New("authn: wrong password")

// Identity identifies an authenticated room player.
type Identity struct {
	RoomCode string
	PlayerID string
	Name     string
}

// Validator validates session tokens, matching the teacher's
// auth.Validator shape.
type Validator interface {
	Validate(ctx context.Context, token string) (*Identity, error)
}

// HashPassword bcrypt-hashes a room player's password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

type session struct {
	identity  Identity
	expiresAt time.Time
}

// SessionManager issues and validates opaque session tokens, scoped
// to a room, that outlive any single game (spec.md §3.3: room-player
// credentials survive NextGame rotation).
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]session
	clock    quartz.Clock
	ttl      time.Duration
}

// NewSessionManager builds a SessionManager whose tokens expire after
// ttl of inactivity, measured against clock (a fake clock in tests).
func NewSessionManager(clock quartz.Clock, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]session),
		clock:    clock,
		ttl:      ttl,
	}
}

// Issue creates a new session token for identity.
func (m *SessionManager) Issue(identity Identity) string {
	token := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = session{identity: identity, expiresAt: m.clock.Now().Add(m.ttl)}
	return token
}

// Validate returns the identity behind token, renewing its expiry, or
// ErrInvalidToken if the token is unknown or has expired.
func (m *SessionManager) Validate(_ context.Context, token string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	now := m.clock.Now()
	if now.After(sess.expiresAt) {
		delete(m.sessions, token)
		return nil, ErrInvalidToken
	}
	sess.expiresAt = now.Add(m.ttl)
	m.sessions[token] = sess

	id := sess.identity
	return &id, nil
}

// Revoke discards a session token immediately (e.g. on explicit logout).
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
