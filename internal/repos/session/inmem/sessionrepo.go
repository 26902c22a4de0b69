// Package inmem provides a session repository that holds the session data in-memory
package inmem

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rvndudz/scheduled-music-console/internal/models"
	"github.com/rvndudz/scheduled-music-console/internal/repos"
)

const (
	// How long does a session last after the last update?
	expireMinutes = 60
)

// SessionRepo is a session repository that stores the session data in-memory.
// Expired sessions are purged by a janitor goroutine about once a minute
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

// New creates a new session repository instance and starts its janitor
func New() *SessionRepo {
	repo := &SessionRepo{
		sessions: make(map[string]*models.Session),
	}
	go repo.janitor()
	return repo
}

// newToken creates a random session token
func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// janitor removes expired sessions in the background
func (r *SessionRepo) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		r.mu.Lock()
		for key, sess := range r.sessions {
			if sess.Expired() {
				delete(r.sessions, key)
			}
		}
		r.mu.Unlock()
	}
}

// CreateFor creates a new session for the given user ID
func (r *SessionRepo) CreateFor(userID uint) (*models.Session, error) {
	sess := models.Session{
		ID:        newToken(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Minute * expireMinutes),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = &sess
	copy := sess
	return &copy, nil
}

// GetByID returns the session associated with the given session ID and extends its expiry if requested
func (r *SessionRepo) GetByID(sessionID string, extend bool) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, repos.ErrEntityNotExisting
	}
	if sess.Expired() {
		delete(r.sessions, sessionID)
		return nil, repos.ErrEntityNotExisting
	}
	if extend {
		sess.ExpiresAt = time.Now().Add(time.Minute * expireMinutes)
	}
	copy := *sess
	return &copy, nil
}

// Delete removes a session from the session storage
func (r *SessionRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
