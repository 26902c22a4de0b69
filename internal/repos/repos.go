// Package repos contains the repository interfaces needed in the console
// It exists to prevent circular dependencies between the service layer and the
// repo implementations
package repos

import (
	"fmt"

	"github.com/rvndudz/scheduled-music-console/internal/models"
)

var (
	// ErrEntityNotExisting is fired by a repository when an entity that is updated or deleted does not exist
	ErrEntityNotExisting = fmt.Errorf("cannot update: Entity does not exist")
)

// EventRepo defines the store holding the full event collection. The
// collection is owned as a single unit: there is no per-record persistence,
// every mutation replaces the whole collection
type EventRepo interface {
	// ReadAll returns the full ordered event collection. A missing backing
	// file is not an error - it reads as an empty collection
	ReadAll() ([]models.EventRecord, error)
	// ReplaceAll overwrites the persisted collection with the given ordered
	// sequence
	ReplaceAll(events []models.EventRecord) error
}

// UserRepo defines a repository that is able to store, query and authenticate users
type UserRepo interface {
	// Create creates a new user
	Create(u *models.User) error
	// Update updates an existing user
	Update(u *models.User) error
	// Delete removes an existing user from the user storage
	Delete(id uint) error
	// GetByID returns the user with the given ID
	GetByID(id uint) (*models.User, error)
	// GetByCredentials returns the user which has the given username and password - this is used for login
	GetByCredentials(username string, password string) (*models.User, error)
}

// SessionRepo stores information about active API sessions
type SessionRepo interface {
	// CreateFor creates a new session for the given user ID
	CreateFor(userID uint) (*models.Session, error)
	// GetByID returns the session associated with the given session ID and extends its expiry if requested
	GetByID(sessionID string, extend bool) (*models.Session, error)
	// Delete removes a session from the session storage
	Delete(sessionID string) error
}
