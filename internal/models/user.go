package models

import (
	"fmt"

	"github.com/elithrar/simple-scrypt"
)

const (
	// PermManageEvents is the permission to create, change and delete events
	// and to upload media files
	PermManageEvents = "events.manage"
)

// User defines an operator account of the console and the rights it has
type User struct {
	// Internal user ID
	ID uint
	// The user name used to log-in
	Name string
	// The hashed password for authentication
	PasswordHash string
	// The full user name for display reasons
	FullName string
}

// SetPassword hashes the incoming plaintext password and stores the hash in
// the user's PasswordHash property
func (u *User) SetPassword(pass string) error {
	hash, err := scrypt.GenerateFromPassword([]byte(pass), scrypt.DefaultParams)
	if err != nil {
		return fmt.Errorf("SetPassword: Error during password hashing: %v", err)
	}
	// The library already produces a string encoding - no further encoding needed
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword checks the given password against the stored hash. It returns
// an error when the password does not match or the stored hash is unreadable
func (u *User) CheckPassword(pass string) error {
	return scrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pass))
}
