package inmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvndudz/scheduled-music-console/internal/models"
)

func newUser(t *testing.T, name, password string) *models.User {
	t.Helper()
	u := models.User{Name: name, FullName: "Full " + name}
	require.NoError(t, u.SetPassword(password))
	return &u
}

func TestCreateAssignsIDs(t *testing.T) {
	repo := New()

	a := newUser(t, "alice", "secret")
	b := newUser(t, "bob", "secret")
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	assert.Equal(t, uint(1), a.ID)
	assert.Equal(t, uint(2), b.ID)

	// An explicitly taken ID is rejected
	dup := newUser(t, "mallory", "secret")
	dup.ID = 1
	assert.Error(t, repo.Create(dup))
}

func TestGetByID(t *testing.T) {
	repo := New()
	u := newUser(t, "alice", "secret")
	require.NoError(t, repo.Create(u))

	got, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Name)

	// Unknown IDs yield nil without an error
	got, err = repo.GetByID(99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByCredentials(t *testing.T) {
	repo := New()
	require.NoError(t, repo.Create(newUser(t, "alice", "secret")))

	got, err := repo.GetByCredentials("alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Name)

	got, err = repo.GetByCredentials("alice", "wrong")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByCredentials("nobody", "secret")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := New()
	u := newUser(t, "alice", "secret")
	require.NoError(t, repo.Create(u))

	u.FullName = "Alice A."
	require.NoError(t, repo.Update(u))
	got, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.FullName)

	require.NoError(t, repo.Delete(u.ID))
	got, err = repo.GetByID(u.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Updating a removed user fails
	assert.Error(t, repo.Update(u))
}
