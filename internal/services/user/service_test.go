package user

import (
	"testing"

	"bankcards/internal/models"
	"bankcards/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	svc := NewService(repositories.NewMemoryUserRepository())

	u, err := svc.Register("alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "correct horse battery", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("correct horse battery")))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := NewService(repositories.NewMemoryUserRepository())

	_, err := svc.Register("alice", "alice@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewService(repositories.NewMemoryUserRepository())

	_, err := svc.Register("alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other@example.com", "password-two")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(repositories.NewMemoryUserRepository())

	_, err := svc.Register("alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	_, err = svc.Register("bob", "alice@example.com", "password-two")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAssignRole(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	svc := NewService(users)

	u, err := svc.Register("alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	promoted, err := svc.AssignRole(u.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	stored, err := users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestAssignRole_UnknownUser(t *testing.T) {
	svc := NewService(repositories.NewMemoryUserRepository())

	_, err := svc.AssignRole(99, models.RoleAdmin)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}
