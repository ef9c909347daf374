package repositories

import (
	"sync"

	"bankcards/internal/models"
)

// memoryUserRepository is an in-memory UserRepository used by tests and
// local tooling.
type memoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uint]*models.User
	nextID uint
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[uint]*models.User)}
}

func copyUser(u *models.User) *models.User {
	dup := *u
	return &dup
}

func (r *memoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *memoryUserRepository) GetByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memoryUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) ExistsByUsername(username string) (bool, error) {
	_, err := r.GetByUsername(username)
	if err == ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryUserRepository) ExistsByEmail(email string) (bool, error) {
	_, err := r.GetByEmail(email)
	if err == ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	r.users[user.ID] = copyUser(user)
	return nil
}
