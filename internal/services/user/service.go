package user

import (
	"errors"
	"fmt"

	"bankcards/internal/models"
	"bankcards/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
)

type Service interface {
	Register(username, email, password string) (*models.User, error)
	AssignRole(userID uint, role string) (*models.User, error)
}

type service struct {
	users repositories.UserRepository
}

func NewService(users repositories.UserRepository) Service {
	return &service{users: users}
}

func (s *service) Register(username, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	if taken, err := s.users.ExistsByUsername(username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) AssignRole(userID uint, role string) (*models.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}
