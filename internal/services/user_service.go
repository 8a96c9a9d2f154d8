package services

import (
	"database/sql"
	"errors"
	"fmt"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// --- User DTOs ---

// UpdateUserRequest patches a user. Only present fields are applied.
// A non-nil Password is re-hashed before storage.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// --- UserService Interface ---

type UserService interface {
	GetUserByID(id int64) (*models.User, error)
	GetUsers(page, pageSize int) ([]models.User, int, error)
	UpdateUser(id int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(id int64) error
}

// --- userService Implementation ---

type userService struct {
	userRepo repositories.UserRepository
	db       *sql.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(ur repositories.UserRepository, db *sql.DB) UserService {
	return &userService{userRepo: ur, db: db}
}

func (s *userService) GetUserByID(id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) GetUsers(page, pageSize int) ([]models.User, int, error) {
	users, totalCount, err := s.userRepo.GetUsers(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}
	return users, totalCount, nil
}

func (s *userService) UpdateUser(id int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user for update: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Password != nil {
		hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPasswordBytes)
	}

	if err := s.userRepo.UpdateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteUser(id int64) error {
	err := s.userRepo.DeleteUser(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrEntityInUse
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
