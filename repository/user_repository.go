package repository

import (
	"context"
	"errors"
	"fmt"

	"MwFM/model"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations. The catalog
// treats user IDs as opaque foreign keys; only provisioning and lookup live
// here.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// gormUserRepository implements UserRepository on the GORM connection.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new gormUserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// CreateUser adds a new user to the database.
func (r *gormUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID. Returns nil, nil when no such
// user exists.
func (r *gormUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.WithContext(ctx).First(user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username. Returns nil, nil when
// no such user exists.
func (r *gormUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := r.db.WithContext(ctx).Where("username = ?", username).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by username %q: %w", username, err)
	}
	return user, nil
}
