package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/repos"
	"github.com/smartcram/smartcram-backend/internal/types"
)

type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateName(ctx context.Context, userID uuid.UUID, fullName string) (*types.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	// Deactivate flips the active flag; the row is never hard-deleted.
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (us *userService) UpdateName(ctx context.Context, userID uuid.UUID, fullName string) (*types.User, error) {
	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FullName = strings.TrimSpace(fullName)
	if err := us.userRepo.Save(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (us *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := us.userRepo.Save(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	us.log.Info("Password changed", "user_id", userID)
	return nil
}

func (us *userService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := us.userRepo.Save(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	us.log.Info("User deactivated", "user_id", userID)
	return nil
}
