package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	"github.com/Dosada05/bridge-judging/utils"
	"github.com/google/uuid"
)

const minPasswordLength = 8

type UserService interface {
	Provision(ctx context.Context, input ProvisionUserInput) (*models.User, error)
}

type ProvisionUserInput struct {
	Email    string
	Name     string
	Role     models.UserRole
	Password string
}

type userService struct {
	userRepo   repositories.UserRepository
	bcryptCost int
}

// NewUserService creates the provisioning service. A zero bcryptCost means
// utils.BcryptCost.
func NewUserService(userRepo repositories.UserRepository, bcryptCost int) UserService {
	if bcryptCost == 0 {
		bcryptCost = utils.BcryptCost
	}
	return &userService{userRepo: userRepo, bcryptCost: bcryptCost}
}

func (s *userService) Provision(ctx context.Context, input ProvisionUserInput) (*models.User, error) {
	email := utils.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	v := validator{}
	v.check(utils.IsValidEmail(email), "email", "must be a valid email address")
	v.check(name != "", "name", "must be provided")
	v.check(input.Role.Valid(), "role", "must be one of: volunteer, judge, admin")
	v.check(len(input.Password) >= minPasswordLength, "password", ErrPasswordTooShort.Error())
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPasswordWithCost(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UID:          uuid.NewString(),
		Email:        email,
		Role:         input.Role,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
