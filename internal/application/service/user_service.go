package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
	"github.com/shiftwise/shiftwise-backend/internal/domain/entity"
	"github.com/shiftwise/shiftwise-backend/pkg/utils"
)

// RegisterUserInput carries the fields of a registration request.
type RegisterUserInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Position  string `json:"position"`
	PushToken string `json:"pushToken"`
}

// UserService registers users and looks them up. Every group member must be
// registered before it can create or join a group.
type UserService interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

type userServiceImpl struct {
	userRepo port.UserRepository
	logger   Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterUser validates and stores a new user.
func (s *userServiceImpl) RegisterUser(ctx context.Context, input RegisterUserInput) (*entity.User, error) {
	name := utils.SanitizeString(input.Name)
	if name == "" {
		return nil, entity.NewValidationError("name")
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return nil, entity.NewValidationError("email")
	}

	user := &entity.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     input.Email,
		Position:  utils.SanitizeString(input.Position),
		PushToken: input.PushToken,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to register user", "error", err, "email", input.Email)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

// GetUser retrieves a user by id.
func (s *userServiceImpl) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, entity.ErrNotFound)
	}
	return user, nil
}
