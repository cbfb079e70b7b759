package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/models"
)

type UserService struct {
	repo     domain.UserRepository
	eventBus domain.EventPublisher
	logger   zerolog.Logger
}

func NewUserService(repo domain.UserRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logging.Component(logger, "user_service"),
	}
}

func (s *UserService) Create(ctx context.Context, user *models.User) error {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if user.Name == "" {
		return Invalid("name must not be blank")
	}
	if user.Email == "" {
		return Invalid("email must not be blank")
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return repoErr(err, fmt.Sprintf("failed to create user %s", user.Email))
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	publish(s.eventBus, s.logger, events.EventUserCreated, user.ID, events.UserEventPayload{UserID: user.ID, Email: user.Email})
	return nil
}

// Update applies the non-nil fields of patch and keeps the rest.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, Invalid("name must not be blank")
		}
		user.Name = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, Invalid("email must not be blank")
		}
		user.Email = email
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, repoErr(err, userNotFound(id))
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, userNotFound(id))
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return repoErr(err, userNotFound(id))
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	publish(s.eventBus, s.logger, events.EventUserDeleted, id, events.UserEventPayload{UserID: id})
	return nil
}

