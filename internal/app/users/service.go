package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/users_repo"
)

type UserService interface {
	Register(ctx context.Context, email, password, confirm string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, email string) (*domain.User, error)
}

type userService struct {
	repo           users_repo.UserRepository
	defaultAddress string
	logger         *zap.Logger
}

func NewUserService(repo users_repo.UserRepository, defaultAddress string, l *zap.Logger) UserService {
	return &userService{repo: repo, defaultAddress: defaultAddress, logger: l}
}

func (s *userService) Register(ctx context.Context, email, password, confirm string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirm == "" {
		return nil, domain.ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if password != confirm {
		return nil, domain.ErrPasswordMismatch
	}

	user := &domain.User{
		Email:           email,
		Password:        password,
		DeliveryAddress: s.defaultAddress,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			s.logger.Warn("Registration attempted with an existing email", zap.String("email", email))
			return nil, err
		}
		s.logger.Error("Failed to persist user registry", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered", zap.String("email", email))
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password != password {
		s.logger.Warn("Login failed", zap.String("email", user.Email))
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, email)
}
