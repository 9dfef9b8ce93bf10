package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/repositories"
	"github.com/Dosada05/volley-mixer/utils"
)

const (
	minPasswordLength = 8
	tokenTTL          = 24 * time.Hour
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, string, error)
	// EnsureOrganizer creates the organizer account or refreshes its password.
	EnsureOrganizer(ctx context.Context, name, email, password string) (*models.User, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		logger:    loggerOrDefault(logger),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	user.PasswordHash = ""

	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"name":    user.Name,
		"exp":     now.Add(tokenTTL).Unix(),
		"iat":     now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, token, nil
}

func (s *authService) EnsureOrganizer(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up organizer: %w", err)
	}
	if existing != nil {
		if existing.Role != models.RoleOrganizer {
			return nil, fmt.Errorf("%w: %s is not an organizer account", ErrForbiddenOperation, email)
		}
		if !utils.CheckPasswordHash(password, existing.PasswordHash) {
			hash, err := utils.HashPassword(password)
			if err != nil {
				return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
			}
			if err := s.userRepo.UpdatePassword(ctx, existing.ID, hash); err != nil {
				return nil, err
			}
			s.logger.InfoContext(ctx, "organizer password refreshed", slog.Int("user_id", existing.ID))
		}
		existing.PasswordHash = ""
		return existing, nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleOrganizer}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create organizer: %w", err)
	}
	s.logger.InfoContext(ctx, "organizer account created", slog.Int("user_id", user.ID))
	user.PasswordHash = ""
	return user, nil
}
