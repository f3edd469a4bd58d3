package user

import (
	"context"
	"strings"

	"oakfire-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Login(ctx context.Context, email, password string) (string, Admin, error)
	Register(ctx context.Context, email, password string, role Role) (Admin, error)
}

type service struct {
	repo Repository
	auth *Authenticator
}

func NewService(repo Repository, auth *Authenticator) Service {
	return &service{repo: repo, auth: auth}
}

func (s *service) Login(ctx context.Context, email, password string) (string, Admin, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	a, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		log.Warn("login failed: email not found")
		return "", Admin{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, a.Password) {
		log.Warn("login failed: password mismatch", zap.Int("admin_id", a.ID))
		return "", Admin{}, ErrInvalidCredentials
	}

	token, err := s.auth.GenerateJWT(a.ID, string(a.Role), a.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int("admin_id", a.ID), zap.Error(err))
		return "", Admin{}, err
	}

	log.Info("login completed", zap.Int("admin_id", a.ID))
	return token, a, nil
}

// Register creates a back-office account. Only reachable through the
// seed command, never from a public surface.
func (s *service) Register(ctx context.Context, email, password string, role Role) (Admin, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return Admin{}, err
	}

	a, err := s.repo.Create(ctx, strings.ToLower(email), hashed, string(role))
	if err != nil {
		if strings.Contains(err.Error(), "admins_email_key") {
			return Admin{}, ErrEmailExists
		}
		log.Error("failed to create admin", zap.String("email", email), zap.Error(err))
		return Admin{}, err
	}

	log.Info("admin registered", zap.Int("admin_id", a.ID), zap.String("role", string(role)))
	return a, nil
}
