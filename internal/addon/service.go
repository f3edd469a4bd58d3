package addon

import (
	"context"
	"fmt"

	"oakfire-be/internal/logger"
	"oakfire-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateAddonInput) (*Addon, error)
	Get(ctx context.Context, id string) (*Addon, error)
	List(ctx context.Context, filter *AddonFilterInput, limit, page int32) ([]*Addon, int64, error)
	Update(ctx context.Context, id string, input UpdateAddonInput) (*Addon, error)
	Delete(ctx context.Context, id string) error

	PriceList(ctx context.Context, ids []string) (map[string]int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

const maxNameLength = 120

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: name must be 1..%d characters", ErrInvalidInput, maxNameLength)
	}
	return nil
}

func requireAdmin(ctx context.Context) error {
	if utils.GetAdminRoleFromContext(ctx) != "ADMIN" {
		return ErrUnauthorized
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateAddonInput) (*Addon, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateAddon"),
		zap.String("name", input.Name),
	)

	if err := requireAdmin(ctx); err != nil {
		log.Warn("unauthorized add-on create")
		return nil, err
	}
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}

	a, err := s.repo.Create(ctx, input)
	if err != nil {
		log.Error("failed to create add-on", zap.Error(err))
		return nil, err
	}

	log.Info("add-on created", zap.String("addon_id", a.ID))
	return a, nil
}

func (s *service) Get(ctx context.Context, id string) (*Addon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter *AddonFilterInput, limit, page int32) ([]*Addon, int64, error) {
	// Non-admin callers only ever see active add-ons.
	if utils.GetAdminRoleFromContext(ctx) != "ADMIN" {
		if filter == nil {
			filter = &AddonFilterInput{}
		}
		filter.ActiveOnly = true
	}
	return s.repo.List(ctx, filter, limit, page)
}

func (s *service) Update(ctx context.Context, id string, input UpdateAddonInput) (*Addon, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateAddon"),
		zap.String("addon_id", id),
	)

	if err := requireAdmin(ctx); err != nil {
		log.Warn("unauthorized add-on update")
		return nil, err
	}
	if input.Name != nil {
		if err := validateName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}

	a, err := s.repo.Update(ctx, id, input)
	if err != nil {
		log.Error("failed to update add-on", zap.Error(err))
		return nil, err
	}

	log.Info("add-on updated")
	return a, nil
}

// Delete removes a catalog entry. Quotes that referenced it keep their
// snapshot pricing; the dangling id is display-only.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) PriceList(ctx context.Context, ids []string) (map[string]int64, error) {
	return s.repo.PriceList(ctx, ids)
}
