package user

import (
	"context"
	"database/sql"

	"oakfire-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, email, password, role string) (Admin, error)
	FindByEmail(ctx context.Context, email string) (Admin, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, password, role string) (Admin, error) {
	log := logger.FromCtx(ctx)

	var a Admin
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO admins (email, password, role) VALUES ($1, $2, $3) RETURNING id, email, password, role, created_at",
		email, password, role,
	).Scan(&a.ID, &a.Email, &a.Password, &a.Role, &a.CreatedAt)

	if err != nil {
		log.Error("db: failed to insert admin",
			zap.String("email", email),
			zap.Error(err),
		)
	}

	return a, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password, role, created_at FROM admins WHERE email = $1",
		email,
	).Scan(&a.ID, &a.Email, &a.Password, &a.Role, &a.CreatedAt)

	return a, err
}
