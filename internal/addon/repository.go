package addon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oakfire-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, input CreateAddonInput) (*Addon, error)
	GetByID(ctx context.Context, id string) (*Addon, error)
	List(ctx context.Context, filter *AddonFilterInput, limit, page int32) ([]*Addon, int64, error)
	Update(ctx context.Context, id string, input UpdateAddonInput) (*Addon, error)
	Delete(ctx context.Context, id string) error

	// PriceList resolves unit prices for active add-ons referenced by a
	// quote's selections.
	PriceList(ctx context.Context, ids []string) (map[string]int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const addonColumns = `id, name, description, price_cents, is_active, category, created_at, updated_at`

func scanAddon(row interface{ Scan(...any) error }) (*Addon, error) {
	var (
		a           Addon
		description sql.NullString
		category    sql.NullString
	)
	err := row.Scan(&a.ID, &a.Name, &description, &a.PriceCents, &a.IsActive, &category, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		a.Description = &description.String
	}
	if category.Valid {
		a.Category = &category.String
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, input CreateAddonInput) (*Addon, error) {
	id := uuid.New().String()

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO catering_addons (id, name, description, price_cents, is_active, category)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING `+addonColumns+`
	`, id, input.Name, input.Description, input.PriceCents, input.Category)

	return scanAddon(row)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Addon, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+addonColumns+` FROM catering_addons WHERE id = $1
	`, id)

	a, err := scanAddon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddonNotFound
	}
	return a, err
}

func (r *repository) List(ctx context.Context, filter *AddonFilterInput, limit, page int32) ([]*Addon, int64, error) {
	// ---------- PAGINATION ----------
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListAddons"),
		zap.Int32("limit", limit),
		zap.Int32("page", page),
	)

	whereClause := " WHERE 1=1"
	args := []any{}
	argIndex := 1

	if filter != nil {
		if filter.ActiveOnly {
			whereClause += " AND is_active = TRUE"
		}
		if filter.Category != nil && *filter.Category != "" {
			whereClause += fmt.Sprintf(" AND category = $%d", argIndex)
			args = append(args, *filter.Category)
			argIndex++
		}
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM catering_addons" + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count add-ons", zap.Error(err))
		return nil, 0, err
	}

	query := "SELECT " + addonColumns + " FROM catering_addons" + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list add-ons", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var addons []*Addon
	for rows.Next() {
		a, err := scanAddon(rows)
		if err != nil {
			return nil, 0, err
		}
		addons = append(addons, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return addons, total, nil
}

func (r *repository) Update(ctx context.Context, id string, input UpdateAddonInput) (*Addon, error) {
	setClause := ""
	args := []any{}
	argIndex := 1

	appendSet := func(column string, value any) {
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if input.Name != nil {
		appendSet("name", *input.Name)
	}
	if input.Description != nil {
		appendSet("description", *input.Description)
	}
	if input.PriceCents != nil {
		appendSet("price_cents", *input.PriceCents)
	}
	if input.IsActive != nil {
		appendSet("is_active", *input.IsActive)
	}
	if input.Category != nil {
		appendSet("category", *input.Category)
	}

	if setClause == "" {
		return nil, ErrEmptyUpdate
	}

	setClause += ", updated_at = now()"
	query := fmt.Sprintf(
		"UPDATE catering_addons SET %s WHERE id = $%d RETURNING %s",
		setClause, argIndex, addonColumns,
	)
	args = append(args, id)

	a, err := scanAddon(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddonNotFound
	}
	return a, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM catering_addons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAddonNotFound
	}
	return nil
}

func (r *repository) PriceList(ctx context.Context, ids []string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, price_cents FROM catering_addons
		WHERE id = ANY($1) AND is_active = TRUE
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[string]int64, len(ids))
	for rows.Next() {
		var (
			id    string
			price int64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}
