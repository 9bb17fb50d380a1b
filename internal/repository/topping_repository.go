package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boba-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const toppingColumns = `id, name, price, is_active, created_utc, updated_utc, deleted_utc`

// toppingRepository implements the ToppingRepository interface using PostgreSQL.
type toppingRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewToppingRepository creates a new PostgreSQL-backed topping repository.
func NewToppingRepository(pool *pgxpool.Pool, logger zerolog.Logger) ToppingRepository {
	return &toppingRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "topping").Logger(),
	}
}

func scanTopping(row pgx.Row) (*model.Topping, error) {
	var t model.Topping
	if err := row.Scan(&t.ID, &t.Name, &t.Price, &t.IsActive, &t.CreatedUTC, &t.UpdatedUTC, &t.DeletedUTC); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *toppingRepository) List(ctx context.Context, filter model.CatalogFilter) ([]model.Topping, error) {
	query, args := catalogQuery("SELECT "+toppingColumns+" FROM toppings", "price", filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query toppings")
		return nil, fmt.Errorf("failed to query toppings: %w", err)
	}
	defer rows.Close()

	toppings := []model.Topping{}
	for rows.Next() {
		t, err := scanTopping(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan topping row")
			return nil, fmt.Errorf("failed to scan topping: %w", err)
		}
		toppings = append(toppings, *t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating topping rows")
		return nil, fmt.Errorf("error iterating toppings: %w", err)
	}

	return toppings, nil
}

func (r *toppingRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Topping, error) {
	query := `SELECT ` + toppingColumns + ` FROM toppings WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_utc IS NULL`
	}

	t, err := scanTopping(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("topping_id", id).Msg("topping not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("topping_id", id).Msg("failed to query topping")
		return nil, fmt.Errorf("failed to query topping: %w", err)
	}

	return t, nil
}

func (r *toppingRepository) PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	return queryPrices(ctx, r.pool, r.logger,
		`SELECT id, price FROM toppings WHERE id = ANY($1) AND deleted_utc IS NULL`, ids)
}

func (r *toppingRepository) Create(ctx context.Context, t *model.Topping) error {
	query := `
		INSERT INTO toppings (id, name, price, is_active, created_utc)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.pool.Exec(ctx, query, t.ID, t.Name, t.Price, t.IsActive, t.CreatedUTC); err != nil {
		r.logger.Error().Err(err).Str("topping_id", t.ID).Msg("failed to create topping")
		return fmt.Errorf("failed to create topping: %w", err)
	}

	r.logger.Debug().Str("topping_id", t.ID).Msg("topping created successfully")
	return nil
}

func (r *toppingRepository) Update(ctx context.Context, t *model.Topping) (bool, error) {
	query := `
		UPDATE toppings
		SET name = $2, price = $3, is_active = $4, updated_utc = $5
		WHERE id = $1 AND deleted_utc IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, t.ID, t.Name, t.Price, t.IsActive, t.UpdatedUTC)
	if err != nil {
		r.logger.Error().Err(err).Str("topping_id", t.ID).Msg("failed to update topping")
		return false, fmt.Errorf("failed to update topping: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *toppingRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	return softDelete(ctx, r.pool, r.logger, "toppings", id, at)
}

func (r *toppingRepository) Restore(ctx context.Context, id string, at time.Time) (bool, error) {
	return restore(ctx, r.pool, r.logger, "toppings", id, at)
}

// Purge only removes rows that were soft-deleted first.
func (r *toppingRepository) Purge(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM toppings WHERE id = $1 AND deleted_utc IS NOT NULL`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("topping_id", id).Msg("failed to purge topping")
		return false, fmt.Errorf("failed to purge topping: %w", err)
	}

	if tag.RowsAffected() > 0 {
		r.logger.Warn().Str("topping_id", id).Msg("topping permanently removed")
	}
	return tag.RowsAffected() > 0, nil
}
