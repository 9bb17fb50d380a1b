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

const productColumns = `id, name, description, base_price, small_upcharge, medium_upcharge, large_upcharge,
	default_sugar_pct, default_ice_pct, is_active, image_ref, created_utc, updated_utc, deleted_utc`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed drink repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.BasePrice,
		&p.SmallUpcharge, &p.MediumUpcharge, &p.LargeUpcharge,
		&p.DefaultSugarPct, &p.DefaultIcePct, &p.IsActive, &p.ImageRef,
		&p.CreatedUTC, &p.UpdatedUTC, &p.DeletedUTC,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves drinks matching the filter.
func (r *productRepository) List(ctx context.Context, filter model.CatalogFilter) ([]model.Product, error) {
	query, args := catalogQuery("SELECT "+productColumns+" FROM drinks", "base_price", filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single drink by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM drinks WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_utc IS NULL`
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// PricesByIDs returns base prices of the non-deleted drinks among ids.
func (r *productRepository) PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	return queryPrices(ctx, r.pool, r.logger,
		`SELECT id, base_price FROM drinks WHERE id = ANY($1) AND deleted_utc IS NULL`, ids)
}

// Create inserts a new drink.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO drinks (id, name, description, base_price, small_upcharge, medium_upcharge,
			large_upcharge, default_sugar_pct, default_ice_pct, is_active, image_ref, created_utc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.BasePrice, p.SmallUpcharge, p.MediumUpcharge,
		p.LargeUpcharge, p.DefaultSugarPct, p.DefaultIcePct, p.IsActive, p.ImageRef, p.CreatedUTC,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product created successfully")
	return nil
}

// Update replaces the mutable fields of a non-deleted drink. created_utc is never written.
func (r *productRepository) Update(ctx context.Context, p *model.Product) (bool, error) {
	query := `
		UPDATE drinks
		SET name = $2, description = $3, base_price = $4, small_upcharge = $5, medium_upcharge = $6,
			large_upcharge = $7, default_sugar_pct = $8, default_ice_pct = $9, is_active = $10,
			image_ref = $11, updated_utc = $12
		WHERE id = $1 AND deleted_utc IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.BasePrice, p.SmallUpcharge, p.MediumUpcharge,
		p.LargeUpcharge, p.DefaultSugarPct, p.DefaultIcePct, p.IsActive, p.ImageRef, p.UpdatedUTC,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return false, fmt.Errorf("failed to update product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SoftDelete stamps deleted_utc unless already set.
func (r *productRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	return softDelete(ctx, r.pool, r.logger, "drinks", id, at)
}

// Restore clears deleted_utc.
func (r *productRepository) Restore(ctx context.Context, id string, at time.Time) (bool, error) {
	return restore(ctx, r.pool, r.logger, "drinks", id, at)
}
