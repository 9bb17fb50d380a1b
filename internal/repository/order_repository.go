package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boba-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, customer_email, drink_ids, topping_ids, subtotal, discount, total,
	points_redeemed, points_earned, status, created_utc, updated_utc, deleted_utc`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.CustomerEmail, &o.DrinkIDs, &o.ToppingIDs, &o.Subtotal, &o.Discount, &o.Total,
		&o.PointsRedeemed, &o.PointsEarned, &status, &o.CreatedUTC, &o.UpdatedUTC, &o.DeletedUTC,
	)
	if err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_email, drink_ids, topping_ids, subtotal, discount, total,
			points_redeemed, points_earned, status, created_utc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		o.ID, o.CustomerEmail, nonNil(o.DrinkIDs), nonNil(o.ToppingIDs), o.Subtotal, o.Discount, o.Total,
		o.PointsRedeemed, o.PointsEarned, string(o.Status), o.CreatedUTC,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", o.ID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", o.ID).
		Msg("order created successfully")

	return nil
}

// List retrieves non-deleted orders matching the filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		conditions = []string{"deleted_utc IS NULL"}
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CustomerEmail != "" {
		conditions = append(conditions, "customer_email = "+arg(filter.CustomerEmail))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*filter.Status)))
	}
	if filter.From != nil {
		conditions = append(conditions, "created_utc >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "created_utc <= "+arg(*filter.To))
	}

	query := "SELECT " + orderColumns + " FROM orders WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY created_utc DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves a non-deleted order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_utc IS NULL`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return o, nil
}

// Update replaces the mutable fields of a non-deleted order.
func (r *orderRepository) Update(ctx context.Context, o *model.Order) (bool, error) {
	query := `
		UPDATE orders
		SET customer_email = $2, drink_ids = $3, topping_ids = $4, subtotal = $5, discount = $6,
			total = $7, status = $8, updated_utc = $9
		WHERE id = $1 AND deleted_utc IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		o.ID, o.CustomerEmail, nonNil(o.DrinkIDs), nonNil(o.ToppingIDs), o.Subtotal, o.Discount,
		o.Total, string(o.Status), o.UpdatedUTC,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", o.ID).Msg("failed to update order")
		return false, fmt.Errorf("failed to update order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateStatus sets the status of a non-deleted order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_utc = $3 WHERE id = $1 AND deleted_utc IS NULL`,
		id, string(status), at,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SoftDelete stamps deleted_utc unless already set.
func (r *orderRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	return softDelete(ctx, r.pool, r.logger, "orders", id, at)
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
