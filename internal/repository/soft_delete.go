package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// softDelete keeps the first deletion timestamp, so repeated deletes are no-ops that still report found.
func softDelete(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger, table, id string, at time.Time) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET deleted_utc = COALESCE(deleted_utc, $2) WHERE id = $1`, table)

	tag, err := pool.Exec(ctx, query, id, at)
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("failed to soft-delete record")
		return false, fmt.Errorf("failed to soft-delete %s record: %w", table, err)
	}

	return tag.RowsAffected() > 0, nil
}

func restore(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger, table, id string, at time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_utc = NULL,
			updated_utc = CASE WHEN deleted_utc IS NULL THEN updated_utc ELSE $2 END
		WHERE id = $1`, table)

	tag, err := pool.Exec(ctx, query, id, at)
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("failed to restore record")
		return false, fmt.Errorf("failed to restore %s record: %w", table, err)
	}

	return tag.RowsAffected() > 0, nil
}

func queryPrices(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger, query string, ids []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	rows, err := pool.Query(ctx, query, ids)
	if err != nil {
		logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query prices by IDs")
		return nil, fmt.Errorf("failed to query prices by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			price decimal.Decimal
		)
		if err := rows.Scan(&id, &price); err != nil {
			logger.Error().Err(err).Msg("failed to scan price row")
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices[id] = price
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating price rows")
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return prices, nil
}
