package repository

import (
	"context"
	"errors"
	"fmt"

	"boba-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, email, password_hash, display_name, reward_points, created_utc`

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed account repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// CreateWithRole inserts the account row and its role in one transaction.
func (r *userRepository) CreateWithRole(ctx context.Context, u *model.User, role string) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, display_name, reward_points, created_utc)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			u.ID, u.Email, u.PasswordHash, u.DisplayName, u.RewardPoints, u.CreatedUTC,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, u.ID, role)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("email", u.Email).Msg("email already registered")
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.Roles = []string{role}
	r.logger.Debug().Str("user_id", u.ID).Str("role", role).Msg("user created successfully")
	return nil
}

// GetByEmail retrieves an account by case-insensitive email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByID retrieves an account by id.
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.RewardPoints, &u.CreatedUTC,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, u.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to query user roles")
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}

	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to scan user roles")
		return nil, fmt.Errorf("failed to scan user roles: %w", err)
	}
	u.Roles = roles

	return &u, nil
}

// AdjustPoints applies delta and clamps the balance at zero.
func (r *userRepository) AdjustPoints(ctx context.Context, tx pgx.Tx, id string, delta int) (int, error) {
	var balance int
	err := tx.QueryRow(ctx,
		`UPDATE users SET reward_points = GREATEST(reward_points + $2, 0) WHERE id = $1 RETURNING reward_points`,
		id, delta,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrUserNotFound
		}
		r.logger.Error().Err(err).Str("user_id", id).Int("delta", delta).Msg("failed to adjust reward points")
		return 0, fmt.Errorf("failed to adjust reward points: %w", err)
	}

	r.logger.Debug().Str("user_id", id).Int("delta", delta).Int("balance", balance).Msg("reward points adjusted")
	return balance, nil
}
