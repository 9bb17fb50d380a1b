package repository

import (
	"context"
	"time"

	"boba-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Lookups return nil with a nil error when the record does not exist.
// Mutations report whether a target row was found.

// ProductRepository defines the interface for drink data access operations.
type ProductRepository interface {
	// List retrieves drinks matching the filter.
	List(ctx context.Context, filter model.CatalogFilter) ([]model.Product, error)

	// GetByID retrieves a single drink, optionally including soft-deleted ones.
	GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Product, error)

	// PricesByIDs returns the base price of every non-deleted drink among ids.
	PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)

	// Create inserts a new drink.
	Create(ctx context.Context, product *model.Product) error

	// Update replaces the mutable fields of a non-deleted drink.
	Update(ctx context.Context, product *model.Product) (bool, error)

	// SoftDelete stamps the deletion time unless one is already set.
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)

	// Restore clears the deletion time.
	Restore(ctx context.Context, id string, at time.Time) (bool, error)
}

// ToppingRepository defines the interface for topping data access operations.
type ToppingRepository interface {
	List(ctx context.Context, filter model.CatalogFilter) ([]model.Topping, error)
	GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Topping, error)
	PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
	Create(ctx context.Context, topping *model.Topping) error
	Update(ctx context.Context, topping *model.Topping) (bool, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
	Restore(ctx context.Context, id string, at time.Time) (bool, error)

	// Purge permanently removes a topping that is already soft-deleted.
	Purge(ctx context.Context, id string) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// List retrieves non-deleted orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// GetByID retrieves a non-deleted order by its ID.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// Update replaces the mutable fields of a non-deleted order.
	Update(ctx context.Context, order *model.Order) (bool, error)

	// UpdateStatus sets the status of a non-deleted order.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) (bool, error)

	// SoftDelete stamps the deletion time unless one is already set.
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// CreateWithRole inserts the account and its initial role atomically.
	// A duplicate email yields model.ErrEmailTaken.
	CreateWithRole(ctx context.Context, user *model.User, role string) error

	// GetByEmail retrieves an account and its roles by case-insensitive email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves an account and its roles.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// AdjustPoints adds delta to the balance within tx, clamping at zero, and
	// returns the new balance.
	AdjustPoints(ctx context.Context, tx pgx.Tx, id string, delta int) (int, error)
}
