package service

import (
	"context"
	"time"

	"boba-kart/internal/model"

	"github.com/shopspring/decimal"
)

// ProductService defines operations for drink management.
type ProductService interface {
	// List retrieves drinks matching the filter.
	List(ctx context.Context, filter model.CatalogFilter) ([]model.Product, error)

	// GetByID retrieves a single non-deleted drink.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create validates and stores a new drink.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update replaces the mutable fields of a drink.
	Update(ctx context.Context, id string, req *model.ProductRequest) error

	// Delete soft-deletes a drink. Repeating it keeps the first deletion time.
	Delete(ctx context.Context, id string) error

	// Restore clears the deletion time of a drink.
	Restore(ctx context.Context, id string) error
}

// ToppingService defines operations for topping management.
type ToppingService interface {
	List(ctx context.Context, filter model.CatalogFilter) ([]model.Topping, error)
	GetByID(ctx context.Context, id string) (*model.Topping, error)
	Create(ctx context.Context, req *model.ToppingRequest) (*model.Topping, error)
	Update(ctx context.Context, id string, req *model.ToppingRequest) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error

	// Purge permanently removes a topping that has already been soft-deleted.
	Purge(ctx context.Context, id string) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// List retrieves non-deleted orders, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// GetByID retrieves a non-deleted order.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// Create prices and stores a new order, settling reward points.
	Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// Update replaces an order's contents and recomputes its total.
	Update(ctx context.Context, id string, req *model.OrderUpdateRequest) error

	// UpdateStatus moves an order along its status machine.
	UpdateStatus(ctx context.Context, id string, status string) error

	// Delete soft-deletes an order.
	Delete(ctx context.Context, id string) error
}

// AuthService defines account registration and login.
type AuthService interface {
	// Register creates an account with the default role.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Profile, error)

	// Login verifies credentials and issues a bearer token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)

	// Me returns the profile of the account with the given id.
	Me(ctx context.Context, userID string) (*model.Profile, error)
}

// PriceCalculator sums current catalogue prices for an order.
type PriceCalculator interface {
	Total(ctx context.Context, drinkIDs, toppingIDs []string) (decimal.Decimal, error)
}

// ImageCatalog reports whether an image reference is one of the preset images.
// An empty catalogue accepts any reference.
type ImageCatalog interface {
	Contains(ref string) bool
	Len() int
}

// Clock returns the current time. Services store timestamps in UTC.
type Clock func() time.Time

func utcNow(clock Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
