package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "New"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:       {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// ParseOrderStatus matches a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for status := range orderTransitions {
		if strings.EqualFold(string(status), s) {
			return status, nil
		}
	}
	return "", NewValidationError("status is invalid", map[string]string{
		"status": fmt.Sprintf("unknown status %q", s),
	})
}

// CanTransitionTo reports whether moving from s to next is legal.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionError describes an illegal status change.
func TransitionError(from, to OrderStatus) *DomainError {
	return NewDomainError(KindValidation, ErrCodeInvalidTransition,
		fmt.Sprintf("cannot change order status from %s to %s", from, to))
}

// Order represents a customer order.
type Order struct {
	ID             string          `json:"id" db:"id"`
	CustomerEmail  string          `json:"customerEmail" db:"customer_email"`
	DrinkIDs       []string        `json:"drinkIds" db:"drink_ids"`
	ToppingIDs     []string        `json:"toppingIds" db:"topping_ids"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	Total          decimal.Decimal `json:"total" db:"total"`
	PointsRedeemed int             `json:"pointsRedeemed" db:"points_redeemed"`
	PointsEarned   int             `json:"pointsEarned" db:"points_earned"`
	Status         OrderStatus     `json:"status" db:"status"`
	CreatedUTC     time.Time       `json:"createdUtc" db:"created_utc"`
	UpdatedUTC     *time.Time      `json:"updatedUtc,omitempty" db:"updated_utc"`
	DeletedUTC     *time.Time      `json:"deletedUtc,omitempty" db:"deleted_utc"`
}

// OrderRequest represents the request payload for creating an order.
// Any client-supplied total is ignored.
type OrderRequest struct {
	CustomerEmail string   `json:"customerEmail"`
	DrinkIDs      []string `json:"drinkIds"`
	ToppingIDs    []string `json:"toppingIds,omitempty"`
	RedeemPoints  int      `json:"redeemPoints,omitempty"`

	// RequestedBy is the authenticated caller's email, set by the transport layer.
	RequestedBy string `json:"-"`
}

// Validate checks the create payload.
func (r *OrderRequest) Validate() error {
	fields := map[string]string{}
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	if r.CustomerEmail == "" {
		fields["customerEmail"] = "customerEmail is required"
	}
	if r.RedeemPoints < 0 {
		fields["redeemPoints"] = "redeemPoints cannot be negative"
	}
	if len(fields) > 0 {
		return NewValidationError("order is invalid", fields)
	}
	return nil
}

// OrderUpdateRequest is the payload for a full order update.
type OrderUpdateRequest struct {
	CustomerEmail string   `json:"customerEmail"`
	DrinkIDs      []string `json:"drinkIds"`
	ToppingIDs    []string `json:"toppingIds,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// Validate checks the update payload.
func (r *OrderUpdateRequest) Validate() error {
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	if r.CustomerEmail == "" {
		return NewValidationError("order is invalid", map[string]string{
			"customerEmail": "customerEmail is required",
		})
	}
	return nil
}

// StatusUpdateRequest is the payload for PATCH /orders/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// OrderFilter narrows order listings. Date bounds are inclusive.
type OrderFilter struct {
	CustomerEmail string
	Status        *OrderStatus
	From          *time.Time
	To            *time.Time
}
