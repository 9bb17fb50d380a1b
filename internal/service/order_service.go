package service

import (
	"context"
	"fmt"
	"strings"

	"boba-kart/internal/model"
	"boba-kart/internal/pricing"
	"boba-kart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	prices    PriceCalculator
	rewards   pricing.Rewards
	now       Clock
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	prices PriceCalculator,
	rewards pricing.Rewards,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		prices:    prices,
		rewards:   rewards,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// List retrieves non-deleted orders, newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	filter.CustomerEmail = strings.TrimSpace(filter.CustomerEmail)
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, model.NewValidationError("date range is invalid", map[string]string{
			"from": "from must not be after to",
		})
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a non-deleted order.
func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	id, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// Create prices the order from current catalogue prices, applies any
// redeemed points and credits earned points in the same transaction.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewValidationError("order is required", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	drinkIDs := model.FilterValidIDs(req.DrinkIDs)
	toppingIDs := model.FilterValidIDs(req.ToppingIDs)

	subtotal, err := s.prices.Total(ctx, drinkIDs, toppingIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to price order")
		return nil, fmt.Errorf("failed to price order: %w", err)
	}

	customer, err := s.userRepo.GetByEmail(ctx, req.CustomerEmail)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up customer account")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	redeemed, discount, err := s.redemption(req, customer, subtotal)
	if err != nil {
		return nil, err
	}

	total := subtotal.Sub(discount)
	earned := 0
	if customer != nil {
		earned = s.rewards.EarnPoints(total)
	}

	now := utcNow(s.now)
	order := &model.Order{
		ID:             model.NewID(),
		CustomerEmail:  req.CustomerEmail,
		DrinkIDs:       drinkIDs,
		ToppingIDs:     toppingIDs,
		Subtotal:       subtotal,
		Discount:       discount,
		Total:          total,
		PointsRedeemed: redeemed,
		PointsEarned:   earned,
		Status:         model.StatusNew,
		CreatedUTC:     now,
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if customer != nil && earned-redeemed != 0 {
		balance, adjErr := s.userRepo.AdjustPoints(ctx, tx, customer.ID, earned-redeemed)
		if adjErr != nil {
			err = adjErr
			s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to settle reward points")
			return nil, fmt.Errorf("failed to settle reward points: %w", err)
		}
		s.logger.Debug().
			Str("user_id", customer.ID).
			Int("balance", balance).
			Msg("reward points settled")
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Int("drink_count", len(drinkIDs)).
		Str("total", total.StringFixed(2)).
		Msg("order created successfully")

	return order, nil
}

// redemption returns the points to deduct and the resulting discount.
func (s *orderService) redemption(req *model.OrderRequest, customer *model.User, subtotal decimal.Decimal) (int, decimal.Decimal, error) {
	if req.RedeemPoints <= 0 {
		return 0, decimal.Zero, nil
	}
	if req.RequestedBy == "" {
		return 0, decimal.Zero, model.ErrUnauthenticated
	}
	if !strings.EqualFold(req.RequestedBy, req.CustomerEmail) || customer == nil {
		s.logger.Warn().Str("requested_by", req.RequestedBy).Msg("points redemption for another customer")
		return 0, decimal.Zero, model.ErrForbidden
	}

	points := s.rewards.NormalizeRedeemRequest(customer.RewardPoints, req.RedeemPoints)
	discount := s.rewards.CalculateRedeemValue(points)

	// Never redeem more blocks than the order can absorb.
	for points > 0 && discount.GreaterThan(subtotal) {
		points -= s.rewards.BlockSize
		discount = s.rewards.CalculateRedeemValue(points)
	}

	return points, discount, nil
}

// Update replaces an order's contents and recomputes its total. The
// discount granted at creation is kept.
func (s *orderService) Update(ctx context.Context, id string, req *model.OrderUpdateRequest) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}
	if req == nil {
		return model.NewValidationError("order is required", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	status := existing.Status
	if req.Status != "" {
		next, err := model.ParseOrderStatus(req.Status)
		if err != nil {
			return err
		}
		if !existing.Status.CanTransitionTo(next) {
			return model.TransitionError(existing.Status, next)
		}
		status = next
	}

	drinkIDs := model.FilterValidIDs(req.DrinkIDs)
	toppingIDs := model.FilterValidIDs(req.ToppingIDs)
	subtotal, err := s.prices.Total(ctx, drinkIDs, toppingIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to price order")
		return fmt.Errorf("failed to price order: %w", err)
	}

	total := subtotal.Sub(existing.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	now := utcNow(s.now)
	existing.CustomerEmail = req.CustomerEmail
	existing.DrinkIDs = drinkIDs
	existing.ToppingIDs = toppingIDs
	existing.Subtotal = subtotal
	existing.Total = total
	existing.Status = status
	existing.UpdatedUTC = &now

	found, err := s.orderRepo.Update(ctx, existing)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if !found {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id).Str("total", total.StringFixed(2)).Msg("order updated")
	return nil
}

// UpdateStatus moves an order along its status machine.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Status.CanTransitionTo(next) {
		s.logger.Warn().
			Str("order_id", id).
			Str("from", string(existing.Status)).
			Str("to", string(next)).
			Msg("illegal status transition")
		return model.TransitionError(existing.Status, next)
	}

	found, err := s.orderRepo.UpdateStatus(ctx, id, next, utcNow(s.now))
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if !found {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id).Str("status", string(next)).Msg("order status updated")
	return nil
}

// Delete soft-deletes an order.
func (s *orderService) Delete(ctx context.Context, id string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}

	found, err := s.orderRepo.SoftDelete(ctx, id, utcNow(s.now))
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !found {
		return model.ErrOrderNotFound
	}
	return nil
}
