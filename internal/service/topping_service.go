package service

import (
	"context"
	"fmt"

	"boba-kart/internal/model"
	"boba-kart/internal/repository"

	"github.com/rs/zerolog"
)

type toppingService struct {
	toppingRepo repository.ToppingRepository
	now         Clock
	logger      zerolog.Logger
}

// NewToppingService creates a new topping service.
func NewToppingService(toppingRepo repository.ToppingRepository, logger zerolog.Logger) ToppingService {
	return &toppingService{
		toppingRepo: toppingRepo,
		logger:      logger.With().Str("service", "topping").Logger(),
	}
}

func (s *toppingService) List(ctx context.Context, filter model.CatalogFilter) ([]model.Topping, error) {
	filter.Normalise()

	toppings, err := s.toppingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list toppings")
		return nil, fmt.Errorf("failed to list toppings: %w", err)
	}
	return toppings, nil
}

func (s *toppingService) GetByID(ctx context.Context, id string) (*model.Topping, error) {
	id, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	topping, err := s.toppingRepo.GetByID(ctx, id, false)
	if err != nil {
		s.logger.Error().Err(err).Str("topping_id", id).Msg("failed to get topping by ID")
		return nil, fmt.Errorf("failed to get topping: %w", err)
	}
	if topping == nil {
		return nil, model.ErrToppingNotFound
	}
	return topping, nil
}

func (s *toppingService) Create(ctx context.Context, req *model.ToppingRequest) (*model.Topping, error) {
	if req == nil {
		return nil, model.NewValidationError("topping is required", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	topping := &model.Topping{
		ID:         model.NewID(),
		Name:       req.Name,
		Price:      req.Price,
		IsActive:   req.IsActive,
		CreatedUTC: utcNow(s.now),
	}
	if err := s.toppingRepo.Create(ctx, topping); err != nil {
		s.logger.Error().Err(err).Str("name", topping.Name).Msg("failed to create topping")
		return nil, fmt.Errorf("failed to create topping: %w", err)
	}

	s.logger.Info().Str("topping_id", topping.ID).Msg("topping created")
	return topping, nil
}

func (s *toppingService) Update(ctx context.Context, id string, req *model.ToppingRequest) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}
	if req == nil {
		return model.NewValidationError("topping is required", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	now := utcNow(s.now)
	found, err := s.toppingRepo.Update(ctx, &model.Topping{
		ID:         id,
		Name:       req.Name,
		Price:      req.Price,
		IsActive:   req.IsActive,
		UpdatedUTC: &now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("topping_id", id).Msg("failed to update topping")
		return fmt.Errorf("failed to update topping: %w", err)
	}
	if !found {
		return model.ErrToppingNotFound
	}
	return nil
}

func (s *toppingService) Delete(ctx context.Context, id string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}

	found, err := s.toppingRepo.SoftDelete(ctx, id, utcNow(s.now))
	if err != nil {
		s.logger.Error().Err(err).Str("topping_id", id).Msg("failed to delete topping")
		return fmt.Errorf("failed to delete topping: %w", err)
	}
	if !found {
		return model.ErrToppingNotFound
	}
	return nil
}

func (s *toppingService) Restore(ctx context.Context, id string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}

	found, err := s.toppingRepo.Restore(ctx, id, utcNow(s.now))
	if err != nil {
		s.logger.Error().Err(err).Str("topping_id", id).Msg("failed to restore topping")
		return fmt.Errorf("failed to restore topping: %w", err)
	}
	if !found {
		return model.ErrToppingNotFound
	}
	return nil
}

// Purge permanently removes a soft-deleted topping. Live toppings are rejected.
func (s *toppingService) Purge(ctx context.Context, id string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}

	topping, err := s.toppingRepo.GetByID(ctx, id, true)
	if err != nil {
		s.logger.Error().Err(err).Str("topping_id", id).Msg("failed to get topping for purge")
		return fmt.Errorf("failed to purge topping: %w", err)
	}
	if topping == nil {
		return model.ErrToppingNotFound
	}
	if !topping.IsDeleted() {
		return model.NewValidationError("topping must be deleted before it can be purged", map[string]string{
			"id": "topping is not deleted",
		})
	}

	if _, err := s.toppingRepo.Purge(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("topping_id", id).Msg("failed to purge topping")
		return fmt.Errorf("failed to purge topping: %w", err)
	}

	s.logger.Info().Str("topping_id", id).Msg("topping purged")
	return nil
}
