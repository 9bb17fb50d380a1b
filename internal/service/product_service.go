package service

import (
	"context"
	"fmt"

	"boba-kart/internal/model"
	"boba-kart/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	images      ImageCatalog
	now         Clock
	logger      zerolog.Logger
}

// NewProductService creates a new product service. images may be nil.
func NewProductService(productRepo repository.ProductRepository, images ImageCatalog, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		images:      images,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves drinks matching the filter.
func (s *productService) List(ctx context.Context, filter model.CatalogFilter) ([]model.Product, error) {
	filter.Normalise()

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Bool("include_deleted", filter.IncludeDeleted).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single non-deleted drink.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id, false)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create validates and stores a new drink.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{ID: model.NewID(), CreatedUTC: utcNow(s.now)}
	applyProductRequest(product, req)

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", product.ID).Msg("product created")
	return product, nil
}

// Update replaces the mutable fields of a drink, keeping its creation time.
func (s *productService) Update(ctx context.Context, id string, req *model.ProductRequest) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.validate(req); err != nil {
		return err
	}

	now := utcNow(s.now)
	product := &model.Product{ID: id, UpdatedUTC: &now}
	applyProductRequest(product, req)

	found, err := s.productRepo.Update(ctx, product)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if !found {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return nil
}

// Delete soft-deletes a drink.
func (s *productService) Delete(ctx context.Context, id string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}

	found, err := s.productRepo.SoftDelete(ctx, id, utcNow(s.now))
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product soft-deleted")
	return nil
}

// Restore clears the deletion time of a drink.
func (s *productService) Restore(ctx context.Context, id string) error {
	id, err := model.ParseID(id)
	if err != nil {
		return err
	}

	found, err := s.productRepo.Restore(ctx, id, utcNow(s.now))
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to restore product")
		return fmt.Errorf("failed to restore product: %w", err)
	}
	if !found {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product restored")
	return nil
}

func (s *productService) validate(req *model.ProductRequest) error {
	if req == nil {
		return model.NewValidationError("product is required", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if req.ImageRef != nil && s.images != nil && s.images.Len() > 0 && !s.images.Contains(*req.ImageRef) {
		s.logger.Warn().Str("image_ref", *req.ImageRef).Msg("unknown image reference")
		return model.NewValidationError("product is invalid", map[string]string{
			"imageRef": "imageRef must name one of the preset images",
		})
	}
	return nil
}

func applyProductRequest(p *model.Product, req *model.ProductRequest) {
	p.Name = req.Name
	p.Description = req.Description
	p.BasePrice = req.BasePrice
	p.SmallUpcharge = req.SmallUpcharge
	p.MediumUpcharge = req.MediumUpcharge
	p.LargeUpcharge = req.LargeUpcharge
	p.DefaultSugarPct = req.DefaultSugarPct
	p.DefaultIcePct = req.DefaultIcePct
	p.IsActive = req.IsActive
	p.ImageRef = req.ImageRef
}
