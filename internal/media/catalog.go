package media

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Catalog is the reloadable set of preset images. It is safe for
// concurrent use.
type Catalog struct {
	lister Lister
	set    atomic.Pointer[Set]
	logger zerolog.Logger
}

// NewCatalog creates an empty catalogue backed by lister.
func NewCatalog(lister Lister, logger zerolog.Logger) *Catalog {
	c := &Catalog{
		lister: lister,
		logger: logger.With().Str("component", "image-catalog").Logger(),
	}
	c.set.Store(NewSet(nil))
	return c
}

// Refresh reloads the catalogue. On failure the previous contents are kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	refs, err := c.lister.List(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to refresh image catalog")
		return fmt.Errorf("failed to refresh image catalog: %w", err)
	}

	set := NewSet(refs)
	c.set.Store(set)
	c.logger.Info().Int("images", set.Len()).Msg("image catalog refreshed")
	return nil
}

// Contains checks if ref is a preset image.
func (c *Catalog) Contains(ref string) bool {
	return c.set.Load().Contains(ref)
}

// Len returns the number of preset images.
func (c *Catalog) Len() int {
	return c.set.Load().Len()
}

// Refs returns the preset image references in lexical order.
func (c *Catalog) Refs() []string {
	return c.set.Load().Refs()
}
