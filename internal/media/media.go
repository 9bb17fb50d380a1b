// Package media maintains the catalogue of preset product images.
package media

import (
	"context"
	"path"
	"strings"
)

// Lister enumerates image references from a backing store.
type Lister interface {
	// List returns every image reference available in the store.
	List(ctx context.Context) ([]string, error)
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".svg":  true,
}

// IsImage reports whether name has a recognised image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}
