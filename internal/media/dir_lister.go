package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
)

// dirLister implements Lister over a local directory tree.
type dirLister struct {
	root   string
	prefix string
	logger zerolog.Logger
}

// NewDirLister creates a lister for image files under root. References are
// the slash-separated path relative to root with prefix prepended, matching
// the S3 key layout.
func NewDirLister(root, prefix string, logger zerolog.Logger) Lister {
	return &dirLister{
		root:   root,
		prefix: prefix,
		logger: logger.With().Str("component", "image-dir-lister").Logger(),
	}
}

// List walks the directory. A missing directory yields an empty list.
func (l *dirLister) List(ctx context.Context) ([]string, error) {
	l.logger.Info().Str("dir", l.root).Msg("listing local images")

	var refs []string
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !IsImage(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		refs = append(refs, path.Join(l.prefix, filepath.ToSlash(rel)))
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Warn().Str("dir", l.root).Msg("image directory does not exist")
		return []string{}, nil
	}
	if err != nil {
		l.logger.Error().Err(err).Str("dir", l.root).Msg("failed to list images")
		return nil, fmt.Errorf("failed to list images in %s: %w", l.root, err)
	}

	l.logger.Info().Str("dir", l.root).Int("images", len(refs)).Msg("local images listed")
	return refs, nil
}
