package media

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Lister implements Lister over objects in an S3 bucket.
type s3Lister struct {
	client s3.ListObjectsV2APIClient
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Lister creates an S3-backed image lister using the default AWS
// credential chain.
func NewS3Lister(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Lister, error) {
	logger = logger.With().Str("component", "s3-image-lister").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 lister initialised")

	return newS3Lister(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Lister(client s3.ListObjectsV2APIClient, bucket, prefix string, logger zerolog.Logger) *s3Lister {
	return &s3Lister{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// List pages through every object under the prefix and keeps the image keys.
func (l *s3Lister) List(ctx context.Context) ([]string, error) {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("prefix", l.prefix).
		Msg("listing images from S3")

	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(l.prefix),
	})

	var refs []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			l.logger.Error().
				Err(err).
				Str("bucket", l.bucket).
				Str("prefix", l.prefix).
				Msg("failed to list objects in S3")
			return nil, fmt.Errorf("failed to list S3 objects (bucket=%s, prefix=%s): %w", l.bucket, l.prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if IsImage(key) {
				refs = append(refs, key)
			}
		}
	}

	l.logger.Info().
		Str("bucket", l.bucket).
		Int("images", len(refs)).
		Msg("images listed from S3")

	return refs, nil
}

// fallbackLister tries S3 first, then falls back to the local directory.
type fallbackLister struct {
	s3Lister  Lister
	dirLister Lister
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackLister creates a lister that prefers S3 and falls back to the
// local directory. If s3Lister is nil, only the directory is used.
func NewFallbackLister(s3Lister, dirLister Lister, s3Enabled bool, logger zerolog.Logger) Lister {
	return &fallbackLister{
		s3Lister:  s3Lister,
		dirLister: dirLister,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-image-lister").Logger(),
	}
}

func (l *fallbackLister) List(ctx context.Context) ([]string, error) {
	if l.s3Enabled && l.s3Lister != nil {
		refs, err := l.s3Lister.List(ctx)
		if err == nil {
			return refs, nil
		}

		l.logger.Warn().
			Err(err).
			Msg("failed to list from S3, falling back to local file system")
	} else {
		l.logger.Debug().
			Bool("s3_enabled", l.s3Enabled).
			Bool("has_s3_lister", l.s3Lister != nil).
			Msg("S3 disabled or not configured, using local file system")
	}

	return l.dirLister.List(ctx)
}
