package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
)

// BucketService manages the service's static-asset bucket: existence and
// the CORS allow-list.
type BucketService struct {
	client    *storage.Client
	projectID string
	region    string
}

func NewBucketService(ctx context.Context, projectID, region string) (*BucketService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &BucketService{
		client:    client,
		projectID: projectID,
		region:    region,
	}, nil
}

// EnsureBucket creates the bucket in the configured project and region when
// it does not exist yet.
func (s *BucketService) EnsureBucket(ctx context.Context, name string) error {
	bucket := s.client.Bucket(name)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		slog.DebugContext(ctx, "bucket already exists", "bucket", name)
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("checking bucket %s: %w", name, err)
	}

	slog.InfoContext(ctx, "creating bucket", "bucket", name, "region", s.region)

	if err := bucket.Create(ctx, s.projectID, &storage.BucketAttrs{
		Location: s.region,
	}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", name, err)
	}

	return nil
}

// ApplyCORS sets the bucket's CORS policy from the configured allow-list.
func (s *BucketService) ApplyCORS(ctx context.Context, name string, origins []string) error {
	if len(origins) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "applying bucket CORS policy", "bucket", name, "origins", origins)

	_, err := s.client.Bucket(name).Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			Origins:         origins,
			Methods:         []string{"GET", "HEAD", "OPTIONS"},
			ResponseHeaders: []string{"Content-Type"},
			MaxAge:          time.Hour,
		}},
	})
	if err != nil {
		return fmt.Errorf("updating CORS policy for bucket %s: %w", name, err)
	}

	return nil
}

func (s *BucketService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
