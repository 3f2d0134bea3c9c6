package holidays

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
)

// GCSSource reads *.json tables from a bucket, optionally under a name prefix.
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSource creates a source with a new client.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewGCSSource(ctx context.Context, bucket, prefix string) (*GCSSource, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return NewGCSSourceWithClient(client, bucket, prefix), nil
}

// NewGCSSourceWithClient creates a source sharing an existing client.
func NewGCSSourceWithClient(client *storage.Client, bucket, prefix string) *GCSSource {
	return &GCSSource{client: client, bucket: bucket, prefix: prefix}
}

// Close releases the underlying client.
func (s *GCSSource) Close() error {
	return s.client.Close()
}

// Tables implements Source.
func (s *GCSSource) Tables(ctx context.Context) ([]Table, error) {
	bucket := s.client.Bucket(s.bucket)

	var names []string
	it := bucket.Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			names = append(names, attrs.Name)
		}
	}

	tables := make([]Table, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, name := range names {
		g.Go(func() error {
			r, err := bucket.Object(name).NewReader(ctx)
			if err != nil {
				return fmt.Errorf("failed to read object %s: %w", name, err)
			}
			defer r.Close()

			t, err := decodeTable(name, r)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tables, nil
}
