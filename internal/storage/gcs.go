package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS uploads finalized tracks to a Google Cloud Storage bucket instead
// of a local directory.
type GCS struct {
	client       *gcs.Client
	bucket       string
	objectPrefix string
}

// NewGCS creates a GCS backend. When credentialsFile is empty,
// application default credentials are used.
func NewGCS(ctx context.Context, bucket, objectPrefix, credentialsFile string) (*GCS, error) {
	var client *gcs.Client
	var err error

	if credentialsFile != "" {
		client, err = gcs.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = gcs.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCS{
		client:       client,
		bucket:       bucket,
		objectPrefix: objectPrefix,
	}, nil
}

func (g *GCS) objectName(dir, name string) string {
	return path.Join(g.objectPrefix, dir, name)
}

func (g *GCS) Exists(ctx context.Context, dir, name string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(g.objectName(dir, name)).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrFilesystem, err)
}

func (g *GCS) Place(ctx context.Context, tempPath, dir, name string) error {
	in, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	defer in.Close()

	w := g.client.Bucket(g.bucket).Object(g.objectName(dir, name)).NewWriter(ctx)
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		return fmt.Errorf("%w: uploading %s: %v", ErrFilesystem, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: uploading %s: %v", ErrFilesystem, name, err)
	}

	if err := os.Remove(tempPath); err != nil {
		return fmt.Errorf("%w: removing %s: %v", ErrFilesystem, tempPath, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
