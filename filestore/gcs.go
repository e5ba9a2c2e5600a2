package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStore reads the bulk-copied document tree from a Cloud Storage bucket.
// The legacy share's directory structure is preserved as object name prefixes,
// so directory listing is prefix+delimiter iteration.
type GCSStore struct {
	client *storage.Client
	bucket string
	root   string
}

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewGCSStore opens the firm's bucket and verifies it is reachable. An
// unreachable or unconfigured bucket is a configuration error and must abort
// the scan before enumeration begins.
func NewGCSStore(ctx context.Context, bucket string, root string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("remote bucket is not configured")
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucket, err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		root:   strings.Trim(root, "/"),
	}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectPrefix(path string) string {
	p := Join(s.root, strings.Trim(path, "/"))
	if p == "" {
		return ""
	}
	return p + "/"
}

func (s *GCSStore) List(ctx context.Context, path string) ([]Entry, error) {
	prefix := s.objectPrefix(path)
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})

	var entries []Entry
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Prefix != "" {
			// Synthetic directory entry.
			name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, prefix), "/")
			if name == "" {
				continue
			}
			entries = append(entries, Entry{Name: name, IsDir: true, Size: -1})
			continue
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		if name == "" {
			// Placeholder object for the directory itself.
			continue
		}
		entries = append(entries, Entry{Name: name, IsDir: false, Size: attrs.Size})
	}
	return entries, nil
}

func (s *GCSStore) GetSize(ctx context.Context, path string) (int64, error) {
	object := Join(s.root, strings.Trim(path, "/"))
	attrs, err := s.client.Bucket(s.bucket).Object(object).Attrs(ctx)
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}
