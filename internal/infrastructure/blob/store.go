package blob

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store persists uploaded files (résumés) under bucket/path keys on local
// disk and serves them back through a public URL rooted at baseURL. The
// interface mirrors the hosted storage operations the views depend on:
// upload, download, delete, public URL.
type Store struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

// NewStore creates the blob store, ensuring the root directory exists
func NewStore(root, baseURL string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Save writes the blob, replacing any previous object at the same key
func (s *Store) Save(bucket, path string, r io.Reader) error {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create blob dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return fmt.Errorf("failed to write blob: %w", err)
	}

	s.logger.Debug("blob saved", slog.String("bucket", bucket), slog.String("path", path))
	return nil
}

// Open returns a reader for the stored blob
func (s *Store) Open(bucket, path string) (io.ReadCloser, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found")
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob; deleting a missing blob is not an error
func (s *Store) Delete(bucket, path string) error {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// PublicURL returns the URL the blob is served from
func (s *Store) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.baseURL, url.PathEscape(bucket), url.PathEscape(path))
}

// resolve maps a bucket/path key onto the local filesystem, refusing keys
// that would escape the store root.
func (s *Store) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" {
		return "", fmt.Errorf("bucket and path are required")
	}
	full := filepath.Join(s.root, bucket, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob path")
	}
	return full, nil
}
