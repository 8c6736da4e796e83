package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes files below baseDir and serves them under publicURL.
type LocalStore struct {
	baseDir   string
	publicURL string
}

func NewLocalStore(baseDir, publicURL string) *LocalStore {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicURL == "" {
		publicURL = "/static/uploads"
	}
	return &LocalStore{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *LocalStore) Driver() string { return "local" }

func (s *LocalStore) BaseDir() string { return s.baseDir }

func (s *LocalStore) Put(ctx context.Context, obj Object) (*Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	relDir := filepath.FromSlash(strings.Trim(obj.Folder, "/"))
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s", uuid.NewString(), sanitizeName(obj.Name), mimeToExt(obj.ContentType))
	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, obj.Body); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	key := filepath.ToSlash(filepath.Join(relDir, filename))
	url := s.publicURL + "/" + key
	return &Stored{Driver: s.Driver(), Key: key, ViewURL: url, DownloadURL: url}, nil
}

func (s *LocalStore) Delete(_ context.Context, key, _ string) error {
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
