// Package storage puts vendor documents into local disk, S3-compatible object
// storage or Google Drive behind one interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"evea/internal/config"
)

const MaxFileSize = 10 * 1024 * 1024 // 10 MB

var AllowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the 10 MB limit")
	ErrInvalidMimeType = errors.New("only PDF, JPEG, PNG and WEBP files are accepted")
	// ErrUnauthorized means the backing store rejected the caller's credentials
	// (for Drive: a missing or expired Google access token).
	ErrUnauthorized = errors.New("storage authorization failed")
)

type Object struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
	// Folder groups objects, e.g. "vendors/42".
	Folder string
	// AccessToken is the end user's OAuth token; only the Drive driver uses it.
	AccessToken string
}

type Stored struct {
	Driver      string
	Key         string
	ViewURL     string
	DownloadURL string
}

type Store interface {
	Driver() string
	Put(ctx context.Context, obj Object) (*Stored, error)
	Delete(ctx context.Context, key, accessToken string) error
}

// New builds the driver named by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicURL), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	case "gdrive":
		return NewDriveStore(cfg.DriveFolderID), nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}

// Inspect validates an uploaded file and sniffs its content type from the
// first 512 bytes. The returned reader replays the sniffed bytes.
func Inspect(fh *multipart.FileHeader) (Object, io.Closer, error) {
	if fh.Size == 0 {
		return Object{}, nil, ErrEmptyFile
	}
	if fh.Size > MaxFileSize {
		return Object{}, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return Object{}, nil, fmt.Errorf("failed to open file: %w", err)
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return Object{}, nil, fmt.Errorf("failed to read file: %w", err)
	}
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		_ = f.Close()
		return Object{}, nil, ErrInvalidMimeType
	}

	return Object{
		Name:        fh.Filename,
		ContentType: mimeType,
		Size:        fh.Size,
		Body:        io.MultiReader(strings.NewReader(string(buf[:n])), f),
	}, f, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
