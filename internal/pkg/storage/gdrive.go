package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore uploads into the vendor's own Google Drive using the access
// token obtained by the frontend. Files go under folderID when it is set.
type DriveStore struct {
	folderID string
	options  []option.ClientOption
}

func NewDriveStore(folderID string, opts ...option.ClientOption) *DriveStore {
	return &DriveStore{folderID: folderID, options: opts}
}

func (s *DriveStore) Driver() string { return "gdrive" }

func (s *DriveStore) service(ctx context.Context, accessToken string) (*drive.Service, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrUnauthorized
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.options...)
	return drive.NewService(ctx, opts...)
}

func (s *DriveStore) Put(ctx context.Context, obj Object) (*Stored, error) {
	svc, err := s.service(ctx, obj.AccessToken)
	if err != nil {
		return nil, err
	}

	file := &drive.File{
		Name:     fmt.Sprintf("%s_%s%s", strings.ReplaceAll(strings.Trim(obj.Folder, "/"), "/", "_"), sanitizeName(obj.Name), mimeToExt(obj.ContentType)),
		MimeType: obj.ContentType,
	}
	if s.folderID != "" {
		file.Parents = []string{s.folderID}
	}

	created, err := svc.Files.Create(file).
		Media(obj.Body, googleapi.ContentType(obj.ContentType)).
		Fields("id", "webViewLink", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapDriveError(err)
	}

	return &Stored{
		Driver:      s.Driver(),
		Key:         created.Id,
		ViewURL:     created.WebViewLink,
		DownloadURL: created.WebContentLink,
	}, nil
}

func (s *DriveStore) Delete(ctx context.Context, key, accessToken string) error {
	svc, err := s.service(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := svc.Files.Delete(key).Context(ctx).Do(); err != nil {
		return mapDriveError(err)
	}
	return nil
}

func mapDriveError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
	}
	return fmt.Errorf("storage/gdrive: %w", err)
}
