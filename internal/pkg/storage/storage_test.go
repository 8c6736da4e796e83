package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/config"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxFileSize))
	return req.MultipartForm.File["file"][0]
}

func TestInspect_AcceptsPDF(t *testing.T) {
	obj, closer, err := Inspect(fileHeader(t, "pan card.pdf", pdfBytes))
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, int64(len(pdfBytes)), obj.Size)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, buf.Bytes(), "sniffed bytes must be replayed")
}

func TestInspect_Rejections(t *testing.T) {
	_, _, err := Inspect(fileHeader(t, "notes.txt", []byte("just some plain text")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, _, err = Inspect(&multipart.FileHeader{Filename: "empty.pdf", Size: 0})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, _, err = Inspect(&multipart.FileHeader{Filename: "big.pdf", Size: MaxFileSize + 1})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalStore_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "/static/uploads/")

	stored, err := s.Put(context.Background(), Object{
		Name:        "../../etc/passwd.pdf",
		ContentType: "application/pdf",
		Body:        bytes.NewReader(pdfBytes),
		Folder:      "vendors/7",
	})
	require.NoError(t, err)

	assert.Equal(t, "local", stored.Driver)
	assert.True(t, strings.HasPrefix(stored.Key, "vendors/7/"))
	assert.True(t, strings.HasSuffix(stored.Key, "_passwd.pdf"))
	assert.Equal(t, "/static/uploads/"+stored.Key, stored.ViewURL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)

	require.NoError(t, s.Delete(context.Background(), stored.Key, ""))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(context.Background(), stored.Key, ""), "deleting twice is not an error")
}

func TestDriveStore_RequiresToken(t *testing.T) {
	s := NewDriveStore("folder")
	_, err := s.Put(context.Background(), Object{Name: "a.pdf", Body: bytes.NewReader(pdfBytes)})
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, s.Delete(context.Background(), "file-id", " "), ErrUnauthorized)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	stored, err := s.Put(context.Background(), Object{Name: "x.png", ContentType: "image/png", Body: bytes.NewReader([]byte("png")), Folder: "vendors/1"})
	require.NoError(t, err)
	got, ok := s.Get(stored.Key)
	require.True(t, ok)
	assert.Equal(t, []byte("png"), got)

	s.RequireToken = true
	_, err = s.Put(context.Background(), Object{Name: "y.png", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNew_SelectsDriver(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Driver: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", s.Driver())

	s, err = New(context.Background(), config.StorageConfig{Driver: "gdrive"})
	require.NoError(t, err)
	assert.Equal(t, "gdrive", s.Driver())

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
