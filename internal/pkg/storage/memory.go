package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps objects in memory. Used by tests and local demos.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
	// RequireToken makes Put behave like the Drive driver and reject calls
	// without an access token.
	RequireToken bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Driver() string { return "memory" }

func (s *MemoryStore) Put(_ context.Context, obj Object) (*Stored, error) {
	if s.RequireToken && obj.AccessToken == "" {
		return nil, ErrUnauthorized
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key := fmt.Sprintf("%s/%d_%s%s", obj.Folder, s.seq, sanitizeName(obj.Name), mimeToExt(obj.ContentType))
	s.objects[key] = data
	url := "memory://" + key
	return &Stored{Driver: s.Driver(), Key: key, ViewURL: url, DownloadURL: url}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
