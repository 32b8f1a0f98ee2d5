package storage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

var _ catalogapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory. Used when no
// storage provider is configured and in tests.
type MemoryObjectStorage struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

// Object is a stored binary with its content type
type Object struct {
	Data        []byte
	ContentType string
}

// NewMemoryObjectStorage creates an empty store whose download URLs are
// rooted at baseURL
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "/media"
	}
	return &MemoryObjectStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

// Upload stores a copy of data
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return ErrStorageKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// GenerateDownloadURL returns baseURL/key with an expires query parameter
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrStorageKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	u := s.baseURL + "/" + (&url.URL{Path: storageKey}).EscapedPath() + "?expires=" + strconv.FormatInt(expiresAt.Unix(), 10)
	return u, expiresAt, nil
}

// DeleteObject removes storageKey
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return ErrStorageKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether storageKey is present
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, ErrStorageKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Get returns the stored object, serving the media route in development
func (s *MemoryObjectStorage) Get(storageKey string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj, ok
}
