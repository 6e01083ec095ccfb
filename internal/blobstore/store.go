package blobstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/arthub/internal/common"
)

// Store is the narrow blob interface the workflows consume.
type Store interface {
	// Put stores data under path, replacing any previous content.
	Put(ctx context.Context, path string, data []byte) error

	// DownloadURL returns a URL the stored blob can be fetched from.
	DownloadURL(ctx context.Context, path string) (string, error)

	// Delete removes the blob under path. Deleting a missing blob is not
	// an error.
	Delete(ctx context.Context, path string) error
}

// AssetPath builds the canonical "{ownerID}/{assetID}" blob path.
func AssetPath(ownerID, assetID string) string {
	return fmt.Sprintf("%s/%s", ownerID, assetID)
}

// MemoryStore is an in-process Store used by tests and offline tooling.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[path] = buf
	return nil
}

func (s *MemoryStore) DownloadURL(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[path]; !ok {
		return "", common.ErrorNotFound
	}
	return "memory://" + path, nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, path)
	return nil
}

// Get returns the stored bytes, for test assertions.
func (s *MemoryStore) Get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[path]
	return b, ok
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
