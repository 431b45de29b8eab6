// Package testutils provides shared testing utilities across the application.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// MemStore is an in-memory BlobStore for tests. It mirrors the key and
// listing semantics of the MinIO store, including ErrNotFound on missing
// objects and distinct first path segments from Sessions.
type MemStore struct {
	mu      sync.RWMutex
	objects map[storage.Role]map[string][]byte
	putErr  error
}

var _ storage.BlobStore = (*MemStore)(nil)

// NewMemStore creates an empty store with all three role buckets.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: map[storage.Role]map[string][]byte{
			storage.RoleRaw:     {},
			storage.RoleText:    {},
			storage.RoleSummary: {},
		},
	}
}

// FailPuts makes every subsequent Put return err. Pass nil to restore
// normal behavior.
func (m *MemStore) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// Put stores a copy of data under the key.
func (m *MemStore) Put(_ context.Context, role storage.Role, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return m.putErr
	}
	bucket, ok := m.objects[role]
	if !ok {
		return storage.ErrUnknownRole
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	bucket[key] = cp
	return nil
}

// Get returns a copy of the stored object.
func (m *MemStore) Get(_ context.Context, role storage.Role, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.objects[role]
	if !ok {
		return nil, storage.ErrUnknownRole
	}
	data, ok := bucket[key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Exists reports whether the key holds an object.
func (m *MemStore) Exists(_ context.Context, role storage.Role, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.objects[role]
	if !ok {
		return false, storage.ErrUnknownRole
	}
	_, exists := bucket[key]
	return exists, nil
}

// List returns all keys under the prefix, lexically ordered.
func (m *MemStore) List(_ context.Context, role storage.Role, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.objects[role]
	if !ok {
		return nil, storage.ErrUnknownRole
	}

	var keys []string
	for key := range bucket {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Sessions returns the distinct first path segments in the role bucket.
func (m *MemStore) Sessions(_ context.Context, role storage.Role) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.objects[role]
	if !ok {
		return nil, storage.ErrUnknownRole
	}

	seen := map[string]bool{}
	for key := range bucket {
		if idx := strings.Index(key, "/"); idx > 0 {
			seen[key[:idx]] = true
		}
	}

	sessions := make([]string, 0, len(seen))
	for id := range seen {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}

// Healthy always succeeds.
func (m *MemStore) Healthy(context.Context) error {
	return nil
}

// Len returns the object count in the role bucket.
func (m *MemStore) Len(role storage.Role) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects[role])
}
