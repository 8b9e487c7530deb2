package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps blobs in process. Used when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://blob"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, filename string, body io.Reader, _ int64, contentType string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := avatarKey(filename)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, fmt.Errorf("blob: read body: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()

	return newObject(m.baseURL+"/"+key, key, contentType, int64(buf.Len())), nil
}

// Get returns a stored blob's bytes.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
