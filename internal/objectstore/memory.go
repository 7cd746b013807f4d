package objectstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend is a process-local in-memory store, mirroring the
// "InMemory" variant of original_source/src/object_store/wrapped.rs -
// object_store's in-memory implementation, used in tests and for
// ephemeral deployments.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

func (m *MemoryBackend) String() string {
	return "MemoryBackend"
}

func (m *MemoryBackend) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return Error.Wrap(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemoryBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryBackend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	end := offset + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	out := make([]byte, end-offset)
	copy(out, data[offset:end])
	return out, nil
}

func (m *MemoryBackend) Head(ctx context.Context, key string) (ObjectMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return ObjectMeta{}, ErrNotFound
	}
	return ObjectMeta{Key: key, Size: int64(len(data))}, nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryBackend) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ObjectMeta
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectMeta{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryBackend) Copy(ctx context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[from]
	if !ok {
		return ErrNotFound
	}
	m.objects[to] = data
	return nil
}

func (m *MemoryBackend) CopyIfNotExists(ctx context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[to]; exists {
		return ErrAlreadyExists
	}
	data, ok := m.objects[from]
	if !ok {
		return ErrNotFound
	}
	m.objects[to] = data
	return nil
}

func (m *MemoryBackend) RenameIfNotExists(ctx context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[to]; exists {
		return ErrAlreadyExists
	}
	data, ok := m.objects[from]
	if !ok {
		return ErrNotFound
	}
	m.objects[to] = data
	delete(m.objects, from)
	return nil
}
