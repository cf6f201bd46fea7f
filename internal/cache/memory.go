package cache

import (
	"context"
	"sync"
)

// memoryCache 進程內快取，生命週期與進程相同
// 無 TTL、無容量上限，重啟即清空
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache 建立空的 in-memory 快取
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	// 複製一份避免呼叫端修改內部狀態
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *memoryCache) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Evict(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Close() error {
	m.mu.Lock()
	m.entries = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}
