package cache

import "context"

// Cache 定義快取操作介面
// Get 回傳值與是否命中；Put 寫入且不設過期；Evict 移除指定 key
// 用於封裝 in-memory 或 Redis 實作，方便測試時替換 FakeCache

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Evict(ctx context.Context, key string) error
	Close() error
}

type FakeCache struct {
	GetFn   func(ctx context.Context, key string) ([]byte, bool, error)
	PutFn   func(ctx context.Context, key string, value []byte) error
	EvictFn func(ctx context.Context, key string) error
	CloseFn func() error
}

// Get 執行 Fake 設定或 panic
func (f *FakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, key)
	}
	panic("unexpected Get")
}

// Put 執行 Fake 設定或 panic
func (f *FakeCache) Put(ctx context.Context, key string, value []byte) error {
	if f.PutFn != nil {
		return f.PutFn(ctx, key, value)
	}
	panic("unexpected Put")
}

// Evict 執行 Fake 設定或 panic
func (f *FakeCache) Evict(ctx context.Context, key string) error {
	if f.EvictFn != nil {
		return f.EvictFn(ctx, key)
	}
	panic("unexpected Evict")
}

// Close 執行 Fake 設定或 no-op
func (f *FakeCache) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}
