package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// stubClient implements redisClient for testing.
type stubClient struct {
	pingErr  error
	getCmd   *redis.StringCmd
	setErr   error
	delErr   error
	closeErr error

	gotKey string
	gotVal any
	gotTTL time.Duration
}

func (s *stubClient) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", s.pingErr)
}

func (s *stubClient) Get(ctx context.Context, key string) *redis.StringCmd {
	s.gotKey = key
	return s.getCmd
}

func (s *stubClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	s.gotKey = key
	s.gotVal = value
	s.gotTTL = ttl
	return redis.NewStatusResult("OK", s.setErr)
}

func (s *stubClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.gotKey = keys[0]
	return redis.NewIntResult(1, s.delErr)
}

func (s *stubClient) Close() error { return s.closeErr }

func restoreRedisNewClient() {
	redisNewClient = func(o *redis.Options) redisClient { return redis.NewClient(o) }
}

func TestNewRedisCache(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		t.Cleanup(restoreRedisNewClient)
		var opts *redis.Options
		stub := &stubClient{}
		redisNewClient = func(o *redis.Options) redisClient {
			opts = o
			return stub
		}

		c, err := NewRedisCache("127.0.0.1:6379", "secret", 1)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.Equal(t, "127.0.0.1:6379", opts.Addr)
		require.Equal(t, "secret", opts.Password)
		require.Equal(t, 1, opts.DB)
	})

	t.Run("ping fail", func(t *testing.T) {
		t.Cleanup(restoreRedisNewClient)
		redisNewClient = func(o *redis.Options) redisClient {
			return &stubClient{pingErr: errors.New("fail")}
		}

		c, err := NewRedisCache("addr", "", 0)
		require.Error(t, err)
		require.Nil(t, c)
	})
}

func TestRedisCacheOps(t *testing.T) {
	ctx := context.Background()

	t.Run("get hit", func(t *testing.T) {
		stub := &stubClient{getCmd: redis.NewStringResult("v", nil)}
		c := &redisCache{client: stub}
		v, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("v"), v)
		require.Equal(t, "k", stub.gotKey)
	})

	t.Run("get miss", func(t *testing.T) {
		stub := &stubClient{getCmd: redis.NewStringResult("", redis.Nil)}
		c := &redisCache{client: stub}
		v, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, v)
	})

	t.Run("get err", func(t *testing.T) {
		stub := &stubClient{getCmd: redis.NewStringResult("", errors.New("boom"))}
		c := &redisCache{client: stub}
		_, _, err := c.Get(ctx, "k")
		require.Error(t, err)
	})

	t.Run("put has no expiry", func(t *testing.T) {
		stub := &stubClient{}
		c := &redisCache{client: stub}
		require.NoError(t, c.Put(ctx, "k", []byte("v")))
		require.Equal(t, time.Duration(0), stub.gotTTL)
		require.Equal(t, []byte("v"), stub.gotVal)
	})

	t.Run("evict", func(t *testing.T) {
		stub := &stubClient{}
		c := &redisCache{client: stub}
		require.NoError(t, c.Evict(ctx, "k"))
		require.Equal(t, "k", stub.gotKey)

		stub.delErr = errors.New("del")
		require.Error(t, c.Evict(ctx, "k"))
	})

	t.Run("close", func(t *testing.T) {
		c := &redisCache{client: &stubClient{closeErr: errors.New("close")}}
		require.EqualError(t, c.Close(), "close")
	})
}
