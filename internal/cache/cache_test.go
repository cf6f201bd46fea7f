package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFakeCache(t *testing.T) {
	c := &FakeCache{}
	require.Panics(t, func() { c.Get(context.Background(), "k") })
	require.Panics(t, func() { c.Put(context.Background(), "k", []byte("v")) })
	require.Panics(t, func() { c.Evict(context.Background(), "k") })
	require.NoError(t, c.Close())

	gCalled := false
	pCalled := false
	eCalled := false
	clCalled := false
	c.GetFn = func(ctx context.Context, key string) ([]byte, bool, error) {
		gCalled = true
		return []byte("v"), true, nil
	}
	c.PutFn = func(ctx context.Context, key string, value []byte) error {
		pCalled = true
		return nil
	}
	c.EvictFn = func(ctx context.Context, key string) error {
		eCalled = true
		return nil
	}
	c.CloseFn = func() error { clCalled = true; return errors.New("close") }

	v, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
	require.NoError(t, c.Put(context.Background(), "k", []byte("v")))
	require.NoError(t, c.Evict(context.Background(), "k"))
	require.EqualError(t, c.Close(), "close")
	require.True(t, gCalled)
	require.True(t, pCalled)
	require.True(t, eCalled)
	require.True(t, clCalled)
}
