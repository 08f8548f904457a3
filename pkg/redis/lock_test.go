package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewFromAddr(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestLocker_Disabled(t *testing.T) {
	client, _ := New(context.Background(), config.RedisConfig{Enabled: false})
	locker := NewLocker(client, "test", time.Minute)

	release, err := locker.Acquire(context.Background(), "kr")
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))

	// disabled locks never contend
	_, err = locker.Acquire(context.Background(), "kr")
	assert.NoError(t, err)
}

func TestLocker_Exclusive(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client, "stocksignal", time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "kr")
	require.NoError(t, err)
	assert.True(t, mr.Exists("stocksignal:lock:kr"))

	_, err = locker.Acquire(ctx, "kr")
	assert.True(t, errors.Is(err, ErrLockHeld))

	// other markets are independent
	releaseUS, err := locker.Acquire(ctx, "us")
	require.NoError(t, err)
	require.NoError(t, releaseUS(ctx))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("stocksignal:lock:kr"))

	_, err = locker.Acquire(ctx, "kr")
	assert.NoError(t, err)
}

func TestLocker_ReleaseDoesNotStealForeignLock(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client, "stocksignal", time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "kr")
	require.NoError(t, err)

	// lock expires and is taken over by another instance
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("stocksignal:lock:kr", "other-owner"))

	require.NoError(t, release(ctx))
	got, err := mr.Get("stocksignal:lock:kr")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}
