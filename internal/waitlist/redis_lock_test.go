package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*RedisSubmitLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSubmitLock(client, 5*time.Second, nil), mr
}

func TestRedisSubmitLockExclusive(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, " Jane@Acme.com ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("waitlist:submit:jane@acme.com"))

	_, ok, err = lock.Acquire(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, mr.Exists("waitlist:submit:jane@acme.com"))

	release2, ok, err := lock.Acquire(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestRedisSubmitLockReleaseKeepsForeignOwner(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, "jane@acme.com")
	require.NoError(t, err)
	require.True(t, ok)

	// Our hold expired and another instance took the key.
	mr.FastForward(10 * time.Second)
	require.NoError(t, mr.Set("waitlist:submit:jane@acme.com", "someone-else"))

	release()
	got, err := mr.Get("waitlist:submit:jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisSubmitLockExpires(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	_, ok, err := lock.Acquire(ctx, "jane@acme.com")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(6 * time.Second)
	_, ok, err = lock.Acquire(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSubmitLockOutage(t *testing.T) {
	lock, mr := newTestLock(t)
	mr.Close()

	_, ok, err := lock.Acquire(context.Background(), "jane@acme.com")
	require.Error(t, err)
	assert.False(t, ok)
}
