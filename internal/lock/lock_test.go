package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLock(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, 5*time.Second), mr
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "owner:42", OwnerKey(42))
	assert.Equal(t, "order:abc", OrderKey("abc"))
	assert.Equal(t, "payment:def", PaymentKey("def"))
}

func testMutualExclusion(t *testing.T, l Locker) {
	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "owner:1")
			require.NoError(t, err)

			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)

			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
}

func TestLocal_MutualExclusion(t *testing.T) {
	testMutualExclusion(t, NewLocal())
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "order:1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestLocal_IndependentKeys(t *testing.T) {
	l := NewLocal()

	unlockA, err := l.Lock(context.Background(), "owner:1")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	unlockB, err := l.Lock(ctx, "owner:2")
	require.NoError(t, err)
	unlockB()
}

func TestLocal_ReleasesSlots(t *testing.T) {
	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "payment:1")
	require.NoError(t, err)
	unlock()
	unlock()

	assert.Empty(t, l.slots)
}

func TestRedis_MutualExclusion(t *testing.T) {
	l, _ := setupRedisLock(t)
	testMutualExclusion(t, l)
}

func TestRedis_LockAndRelease(t *testing.T) {
	l, mr := setupRedisLock(t)

	unlock, err := l.Lock(context.Background(), "payment:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:payment:1"))

	unlock()
	assert.False(t, mr.Exists("lock:payment:1"))
}

func TestRedis_ContextCancelled(t *testing.T) {
	l, _ := setupRedisLock(t)

	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "order:1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	l, mr := setupRedisLock(t)

	unlock, err := l.Lock(context.Background(), "order:2")
	require.NoError(t, err)

	// Lock expired and another instance took it.
	require.NoError(t, mr.Set("lock:order:2", "someone-else"))

	unlock()

	v, err := mr.Get("lock:order:2")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestRedis_ServerDown(t *testing.T) {
	l, mr := setupRedisLock(t)
	mr.Close()

	_, err := l.Lock(context.Background(), "owner:1")
	assert.Error(t, err)
}
