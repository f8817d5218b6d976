package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLocal_ExclusiveUntilRelease(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "credit-sweep", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "credit-sweep", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	_, err = l.Acquire(ctx, "expiry-sweep", time.Minute)
	assert.NoError(t, err)

	release()
	release()

	_, err = l.Acquire(ctx, "credit-sweep", time.Minute)
	assert.NoError(t, err)
}

func TestLocal_ExpiredHoldIsReclaimed(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	release, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the stale release must not free the new holder
	stale()
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	release()
}

func TestNewRedisFromURL_Invalid(t *testing.T) {
	_, err := NewRedisFromURL("://bad", nil)
	assert.Error(t, err)
}

// unreachable points at a port nothing listens on, so every command fails
// fast with a dial error.
func unreachable(t *testing.T) (*Redis, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, zap.New(core)), logs
}

func TestRedis_ReleaseErrorIsLogged(t *testing.T) {
	l, logs := unreachable(t)

	l.release("salon-reserve:lock:credit-sweep", "token")

	entries := logs.FilterMessage("lock release failed, key expires on its ttl").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "salon-reserve:lock:credit-sweep", entries[0].ContextMap()["key"])
}

func TestRedis_RenewalErrorIsLoggedUntilStopped(t *testing.T) {
	l, logs := unreachable(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(ctx, "salon-reserve:lock:k", "token", 30*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("lock renewal failed").Len() > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("keepAlive did not stop")
	}
}

func TestRedis_AcquireFailsWithoutServer(t *testing.T) {
	l, _ := unreachable(t)

	_, err := l.Acquire(context.Background(), "k", time.Minute)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAcquired)
}
