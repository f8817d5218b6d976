// Package lock provides the mutual exclusion used around the ledger sweeps
// when several replicas run the same cron specs.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotAcquired is returned when another holder owns the key.
var ErrNotAcquired = errors.New("lock: not acquired")

type Locker interface {
	// Acquire takes key for at most ttl. The returned release is safe to
	// call once the work is done, even after the ttl lapsed.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// ======================================================
// Redis
// ======================================================

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry out only while the key holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

const releaseTimeout = 5 * time.Second

type Redis struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedis(client *redis.Client, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, prefix: "salon-reserve:lock:", log: log}
}

// NewRedisFromURL parses a redis:// URL.
func NewRedisFromURL(url string, log *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(opts), log), nil
}

// Acquire holds key until release. The ttl is renewed every third of its
// length, so it only lapses when the holder dies.
func (l *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	full := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	hold, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(hold, full, token, ttl)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done
			l.release(full, token)
		})
	}, nil
}

func (l *Redis) keepAlive(ctx context.Context, key, token string, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		held, err := renewScript.Run(ctx, l.client, []string{key}, token, ttl.Milliseconds()).Int()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.log.Warn("lock renewal failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if held == 0 {
			l.log.Error("lock lost before release", zap.String("key", key))
			return
		}
	}
}

func (l *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn("lock release failed, key expires on its ttl",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (l *Redis) Close() error {
	return l.client.Close()
}

// ======================================================
// In-process
// ======================================================

// Local guards keys within one process. It is used when no Redis is
// configured, which is only safe for single-replica deployments.
type Local struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocal() *Local {
	return &Local{held: map[string]time.Time{}}
}

func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, ErrNotAcquired
	}
	until := now.Add(ttl)
	l.held[key] = until

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key].Equal(until) {
				delete(l.held, key)
			}
		})
	}, nil
}
