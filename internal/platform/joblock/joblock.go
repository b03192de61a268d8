// Package joblock provides single-flight locking for background jobs. The
// process locker serializes sweeps within one server; the Redis locker
// extends that guarantee across replicas.
package joblock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrAlreadyLocked is returned when another holder owns the lock.
var ErrAlreadyLocked = errors.New("job lock is already held")

// Locker acquires and releases a named job lock. Acquire does not block: it
// either takes the lock or returns ErrAlreadyLocked.
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(), err error)
}

// ProcessLocker serializes jobs within a single process.
type ProcessLocker struct {
	mu    sync.Mutex
	held  map[string]bool
}

func NewProcessLocker() *ProcessLocker {
	return &ProcessLocker{held: make(map[string]bool)}
}

func (l *ProcessLocker) Acquire(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, ErrAlreadyLocked
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
	}, nil
}

// RedisLocker takes a lock with SET NX and a TTL so a crashed holder cannot
// wedge the job forever. Release only deletes the key when the stored token
// still matches, so an expired lock taken over by another replica is not
// released by the original holder.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultLockTTL bounds how long a crashed sweep can block the next one.
const DefaultLockTTL = 5 * time.Minute

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

func (l *RedisLocker) Acquire(ctx context.Context, name string) (func(), error) {
	key := "joblock:" + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrAlreadyLocked
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.client.Eval(releaseCtx, releaseScript, []string{key}, token)
	}, nil
}
