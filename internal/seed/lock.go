package seed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld means another process is seeding right now.
var ErrLockHeld = errors.New("seed lock held elsewhere")

// Locker serializes the count-then-insert seed step. The returned func
// releases the lock.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// LocalLocker guards seeding inside one process. The zero value is ready
// to use. Waiting callers give up when their context ends.
type LocalLocker struct {
	once sync.Once
	sem  chan struct{}
}

func (l *LocalLocker) Lock(ctx context.Context) (func(), error) {
	l.once.Do(func() { l.sem = make(chan struct{}, 1) })
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const (
	redisLockKey = "deskshop:seed:lock"
	redisLockTTL = 30 * time.Second
)

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker guards seeding across replicas with SET NX. It does not wait:
// if someone else holds the lock, Lock returns ErrLockHeld.
type RedisLocker struct {
	client redis.UniversalClient
	local  LocalLocker
}

// NewRedisLocker wraps a connected client.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, redisLockKey, token, redisLockTTL).Result()
	if err != nil {
		unlockLocal()
		return nil, err
	}
	if !ok {
		unlockLocal()
		return nil, ErrLockHeld
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{redisLockKey}, token).Err()
		unlockLocal()
	}, nil
}

// RedisConfig mirrors the REDIS_URL setting.
type RedisConfig struct {
	URL         string
	DialTimeout time.Duration
}

// NewRedisClient parses the URL and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
