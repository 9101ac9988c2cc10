// Package lock serializes the read-modify-write cycle on a single listing.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrBusy is returned when another holder keeps the lock past all retries.
var ErrBusy = errors.New("Resource is locked by another request")

// Locker runs fn while holding the lock named key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// Options tune lock acquisition.
type Options struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultOptions suits short transactional sections.
func DefaultOptions() Options {
	return Options{
		Expiry:     10 * time.Second,
		Tries:      5,
		RetryDelay: 100 * time.Millisecond,
	}
}

// ListingKey is the lock name for one listing.
func ListingKey(listingID string) string {
	return "lock:listing:" + listingID
}

// RedisLocker is a redsync mutex over a single go-redis client, so it holds
// across every API instance sharing that Redis.
type RedisLocker struct {
	rs   *redsync.Redsync
	opts Options
}

func NewRedisLocker(rdb *redis.Client, opts Options) *RedisLocker {
	if opts.Tries <= 0 {
		opts = DefaultOptions()
	}
	return &RedisLocker{rs: redsync.New(goredis.NewPool(rdb)), opts: opts}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			log.Warn().Str("lock_key", key).Msg("lock busy")
			return ErrBusy
		}
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.Background()); !ok || err != nil {
			log.Error().Str("lock_key", key).Bool("unlock_ok", ok).Err(err).Msg("failed to release lock")
		}
	}()
	return fn(ctx)
}

func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	return errors.As(err, &taken)
}

// LocalLocker serializes per key inside one process. Used when Redis is not
// configured and in tests. The zero value is ready to use.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*keyLock)
	}
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	defer func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
