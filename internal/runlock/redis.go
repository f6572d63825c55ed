package runlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Dial connects to Redis at url (redis:// or rediss://) and pings it.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Redis is a distributed Locker built on redislock. The lock expires after
// TTL unless refreshed; a held lease refreshes itself every TTL/2 so a long
// run keeps it, and a crashed process loses it within one TTL. A failed
// refresh closes the lease's Lost channel.
type Redis struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
}

// NewRedis creates a Locker guarding key.
func NewRedis(client redislock.RedisClient, key string, ttl time.Duration) *Redis {
	return &Redis{locker: redislock.New(client), key: key, ttl: ttl}
}

// Acquire obtains the lock or returns ErrLocked when another holder has it.
func (r *Redis) Acquire(ctx context.Context) (Lease, error) {
	lock, err := r.locker.Obtain(ctx, r.key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("obtain run lock: %w", err)
	}

	lease := &redisLease{
		lock: lock,
		ttl:  r.ttl,
		done: make(chan struct{}),
		lost: make(chan struct{}),
	}
	lease.wg.Add(1)
	go lease.keepAlive()
	return lease, nil
}

type redisLease struct {
	lock *redislock.Lock
	ttl  time.Duration
	done chan struct{}
	lost chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (l *redisLease) keepAlive() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			err := l.lock.Refresh(ctx, l.ttl, nil)
			cancel()
			if err != nil {
				slog.Warn("run lock refresh failed", "key", l.lock.Key(), "error", err)
				close(l.lost)
				return
			}
		}
	}
}

func (l *redisLease) Lost() <-chan struct{} { return l.lost }

// Release stops refreshing and deletes the lock. A lock that already
// expired is not an error.
func (l *redisLease) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		close(l.done)
		l.wg.Wait()
		if rerr := l.lock.Release(ctx); rerr != nil && !errors.Is(rerr, redislock.ErrLockNotHeld) {
			err = fmt.Errorf("release run lock: %w", rerr)
		}
	})
	return err
}
