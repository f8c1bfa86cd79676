package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AccountLocker serialises mutations of one account. The returned unlock
// func must be called exactly once.
type AccountLocker interface {
	Lock(ctx context.Context, accountID string) (unlock func(), err error)
}

// LocalLocker is an in-process keyed mutex, enough for a single replica.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch      chan struct{}
	waiters int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyedLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, accountID string) (func(), error) {
	l.mu.Lock()
	k, ok := l.locks[accountID]
	if !ok {
		k = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[accountID] = k
	}
	k.waiters++
	l.mu.Unlock()

	select {
	case k.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(accountID, k)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.ch
			l.release(accountID, k)
		})
	}, nil
}

func (l *LocalLocker) release(accountID string, k *keyedLock) {
	l.mu.Lock()
	k.waiters--
	if k.waiters == 0 {
		delete(l.locks, accountID)
	}
	l.mu.Unlock()
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrLockTimeout = errors.New("timed out waiting for account lock")

// RedisLocker shares per-account locks between replicas using SET NX PX.
type RedisLocker struct {
	Client  *redis.Client
	TTL     time.Duration
	Retry   time.Duration
	Timeout time.Duration
	Prefix  string
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		Client:  client,
		TTL:     10 * time.Second,
		Retry:   20 * time.Millisecond,
		Timeout: 5 * time.Second,
		Prefix:  "lock:account:",
	}
}

func (l *RedisLocker) Lock(ctx context.Context, accountID string) (func(), error) {
	key := l.Prefix + accountID
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.Retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// fresh context: the caller's may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, l.Client, []string{key}, token).Err()
		})
	}, nil
}
