package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another instance owns the run lock
var ErrLockHeld = errors.New("lock held by another instance")

// releaseScript deletes the key only when the caller still owns it
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Locker provides mutual exclusion between pipeline instances
// ⭐ SSOT: 동시 실행 방지는 여기서만
type Locker struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewLocker creates a Locker. ttl bounds how long a crashed holder blocks others.
func NewLocker(client *Client, prefix string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Locker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire takes the named lock. The returned release func is safe to call once.
// When Redis is disabled the lock is always granted.
func (l *Locker) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	if l.client == nil || !l.client.Enabled() {
		return func(context.Context) error { return nil }, nil
	}

	key := fmt.Sprintf("%s:lock:%s", l.prefix, name)
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrLockHeld)
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client.rdb, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", name, err)
		}
		return nil
	}
	return release, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
