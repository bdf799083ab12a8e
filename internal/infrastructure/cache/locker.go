package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Locker hands out short-lived exclusive locks keyed by name
type Locker interface {
	// TryLock takes the lock without waiting. The returned token releases it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases the lock if token still owns it
	Unlock(ctx context.Context, key, token string) error
}

func lockKey(key string) string {
	return "lock:" + key
}

func newToken() string {
	return uuid.NewString()
}
