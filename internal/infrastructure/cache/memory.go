package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*memoryItem
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// SetNX stores the pair only when key is absent or expired; it reports whether it did
func (ms *MemoryStore) SetNX(key string, value string, expiration time.Duration) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if item, exists := ms.items[key]; exists && time.Now().Before(item.expireTime) {
		return false
	}
	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: time.Now().Add(expiration),
	}
	return true
}

// DeleteIfValue removes key only while it still holds value
func (ms *MemoryStore) DeleteIfValue(key, value string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists || item.value != value {
		return false
	}
	delete(ms.items, key)
	return true
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}

// MemoryLocker is a single-process Locker over MemoryStore
type MemoryLocker struct {
	store *MemoryStore
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker(store *MemoryStore) *MemoryLocker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &MemoryLocker{store: store}
}

func (l *MemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	token := newToken()
	if !l.store.SetNX(lockKey(key), token, ttl) {
		return "", false, nil
	}
	return token, true, nil
}

func (l *MemoryLocker) Unlock(ctx context.Context, key, token string) error {
	l.store.DeleteIfValue(lockKey(key), token)
	return nil
}
