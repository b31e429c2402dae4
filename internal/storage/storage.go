// Package storage keeps wizard state in key-value slots, the server-side
// counterpart of a browser's local storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("slot not found")

// Store is a key-value store of opaque blobs. A zero ttl keeps the value
// until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Locker guards a key against concurrent operations. Acquire hands back a
// token; Release only removes the lock while that token still holds it, so a
// holder whose ttl ran out can't free someone else's lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

func SessionKey(wizardID string) string {
	return fmt.Sprintf("wizard:%s:session", wizardID)
}

func PendingSearchKey(wizardID string) string {
	return fmt.Sprintf("wizard:%s:pending_search", wizardID)
}

func LockKey(wizardID string) string {
	return fmt.Sprintf("lock:wizard:%s", wizardID)
}
