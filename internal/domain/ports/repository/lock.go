package repository

import (
	"context"
	"time"
)

// Locker guards a key against concurrent holders. TryLock fails with
// domain.ErrOperationInProgress when the key is already held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
