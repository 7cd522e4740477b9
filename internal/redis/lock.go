package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func checkoutLockKey(tripID string) string {
	return fmt.Sprintf("lock:checkout:%s", tripID)
}

// AcquireCheckoutLock attempts to acquire the checkout lock for the given trip.
// On success it returns the owner token that must be passed to ReleaseCheckoutLock.
// acquired is false if the lock is already held.
func (s *LockStore) AcquireCheckoutLock(ctx context.Context, tripID string, ttl time.Duration) (token string, acquired bool, err error) {
	token = uuid.New().String()

	ok, err := s.client.SetNX(ctx, checkoutLockKey(tripID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// ReleaseCheckoutLock releases the checkout lock for the given trip if it is
// still owned by token. A lock that expired and was taken by another holder is
// left alone.
func (s *LockStore) ReleaseCheckoutLock(ctx context.Context, tripID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{checkoutLockKey(tripID)}, token).Err()
}
