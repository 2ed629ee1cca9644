package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ledgerLockKey = "lock:incident-ledger"

// releaseLock deletes the lock only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
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

// AcquireLedgerLock attempts to acquire the incident ledger write lock.
// It returns the token that releases the lock, or ok=false if the lock is
// already held.
func (s *LockStore) AcquireLedgerLock(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := s.client.SetNX(ctx, ledgerLockKey, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// ReleaseLedgerLock releases the incident ledger write lock if it is still
// held with token. A lock that expired and was taken by another holder is
// left alone.
func (s *LockStore) ReleaseLedgerLock(ctx context.Context, token string) error {
	return releaseLock.Run(ctx, s.client, []string{ledgerLockKey}, token).Err()
}
