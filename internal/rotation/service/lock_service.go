// Package service implements rotation infrastructure services: the
// distributed rotation lock backed by Redis.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// Lua script for atomic check-and-delete: only the current holder may
// release the lock. Without this a slow worker whose lease expired could
// delete a lock that a second worker has since acquired.
const releaseLockScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`

// RedisLockService implements a lease-based distributed lock for key
// rotation. Locks auto-expire so a crashed worker never blocks rotation
// permanently; the state machine converges via the authority metadata on
// the next scheduler pass.
type RedisLockService struct {
	client *redis.Client
}

// Acquire attempts to take the rotation lock for keyID on behalf of
// holderID. It never blocks: when another holder owns the lock it returns
// ErrLockContention immediately.
func (s *RedisLockService) Acquire(ctx context.Context, keyID, holderID string, lease time.Duration) (*rotationDomain.RotationLock, error) {
	acquired, err := s.client.SetNX(ctx, lockKey(keyID), holderID, lease).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to acquire rotation lock")
	}
	if !acquired {
		return nil, rotationDomain.ErrLockContention
	}

	now := time.Now().UTC()
	return &rotationDomain.RotationLock{
		KeyID:      keyID,
		HolderID:   holderID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(lease),
	}, nil
}

// Release frees the rotation lock for keyID if holderID still owns it.
// It returns ErrLockNotHeld when the lease already expired or another
// holder took over; callers treat that as a warning, not a failure.
func (s *RedisLockService) Release(ctx context.Context, keyID, holderID string) error {
	result, err := s.client.Eval(ctx, releaseLockScript, []string{lockKey(keyID)}, holderID).Result()
	if err != nil {
		return apperrors.Wrap(err, "failed to release rotation lock")
	}

	released, ok := result.(int64)
	if !ok || released == 0 {
		return rotationDomain.ErrLockNotHeld
	}
	return nil
}

func lockKey(keyID string) string {
	return fmt.Sprintf("rotation:lock:%s", keyID)
}

// NewRedisLockService returns a RedisLockService using the given client.
func NewRedisLockService(client *redis.Client) *RedisLockService {
	return &RedisLockService{client: client}
}
