package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"staybook/internal/shared/constants"
)

var ErrLockNotAcquired = errors.New("room reservation lock not acquired")

// RoomLocker serialises range reservations for one room across instances.
type RoomLocker interface {
	Lock(ctx context.Context, hotelID, roomID uuid.UUID) (unlock func(), err error)
}

// Lua script for compare-and-delete so only the holder releases the lock
var releaseLockScript = redis.NewScript(`
-- KEYS[1] = lock key
-- ARGV[1] = holder token
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisRoomLocker struct {
	client   *redis.Client
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	newToken func() string
}

func NewRedisRoomLocker(client *redis.Client, ttl time.Duration, attempts int) *RedisRoomLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if attempts <= 0 {
		attempts = 5
	}
	return &RedisRoomLocker{
		client:   client,
		ttl:      ttl,
		attempts: attempts,
		backoff:  25 * time.Millisecond,
		newToken: uuid.NewString,
	}
}

func (l *RedisRoomLocker) Lock(ctx context.Context, hotelID, roomID uuid.UUID) (func(), error) {
	key := constants.BuildRoomLockKey(hotelID.String(), roomID.String())
	token := l.newToken()

	for attempt := 1; attempt <= l.attempts; attempt++ {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire room lock: %w", err)
		}
		if acquired {
			return func() {
				// Detached from the request so a cancelled request still frees the lock.
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				releaseLockScript.Run(releaseCtx, l.client, []string{key}, token)
			}, nil
		}
		if attempt == l.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff * time.Duration(attempt)):
		}
	}

	return nil, ErrLockNotAcquired
}
