package waitlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const submitLockPrefix = "waitlist:submit:"

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ intake.SubmitLock = (*RedisSubmitLock)(nil)

// RedisSubmitLock keeps two API instances from inserting the same email at once.
type RedisSubmitLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisSubmitLock(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisSubmitLock {
	if client == nil {
		panic("waitlist: redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSubmitLock{client: client, ttl: ttl, logger: logger}
}

func lockKey(email string) string {
	return submitLockPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Acquire sets the lock key if absent. The token guards release against a
// lock that expired and was taken by someone else.
func (l *RedisSubmitLock) Acquire(ctx context.Context, email string) (func(), bool, error) {
	key := lockKey(email)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("waitlist: acquire submit lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Release even if the request context is already done.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("waitlist: release submit lock", "error", err)
		}
	}
	return release, true, nil
}
