package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoClient is returned when the locker has no Redis connection.
var ErrNoClient = errors.New("lock: redis client not configured")

var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// Locker serialises one-off work across API replicas, e.g. applying
// migrations and seeding the catalog on boot.
type Locker struct {
	Client *redis.Client
	Retry  time.Duration
}

// Do runs fn while holding key. The lease expires after ttl so a crashed
// holder cannot block the others forever. Waiting stops when ctx is done.
func (l Locker) Do(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.Client == nil {
		return ErrNoClient
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := l.Retry
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	token := uuid.NewString()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	defer func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.Client, []string{key}, token).Err()
	}()
	return fn(ctx)
}

// DoOrRun behaves like Do when a client is configured and otherwise runs fn
// directly. Single-node deployments have nobody to coordinate with.
func (l Locker) DoOrRun(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.Client == nil {
		return fn(ctx)
	}
	return l.Do(ctx, key, ttl, fn)
}
