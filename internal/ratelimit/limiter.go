package ratelimit

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const defaultPrefix = "ratelimit"

// New builds a limiter for a rate such as "60-M". Counters live in Redis when
// a client is given and in process memory otherwise.
func New(rate, prefix string, client *redis.Client) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	opts := limiter.StoreOptions{Prefix: prefix, MaxRetry: limiter.DefaultMaxRetry, CleanUpInterval: limiter.DefaultCleanUpInterval}

	var store limiter.Store
	if client != nil {
		store, err = limiterredis.NewStoreWithOptions(client, opts)
		if err != nil {
			return nil, fmt.Errorf("redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(opts)
	}
	return limiter.New(store, parsed), nil
}
