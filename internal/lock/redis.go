package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "punchclock:lock:"
	retryInterval  = 50 * time.Millisecond
)

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease-based lock shared by every replica. A holder that dies
// loses the lock when the lease expires.
type Redis struct {
	rdb   *redis.Client
	lease time.Duration
	log   *slog.Logger
}

func NewRedis(rdb *redis.Client, lease time.Duration, log *slog.Logger) *Redis {
	if lease <= 0 {
		lease = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Redis{rdb: rdb, lease: lease, log: log}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := redisKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, k, token, r.lease).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		t := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.release(k, token) })
	}, nil
}

// release drops the key if token still owns it. On failure the key stays
// held until its lease runs out.
func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Err(); err != nil {
		r.log.Warn("lock release failed", "key", key, "lease", r.lease, "err", err)
	}
}
