package redisx

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript hanya menghapus lock kalau masih milik token kita.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// SeedLock adalah lock SETNX+TTL untuk bootstrap katalog lintas instance.
type SeedLock struct {
	Redis *redis.Client
	token string
}

func NewSeedLock(rdb *redis.Client) *SeedLock {
	return &SeedLock{Redis: rdb, token: uuid.NewString()}
}

func (l *SeedLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.Redis.SetNX(ctx, KeySeedLock, l.token, TTLSeedLock).Result()
	if err != nil {
		return false, errors.Wrap(err, "acquire seed lock")
	}
	return ok, nil
}

func (l *SeedLock) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, l.Redis, []string{KeySeedLock}, l.token).Err()
	return errors.Wrap(err, "release seed lock")
}
