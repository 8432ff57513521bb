package redisx

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Dedup menandai event yang sudah diproses oleh satu service.
type Dedup struct {
	Redis   *redis.Client
	Service string
}

// FirstSeen true kalau eventID belum pernah ditandai (dan sekarang ditandai).
func (d *Dedup) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.Redis.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), "1", TTLDedup).Result()
	if err != nil {
		return false, errors.Wrap(err, "dedup")
	}
	return ok, nil
}
