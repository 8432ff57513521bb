package redisx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Idempotency menyimpan Idempotency-Key checkout -> order_id.
type Idempotency struct {
	Redis *redis.Client
}

func (i *Idempotency) Lookup(ctx context.Context, key string) (int64, bool, error) {
	v, err := i.Redis.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "idempotency lookup")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "idempotency value %q", v)
	}
	return id, true, nil
}

// Remember pakai SETNX: request pertama yang selesai menang.
func (i *Idempotency) Remember(ctx context.Context, key string, orderID int64) error {
	err := i.Redis.SetNX(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, TTLIdempotency).Err()
	return errors.Wrap(err, "idempotency remember")
}
