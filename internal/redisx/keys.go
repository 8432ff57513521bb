package redisx

import "time"

const (
	// Idempotency checkout: idem:order:create:{Idempotency-Key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Lock bootstrap katalog, dipegang satu instance selama seeding.
	KeySeedLock = "lock:catalog:seed"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLSeedLock    = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
