package tastebase

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// DedupFilter answers "was this value seen before?" with a bounded
// false-positive rate and no false negatives. A positive answer means
// "probably seen": a legitimately-new value can collide and be rejected.
type DedupFilter interface {
	Seen(ctx context.Context, value string) (bool, error)
	Add(ctx context.Context, value string) error
}

// BloomDedup implements DedupFilter on a Redis Bloom filter (RedisBloom
// module). BF.ADD creates the filter with default sizing on first use.
type BloomDedup struct {
	rdb *redis.Client
	key string
}

// NewBloomDedup creates a Bloom-filter dedup over the restaurant filter key.
func NewBloomDedup(rdb *redis.Client) *BloomDedup {
	return &BloomDedup{rdb: rdb, key: RestaurantBloomKey}
}

func (b *BloomDedup) Seen(ctx context.Context, value string) (bool, error) {
	seen, err := b.rdb.BFExists(ctx, b.key, value).Result()
	if err != nil {
		return false, &StoreError{Op: "bloom exists", Err: err}
	}
	return seen, nil
}

func (b *BloomDedup) Add(ctx context.Context, value string) error {
	if err := b.rdb.BFAdd(ctx, b.key, value).Err(); err != nil {
		return &StoreError{Op: "bloom add", Err: err}
	}
	return nil
}
