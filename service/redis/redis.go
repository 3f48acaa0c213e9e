package redis

import (
	"errors"
	"time"

	"github.com/mochi-xyz/market/base/ctx"
)

var (
	ErrNotFound = errors.New("redis: key not found")
	ErrNoTTL    = errors.New("redis: key has no ttl")
	ErrNoPool   = errors.New("redis: no pool")
)

// Forever marks a key without expiry.
const Forever = time.Duration(-1)

type Service interface {
	Get(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(c ctx.Ctx, keys ...string) (int, error)
	Exists(c ctx.Ctx, key string) (bool, error)
	// TTL returns the remaining seconds of key.
	TTL(c ctx.Ctx, key string) (int, error)
	// Publish sends msg on channel and returns the number of receivers.
	Publish(c ctx.Ctx, channel string, msg []byte) (int, error)
	Ping(c ctx.Ctx) error
	Name() string
}
