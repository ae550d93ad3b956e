package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the shared-cache variant of Store, used when REDIS_ADDR is set so
// multiple instances see the same invalidations.
type Redis struct {
	redisdb *redis.Client
	prefix  string
	ttl     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "recipehub:"
	}

	return &Redis{redisdb: redisdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.redisdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.redisdb.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.redisdb.Get(ctx, r.prefix+key).Bytes()

	if err != nil {
		// a miss and a broken connection look the same to the caller: fall
		// through to the database
		return nil, false
	}

	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	_ = r.redisdb.Set(ctx, r.prefix+key, val, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) {
	_ = r.redisdb.Del(ctx, r.prefix+key).Err()
}

// Clear removes every key under the prefix. Used on recipe writes to
// invalidate all list pages at once.
func (r *Redis) Clear(ctx context.Context) {
	iter := r.redisdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()

	for iter.Next(ctx) {
		_ = r.redisdb.Del(ctx, iter.Val()).Err()
	}
}
