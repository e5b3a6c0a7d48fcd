package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

/*
Redis is the production Conn, a thin classification layer over go-redis.
Every reply is checked against the shape the operation expects; anything else
surfaces as a reply-type error rather than a zero value.
*/

////////////////////////////////////////////////////////////////////////////////

// DefaultTimeout bounds dial and per-request time when none is configured.
// Indefinite blocking on the store is not acceptable.
const DefaultTimeout = 2 * time.Second

// RedisOptions configures a Redis gateway.
type RedisOptions struct {
	// Addr is the host:port of the server.
	Addr string
	// Timeout bounds connect, read and write individually. Zero means
	// DefaultTimeout; negative is invalid.
	Timeout time.Duration
}

// Redis implements Conn against a Redis server. One Redis value owns one
// client handle for its lifetime; Close releases it.
type Redis struct {
	rdb *redis.Client
}

var _ Conn = (*Redis)(nil)

// NewRedis opens a gateway to the given server. The connection is lazy; use
// Ping to verify liveness.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("redis timeout must not be negative")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &Redis{rdb: rdb}, nil
}

// classify maps a go-redis error onto the gateway taxonomy. redis.Nil must
// be tested before redis.Error: Nil satisfies both.
func classify(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return notFound(op, key)
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return &Error{Kind: KindProtocol, Op: op, Key: key, Err: err}
	}
	return &Error{Kind: KindIO, Op: op, Key: key, Err: err}
}

func (r *Redis) Ping(ctx context.Context) error {
	return classify("PING", "", r.rdb.Ping(ctx).Err())
}

func (r *Redis) HSet(ctx context.Context, key, field string, value []byte) error {
	return classify("HSET", key, r.rdb.HSet(ctx, key, field, value).Err())
}

func (r *Redis) HGet(ctx context.Context, key, field string) ([]byte, error) {
	v, err := r.rdb.HGet(ctx, key, field).Bytes()
	if err != nil {
		return nil, classify("HGET", key, err)
	}
	return v, nil
}

func (r *Redis) SAdd(ctx context.Context, key, member string) error {
	return classify("SADD", key, r.rdb.SAdd(ctx, key, member).Err())
}

func (r *Redis) SRem(ctx context.Context, key, member string) error {
	return classify("SREM", key, r.rdb.SRem(ctx, key, member).Err())
}

func (r *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	v, err := r.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, classify("SMEMBERS", key, err)
	}
	return v, nil
}

func (r *Redis) SCard(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.SCard(ctx, key).Result()
	if err != nil {
		return 0, classify("SCARD", key, err)
	}
	return n, nil
}

func (r *Redis) SInter(ctx context.Context, keys ...string) ([]string, error) {
	v, err := r.rdb.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, classify("SINTER", first(keys), err)
	}
	return v, nil
}

func (r *Redis) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	v, err := r.rdb.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, classify("SUNION", first(keys), err)
	}
	return v, nil
}

func (r *Redis) SDiff(ctx context.Context, keys ...string) ([]string, error) {
	v, err := r.rdb.SDiff(ctx, keys...).Result()
	if err != nil {
		return nil, classify("SDIFF", first(keys), err)
	}
	return v, nil
}

func (r *Redis) SInterStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	n, err := r.rdb.SInterStore(ctx, dst, keys...).Result()
	if err != nil {
		return 0, classify("SINTERSTORE", dst, err)
	}
	return n, nil
}

func (r *Redis) SUnionStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	n, err := r.rdb.SUnionStore(ctx, dst, keys...).Result()
	if err != nil {
		return 0, classify("SUNIONSTORE", dst, err)
	}
	return n, nil
}

func (r *Redis) SDiffStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	n, err := r.rdb.SDiffStore(ctx, dst, keys...).Result()
	if err != nil {
		return 0, classify("SDIFFSTORE", dst, err)
	}
	return n, nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := r.rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		return classify("EXPIRE", key, err)
	}
	if !ok {
		return notFound("EXPIRE", key)
	}
	return nil
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, classify("TTL", key, err)
	}
	return d, nil
}

func (r *Redis) Eval(ctx context.Context, script Script, keys []string, args ...any) (int64, error) {
	v, err := r.rdb.Eval(ctx, script.Source, keys, args...).Result()
	if err != nil {
		return 0, classify("EVAL("+script.Name+")", first(keys), err)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, &Error{
			Kind: KindReplyType,
			Op:   "EVAL(" + script.Name + ")",
			Key:  first(keys),
			Err:  fmt.Errorf("expected integer reply, got %T", v),
		}
	}
	return n, nil
}

func (r *Redis) Del(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, classify("DEL", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func first(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
