package store

import (
	"context"
	"time"
)

/*
Recorder wraps a Conn and counts the operations issued through it. It exists
for tests that assert on write minimality ("no redundant writes") or on
fail-fast validation ("no store contact before validation").
*/

////////////////////////////////////////////////////////////////////////////////

// Recorder counts operations forwarded to an underlying Conn.
type Recorder struct {
	Conn
	// Ops maps operation name (SADD, SREM, EVAL, ...) to call count.
	Ops map[string]int
}

var _ Conn = (*Recorder)(nil)

// NewRecorder wraps conn with operation counting.
func NewRecorder(conn Conn) *Recorder {
	return &Recorder{Conn: conn, Ops: make(map[string]int)}
}

// Total returns the number of operations issued since construction or the
// last Reset.
func (r *Recorder) Total() int {
	var n int
	for _, c := range r.Ops {
		n += c
	}
	return n
}

// Reset clears the counters.
func (r *Recorder) Reset() {
	r.Ops = make(map[string]int)
}

func (r *Recorder) Ping(ctx context.Context) error {
	r.Ops["PING"]++
	return r.Conn.Ping(ctx)
}

func (r *Recorder) HSet(ctx context.Context, key, field string, value []byte) error {
	r.Ops["HSET"]++
	return r.Conn.HSet(ctx, key, field, value)
}

func (r *Recorder) HGet(ctx context.Context, key, field string) ([]byte, error) {
	r.Ops["HGET"]++
	return r.Conn.HGet(ctx, key, field)
}

func (r *Recorder) SAdd(ctx context.Context, key, member string) error {
	r.Ops["SADD"]++
	return r.Conn.SAdd(ctx, key, member)
}

func (r *Recorder) SRem(ctx context.Context, key, member string) error {
	r.Ops["SREM"]++
	return r.Conn.SRem(ctx, key, member)
}

func (r *Recorder) SMembers(ctx context.Context, key string) ([]string, error) {
	r.Ops["SMEMBERS"]++
	return r.Conn.SMembers(ctx, key)
}

func (r *Recorder) SCard(ctx context.Context, key string) (int64, error) {
	r.Ops["SCARD"]++
	return r.Conn.SCard(ctx, key)
}

func (r *Recorder) SInter(ctx context.Context, keys ...string) ([]string, error) {
	r.Ops["SINTER"]++
	return r.Conn.SInter(ctx, keys...)
}

func (r *Recorder) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	r.Ops["SUNION"]++
	return r.Conn.SUnion(ctx, keys...)
}

func (r *Recorder) SDiff(ctx context.Context, keys ...string) ([]string, error) {
	r.Ops["SDIFF"]++
	return r.Conn.SDiff(ctx, keys...)
}

func (r *Recorder) SInterStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	r.Ops["SINTERSTORE"]++
	return r.Conn.SInterStore(ctx, dst, keys...)
}

func (r *Recorder) SUnionStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	r.Ops["SUNIONSTORE"]++
	return r.Conn.SUnionStore(ctx, dst, keys...)
}

func (r *Recorder) SDiffStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	r.Ops["SDIFFSTORE"]++
	return r.Conn.SDiffStore(ctx, dst, keys...)
}

func (r *Recorder) Expire(ctx context.Context, key string, ttl time.Duration) error {
	r.Ops["EXPIRE"]++
	return r.Conn.Expire(ctx, key, ttl)
}

func (r *Recorder) TTL(ctx context.Context, key string) (time.Duration, error) {
	r.Ops["TTL"]++
	return r.Conn.TTL(ctx, key)
}

func (r *Recorder) Eval(ctx context.Context, script Script, keys []string, args ...any) (int64, error) {
	r.Ops["EVAL"]++
	return r.Conn.Eval(ctx, script, keys, args...)
}

func (r *Recorder) Del(ctx context.Context, key string) (bool, error) {
	r.Ops["DEL"]++
	return r.Conn.Del(ctx, key)
}
