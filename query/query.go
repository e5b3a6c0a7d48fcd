package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitdex/bitdex/bitvec"
	"github.com/bitdex/bitdex/keys"
	"github.com/bitdex/bitdex/store"
)

/*
Package query builds and issues composite set-algebra queries over the
per-bit membership sets. Each shape has a read form returning the member
list directly without touching store state, and a store form materializing
the result under a fresh TTL-bounded key as a single atomic script. All
arguments are validated before any store interaction.
*/

////////////////////////////////////////////////////////////////////////////////

var (
	// ErrOperands is returned when a query has too few operands: All and
	// Any need at least two bits, the negation shapes at least one exclude.
	ErrOperands = errors.New("too few query operands")

	// ErrTTL is returned when a store form is given a non-positive TTL.
	ErrTTL = errors.New("ttl must be positive")
)

// Materialized describes a stored query result.
type Materialized struct {
	// Key is the fresh destination key holding the result set.
	Key string
	// Count is the cardinality of the materialized set.
	Count int64
}

// Engine issues composite queries against one store connection.
type Engine struct {
	conn store.Conn
	ns   *keys.Namespace
}

// NewEngine returns an engine over the given connection and namespace.
func NewEngine(conn store.Conn, ns *keys.Namespace) *Engine {
	return &Engine{conn: conn, ns: ns}
}

func checkBits(bits []int) error {
	for _, bit := range bits {
		if bit < 0 || bit >= bitvec.Bits {
			return fmt.Errorf("bit %d: %w", bit, bitvec.ErrBitRange)
		}
	}
	return nil
}

func checkTTL(ttlSeconds int) error {
	if ttlSeconds <= 0 {
		return fmt.Errorf("got %d: %w", ttlSeconds, ErrTTL)
	}
	return nil
}

func (e *Engine) idxKeys(bits []int) []string {
	out := make([]string, len(bits))
	for i, bit := range bits {
		out[i] = e.ns.IdxBit(bit)
	}
	return out
}

// notKeys builds the SDIFF key list for the relative-NOT shape: the include
// set first, then every exclude set.
func (e *Engine) notKeys(include int, excludes []int) []string {
	return append([]string{e.ns.IdxBit(include)}, e.idxKeys(excludes)...)
}

// universeNotKeys builds the SDIFF key list for universe-relative negation.
func (e *Engine) universeNotKeys(excludes []int) []string {
	return append([]string{e.ns.Universe()}, e.idxKeys(excludes)...)
}

func checkAllAny(bits []int) error {
	if len(bits) < 2 {
		return fmt.Errorf("need at least two bits, got %d: %w", len(bits), ErrOperands)
	}
	return checkBits(bits)
}

func checkNot(include int, excludes []int) error {
	if len(excludes) < 1 {
		return fmt.Errorf("need at least one exclude bit: %w", ErrOperands)
	}
	return checkBits(append([]int{include}, excludes...))
}

func checkUniverseNot(excludes []int) error {
	if len(excludes) < 1 {
		return fmt.Errorf("need at least one exclude bit: %w", ErrOperands)
	}
	return checkBits(excludes)
}

// All returns the elements having every one of the given bits.
func (e *Engine) All(ctx context.Context, bits ...int) ([]string, error) {
	if err := checkAllAny(bits); err != nil {
		return nil, err
	}
	members, err := e.conn.SInter(ctx, e.idxKeys(bits)...)
	if err != nil {
		return nil, fmt.Errorf("failed to intersect bit indexes: %w", err)
	}
	return members, nil
}

// Any returns the elements having at least one of the given bits.
func (e *Engine) Any(ctx context.Context, bits ...int) ([]string, error) {
	if err := checkAllAny(bits); err != nil {
		return nil, err
	}
	members, err := e.conn.SUnion(ctx, e.idxKeys(bits)...)
	if err != nil {
		return nil, fmt.Errorf("failed to union bit indexes: %w", err)
	}
	return members, nil
}

// Not returns the elements having the include bit but none of the exclude
// bits.
func (e *Engine) Not(ctx context.Context, include int, excludes ...int) ([]string, error) {
	if err := checkNot(include, excludes); err != nil {
		return nil, err
	}
	members, err := e.conn.SDiff(ctx, e.notKeys(include, excludes)...)
	if err != nil {
		return nil, fmt.Errorf("failed to diff bit indexes: %w", err)
	}
	return members, nil
}

// UniverseNot returns every known element except those having any of the
// exclude bits.
func (e *Engine) UniverseNot(ctx context.Context, excludes ...int) ([]string, error) {
	if err := checkUniverseNot(excludes); err != nil {
		return nil, err
	}
	members, err := e.conn.SDiff(ctx, e.universeNotKeys(excludes)...)
	if err != nil {
		return nil, fmt.Errorf("failed to diff universe: %w", err)
	}
	return members, nil
}

// AllNot returns the elements having the include bit and none of the exclude
// bits, scoped to the universe. The store's read-only algebra cannot
// intersect a live difference with a stored set in one call, so the
// reduction happens store-side and the intersection locally.
func (e *Engine) AllNot(ctx context.Context, include int, excludes ...int) ([]string, error) {
	if err := checkNot(include, excludes); err != nil {
		return nil, err
	}
	reduced, err := e.conn.SDiff(ctx, e.universeNotKeys(excludes)...)
	if err != nil {
		return nil, fmt.Errorf("failed to diff universe: %w", err)
	}
	included, err := e.conn.SMembers(ctx, e.ns.IdxBit(include))
	if err != nil {
		return nil, fmt.Errorf("failed to read include set: %w", err)
	}
	allowed := make(map[string]struct{}, len(reduced))
	for _, member := range reduced {
		allowed[member] = struct{}{}
	}
	out := make([]string, 0, len(included))
	for _, member := range included {
		if _, ok := allowed[member]; ok {
			out = append(out, member)
		}
	}
	return out, nil
}

// AllStore materializes All under a fresh key with the given TTL.
func (e *Engine) AllStore(ctx context.Context, ttlSeconds int, bits ...int) (Materialized, error) {
	if err := checkAllAny(bits); err != nil {
		return Materialized{}, err
	}
	return e.evalStore(ctx, store.InterStoreExpire, "all", ttlSeconds, e.idxKeys(bits))
}

// AnyStore materializes Any under a fresh key with the given TTL.
func (e *Engine) AnyStore(ctx context.Context, ttlSeconds int, bits ...int) (Materialized, error) {
	if err := checkAllAny(bits); err != nil {
		return Materialized{}, err
	}
	return e.evalStore(ctx, store.UnionStoreExpire, "any", ttlSeconds, e.idxKeys(bits))
}

// NotStore materializes Not under a fresh key with the given TTL.
func (e *Engine) NotStore(ctx context.Context, ttlSeconds int, include int, excludes ...int) (Materialized, error) {
	if err := checkNot(include, excludes); err != nil {
		return Materialized{}, err
	}
	return e.evalStore(ctx, store.DiffStoreExpire, "not", ttlSeconds, e.notKeys(include, excludes))
}

// UniverseNotStore materializes UniverseNot under a fresh key with the given
// TTL.
func (e *Engine) UniverseNotStore(ctx context.Context, ttlSeconds int, excludes ...int) (Materialized, error) {
	if err := checkUniverseNot(excludes); err != nil {
		return Materialized{}, err
	}
	return e.evalStore(ctx, store.DiffStoreExpire, "unot", ttlSeconds, e.universeNotKeys(excludes))
}

// AllNotStore materializes AllNot under a fresh key with the given TTL. The
// whole computation, including the intermediate difference key, runs inside
// one atomic script; no other caller ever observes the intermediate.
func (e *Engine) AllNotStore(ctx context.Context, ttlSeconds int, include int, excludes ...int) (Materialized, error) {
	if err := checkNot(include, excludes); err != nil {
		return Materialized{}, err
	}
	scriptKeys := append(e.universeNotKeys(excludes), e.ns.IdxBit(include))
	return e.evalStore(ctx, store.AllNotStoreExpire, "allnot", ttlSeconds, scriptKeys)
}

func (e *Engine) evalStore(ctx context.Context, script store.Script, tag string, ttlSeconds int, scriptKeys []string) (Materialized, error) {
	if err := checkTTL(ttlSeconds); err != nil {
		return Materialized{}, err
	}
	out := e.ns.Tmp(tag)
	n, err := e.conn.Eval(ctx, script, scriptKeys, ttlSeconds, out)
	if err != nil {
		return Materialized{}, fmt.Errorf("failed to materialize %s query: %w", tag, err)
	}
	return Materialized{Key: out, Count: n}, nil
}
