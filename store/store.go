package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

/*
Package store defines the gateway contract this system requires from the
external set store, a Redis-backed implementation of it, and an in-memory
fake suitable for tests. The core never talks to Redis directly; the index
maintenance protocol and the query engine depend on Conn only, so protocol
logic is testable without a live server.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrNotFound is the sentinel wrapped by every not-found gateway error.
var ErrNotFound = errors.New("not found")

// Kind classifies gateway failures.
type Kind int

const (
	// KindUnknown is the zero Kind, used for errors that did not originate
	// in the gateway.
	KindUnknown Kind = iota
	// KindNotFound marks an absent key, field, or member.
	KindNotFound
	// KindIO marks a connection or transport failure.
	KindIO
	// KindProtocol marks an explicit error reply from the store.
	KindProtocol
	// KindReplyType marks a reply whose shape did not match the operation.
	// A well-behaved store never produces this for a well-formed request.
	KindReplyType
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindReplyType:
		return "reply type"
	default:
		return "unknown"
	}
}

// Error is a gateway failure, carrying the operation and key for diagnosis.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindUnknown
}

func notFound(op, key string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Key: key, Err: ErrNotFound}
}

// Conn is the set of store capabilities the core consumes. One Conn is
// exclusively owned by one caller context; every method is a synchronous
// round trip bounded by the connection's configured timeouts.
type Conn interface {
	// Ping checks store liveness.
	Ping(ctx context.Context) error

	// HSet writes one field of a hash record. Values are binary safe.
	HSet(ctx context.Context, key, field string, value []byte) error
	// HGet reads one field of a hash record. Absent keys and fields yield a
	// KindNotFound error.
	HGet(ctx context.Context, key, field string) ([]byte, error)

	// SAdd adds a member to a set. Adding an existing member is a no-op.
	SAdd(ctx context.Context, key, member string) error
	// SRem removes a member from a set. Removing an absent member is a no-op.
	SRem(ctx context.Context, key, member string) error
	// SMembers enumerates a set. An absent key yields an empty list.
	SMembers(ctx context.Context, key string) ([]string, error)
	// SCard returns a set's cardinality. An absent key yields zero.
	SCard(ctx context.Context, key string) (int64, error)

	// SInter, SUnion and SDiff are the read-only multi-key set algebra.
	// SDiff subtracts every subsequent key from the first.
	SInter(ctx context.Context, keys ...string) ([]string, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)
	SDiff(ctx context.Context, keys ...string) ([]string, error)

	// The store variants write the result to dst and return its cardinality.
	SInterStore(ctx context.Context, dst string, keys ...string) (int64, error)
	SUnionStore(ctx context.Context, dst string, keys ...string) (int64, error)
	SDiffStore(ctx context.Context, dst string, keys ...string) (int64, error)

	// Expire sets a key's time to live. Expiring an absent key yields a
	// KindNotFound error.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL returns a key's remaining time to live.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Eval runs a script as one indivisible unit against the declared keys
	// and returns its integer result.
	Eval(ctx context.Context, script Script, keys []string, args ...any) (int64, error)

	// Del removes a key, reporting whether it existed.
	Del(ctx context.Context, key string) (bool, error)

	// Close releases the underlying connection.
	Close() error
}
