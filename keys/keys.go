package keys

import (
	"fmt"
	"sync/atomic"
	"time"
)

/*
Package keys maps domain concepts to identifiers in the store's flat keyspace.
All keys share a configurable prefix so multiple deployments can coexist in
one store. Temporary keys are fresh per call: uniqueness comes from a
wall-clock nanosecond reading combined with a counter owned by the Namespace,
so two calls in the same nanosecond still diverge and no package-level
mutable state exists.
*/

////////////////////////////////////////////////////////////////////////////////

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "er"

// Namespace formats store keys under a fixed prefix.
type Namespace struct {
	prefix string
	tmpSeq atomic.Uint64
}

// New returns a namespace under the given prefix, or DefaultPrefix if empty.
func New(prefix string) *Namespace {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Namespace{prefix: prefix}
}

// Prefix returns the configured key prefix.
func (n *Namespace) Prefix() string {
	return n.prefix
}

// Universe returns the key of the set of all known element names.
func (n *Namespace) Universe() string {
	return n.prefix + ":all"
}

// Element returns the key of an element's record.
func (n *Namespace) Element(name string) string {
	return n.prefix + ":element:" + name
}

// IdxBit returns the key of the membership set for one bit position.
func (n *Namespace) IdxBit(bit int) string {
	return fmt.Sprintf("%s:idx:bit:%d", n.prefix, bit)
}

// Tmp returns a fresh key for a materialized query result. Keys are distinct
// across calls even with identical tags.
func (n *Namespace) Tmp(tag string) string {
	return fmt.Sprintf("%s:tmp:%s:%d:%d", n.prefix, tag, time.Now().UnixNano(), n.tmpSeq.Add(1))
}
