package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitdex/bitdex/bitvec"
	"github.com/bitdex/bitdex/element"
	"github.com/bitdex/bitdex/index"
	"github.com/bitdex/bitdex/keys"
	"github.com/bitdex/bitdex/store"
	"github.com/bitdex/bitdex/util/log"
)

/*
Package registry is the element persistence façade: it owns the record
layout (hash fields name/flags_bin/flags_hex), the legacy dual-encoding read
path, and the put/delete/rename flows that keep the index in step with each
element's stored flags.
*/

////////////////////////////////////////////////////////////////////////////////

// Hash fields of an element record. flags_bin is the 512-byte canonical
// encoding; flags_hex is read-only legacy compatibility.
const (
	FieldName     = "name"
	FieldFlagsBin = "flags_bin"
	FieldFlagsHex = "flags_hex"
)

// ErrNotFound is returned when an element has no readable flags.
var ErrNotFound = errors.New("element not found")

// Registry persists elements and keeps the per-bit index consistent with
// their flags.
type Registry struct {
	conn store.Conn
	ns   *keys.Namespace
	idx  *index.Maintainer
}

// New returns a registry over the given connection and namespace.
func New(conn store.Conn, ns *keys.Namespace) *Registry {
	return &Registry{conn: conn, ns: ns, idx: index.NewMaintainer(conn, ns)}
}

// Keys exposes the registry's namespace.
func (r *Registry) Keys() *keys.Namespace {
	return r.ns
}

// loadFlags reads an element's flags through the fallback chain: the
// canonical binary field when present and exactly 512 bytes, then the legacy
// hex field, otherwise absent. Store failures other than not-found abort the
// chain.
func (r *Registry) loadFlags(ctx context.Context, name string) (bitvec.Vector, bool, error) {
	key := r.ns.Element(name)

	blob, err := r.conn.HGet(ctx, key, FieldFlagsBin)
	switch {
	case err == nil:
		if v, err := bitvec.FromBytes(blob); err == nil {
			return v, true, nil
		}
		log.Debugf(ctx, "element %q has malformed flags_bin (%d bytes), trying flags_hex", name, len(blob))
	case store.KindOf(err) != store.KindNotFound:
		return bitvec.Vector{}, false, fmt.Errorf("failed to load flags for %q: %w", name, err)
	}

	hex, err := r.conn.HGet(ctx, key, FieldFlagsHex)
	switch {
	case err == nil:
		if v, err := bitvec.FromHex(string(hex)); err == nil {
			return v, true, nil
		}
		log.Debugf(ctx, "element %q has malformed flags_hex", name)
	case store.KindOf(err) != store.KindNotFound:
		return bitvec.Vector{}, false, fmt.Errorf("failed to load legacy flags for %q: %w", name, err)
	}

	return bitvec.Vector{}, false, nil
}

// Put stores the element with exactly the given bits set, reconciling the
// per-bit index against whatever was stored before. A fresh put indexes all
// given bits; a put that clears previously set bits removes the element from
// those bit sets.
func (r *Registry) Put(ctx context.Context, name string, bits ...int) error {
	e, err := element.New(name)
	if err != nil {
		return err
	}
	for _, bit := range bits {
		if err := e.Flags().Set(bit); err != nil {
			return err
		}
	}
	return r.put(ctx, e)
}

func (r *Registry) put(ctx context.Context, e *element.Element) error {
	name := e.Name()
	oldFlags, _, err := r.loadFlags(ctx, name)
	if err != nil {
		return err
	}
	if err := r.idx.Reconcile(ctx, name, oldFlags, *e.Flags()); err != nil {
		return err
	}
	if err := r.idx.AddToUniverse(ctx, name); err != nil {
		return err
	}

	key := r.ns.Element(name)
	if err := r.conn.HSet(ctx, key, FieldName, []byte(name)); err != nil {
		return fmt.Errorf("failed to store name for %q: %w", name, err)
	}
	blob := e.Flags().Bytes()
	if err := r.conn.HSet(ctx, key, FieldFlagsBin, blob[:]); err != nil {
		return fmt.Errorf("failed to store flags for %q: %w", name, err)
	}
	log.Debugf(ctx, "stored %q with %d bits set", name, e.Flags().OnesCount())
	return nil
}

// Get returns the element's flags, or ErrNotFound when the record is absent
// or unreadable through both encodings.
func (r *Registry) Get(ctx context.Context, name string) (bitvec.Vector, error) {
	if err := element.CheckName(name); err != nil {
		return bitvec.Vector{}, err
	}
	flags, found, err := r.loadFlags(ctx, name)
	if err != nil {
		return bitvec.Vector{}, err
	}
	if !found {
		return bitvec.Vector{}, fmt.Errorf("element %q: %w", name, ErrNotFound)
	}
	return flags, nil
}

// Delete removes the element from the index, the universe, and the store.
// When the record's flags cannot be loaded the deletion fails with
// ErrNotFound unless force is set, in which case every one of the 4096 index
// keys is scrubbed. The forced sweep is expensive and never automatic.
func (r *Registry) Delete(ctx context.Context, name string, force bool) error {
	if err := element.CheckName(name); err != nil {
		return err
	}
	flags, found, err := r.loadFlags(ctx, name)
	if err != nil {
		return err
	}
	if found {
		return r.idx.Remove(ctx, name, flags)
	}
	if !force {
		return fmt.Errorf("element %q has no readable flags (use force to scrub): %w", name, ErrNotFound)
	}
	log.Infof(ctx, "scrubbing %q across all %d index keys", name, bitvec.Bits)
	return r.idx.Scrub(ctx, name)
}

// Rename re-keys an element: the record is written under the new name, the
// index and universe gain the new name for every set bit, and the old name
// is removed everywhere. The two halves are not atomic; a concurrent reader
// can briefly observe both names.
func (r *Registry) Rename(ctx context.Context, oldName, newName string) error {
	if err := element.CheckName(newName); err != nil {
		return err
	}
	flags, found, err := r.loadFlags(ctx, oldName)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("element %q: %w", oldName, ErrNotFound)
	}
	// a same-name rename must not fall through: put followed by Remove of the
	// old name would destroy the record just written
	if oldName == newName {
		return nil
	}

	e, err := element.New(oldName)
	if err != nil {
		return err
	}
	if err := e.SetName(newName); err != nil {
		return err
	}
	*e.Flags() = flags

	if err := r.put(ctx, e); err != nil {
		return err
	}
	return r.idx.Remove(ctx, oldName, flags)
}

// Find returns the members of one bit's index set.
func (r *Registry) Find(ctx context.Context, bit int) ([]string, error) {
	if bit < 0 || bit >= bitvec.Bits {
		return nil, fmt.Errorf("bit %d: %w", bit, bitvec.ErrBitRange)
	}
	members, err := r.conn.SMembers(ctx, r.ns.IdxBit(bit))
	if err != nil {
		return nil, fmt.Errorf("failed to read bit %d index: %w", bit, err)
	}
	return members, nil
}

// Count returns the cardinality of one bit's index set.
func (r *Registry) Count(ctx context.Context, bit int) (int64, error) {
	if bit < 0 || bit >= bitvec.Bits {
		return 0, fmt.Errorf("bit %d: %w", bit, bitvec.ErrBitRange)
	}
	n, err := r.conn.SCard(ctx, r.ns.IdxBit(bit))
	if err != nil {
		return 0, fmt.Errorf("failed to count bit %d index: %w", bit, err)
	}
	return n, nil
}

// Show returns the raw members of any set key, for inspection.
func (r *Registry) Show(ctx context.Context, key string) ([]string, error) {
	members, err := r.conn.SMembers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return members, nil
}

// Ping checks store liveness.
func (r *Registry) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}
