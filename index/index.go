package index

import (
	"context"
	"fmt"

	"github.com/bitdex/bitdex/bitvec"
	"github.com/bitdex/bitdex/keys"
	"github.com/bitdex/bitdex/store"
)

/*
Package index keeps the per-bit membership sets consistent with each
element's flag vector. The invariant it maintains: a name is a member of
idx_bit(b) exactly when bit b is set in that element's stored flags.

The reconcile sequence is not atomic across its several store operations. A
concurrent reader can observe a partially updated index mid-put: an element
may transiently appear in both the old and new per-bit sets, in neither, or
in a mix. This is an accepted relaxation; callers needing a consistent
snapshot must serialize externally.
*/

////////////////////////////////////////////////////////////////////////////////

// Maintainer applies flag-vector deltas to the per-bit index sets and the
// universe set.
type Maintainer struct {
	conn store.Conn
	ns   *keys.Namespace
}

// NewMaintainer returns a maintainer over the given connection and namespace.
func NewMaintainer(conn store.Conn, ns *keys.Namespace) *Maintainer {
	return &Maintainer{conn: conn, ns: ns}
}

// diff returns the elements of a not present in b. Both inputs are strictly
// ascending, so a single merge walk suffices.
func diff(a, b []int) []int {
	out := make([]int, 0, len(a))
	j := 0
	for _, bit := range a {
		for j < len(b) && b[j] < bit {
			j++
		}
		if j < len(b) && b[j] == bit {
			continue
		}
		out = append(out, bit)
	}
	return out
}

// Reconcile issues the minimal add/remove operations taking the index from
// oldFlags to newFlags for the named element. Bits set in both vectors are
// untouched; identical vectors issue zero writes. The first store failure
// aborts the walk and surfaces; already-applied writes are not rolled back.
func (m *Maintainer) Reconcile(ctx context.Context, name string, oldFlags, newFlags bitvec.Vector) error {
	oldBits := oldFlags.SetBits()
	newBits := newFlags.SetBits()

	for _, bit := range diff(oldBits, newBits) {
		if err := m.conn.SRem(ctx, m.ns.IdxBit(bit), name); err != nil {
			return fmt.Errorf("failed to remove %q from bit %d index: %w", name, bit, err)
		}
	}
	for _, bit := range diff(newBits, oldBits) {
		if err := m.conn.SAdd(ctx, m.ns.IdxBit(bit), name); err != nil {
			return fmt.Errorf("failed to add %q to bit %d index: %w", name, bit, err)
		}
	}
	return nil
}

// AddToUniverse records the name in the universe set. Idempotent.
func (m *Maintainer) AddToUniverse(ctx context.Context, name string) error {
	if err := m.conn.SAdd(ctx, m.ns.Universe(), name); err != nil {
		return fmt.Errorf("failed to add %q to universe: %w", name, err)
	}
	return nil
}

// Remove takes the named element out of the index: out of each set bit's
// membership set, out of the universe, and deletes the element record.
func (m *Maintainer) Remove(ctx context.Context, name string, flags bitvec.Vector) error {
	for _, bit := range flags.SetBits() {
		if err := m.conn.SRem(ctx, m.ns.IdxBit(bit), name); err != nil {
			return fmt.Errorf("failed to remove %q from bit %d index: %w", name, bit, err)
		}
	}
	return m.finishRemoval(ctx, name)
}

// Scrub removes the name from all 4096 per-bit sets, the universe, and
// deletes the element record. It exists for elements whose flags can no
// longer be loaded, is expensive, and must be explicitly opted into.
func (m *Maintainer) Scrub(ctx context.Context, name string) error {
	for bit := 0; bit < bitvec.Bits; bit++ {
		if err := m.conn.SRem(ctx, m.ns.IdxBit(bit), name); err != nil {
			return fmt.Errorf("failed to scrub %q from bit %d index: %w", name, bit, err)
		}
	}
	return m.finishRemoval(ctx, name)
}

func (m *Maintainer) finishRemoval(ctx context.Context, name string) error {
	if err := m.conn.SRem(ctx, m.ns.Universe(), name); err != nil {
		return fmt.Errorf("failed to remove %q from universe: %w", name, err)
	}
	if _, err := m.conn.Del(ctx, m.ns.Element(name)); err != nil {
		return fmt.Errorf("failed to delete record for %q: %w", name, err)
	}
	return nil
}
