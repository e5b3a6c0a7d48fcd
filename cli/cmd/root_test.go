package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitdex/bitdex/bitvec"
	"github.com/bitdex/bitdex/element"
	"github.com/bitdex/bitdex/ql"
	"github.com/bitdex/bitdex/query"
	"github.com/bitdex/bitdex/registry"
	"github.com/bitdex/bitdex/store"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"element not found", fmt.Errorf("element %q: %w", "a", registry.ErrNotFound), exitNotFound},
		{"bit range", fmt.Errorf("bit 4096: %w", bitvec.ErrBitRange), exitUsage},
		{"blob length", bitvec.ErrBlobLength, exitUsage},
		{"hex digit", bitvec.ErrHexDigit, exitUsage},
		{"name too long", element.ErrNameTooLong, exitUsage},
		{"operands", query.ErrOperands, exitUsage},
		{"ttl", query.ErrTTL, exitUsage},
		{"syntax", fmt.Errorf("%w: bogus", ql.ErrSyntax), exitUsage},
		{"io", &store.Error{Kind: store.KindIO, Op: "PING", Err: fmt.Errorf("refused")}, exitConnect},
		{"store not found", &store.Error{Kind: store.KindNotFound, Op: "HGET", Err: store.ErrNotFound}, exitNotFound},
		{"protocol", &store.Error{Kind: store.KindProtocol, Op: "EVAL", Err: fmt.Errorf("bad script")}, exitStore},
		{"reply type", &store.Error{Kind: store.KindReplyType, Op: "EVAL", Err: fmt.Errorf("bad reply")}, exitStore},
		{"local failure", fmt.Errorf("broken pipe"), exitStore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}
