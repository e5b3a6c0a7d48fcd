package bitvec_test

import (
	"math/rand"
	"testing"

	"github.com/bitdex/bitdex/bitvec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVector(t *testing.T, rng *rand.Rand, density int) bitvec.Vector {
	t.Helper()
	var v bitvec.Vector
	for i := 0; i < density; i++ {
		require.NoError(t, v.Set(rng.Intn(bitvec.Bits)))
	}
	return v
}

func TestSetTestReset(t *testing.T) {
	t.Run("set then test", func(t *testing.T) {
		var v bitvec.Vector
		for _, bit := range []int{0, 1, 63, 64, 100, 4094, 4095} {
			require.NoError(t, v.Set(bit))
			ok, err := v.Test(bit)
			require.NoError(t, err)
			require.True(t, ok, "bit %d", bit)
		}
	})
	t.Run("reset clears", func(t *testing.T) {
		var v bitvec.Vector
		require.NoError(t, v.Set(42))
		require.NoError(t, v.Reset(42))
		ok, err := v.Test(42)
		require.NoError(t, err)
		require.False(t, ok)
	})
	t.Run("reset is idempotent", func(t *testing.T) {
		var v bitvec.Vector
		require.NoError(t, v.Reset(7))
		require.True(t, v.IsZero())
	})
	t.Run("out of range leaves vector unchanged", func(t *testing.T) {
		var v bitvec.Vector
		require.NoError(t, v.Set(1))
		before := v
		for _, bit := range []int{-1, 4096, 1 << 20} {
			require.ErrorIs(t, v.Set(bit), bitvec.ErrBitRange)
			require.ErrorIs(t, v.Reset(bit), bitvec.ErrBitRange)
			_, err := v.Test(bit)
			require.ErrorIs(t, err, bitvec.ErrBitRange)
		}
		require.Equal(t, before, v)
	})
}

func TestClear(t *testing.T) {
	var v bitvec.Vector
	require.NoError(t, v.Set(0))
	require.NoError(t, v.Set(4095))
	v.Clear()
	require.True(t, v.IsZero())
}

func TestBoolean(t *testing.T) {
	var a, b bitvec.Vector
	require.NoError(t, a.Set(1))
	require.NoError(t, a.Set(2))
	require.NoError(t, b.Set(2))
	require.NoError(t, b.Set(3))

	assert.Equal(t, []int{1, 2, 3}, a.Or(b).SetBits())
	assert.Equal(t, []int{2}, a.And(b).SetBits())
	assert.Equal(t, []int{1, 3}, a.Xor(b).SetBits())
}

func TestBytesRoundTrip(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		var v bitvec.Vector
		buf := v.Bytes()
		require.Len(t, buf[:], bitvec.ByteLen)
		got, err := bitvec.FromBytes(buf[:])
		require.NoError(t, err)
		require.Equal(t, v, got)
	})
	t.Run("bit zero lands in final byte", func(t *testing.T) {
		var v bitvec.Vector
		require.NoError(t, v.Set(0))
		buf := v.Bytes()
		require.EqualValues(t, 1, buf[511])
		require.EqualValues(t, 0, buf[0])
	})
	t.Run("bit 4095 lands in first byte", func(t *testing.T) {
		var v bitvec.Vector
		require.NoError(t, v.Set(4095))
		buf := v.Bytes()
		require.EqualValues(t, 0x80, buf[0])
		require.EqualValues(t, 0, buf[511])
	})
	t.Run("random vectors", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 100; i++ {
			v := randomVector(t, rng, rng.Intn(200))
			buf := v.Bytes()
			got, err := bitvec.FromBytes(buf[:])
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	})
	t.Run("wrong lengths rejected", func(t *testing.T) {
		for _, n := range []int{0, 1, 511, 513, 1024} {
			_, err := bitvec.FromBytes(make([]byte, n))
			require.ErrorIs(t, err, bitvec.ErrBlobLength, "len %d", n)
		}
	})
}

func TestHex(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		var v bitvec.Vector
		require.Equal(t, "0", v.Hex())
	})
	t.Run("round trip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 50; i++ {
			v := randomVector(t, rng, rng.Intn(300))
			got, err := bitvec.FromHex(v.Hex())
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	})
	t.Run("prefix and case and whitespace", func(t *testing.T) {
		want, err := bitvec.FromHex("deadBEEF")
		require.NoError(t, err)
		for _, s := range []string{"0xdeadbeef", "0XDEADBEEF", "de ad\tbe ef", " deadbeef "} {
			got, err := bitvec.FromHex(s)
			require.NoError(t, err)
			require.Equal(t, want, got, "input %q", s)
		}
	})
	t.Run("known value", func(t *testing.T) {
		v, err := bitvec.FromHex("6")
		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, v.SetBits())
	})
	t.Run("invalid digit", func(t *testing.T) {
		for _, s := range []string{"12g4", "0x12z", "hello", "-1"} {
			_, err := bitvec.FromHex(s)
			require.ErrorIs(t, err, bitvec.ErrHexDigit, "input %q", s)
		}
	})
	t.Run("leading zeros preserve value", func(t *testing.T) {
		a, err := bitvec.FromHex("00ff")
		require.NoError(t, err)
		b, err := bitvec.FromHex("ff")
		require.NoError(t, err)
		require.Equal(t, b, a)
	})
}

func TestSetBits(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var v bitvec.Vector
		require.Empty(t, v.SetBits())
	})
	t.Run("all ones", func(t *testing.T) {
		var v bitvec.Vector
		for i := 0; i < bitvec.Bits; i++ {
			require.NoError(t, v.Set(i))
		}
		got := v.SetBits()
		require.Len(t, got, bitvec.Bits)
		for i, b := range got {
			require.Equal(t, i, b)
		}
	})
	t.Run("strictly ascending and matches test", func(t *testing.T) {
		rng := rand.New(rand.NewSource(99))
		v := randomVector(t, rng, 500)
		got := v.SetBits()
		require.Equal(t, v.OnesCount(), len(got))
		prev := -1
		for _, b := range got {
			require.Greater(t, b, prev)
			ok, err := v.Test(b)
			require.NoError(t, err)
			require.True(t, ok)
			prev = b
		}
	})
}
