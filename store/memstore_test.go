package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/bitdex/bitdex/store"
	"github.com/stretchr/testify/require"
)

func TestHashOps(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemStore()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, m.HSet(ctx, "h", "f", []byte{0x00, 0xff}))
		v, err := m.HGet(ctx, "h", "f")
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0xff}, v)
	})
	t.Run("absent field", func(t *testing.T) {
		_, err := m.HGet(ctx, "h", "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.Equal(t, store.KindNotFound, store.KindOf(err))
	})
	t.Run("absent key", func(t *testing.T) {
		_, err := m.HGet(ctx, "nope", "f")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSetOps(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemStore()

	require.NoError(t, m.SAdd(ctx, "s1", "a"))
	require.NoError(t, m.SAdd(ctx, "s1", "b"))
	require.NoError(t, m.SAdd(ctx, "s1", "a")) // idempotent
	require.NoError(t, m.SAdd(ctx, "s2", "b"))
	require.NoError(t, m.SAdd(ctx, "s2", "c"))

	t.Run("members and card", func(t *testing.T) {
		members, err := m.SMembers(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, members)
		n, err := m.SCard(ctx, "s1")
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})
	t.Run("members of absent key is empty", func(t *testing.T) {
		members, err := m.SMembers(ctx, "nope")
		require.NoError(t, err)
		require.Empty(t, members)
	})
	t.Run("algebra", func(t *testing.T) {
		inter, err := m.SInter(ctx, "s1", "s2")
		require.NoError(t, err)
		require.Equal(t, []string{"b"}, inter)

		union, err := m.SUnion(ctx, "s1", "s2")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, union)

		diff, err := m.SDiff(ctx, "s1", "s2")
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, diff)
	})
	t.Run("rem", func(t *testing.T) {
		require.NoError(t, m.SRem(ctx, "s1", "a"))
		require.NoError(t, m.SRem(ctx, "s1", "zzz")) // absent member is a no-op
		members, err := m.SMembers(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, []string{"b"}, members)
	})
}

func TestStoreVariants(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemStore()
	require.NoError(t, m.SAdd(ctx, "s1", "a"))
	require.NoError(t, m.SAdd(ctx, "s1", "b"))
	require.NoError(t, m.SAdd(ctx, "s2", "b"))

	n, err := m.SInterStore(ctx, "dst", "s1", "s2")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	members, err := m.SMembers(ctx, "dst")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, members)

	t.Run("empty result deletes destination", func(t *testing.T) {
		n, err := m.SInterStore(ctx, "dst", "s1", "empty")
		require.NoError(t, err)
		require.EqualValues(t, 0, n)
		ttl, err := m.TTL(ctx, "dst")
		require.NoError(t, err)
		require.Equal(t, -2*time.Second, ttl)
	})
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemStore()
	now := time.Unix(1000, 0)
	m.SetClock(func() time.Time { return now })

	require.NoError(t, m.SAdd(ctx, "s", "a"))
	require.ErrorIs(t, m.Expire(ctx, "missing", time.Minute), store.ErrNotFound)
	require.NoError(t, m.Expire(ctx, "s", 5*time.Second))

	ttl, err := m.TTL(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, ttl)

	now = now.Add(6 * time.Second)
	members, err := m.SMembers(ctx, "s")
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestDel(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemStore()
	require.NoError(t, m.SAdd(ctx, "s", "a"))

	existed, err := m.Del(ctx, "s")
	require.NoError(t, err)
	require.True(t, existed)

	existed, err = m.Del(ctx, "s")
	require.NoError(t, err)
	require.False(t, existed)
}

func TestEvalScripts(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemStore()
	for key, members := range map[string][]string{
		"u":  {"a", "b", "c"},
		"b1": {"a", "c"},
		"b2": {"a", "b"},
	} {
		for _, member := range members {
			require.NoError(t, m.SAdd(ctx, key, member))
		}
	}

	t.Run("inter store expire", func(t *testing.T) {
		n, err := m.Eval(ctx, store.InterStoreExpire, []string{"b1", "b2"}, 5, "out1")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		members, err := m.SMembers(ctx, "out1")
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, members)
		ttl, err := m.TTL(ctx, "out1")
		require.NoError(t, err)
		require.Positive(t, ttl)
		require.LessOrEqual(t, ttl, 5*time.Second)
	})
	t.Run("union store expire", func(t *testing.T) {
		n, err := m.Eval(ctx, store.UnionStoreExpire, []string{"b1", "b2"}, 5, "out2")
		require.NoError(t, err)
		require.EqualValues(t, 3, n)
	})
	t.Run("diff store expire", func(t *testing.T) {
		n, err := m.Eval(ctx, store.DiffStoreExpire, []string{"u", "b2"}, 5, "out3")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		members, err := m.SMembers(ctx, "out3")
		require.NoError(t, err)
		require.Equal(t, []string{"c"}, members)
	})
	t.Run("all not store expire", func(t *testing.T) {
		// include=b1 ∩ (u − b2) = {a,c} ∩ {c} = {c}
		n, err := m.Eval(ctx, store.AllNotStoreExpire, []string{"u", "b2", "b1"}, 5, "out4")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		members, err := m.SMembers(ctx, "out4")
		require.NoError(t, err)
		require.Equal(t, []string{"c"}, members)
		// the intermediate key is never visible
		ttl, err := m.TTL(ctx, "out4:tmp")
		require.NoError(t, err)
		require.Equal(t, -2*time.Second, ttl)
	})
	t.Run("unknown script", func(t *testing.T) {
		_, err := m.Eval(ctx, store.Script{Name: "nope"}, []string{"u"}, 5, "out")
		require.Error(t, err)
		require.Equal(t, store.KindProtocol, store.KindOf(err))
	})
}
