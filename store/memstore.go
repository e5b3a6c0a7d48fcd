package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

/*
MemStore is an in-memory Conn backed by maps. It is only suitable for tests.
Scripts are emulated by name with the same semantics the Lua sources have
against Redis, including the atomicity the caller observes: the whole
emulation runs under one lock and intermediate state never escapes.
*/

////////////////////////////////////////////////////////////////////////////////

// MemStore is an in-memory store.
type MemStore struct {
	mtx       sync.Mutex
	sets      map[string]map[string]struct{}
	hashes    map[string]map[string][]byte
	deadlines map[string]time.Time
	nowFn     func() time.Time
	closed    bool
}

var _ Conn = (*MemStore)(nil)

// NewMemStore returns a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sets:      make(map[string]map[string]struct{}),
		hashes:    make(map[string]map[string][]byte),
		deadlines: make(map[string]time.Time),
		nowFn:     time.Now,
	}
}

// SetClock overrides the store's clock, for expiry tests.
func (m *MemStore) SetClock(now func() time.Time) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.nowFn = now
}

// dropExpired removes a key whose deadline has passed. Callers hold the lock.
func (m *MemStore) dropExpired(key string) {
	dl, ok := m.deadlines[key]
	if !ok || m.nowFn().Before(dl) {
		return
	}
	delete(m.sets, key)
	delete(m.hashes, key)
	delete(m.deadlines, key)
}

func (m *MemStore) set(key string) map[string]struct{} {
	m.dropExpired(key)
	return m.sets[key]
}

// setDst overwrites a destination set, matching store semantics: an empty
// result deletes the destination, and a successful store clears any TTL.
func (m *MemStore) setDst(dst string, members map[string]struct{}) {
	delete(m.deadlines, dst)
	if len(members) == 0 {
		delete(m.sets, dst)
		return
	}
	m.sets[dst] = members
}

func (m *MemStore) Ping(ctx context.Context) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.closed {
		return &Error{Kind: KindIO, Op: "PING", Err: fmt.Errorf("store closed")}
	}
	return nil
}

func (m *MemStore) HSet(ctx context.Context, key, field string, value []byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.dropExpired(key)
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string][]byte)
		m.hashes[key] = h
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	h[field] = cp
	return nil
}

func (m *MemStore) HGet(ctx context.Context, key, field string) ([]byte, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.dropExpired(key)
	v, ok := m.hashes[key][field]
	if !ok {
		return nil, notFound("HGET", key)
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (m *MemStore) SAdd(ctx context.Context, key, member string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.dropExpired(key)
	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{})
		m.sets[key] = s
	}
	s[member] = struct{}{}
	return nil
}

func (m *MemStore) SRem(ctx context.Context, key, member string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.dropExpired(key)
	if s, ok := m.sets[key]; ok {
		delete(s, member)
		if len(s) == 0 {
			delete(m.sets, key)
		}
	}
	return nil
}

func (m *MemStore) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return sorted(m.set(key)), nil
}

func (m *MemStore) SCard(ctx context.Context, key string) (int64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return int64(len(m.set(key))), nil
}

func (m *MemStore) SInter(ctx context.Context, keys ...string) ([]string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return sorted(m.inter(keys)), nil
}

func (m *MemStore) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return sorted(m.union(keys)), nil
}

func (m *MemStore) SDiff(ctx context.Context, keys ...string) ([]string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return sorted(m.diff(keys)), nil
}

func (m *MemStore) SInterStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	r := m.inter(keys)
	m.setDst(dst, r)
	return int64(len(r)), nil
}

func (m *MemStore) SUnionStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	r := m.union(keys)
	m.setDst(dst, r)
	return int64(len(r)), nil
}

func (m *MemStore) SDiffStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	r := m.diff(keys)
	m.setDst(dst, r)
	return int64(len(r)), nil
}

func (m *MemStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if !m.exists(key) {
		return notFound("EXPIRE", key)
	}
	m.deadlines[key] = m.nowFn().Add(ttl)
	return nil
}

// TTL follows the store's convention: -1s when the key has no expiry, -2s
// when the key is absent.
func (m *MemStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if !m.exists(key) {
		return -2 * time.Second, nil
	}
	dl, ok := m.deadlines[key]
	if !ok {
		return -1 * time.Second, nil
	}
	return dl.Sub(m.nowFn()), nil
}

func (m *MemStore) Eval(ctx context.Context, script Script, keys []string, args ...any) (int64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if len(args) != 2 {
		return 0, &Error{Kind: KindProtocol, Op: "EVAL(" + script.Name + ")",
			Err: fmt.Errorf("expected ttl and destination arguments, got %d", len(args))}
	}
	ttl, err := asSeconds(args[0])
	if err != nil {
		return 0, &Error{Kind: KindProtocol, Op: "EVAL(" + script.Name + ")", Err: err}
	}
	out, ok := args[1].(string)
	if !ok {
		return 0, &Error{Kind: KindProtocol, Op: "EVAL(" + script.Name + ")",
			Err: fmt.Errorf("destination must be a string, got %T", args[1])}
	}

	var result map[string]struct{}
	switch script.Name {
	case InterStoreExpire.Name:
		result = m.inter(keys)
	case UnionStoreExpire.Name:
		result = m.union(keys)
	case DiffStoreExpire.Name:
		result = m.diff(keys)
	case AllNotStoreExpire.Name:
		if len(keys) < 2 {
			return 0, &Error{Kind: KindProtocol, Op: "EVAL(" + script.Name + ")",
				Err: fmt.Errorf("expected universe, excludes and include keys")}
		}
		reduced := m.diff(keys[:len(keys)-1])
		include := m.set(keys[len(keys)-1])
		result = make(map[string]struct{})
		for member := range include {
			if _, ok := reduced[member]; ok {
				result[member] = struct{}{}
			}
		}
	default:
		return 0, &Error{Kind: KindProtocol, Op: "EVAL(" + script.Name + ")",
			Err: fmt.Errorf("unknown script")}
	}

	m.setDst(out, result)
	if len(result) > 0 && ttl > 0 {
		m.deadlines[out] = m.nowFn().Add(time.Duration(ttl) * time.Second)
	}
	return int64(len(result)), nil
}

func (m *MemStore) Del(ctx context.Context, key string) (bool, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.dropExpired(key)
	_, inSets := m.sets[key]
	_, inHashes := m.hashes[key]
	delete(m.sets, key)
	delete(m.hashes, key)
	delete(m.deadlines, key)
	return inSets || inHashes, nil
}

func (m *MemStore) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.closed = true
	return nil
}

func (m *MemStore) String() string {
	return "memory"
}

func (m *MemStore) exists(key string) bool {
	m.dropExpired(key)
	_, inSets := m.sets[key]
	_, inHashes := m.hashes[key]
	return inSets || inHashes
}

func (m *MemStore) inter(keys []string) map[string]struct{} {
	out := make(map[string]struct{})
	if len(keys) == 0 {
		return out
	}
	for member := range m.set(keys[0]) {
		in := true
		for _, k := range keys[1:] {
			if _, ok := m.set(k)[member]; !ok {
				in = false
				break
			}
		}
		if in {
			out[member] = struct{}{}
		}
	}
	return out
}

func (m *MemStore) union(keys []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, k := range keys {
		for member := range m.set(k) {
			out[member] = struct{}{}
		}
	}
	return out
}

func (m *MemStore) diff(keys []string) map[string]struct{} {
	out := make(map[string]struct{})
	if len(keys) == 0 {
		return out
	}
	for member := range m.set(keys[0]) {
		out[member] = struct{}{}
	}
	for _, k := range keys[1:] {
		for member := range m.set(k) {
			delete(out, member)
		}
	}
	return out
}

func sorted(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for member := range s {
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}

func asSeconds(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("ttl must be an integer, got %T", v)
	}
}
