package store

/*
Scripts are pure data values: source text plus a documented KEYS/ARGV
contract, handed to Conn.Eval. Keeping them as values makes them inspectable
in tests and lets the in-memory fake emulate them by name. Each script
materializes a composite set-algebra result and sets its expiry in the same
atomic unit, so the destination key is never observable without a TTL or
with a partial result.
*/

////////////////////////////////////////////////////////////////////////////////

// Script is an atomic multi-step server-side program.
type Script struct {
	// Name identifies the script to implementations that emulate rather
	// than interpret it.
	Name string
	// Source is the Lua program evaluated by a Redis-backed Conn.
	Source string
}

// InterStoreExpire intersects KEYS into ARGV[2] with a TTL of ARGV[1]
// seconds and returns the destination cardinality.
var InterStoreExpire = Script{
	Name: "inter_store_expire",
	Source: `
local ttl = tonumber(ARGV[1])
local out = ARGV[2]
redis.call('SINTERSTORE', out, unpack(KEYS))
if ttl and ttl > 0 then
  redis.call('EXPIRE', out, ttl)
end
return redis.call('SCARD', out)
`,
}

// UnionStoreExpire unions KEYS into ARGV[2] with a TTL of ARGV[1] seconds
// and returns the destination cardinality.
var UnionStoreExpire = Script{
	Name: "union_store_expire",
	Source: `
local ttl = tonumber(ARGV[1])
local out = ARGV[2]
redis.call('SUNIONSTORE', out, unpack(KEYS))
if ttl and ttl > 0 then
  redis.call('EXPIRE', out, ttl)
end
return redis.call('SCARD', out)
`,
}

// DiffStoreExpire subtracts KEYS[2..] from KEYS[1] into ARGV[2] with a TTL
// of ARGV[1] seconds and returns the destination cardinality.
var DiffStoreExpire = Script{
	Name: "diff_store_expire",
	Source: `
local ttl = tonumber(ARGV[1])
local out = ARGV[2]
redis.call('SDIFFSTORE', out, unpack(KEYS))
if ttl and ttl > 0 then
  redis.call('EXPIRE', out, ttl)
end
return redis.call('SCARD', out)
`,
}

// AllNotStoreExpire computes KEYS[#KEYS] ∩ (KEYS[1] − KEYS[2..#KEYS-1]) into
// ARGV[2]: KEYS[1] is the universe, the middle keys are excludes, the last
// key is the include set. The intermediate difference lives at out..":tmp"
// only inside the script; it is given its own TTL as a guard against the
// server dying mid-script, then deleted before the script returns.
var AllNotStoreExpire = Script{
	Name: "all_not_store_expire",
	Source: `
local ttl = tonumber(ARGV[1])
local out = ARGV[2]
local tmp = out .. ':tmp'
redis.call('SDIFFSTORE', tmp, unpack(KEYS, 1, #KEYS - 1))
if ttl and ttl > 0 then
  redis.call('EXPIRE', tmp, ttl)
end
redis.call('SINTERSTORE', out, KEYS[#KEYS], tmp)
if ttl and ttl > 0 then
  redis.call('EXPIRE', out, ttl)
end
redis.call('DEL', tmp)
return redis.call('SCARD', out)
`,
}
