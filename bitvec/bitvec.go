package bitvec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"unicode"
)

/*
Package bitvec implements a fixed-width 4096-bit unsigned vector used as the
per-element flag word. Bit 0 is the least significant bit. The canonical wire
form is exactly 512 bytes, big endian; a legacy hex form is supported for
reading records written by older tooling.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	// Bits is the fixed width of a Vector.
	Bits = 4096

	// ByteLen is the length of the canonical big-endian encoding.
	ByteLen = Bits / 8

	wordBits = 64
	words    = Bits / wordBits
)

var (
	// ErrBitRange is returned for any bit index outside [0, 4096).
	ErrBitRange = errors.New("bit index out of range (0..4095)")

	// ErrBlobLength is returned when a binary encoding is not exactly 512 bytes.
	ErrBlobLength = errors.New("binary flag blob must be exactly 512 bytes")

	// ErrHexDigit is returned when a hex encoding contains a non-hex character.
	ErrHexDigit = errors.New("invalid hex digit")
)

// Vector is a 4096-bit unsigned value. Word 0 holds bits 0..63. The zero
// value is the all-zero vector, and vectors compare with ==.
type Vector [words]uint64

func checkBit(bit int) error {
	if bit < 0 || bit >= Bits {
		return fmt.Errorf("bit %d: %w", bit, ErrBitRange)
	}
	return nil
}

// Set sets the given bit to 1.
func (v *Vector) Set(bit int) error {
	if err := checkBit(bit); err != nil {
		return err
	}
	v[bit/wordBits] |= 1 << (bit % wordBits)
	return nil
}

// Reset clears the given bit.
func (v *Vector) Reset(bit int) error {
	if err := checkBit(bit); err != nil {
		return err
	}
	v[bit/wordBits] &^= 1 << (bit % wordBits)
	return nil
}

// Test reports whether the given bit is set.
func (v *Vector) Test(bit int) (bool, error) {
	if err := checkBit(bit); err != nil {
		return false, err
	}
	return v[bit/wordBits]&(1<<(bit%wordBits)) != 0, nil
}

// Clear zeroes the vector.
func (v *Vector) Clear() {
	*v = Vector{}
}

// Or returns the bitwise union of v and o.
func (v Vector) Or(o Vector) Vector {
	var r Vector
	for i := range v {
		r[i] = v[i] | o[i]
	}
	return r
}

// And returns the bitwise intersection of v and o.
func (v Vector) And(o Vector) Vector {
	var r Vector
	for i := range v {
		r[i] = v[i] & o[i]
	}
	return r
}

// Xor returns the bitwise symmetric difference of v and o.
func (v Vector) Xor(o Vector) Vector {
	var r Vector
	for i := range v {
		r[i] = v[i] ^ o[i]
	}
	return r
}

// IsZero reports whether no bit is set.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// OnesCount returns the number of set bits.
func (v Vector) OnesCount() int {
	var n int
	for i := range v {
		n += bits.OnesCount64(v[i])
	}
	return n
}

// Bytes returns the canonical big-endian encoding: byte 0 holds bits
// 4095..4088, byte 511 holds bits 7..0.
func (v Vector) Bytes() [ByteLen]byte {
	var out [ByteLen]byte
	for i := range v {
		binary.BigEndian.PutUint64(out[(words-1-i)*8:], v[i])
	}
	return out
}

// FromBytes decodes the canonical 512-byte big-endian encoding. Any other
// length is rejected.
func FromBytes(data []byte) (Vector, error) {
	var v Vector
	if len(data) != ByteLen {
		return v, fmt.Errorf("got %d bytes: %w", len(data), ErrBlobLength)
	}
	for i := range v {
		v[i] = binary.BigEndian.Uint64(data[(words-1-i)*8:])
	}
	return v, nil
}

// Hex returns the legacy hex encoding: lowercase, no prefix, no leading
// zeros. The zero vector encodes as "0".
func (v Vector) Hex() string {
	top := -1
	for i := words - 1; i >= 0; i-- {
		if v[i] != 0 {
			top = i
			break
		}
	}
	if top < 0 {
		return "0"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%x", v[top])
	for i := top - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%016x", v[i])
	}
	return sb.String()
}

// String implements fmt.Stringer using the hex encoding.
func (v Vector) String() string {
	return v.Hex()
}

// FromHex decodes a legacy hex encoding. An optional 0x/0X prefix is
// skipped, digits may be either case, and whitespace between digits is
// tolerated. The first non-hex character aborts the parse; no partial value
// is returned. Values wider than 4096 bits wrap modulo 2^4096, matching the
// unchecked arithmetic of the writers that produced this encoding.
func FromHex(s string) (Vector, error) {
	var v Vector
	rest := s
	if len(rest) >= 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		rest = rest[2:]
	}
	for _, r := range rest {
		if unicode.IsSpace(r) {
			continue
		}
		var nib uint64
		switch {
		case r >= '0' && r <= '9':
			nib = uint64(r - '0')
		case r >= 'a' && r <= 'f':
			nib = uint64(r-'a') + 10
		case r >= 'A' && r <= 'F':
			nib = uint64(r-'A') + 10
		default:
			return Vector{}, fmt.Errorf("character %q: %w", r, ErrHexDigit)
		}
		v.shiftLeft4()
		v[0] |= nib
	}
	return v, nil
}

// shiftLeft4 shifts the whole vector left by one nibble, discarding the top
// four bits.
func (v *Vector) shiftLeft4() {
	for i := words - 1; i > 0; i-- {
		v[i] = v[i]<<4 | v[i-1]>>60
	}
	v[0] <<= 4
}

// SetBits returns the strictly ascending list of set bit positions. Zero
// words are skipped, so sparse vectors are cheap.
func (v Vector) SetBits() []int {
	out := make([]int, 0, 64)
	for i := range v {
		w := v[i]
		for w != 0 {
			out = append(out, i*wordBits+bits.TrailingZeros64(w))
			w &= w - 1
		}
	}
	return out
}
