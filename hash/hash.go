// Package hash computes fixed-size hashes that can be combined
// hierarchically. Hashes of AST entities are built by merging the hashes of
// their children into a per-kind seed.
package hash

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Size is the byte size of a Hash.
const Size = 32

// Hash is a fixed-size hash value. The zero value is reserved as "no hash".
type Hash [Size]byte

// Bytes computes the hash of a byte slice.
func Bytes(data []byte) Hash {
	sum := sha512.Sum512_256(data)
	return Hash(sum)
}

// String computes the hash of a string.
func String(data string) Hash {
	return Bytes([]byte(data))
}

// Int computes the hash of an integer.
func Int(v int64) Hash {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return Bytes(buf[:])
}

// Uint computes the hash of an unsigned integer.
func Uint(v uint64) Hash {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return Bytes(buf[:])
}

// Bool computes the hash of a boolean.
func Bool(v bool) Hash {
	if v {
		return Bytes([]byte{1})
	}
	return Bytes([]byte{0})
}

// Float computes the hash of a float bit pattern.
func Float(v float64) Hash {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return Bytes(buf[:])
}

// Add combines two hashes commutatively. Add(a, b) == Add(b, a).
func (h Hash) Add(other Hash) Hash {
	var r Hash
	for i := range h {
		r[i] = h[i] ^ other[i]
	}
	return r
}

// Merge combines two hashes in an order-dependent fashion.
func (h Hash) Merge(other Hash) Hash {
	var buf [2 * Size]byte
	copy(buf[:Size], h[:])
	copy(buf[Size:], other[:])
	return Bytes(buf[:])
}

// String returns the hexadecimal representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}
