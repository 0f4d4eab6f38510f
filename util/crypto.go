package util

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Digest returns blake2b-256 hash of the concatenation of length-prefixed chunks.
// Length prefixes make the digest unambiguous with respect to chunk boundaries
func Digest(chunks ...[]byte) [32]byte {
	h, err := blake2b.New256(nil)
	AssertNoError(err)
	var lenBuf [4]byte
	for _, c := range chunks {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c)))
		h.Write(lenBuf[:])
		h.Write(c)
	}
	var ret [32]byte
	copy(ret[:], h.Sum(nil))
	return ret
}
