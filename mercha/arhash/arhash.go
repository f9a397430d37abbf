// Package arhash implements the pipeline's custom 16-lane add-rotate (AR)
// compression function, merge_hash. It folds two 64-byte blocks into one and
// is the sole internal-node operation of the Merkle reducer in
// mercha/merkle. It is not a standard hash and must not be replaced by one:
// preserve the exact seeding, round count, and finalization below.
package arhash

import (
	"encoding/binary"
	"math/bits"
)

// BlockSize is the size in bytes of each input block and the output block.
const BlockSize = 64

// rounds is the number of by-7/by-9 add-rotate rounds merge_hash performs.
const rounds = 10

// MergeHash folds block1 and block2 into a single 64-byte block. It is pure
// and deterministic: the same pair of blocks always produces the same
// output, and merge_hash is not commutative (MergeHash(a, b) generally
// differs from MergeHash(b, a), since the seeding step pairs word i of one
// input with word 7-i of the other).
func MergeHash(block1, block2 [64]byte) [64]byte {
	var w1, w2 [8]uint32
	for i := range w1 {
		w1[i] = binary.LittleEndian.Uint32(block1[4*i:])
		w2[i] = binary.LittleEndian.Uint32(block2[4*i:])
	}

	var s [16]uint32
	for i := 0; i < 8; i++ {
		s[i] = w1[i] ^ w2[7-i]
		s[i+8] = w2[i] ^ w1[7-i]
	}

	for r := 0; r < rounds; r++ {
		// distance-4 add-rotate, by-7
		for i := 0; i < 4; i++ {
			s[i] += s[i+4]
			s[i] = bits.RotateLeft32(s[i], 7)
		}
		for i := 0; i < 4; i++ {
			s[i+8] += s[i+12]
			s[i+8] = bits.RotateLeft32(s[i+8], 7)
		}
		// distance-8 add-rotate, by-9
		for i := 0; i < 8; i++ {
			s[i] += s[i+8]
			s[i] = bits.RotateLeft32(s[i], 9)
		}
	}

	// Final anti-diagonal addition.
	s[0] += s[15]
	s[1] += s[14]
	s[2] += s[13]
	s[3] += s[12]
	s[4] += s[11]
	s[5] += s[10]
	s[6] += s[9]
	s[7] += s[8]

	var out [64]byte
	for i, word := range s {
		binary.LittleEndian.PutUint32(out[4*i:], word)
	}
	return out
}
