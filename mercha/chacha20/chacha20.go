// Package chacha20 implements the ChaCha20 stream cipher block function and
// an in-place, parallel-dispatch-capable Encrypt driver, per RFC 7539's
// 32-bit-counter / 96-bit-nonce variant.
package chacha20

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/go-mercha/mercha/internal/blockmath"
	"github.com/go-mercha/mercha/internal/workpool"
	"github.com/go-mercha/mercha/mercha/simd"
)

// KeySize and NonceSize are the required lengths of Encrypt's key and nonce
// arguments.
const (
	KeySize   = 32
	NonceSize = 12
	BlockSize = 64
)

// sequentialTier is the block count above which Encrypt dispatches across a
// worker pool rather than running single-threaded (spec's parallelism
// tiers collapse to this one threshold; see DESIGN.md).
const sequentialTier = 2

// ErrInvalidKeyLen reports a key whose length is not KeySize.
var ErrInvalidKeyLen = errors.New("chacha20: key must be 32 bytes")

// ErrInvalidNonceLen reports a nonce whose length is not NonceSize.
var ErrInvalidNonceLen = errors.New("chacha20: nonce must be 12 bytes")

// WorkerOverride lets a caller (internal/config's worker_count knob) pin the
// number of workers used for the parallel block dispatch; 0 means "auto"
// (runtime.GOMAXPROCS(0)).
var WorkerOverride int

const (
	c0 = 0x61707865
	c1 = 0x3320646e
	c2 = 0x79622d32
	c3 = 0x6b206574
)

// initState builds the 16-word ChaCha state for the given key, nonce, and
// block counter, in RFC 7539's fixed layout:
// [c0,c1,c2,c3, k0..k7, ctr, n0,n1,n2].
func initState(key [KeySize]byte, nonce [NonceSize]byte, counter uint32) [16]uint32 {
	var state [16]uint32
	state[0], state[1], state[2], state[3] = c0, c1, c2, c3
	for i := 0; i < 8; i++ {
		state[4+i] = binary.LittleEndian.Uint32(key[4*i:])
	}
	state[12] = counter
	for i := 0; i < 3; i++ {
		state[13+i] = binary.LittleEndian.Uint32(nonce[4*i:])
	}
	return state
}

func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	a += b
	d ^= a
	d = bits.RotateLeft32(d, 16)

	c += d
	b ^= c
	b = bits.RotateLeft32(b, 12)

	a += b
	d ^= a
	d = bits.RotateLeft32(d, 8)

	c += d
	b ^= c
	b = bits.RotateLeft32(b, 7)

	return a, b, c, d
}

// block computes 64 bytes of keystream from the given state via 20 rounds
// (10 column/diagonal double-rounds), then adds the original state back in
// word-wise before serializing little-endian. state is not mutated.
func block(state [16]uint32) [64]byte {
	x := state

	for round := 0; round < 10; round++ {
		// Column round.
		x[0], x[4], x[8], x[12] = quarterRound(x[0], x[4], x[8], x[12])
		x[1], x[5], x[9], x[13] = quarterRound(x[1], x[5], x[9], x[13])
		x[2], x[6], x[10], x[14] = quarterRound(x[2], x[6], x[10], x[14])
		x[3], x[7], x[11], x[15] = quarterRound(x[3], x[7], x[11], x[15])

		// Diagonal round.
		x[0], x[5], x[10], x[15] = quarterRound(x[0], x[5], x[10], x[15])
		x[1], x[6], x[11], x[12] = quarterRound(x[1], x[6], x[11], x[12])
		x[2], x[7], x[8], x[13] = quarterRound(x[2], x[7], x[8], x[13])
		x[3], x[4], x[9], x[14] = quarterRound(x[3], x[4], x[9], x[14])
	}

	var out [64]byte
	for i := range x {
		x[i] += state[i]
		binary.LittleEndian.PutUint32(out[4*i:], x[i])
	}
	return out
}

// Encrypt XORs the ChaCha20 keystream for (key, nonce, ctr0) into buffer in
// place. len(buffer) == 0 is a no-op. The final block may be partial; only
// len(buffer) mod 64 bytes of its keystream are consumed. Encrypt dispatches
// across a worker pool once the block count exceeds sequentialTier; the
// result is byte-identical regardless of worker count (each worker derives
// its keystream from a thread-local clone of state, touching only its own
// disjoint stripe of buffer).
func Encrypt(key [KeySize]byte, nonce [NonceSize]byte, ctr0 uint32, buffer []byte) error {
	if len(buffer) == 0 {
		return nil
	}

	state := initState(key, nonce, ctr0)
	numBlocks := blockmath.CeilDivBlocks(len(buffer))

	workers := 1
	if numBlocks > sequentialTier {
		workers = workpool.Workers(numBlocks, WorkerOverride)
	}

	return workpool.Run(numBlocks, workers, func(start, end int) error {
		localState := state
		for i := start; i < end; i++ {
			localState[12] = ctr0 + uint32(i)
			keystream := block(localState)

			offset := i * BlockSize
			n := BlockSize
			if offset+n > len(buffer) {
				n = len(buffer) - offset
			}
			simd.XorInto(buffer[offset:offset+n], keystream[:n])
		}
		return nil
	})
}

// NewKey and NewNonce are small validating constructors for callers that
// hold key/nonce material as slices rather than fixed-size arrays.
func NewKey(b []byte) ([KeySize]byte, error) {
	var key [KeySize]byte
	if len(b) != KeySize {
		return key, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLen, len(b))
	}
	copy(key[:], b)
	return key, nil
}

func NewNonce(b []byte) ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if len(b) != NonceSize {
		return nonce, fmt.Errorf("%w: got %d bytes", ErrInvalidNonceLen, len(b))
	}
	copy(nonce[:], b)
	return nonce, nil
}
