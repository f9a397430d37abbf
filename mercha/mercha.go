// Package mercha composes ChaCha20 and the Merkle-AR reduction into a single
// deterministic 64-byte digest over an arbitrary power-of-two-length input:
//
//	digest = Merkle(ChaCha20(key, nonce, 0, input))
//
// The pipeline mutates input in place (it becomes ChaCha20(key, nonce, 0,
// input) after Mercha returns) and has no streaming or incremental mode;
// see mercha/chacha20, mercha/arhash, and mercha/merkle for the constituent
// contracts.
package mercha

import (
	"errors"
	"fmt"

	"github.com/go-mercha/mercha/internal/blockmath"
	"github.com/go-mercha/mercha/mercha/chacha20"
	"github.com/go-mercha/mercha/mercha/merkle"
)

// DigestSize is the length in bytes of Mercha's output.
const DigestSize = 64

// MinInputLength is the smallest input length the full pipeline accepts.
const MinInputLength = 64

// ErrInputTooShort reports an input shorter than MinInputLength.
var ErrInputTooShort = errors.New("mercha: input must be at least 64 bytes")

// ErrNotPowerOfTwo reports an input length that is not a power of two, which
// the Merkle stage requires (the tree must be perfect).
var ErrNotPowerOfTwo = errors.New("mercha: input length must be a power of two")

// ErrShortOutput reports an output buffer smaller than DigestSize.
var ErrShortOutput = errors.New("mercha: output buffer shorter than 64 bytes")

// Mercha runs chacha20.Encrypt over input in place with counter 0, then
// reduces the result with merkle.Reduce, writing the 64-byte root into
// output. Preconditions: len(input) is a power of two ≥ 64; len(output) ≥
// 64; output does not alias input.
//
// After Mercha returns, input holds ChaCha20(key, nonce, 0, input) — an
// observable side effect. Callers that need the original plaintext
// preserved must copy it before calling Mercha.
func Mercha(key [chacha20.KeySize]byte, nonce [chacha20.NonceSize]byte, input []byte, output []byte) error {
	if len(input) < MinInputLength {
		return fmt.Errorf("%w: got %d", ErrInputTooShort, len(input))
	}
	if !blockmath.IsPowerOfTwo(len(input)) {
		return fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, len(input))
	}
	if len(output) < DigestSize {
		return ErrShortOutput
	}

	if err := chacha20.Encrypt(key, nonce, 0, input); err != nil {
		return fmt.Errorf("mercha: chacha20 stage: %w", err)
	}
	if err := merkle.Reduce(input, output); err != nil {
		return fmt.Errorf("mercha: merkle stage: %w", err)
	}
	return nil
}
