// Package merkle implements the binary Merkle-style reduction that turns a
// power-of-two-length buffer of 64-byte leaves into a single 64-byte root,
// using mercha/arhash's merge_hash as the only internal-node operation.
package merkle

import (
	"errors"
	"fmt"

	"github.com/go-mercha/mercha/internal/blockmath"
	"github.com/go-mercha/mercha/internal/workpool"
	"github.com/go-mercha/mercha/mercha/arhash"
)

// parallelThreshold is the minimum number of pairs at a level before the
// reduction dispatches across workers (spec: "num_pairs >= 4").
const parallelThreshold = 4

// ErrInvalidLength reports that the input length doesn't meet the Merkle
// stage's precondition: a positive power-of-two multiple of
// arhash.BlockSize.
var ErrInvalidLength = errors.New("merkle: length must be a power-of-two multiple of 64")

// ErrShortOutput reports that the caller's output buffer is smaller than
// arhash.BlockSize.
var ErrShortOutput = errors.New("merkle: output buffer shorter than 64 bytes")

// WorkerOverride lets a caller (internal/config's worker_count knob) pin the
// number of workers used for parallel pair reduction; 0 means "auto"
// (runtime.GOMAXPROCS(0)).
var WorkerOverride int

// Reduce folds input — read-only, never mutated — down to a single 64-byte
// root written into output. length must be a power-of-two multiple of 64;
// for length == 64 this is a passthrough copy. Reduce allocates two scratch
// buffers (ping-pong) of len(input)/2 and len(input)/4 bytes, 3·len(input)/4
// combined, and never touches input's backing array.
func Reduce(input []byte, output []byte) error {
	length := len(input)
	if length == 0 || length%arhash.BlockSize != 0 || !blockmath.IsPowerOfTwo(length) {
		return fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}
	if len(output) < arhash.BlockSize {
		return ErrShortOutput
	}

	if length == arhash.BlockSize {
		copy(output, input[:arhash.BlockSize])
		return nil
	}

	// bufA holds the first level (length/2 bytes) and bufB the second
	// (length/4 bytes); every later, smaller level sub-slices whichever of the
	// two the previous level did not write.
	bufA := make([]byte, length/2)
	bufB := make([]byte, length/4)

	prev := input
	cur := bufA
	levelLen := length / 2

	for levelLen >= arhash.BlockSize {
		dst := cur[:levelLen]
		if err := reduceLevel(prev, dst, levelLen/arhash.BlockSize); err != nil {
			return err
		}

		prev = dst
		if &cur[0] == &bufA[0] {
			cur = bufB
		} else {
			cur = bufA
		}
		levelLen /= 2
	}

	copy(output[:arhash.BlockSize], prev[:arhash.BlockSize])
	return nil
}

// reduceLevel applies merge_hash to every consecutive pair of 64-byte leaves
// in prevLevel, writing numPairs 64-byte results into curLevel. It is
// embarrassingly parallel across pairs: at parallelThreshold pairs or more, work
// is dispatched across a worker pool with each worker owning a disjoint
// range of pair indices (and therefore disjoint byte ranges of curLevel).
func reduceLevel(prevLevel, curLevel []byte, numPairs int) error {
	workers := 1
	if numPairs >= parallelThreshold {
		workers = workpool.Workers(numPairs, WorkerOverride)
	}

	return workpool.Run(numPairs, workers, func(start, end int) error {
		for j := start; j < end; j++ {
			var left, right [64]byte
			copy(left[:], prevLevel[2*j*arhash.BlockSize:(2*j+1)*arhash.BlockSize])
			copy(right[:], prevLevel[(2*j+1)*arhash.BlockSize:(2*j+2)*arhash.BlockSize])

			merged := arhash.MergeHash(left, right)
			copy(curLevel[j*arhash.BlockSize:(j+1)*arhash.BlockSize], merged[:])
		}
		return nil
	})
}

// LevelCount returns the number of merge_hash applications a Reduce call
// over a length-byte buffer performs: length/64 - 1 for length >= 128, and 0
// for length == 64 (the passthrough case).
func LevelCount(length int) int {
	if length <= arhash.BlockSize {
		return 0
	}
	return length/arhash.BlockSize - 1
}
