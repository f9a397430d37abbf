// Package workpool partitions a range of independent work items across a
// bounded number of goroutines and waits for all of them to finish. It is
// the single dispatch mechanism shared by the ChaCha20 driver and the
// Merkle reducer, so that both honor the same "byte-exact regardless of
// worker count" contract with one implementation.
package workpool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers reports how many goroutines Run would use for n items, given a
// caller override (0 means "use GOMAXPROCS"). It never exceeds n.
func Workers(n, override int) int {
	if n <= 0 {
		return 0
	}
	workers := override
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Run splits [0, n) into contiguous chunks, one per worker, and calls fn
// with the [start, end) range for each chunk concurrently. It blocks until
// every chunk has completed. workers must be ≥ 1. fn must only touch the
// byte range(s) corresponding to its [start, end) item indices so that no
// synchronization is required between chunks.
//
// Run never returns an error itself; fn errors (e.g. a scratch-buffer
// allocation failure surfaced by a caller) propagate via the returned error,
// and the first one observed is returned after every goroutine exits.
func Run(n, workers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		return fn(0, n)
	}

	chunk := n / workers
	remainder := n % workers

	var g errgroup.Group
	start := 0
	for w := 0; w < workers; w++ {
		size := chunk
		if w == workers-1 {
			size += remainder
		}
		if size == 0 {
			continue
		}
		s, e := start, start+size
		g.Go(func() error {
			return fn(s, e)
		})
		start = e
	}
	return g.Wait()
}
