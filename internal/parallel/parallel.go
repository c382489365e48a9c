// Package parallel splits element-wise CPU kernels across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum elements per goroutine.
}

// DefaultConfig returns defaults based on CPU count.
//
// Typical ICNN batches hold a few thousand activations, so chunks below
// 4096 elements stay on the calling goroutine.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// Chunks calls f(lo, hi) over disjoint ranges covering [0, n) and waits
// for all of them. f must only touch indices in its own range.
func Chunks(n int, cfg Config, f func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(lo, hi)
		}()
	}
	wg.Wait()
}

// Map writes f(src[i]) into dst[i] using Chunks. dst and src must have the
// same length; they may alias.
func Map(dst, src []float64, cfg Config, f func(float64) float64) {
	Chunks(len(src), cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = f(src[i])
		}
	})
}
