// Package parallel provides chunked parallel execution for tensor kernels.
package parallel

import (
	"runtime"
	"sync"
)

// minChunk is the smallest per-goroutine work unit. Below this the
// scheduling overhead outweighs the kernel work.
const minChunk = 64

// Ranges executes f over disjoint sub-ranges of [0, n), splitting the work
// across GOMAXPROCS goroutines. Small ranges run sequentially.
func Ranges(n int, f func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers <= 1 || n < 2*minChunk {
		f(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for every i in [0, n), in parallel where worthwhile.
func For(n int, f func(i int)) {
	Ranges(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	})
}
