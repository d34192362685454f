// Package parallel splits index ranges across a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// chunk is one contiguous range of a ForEachChunk call.
type chunk struct {
	fn         func(start, end int)
	start, end int
	done       *sync.WaitGroup
}

func (c chunk) run() {
	defer c.done.Done()
	c.fn(c.start, c.end)
}

// WorkerPool runs the chunks of ForEachChunk calls on a fixed set of
// goroutines. The calling goroutine takes part: it runs the last chunk
// itself, and any chunk the workers cannot accept right away.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	chunks  chan chunk
	wg      sync.WaitGroup

	// mu guards closed against sends racing Close.
	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts workers goroutines. Zero or negative selects
// GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: workers,
		chunks:  make(chan chunk, workers*2),
	}
	p.wg.Add(workers)
	for range workers {
		go func() {
			defer p.wg.Done()
			for c := range p.chunks {
				c.run()
			}
		}()
	}
	return p
}

// ForEachChunk splits [0, n) into contiguous ranges of at most size
// elements and calls fn(start, end) once per range, returning when every
// range is done. Ranges never overlap, so fn may write to per-index slots
// without synchronization. A size below 1 splits n evenly across the
// workers. After Close every range runs on the calling goroutine.
func (p *WorkerPool) ForEachChunk(n, size int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if size <= 0 {
		size = (n + p.workers - 1) / p.workers
	}
	if size >= n {
		fn(0, n)
		return
	}

	var done sync.WaitGroup
	done.Add((n + size - 1) / size)

	p.mu.RLock()
	for start := 0; start < n; start += size {
		c := chunk{fn: fn, start: start, end: min(start+size, n), done: &done}
		if p.closed || c.end == n {
			c.run()
			continue
		}
		select {
		case p.chunks <- c:
		default:
			c.run()
		}
	}
	p.mu.RUnlock()

	done.Wait()
}

// Close stops the workers after they finish the chunks already handed to
// them. Close is safe to call more than once.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.chunks)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}
