package async

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many functions run at once. Callers block until a slot frees
// up, then run the function on their own goroutine.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool creates a pool with size slots. A non-positive size uses
// runtime.GOMAXPROCS(0) * 4.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0) * 4
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return p.size
}

// Do waits for a free slot and runs fn. It returns ctx.Err() if ctx ends while
// waiting; panics in fn come back as *PanicError.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	return Safe(fn)
}
