// Package async runs work off the request path.
//
// Exec starts a function on its own goroutine and returns an ExecFuture:
//
//	future := async.Exec(context.WithoutCancel(ctx), tasks, runTasks)
//	if err := future.AwaitWithTimeout(time.Second); errors.Is(err, async.ErrTimeout) {
//		// still running
//	}
//
// Pool limits concurrency for blocking calls. Do waits for a slot, runs the
// function and returns its error:
//
//	pool := async.NewPool(16)
//	err := pool.Do(ctx, func() error { return slowCall() })
//
// Both recover panics into *PanicError, which matches ErrPanic with errors.Is.
package async
