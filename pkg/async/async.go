package async

import (
	"context"
	"time"
)

// Future represents the eventual result of a computation running in its own goroutine.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Async runs fn with param in a new goroutine and returns its Future.
// A context cancelled before fn starts completes the future with ctx.Err().
// Once running, fn itself decides how to honour ctx.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// Done is closed when the computation has finished.
func (f *Future[U]) Done() <-chan struct{} { return f.done }

// Await blocks until the computation finishes.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext waits for the result or until ctx is done, whichever comes first.
// Giving up does not stop the computation.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits for the result for at most timeout.
// It returns ErrTimeout if the computation is still running when the timer fires.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then calls fn with the result once the computation finishes.
// fn runs in its own goroutine, so Then never blocks.
func (f *Future[U]) Then(fn func(U, error)) {
	go func() {
		<-f.done
		fn(f.result, f.err)
	}()
}
