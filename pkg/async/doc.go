// Package async provides a small generic Future for running a computation in
// the background and racing its completion against deadlines.
//
// Async starts the supplied function in its own goroutine and immediately
// returns a *Future. The caller can then block with Await, bound the wait
// with AwaitWithTimeout or AwaitContext, select on Done, or poll with
// IsComplete. Giving up on a future never stops the computation: the loser of
// a race keeps running, and Then lets the caller register cleanup for a
// result that arrives after nobody is waiting for it any more.
//
// # Usage
//
//	f := async.Async(ctx, target, dial)
//
//	select {
//	case <-f.Done():
//		sess, err := f.Await()
//		// use sess
//	case <-time.After(30 * time.Second):
//		f.Then(func(sess Session, err error) {
//			if err == nil {
//				sess.Close(context.Background())
//			}
//		})
//		return ErrTimeout
//	}
//
// # Error Handling
//
// AwaitWithTimeout returns ErrTimeout when the timer fires first;
// AwaitContext returns the context error.
package async
