// Package queue provides the closable, failable FIFO the engine is built on.
//
// A Queue carries values from many producers to consumers that pull either
// one value at a time or through a lazy iterator. It has two terminal
// states: Close ends the sequence but lets already-buffered values drain,
// while Fail ends it immediately and makes every subsequent pull return the
// failure. The first terminal state wins.
package queue

import (
	"context"
	"errors"
	"iter"
	"sync"
)

// ErrClosed indicates the queue no longer accepts values and has no more to
// deliver.
var ErrClosed = errors.New("queue closed")

type result[T any] struct {
	value T
	err   error
}

// Queue is a multi-producer FIFO. Values pushed while consumers are blocked
// in Next are handed to the consumer that has been waiting longest.
type Queue[T any] struct {
	mu      sync.Mutex
	buf     []T
	waiters []chan result[T]
	closed  bool
	failure error
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends v in FIFO order. It returns ErrClosed once the queue has
// reached a terminal state, whether by Close or by Fail.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		w <- result[T]{value: v}

		return nil
	}

	q.buf = append(q.buf, v)

	return nil
}

// Close ends the queue. Buffered values remain pullable; consumers already
// blocked in Next observe end-of-sequence immediately. Idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true

	for _, w := range q.waiters {
		w <- result[T]{err: ErrClosed}
	}

	q.waiters = nil
}

// Fail ends the queue with err. Buffered values are discarded and every
// subsequent pull returns err. Calling Fail after Close, or after an earlier
// Fail, is a no-op.
func (q *Queue[T]) Fail(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.failure = err
	q.buf = nil

	for _, w := range q.waiters {
		w <- result[T]{err: err}
	}

	q.waiters = nil
}

// Next returns the next value in FIFO order, blocking until a value is
// pushed, the queue terminates, or ctx is done. After Close it drains
// buffered values before returning ErrClosed; after Fail it returns the
// failure immediately.
func (q *Queue[T]) Next(ctx context.Context) (T, error) {
	var zero T

	q.mu.Lock()

	if len(q.buf) > 0 {
		v := q.buf[0]
		q.buf = q.buf[1:]
		q.mu.Unlock()

		return v, nil
	}

	if q.failure != nil {
		q.mu.Unlock()

		return zero, q.failure
	}

	if q.closed {
		q.mu.Unlock()

		return zero, ErrClosed
	}

	w := make(chan result[T], 1)
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	select {
	case r := <-w:
		return r.value, r.err
	case <-ctx.Done():
		q.mu.Lock()
		for i, other := range q.waiters {
			if other == w {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				q.mu.Unlock()

				return zero, ctx.Err()
			}
		}
		q.mu.Unlock()

		// A result was committed before the cancellation was observed;
		// deliver it rather than drop it.
		r := <-w

		return r.value, r.err
	}
}

// All iterates the queue lazily until it terminates. The sequence ends
// silently after Close, and yields the terminal error once after Fail or
// context cancellation. Values consumed by the iterator are gone; the
// sequence is single-pass.
func (q *Queue[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := q.Next(ctx)
			if errors.Is(err, ErrClosed) {
				return
			}

			if err != nil {
				var zero T
				yield(zero, err)

				return
			}

			if !yield(v, nil) {
				return
			}
		}
	}
}
