package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waiterCount[T any](q *Queue[T]) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.waiters)
}

// waitForWaiters blocks until exactly n consumers are parked in Next.
func waitForWaiters[T any](t *testing.T, q *Queue[T], n int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for waiterCount(q) != n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d waiters", n)
		}

		time.Sleep(time.Millisecond)
	}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := New[int]()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Push(i))
	}

	for i := 1; i <= 5; i++ {
		v, err := q.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

func TestQueuePushAfterCloseFails(t *testing.T) {
	q := New[string]()
	q.Close()

	err := q.Push("late")
	require.ErrorIs(t, err, ErrClosed)
}

func TestQueueCloseDrainsBufferedValues(t *testing.T) {
	q := New[string]()
	ctx := context.Background()

	require.NoError(t, q.Push("first"))
	require.NoError(t, q.Push("second"))
	q.Close()

	v, err := q.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "first", v)

	v, err = q.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", v)

	_, err = q.Next(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestQueueFailDiscardsBufferedValues(t *testing.T) {
	q := New[string]()
	ctx := context.Background()
	boom := errors.New("boom")

	require.NoError(t, q.Push("buffered"))
	q.Fail(boom)

	_, err := q.Next(ctx)
	require.ErrorIs(t, err, boom)

	// The failure is permanent.
	_, err = q.Next(ctx)
	require.ErrorIs(t, err, boom)
}

func TestQueuePushAfterFailFails(t *testing.T) {
	q := New[int]()
	q.Fail(errors.New("boom"))

	require.ErrorIs(t, q.Push(1), ErrClosed)
}

func TestQueueFirstTerminalStateWins(t *testing.T) {
	t.Run("close then fail", func(t *testing.T) {
		q := New[int]()
		q.Close()
		q.Fail(errors.New("boom"))

		_, err := q.Next(context.Background())
		require.ErrorIs(t, err, ErrClosed)
	})

	t.Run("fail then close", func(t *testing.T) {
		first := errors.New("first")
		q := New[int]()
		q.Fail(first)
		q.Close()
		q.Fail(errors.New("second"))

		_, err := q.Next(context.Background())
		require.ErrorIs(t, err, first)
	})
}

func TestQueueWaitersServedInArrivalOrder(t *testing.T) {
	q := New[int]()
	ctx := context.Background()

	type pull struct {
		waiter int
		value  int
	}

	pulls := make(chan pull, 3)

	var wg sync.WaitGroup
	for i := range 3 {
		waitForWaiters(t, q, i)
		wg.Go(func() {
			v, err := q.Next(ctx)
			require.NoError(t, err)
			pulls <- pull{waiter: i, value: v}
		})
		waitForWaiters(t, q, i+1)
	}

	require.NoError(t, q.Push(10))
	require.NoError(t, q.Push(20))
	require.NoError(t, q.Push(30))
	wg.Wait()
	close(pulls)

	got := map[int]int{}
	for p := range pulls {
		got[p.waiter] = p.value
	}

	require.Equal(t, map[int]int{0: 10, 1: 20, 2: 30}, got)
}

func TestQueueWaitersObserveClose(t *testing.T) {
	q := New[int]()

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Next(context.Background())
		errCh <- err
	}()

	waitForWaiters(t, q, 1)
	q.Close()

	require.ErrorIs(t, <-errCh, ErrClosed)
}

func TestQueueNextContextCancellation(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Next(ctx)
		errCh <- err
	}()

	waitForWaiters(t, q, 1)
	cancel()

	require.ErrorIs(t, <-errCh, context.Canceled)

	// The cancelled waiter must be deregistered so later pushes buffer
	// instead of vanishing into it.
	require.Equal(t, 0, waiterCount(q))
	require.NoError(t, q.Push(42))

	v, err := q.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestQueueAllStopsAfterClose(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Push(1))
	require.NoError(t, q.Push(2))
	q.Close()

	var got []int
	for v, err := range q.All(context.Background()) {
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Equal(t, []int{1, 2}, got)
}

func TestQueueAllYieldsFailure(t *testing.T) {
	q := New[int]()
	boom := errors.New("boom")
	require.NoError(t, q.Push(1))

	done := make(chan struct{})
	go func() {
		defer close(done)

		var values []int
		var failure error
		for v, err := range q.All(context.Background()) {
			if err != nil {
				failure = err

				continue
			}
			values = append(values, v)
		}

		require.Equal(t, []int{1}, values)
		require.ErrorIs(t, failure, boom)
	}()

	waitForWaiters(t, q, 1)
	q.Fail(boom)
	<-done
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 50

	q := New[int]()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Go(func() {
			for i := range perProducer {
				require.NoError(t, q.Push(p*perProducer+i))
			}
		})
	}

	wg.Wait()
	q.Close()

	seen := map[int]bool{}
	for v, err := range q.All(context.Background()) {
		require.NoError(t, err)
		require.False(t, seen[v], "value %d delivered twice", v)
		seen[v] = true
	}

	require.Len(t, seen, producers*perProducer)
}
