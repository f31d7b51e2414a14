package routine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAsync_GetBlocksUntilSetResult(t *testing.T) {
	a := NewAsync[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		a.SetResult(42)
	}()

	v, err := a.Get()
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestAsync_GetIdempotentAfterCompletion(t *testing.T) {
	a := NewAsync[int]()
	a.SetResult(7)

	for i := 0; i < 3; i++ {
		v, err := a.Get()
		require.NoError(t, err)
		require.Equal(t, 7, v)
	}
}

func TestAsync_SetExceptionPropagatesError(t *testing.T) {
	a := NewAsync[int]()
	boom := errors.New("boom")
	a.SetException(boom)

	_, err := a.Get()
	require.ErrorIs(t, err, boom)
}

func TestAsync_DoubleCompletePanics(t *testing.T) {
	a := NewAsync[int]()
	a.SetResult(1)

	defer func() {
		require.NotNil(t, recover(), "expected second SetResult to panic")
	}()
	a.SetResult(2)
}

func TestAsync_GetFromRoutineSuspendsAndResumes(t *testing.T) {
	s := newTestScheduler(t)

	a := NewAsync[string]()
	result := make(chan string, 1)

	s.Spawn(context.Background(), func(ctx context.Context) error {
		v, err := a.Get()
		if err != nil {
			return err
		}
		result <- v
		return nil
	})

	// Give the routine a chance to reach a.Get() and suspend before we
	// complete the Async from outside any routine.
	time.Sleep(10 * time.Millisecond)
	a.SetResult("hello")

	select {
	case v := <-result:
		require.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("routine never observed the completed async value")
	}
}

func TestAsync_MultipleWaitersAllResumed(t *testing.T) {
	s := newTestScheduler(t)

	a := NewAsync[int]()
	results := make(chan int, 3)

	for i := 0; i < 3; i++ {
		s.Spawn(context.Background(), func(ctx context.Context) error {
			v, err := a.Get()
			if err != nil {
				return err
			}
			results <- v
			return nil
		})
	}

	time.Sleep(10 * time.Millisecond)
	a.SetResult(99)

	for i := 0; i < 3; i++ {
		select {
		case v := <-results:
			require.Equal(t, 99, v)
		case <-time.After(time.Second):
			t.Fatalf("waiter %d never resumed", i)
		}
	}
}
