package routine

import (
	"context"
	"testing"
	"time"
)

func TestMutex_ExcludesConcurrentRoutines(t *testing.T) {
	s := newTestScheduler(t)

	var mu Mutex
	order := make(chan int, 2)
	enteredFirst := make(chan struct{})

	s.Spawn(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order <- 1
		close(enteredFirst)
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	<-enteredFirst

	s.Spawn(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order <- 2
		return nil
	})

	first := <-order
	second := <-order
	if first != 1 || second != 2 {
		t.Fatalf("got order %d,%d, want 1,2", first, second)
	}
}

func TestMutex_LockOutsideRoutinePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Lock outside a routine to panic")
		}
	}()
	var mu Mutex
	mu.Lock()
}

func TestRecursiveMutex_SameRoutineReentersWithoutDeadlock(t *testing.T) {
	s := newTestScheduler(t)

	var mu RecursiveMutex
	done := make(chan struct{})

	s.Spawn(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		mu.Lock()
		mu.Unlock()
		mu.Unlock()
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recursive lock deadlocked")
	}
}

func TestRecursiveMutex_ExcludesOtherRoutines(t *testing.T) {
	s := newTestScheduler(t)

	var mu RecursiveMutex
	order := make(chan int, 2)
	enteredFirst := make(chan struct{})

	s.Spawn(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order <- 1
		close(enteredFirst)
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	<-enteredFirst

	s.Spawn(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order <- 2
		return nil
	})

	first := <-order
	second := <-order
	if first != 1 || second != 2 {
		t.Fatalf("got order %d,%d, want 1,2", first, second)
	}
}
