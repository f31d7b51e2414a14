package reactor

import "github.com/ygrebnov/beam/beamerr"

// Evaluation is the explicit "present or absent" result a combining
// function may return instead of a bare T, mirroring the source's
// Optional<T> evaluation record: Present == false means the combiner
// chose not to produce a value at this tick (distinct from a child
// Update of None, which means no child changed at all).
type Evaluation[T any] struct {
	Value   T
	Present bool
}

// Some constructs a present Evaluation.
func Some[T any](v T) Evaluation[T] { return Evaluation[T]{Value: v, Present: true} }

// None_ constructs an absent Evaluation. Named with a trailing
// underscore to avoid colliding with the Update constant None.
func None_[T any]() Evaluation[T] { return Evaluation[T]{} }

func evalWithRecover[T any](fn func() Evaluation[T]) (result Evaluation[T], err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = e
			} else {
				err = panicError{p}
			}
		}
	}()
	return fn(), nil
}

type panicError struct{ v interface{} }

func (p panicError) Error() string { return "reactor: function panicked" }

// FunctionReactor1 combines a single child's commits with fn. If fn
// returns a bare value every tick, wrap it: func(a Expect[A]) Evaluation[T]
// with Present always true; use None_ to skip a tick.
type FunctionReactor1[A any, T any] struct {
	child   Reactor[A]
	fn      func(Expect[A]) Evaluation[T]
	memo    memo
	current Expect[T]
	lastA   Expect[A]
	haveA   bool
}

// NewFunctionReactor1 constructs a FunctionReactor1 over child.
func NewFunctionReactor1[A any, T any](child Reactor[A], fn func(Expect[A]) Evaluation[T]) *FunctionReactor1[A, T] {
	return &FunctionReactor1[A, T]{child: child, fn: fn, current: Err[T](beamerr.Unavailable)}
}

func (r *FunctionReactor1[A, T]) Commit(seq uint64) Update {
	if u, ok := r.memo.cached(seq); ok {
		return u
	}

	childUpdate := r.child.Commit(seq)
	if childUpdate == None {
		return r.memo.store(seq, None)
	}
	if childUpdate.HasEval() {
		r.lastA = r.child.Eval()
		r.haveA = true
	}
	if !r.haveA {
		if childUpdate.HasComplete() {
			return r.memo.store(seq, Complete)
		}
		return r.memo.store(seq, None)
	}

	ev, err := evalWithRecover(func() Evaluation[T] { return r.fn(r.lastA) })
	u := None
	if err != nil {
		r.current = Err[T](err)
		u = Eval
	} else if ev.Present {
		r.current = Ok(ev.Value)
		u = Eval
	}
	if childUpdate.HasComplete() {
		u |= Complete
	}
	return r.memo.store(seq, u)
}

func (r *FunctionReactor1[A, T]) Eval() Expect[T] { return r.current }

// FunctionReactor2 combines two children's commits with fn.
type FunctionReactor2[A any, B any, T any] struct {
	fn      func(Expect[A], Expect[B]) Evaluation[T]
	childA  Reactor[A]
	childB  Reactor[B]
	memo    memo
	current Expect[T]
	lastA   Expect[A]
	lastB   Expect[B]
	haveA   bool
	haveB   bool
}

// NewFunctionReactor2 constructs a FunctionReactor2 over childA, childB.
func NewFunctionReactor2[A any, B any, T any](childA Reactor[A], childB Reactor[B], fn func(Expect[A], Expect[B]) Evaluation[T]) *FunctionReactor2[A, B, T] {
	return &FunctionReactor2[A, B, T]{childA: childA, childB: childB, fn: fn, current: Err[T](beamerr.Unavailable)}
}

func (r *FunctionReactor2[A, B, T]) Commit(seq uint64) Update {
	if u, ok := r.memo.cached(seq); ok {
		return u
	}

	ua := r.childA.Commit(seq)
	ub := r.childB.Commit(seq)

	if ua == None && ub == None {
		return r.memo.store(seq, None)
	}
	if ua.HasEval() {
		r.lastA = r.childA.Eval()
		r.haveA = true
	}
	if ub.HasEval() {
		r.lastB = r.childB.Eval()
		r.haveB = true
	}

	allComplete := ua.HasComplete() && ub.HasComplete()

	if !r.haveA || !r.haveB {
		if allComplete {
			return r.memo.store(seq, Complete)
		}
		return r.memo.store(seq, None)
	}

	ev, err := evalWithRecover(func() Evaluation[T] { return r.fn(r.lastA, r.lastB) })
	u := None
	if err != nil {
		r.current = Err[T](err)
		u = Eval
	} else if ev.Present {
		r.current = Ok(ev.Value)
		u = Eval
	}
	if allComplete {
		u |= Complete
	}
	return r.memo.store(seq, u)
}

func (r *FunctionReactor2[A, B, T]) Eval() Expect[T] { return r.current }
