package reactor

import "github.com/ygrebnov/beam/beamerr"

// MultiReactor combines a runtime-sized, homogeneous vector of
// children with fn, generalizing FunctionReactor1/2 to n children of
// the same type. fn receives every child's current Expect, including
// ones that did not change this tick (carried over from their last
// Eval).
type MultiReactor[A any, T any] struct {
	children []Reactor[A]
	fn       func([]Expect[A]) Evaluation[T]
	memo     memo
	current  Expect[T]
	last     []Expect[A]
	have     []bool
}

// NewMultiReactor constructs a MultiReactor over children.
func NewMultiReactor[A any, T any](children []Reactor[A], fn func([]Expect[A]) Evaluation[T]) *MultiReactor[A, T] {
	return &MultiReactor[A, T]{
		children: children,
		fn:       fn,
		current:  Err[T](beamerr.Unavailable),
		last:     make([]Expect[A], len(children)),
		have:     make([]bool, len(children)),
	}
}

func (r *MultiReactor[A, T]) Commit(seq uint64) Update {
	if u, ok := r.memo.cached(seq); ok {
		return u
	}

	if len(r.children) == 0 {
		if seq == 0 {
			ev, err := evalWithRecover(func() Evaluation[T] { return r.fn(nil) })
			u := Complete
			if err != nil {
				r.current = Err[T](err)
				u |= Eval
			} else if ev.Present {
				r.current = Ok(ev.Value)
				u |= Eval
			}
			return r.memo.store(seq, u)
		}
		return r.memo.store(seq, None)
	}

	anyUpdate := false
	allComplete := true
	for i, c := range r.children {
		// Commit aggregation rule: all children MUST be committed at
		// every seq where the parent is committed, regardless of
		// earlier children's results.
		u := c.Commit(seq)
		if u != None {
			anyUpdate = true
		}
		if u.HasEval() {
			r.last[i] = c.Eval()
			r.have[i] = true
		}
		if !u.HasComplete() {
			allComplete = false
		}
	}

	if !anyUpdate {
		return r.memo.store(seq, None)
	}

	allHave := true
	for _, h := range r.have {
		if !h {
			allHave = false
			break
		}
	}

	if !allHave {
		if allComplete {
			return r.memo.store(seq, Complete)
		}
		return r.memo.store(seq, None)
	}

	inputs := make([]Expect[A], len(r.last))
	copy(inputs, r.last)

	ev, err := evalWithRecover(func() Evaluation[T] { return r.fn(inputs) })
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

func (r *MultiReactor[A, T]) Eval() Expect[T] { return r.current }
