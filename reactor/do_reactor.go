package reactor

// DoReactor passes its source's values through untouched, invoking f
// for its side effect on every Eval. It completes iff source completes.
type DoReactor[T any] struct {
	source Reactor[T]
	f      func(Expect[T])
	memo   memo
}

// NewDoReactor constructs a DoReactor tapping source with f.
func NewDoReactor[T any](source Reactor[T], f func(Expect[T])) *DoReactor[T] {
	return &DoReactor[T]{source: source, f: f}
}

func (r *DoReactor[T]) Commit(seq uint64) Update {
	if u, ok := r.memo.cached(seq); ok {
		return u
	}
	u := r.source.Commit(seq)
	if u.HasEval() {
		r.f(r.source.Eval())
	}
	return r.memo.store(seq, u)
}

func (r *DoReactor[T]) Eval() Expect[T] {
	return r.source.Eval()
}
