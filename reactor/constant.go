package reactor

import "github.com/ygrebnov/beam/beamerr"

// ConstantReactor evaluates once, on its first Commit (the Host's seq == 0
// probe when hosted), to a fixed value and completes in the same commit;
// every later seq returns None. It is the trivial leaf used to lift a
// plain value into the graph.
type ConstantReactor[T any] struct {
	value  T
	evaled bool
	memo   memo
}

// NewConstantReactor constructs a ConstantReactor holding v.
func NewConstantReactor[T any](v T) *ConstantReactor[T] {
	return &ConstantReactor[T]{value: v}
}

func (c *ConstantReactor[T]) Commit(seq uint64) Update {
	if u, ok := c.memo.cached(seq); ok {
		return u
	}
	var u Update
	if !c.evaled {
		c.evaled = true
		u = Eval | Complete
	} else {
		u = None
	}
	return c.memo.store(seq, u)
}

func (c *ConstantReactor[T]) Eval() Expect[T] {
	if !c.evaled {
		return Err[T](beamerr.Unavailable)
	}
	return Ok(c.value)
}
