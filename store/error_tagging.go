package store

import (
	"github.com/cockroachdb/errors"

	"github.com/ygrebnov/beam/beamerr"
)

// IndexMetaError exposes which index a load failure belongs to, so a
// caller watching a store across many indices can correlate a failure
// back to the query that produced it. Flush failures are not tagged;
// the flush loop logs and retries them.
type IndexMetaError[K comparable] interface {
	error
	Unwrap() error
	Index() K
}

// indexTaggedError wraps a backend error with beamerr's IO kind (so
// errors.Is(err, beamerr.IO) still holds after tagging) and the index
// the failing backend Load call was scoped to. Parameterizing on K
// rather than carrying the index as an any, the way a non-generic
// correlation wrapper would, keeps ExtractIndex type-safe for whatever
// key type a DataStore[T, K] is instantiated with.
type indexTaggedError[K comparable] struct {
	error
	index K
}

func newIndexTaggedError[K comparable](err error, index K) error {
	if err == nil {
		return nil
	}
	return &indexTaggedError[K]{
		error: beamerr.Wrap(err, beamerr.IO, "index query failed"),
		index: index,
	}
}

func (e *indexTaggedError[K]) Unwrap() error { return e.error }
func (e *indexTaggedError[K]) Index() K      { return e.index }

// ExtractIndex returns the index tagged on err, if err's chain contains
// an indexTaggedError for key type K.
func ExtractIndex[K comparable](err error) (K, bool) {
	var tagged *indexTaggedError[K]
	if errors.As(err, &tagged) {
		return tagged.index, true
	}
	var zero K
	return zero, false
}
