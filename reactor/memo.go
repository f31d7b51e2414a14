package reactor

// memo caches the last (seq, Update) pair so Commit can satisfy the
// "same seq returns the same result" requirement without recomputing.
// It is embedded by value in every concrete Reactor implementation in
// this package.
type memo struct {
	seen bool
	seq  uint64
	last Update
}

// cached returns the memoised result for seq, if the most recent
// Commit call was for that same seq.
func (m *memo) cached(seq uint64) (Update, bool) {
	if m.seen && m.seq == seq {
		return m.last, true
	}
	return None, false
}

// store records u as the result for seq and returns it, for chaining
// at the end of Commit.
func (m *memo) store(seq uint64, u Update) Update {
	m.seen = true
	m.seq = seq
	m.last = u
	return u
}
