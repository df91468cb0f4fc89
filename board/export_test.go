package board

// RecomputeHash exposes calcHash for tests, so they can assert the
// incrementally maintained hash never drifts from the from-scratch oracle.
func (b *Board) RecomputeHash() uint64 { return b.calcHash() }
