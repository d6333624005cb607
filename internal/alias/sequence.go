package alias

import "sync/atomic"

// Sequence is the id generator behind aliases and bind names.
//
// One Sequence may be shared by several composers that build parts of the
// same statement (sub-selects built by a nested composer, for example); the
// atomic counter guarantees no value is handed out twice. Sharing is always
// explicit: pass the Sequence to every composer that needs it.
type Sequence struct {
	seq atomic.Int64
}

// NewSequence creates a sequence starting at 0. The first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence whose first Next returns start+1.
func NewSequenceAt(start int64) *Sequence {
	s := &Sequence{}
	s.seq.Store(start)
	return s
}

// Next returns the next value and advances the sequence.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last value handed out.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
