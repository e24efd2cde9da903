package pll

import "sort"

// Timeline is a FluxSource over a sorted list of absolute transition
// times in nanoseconds.
type Timeline struct {
	transitions []uint64
}

// NewTimeline creates a Timeline from transition times. The slice must
// be sorted ascending; it is not copied.
func NewTimeline(transitions []uint64) *Timeline {
	return &Timeline{transitions: transitions}
}

// NextTransition returns the first transition strictly after the given
// time. Implements the FluxSource interface.
func (tl *Timeline) NextTransition(after uint64) (uint64, bool) {
	i := sort.Search(len(tl.transitions), func(i int) bool {
		return tl.transitions[i] > after
	})
	if i >= len(tl.transitions) {
		return 0, false
	}
	return tl.transitions[i], true
}
