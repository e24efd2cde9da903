// Package pll recovers a bit stream from a flux transition timeline.
// The controller's floppy read path owns one State; it re-synchronizes
// the window phase on every observed transition so that jittery flux
// still classifies into the right half-bitcell.
package pll

// PHASE_ADJ_PCT is the phase adjustment percentage: how much of the
// observed edge offset is applied to the next window boundary.
const PHASE_ADJ_PCT = 65

// FluxSource provides the flux transition timeline of the selected
// medium. NextTransition returns the first transition strictly after
// the given time, in absolute nanoseconds, or ok=false when the
// timeline has no further transitions.
type FluxSource interface {
	NextTransition(after uint64) (uint64, bool)
}

// State is the phase-locked loop state. Zero value is unusable; call
// SetClock and ReadReset before recovering bits.
type State struct {
	period   uint64 // half-bitcell period in nanoseconds
	phaseAdj int64  // phase correction applied to the next window
	ctime    uint64 // end of the last classified window
}

// SetClock sets the nominal half-bitcell period in nanoseconds.
func (s *State) SetClock(periodNs uint64) {
	s.period = periodNs
}

// ReadReset restarts acquisition at the given time: the next window
// opens at now with no accumulated phase correction.
func (s *State) ReadReset(now uint64) {
	s.ctime = now
	s.phaseAdj = 0
}

// Time returns the current time cursor: the end of the last window
// classified by NextBit.
func (s *State) Time() uint64 {
	return s.ctime
}

// NextBit advances one half-bitcell window and classifies it. The
// recovered bit is 1 when a flux transition fell inside the window,
// 0 when the window was empty. ok=false means the window end would
// pass limit; the cursor does not advance in that case.
func (s *State) NextBit(src FluxSource, limit uint64) (bit int, at uint64, ok bool) {
	edge, hasEdge := src.NextTransition(s.ctime)
	next := uint64(int64(s.ctime+s.period) + s.phaseAdj)
	if next > limit {
		return 0, 0, false
	}
	s.ctime = next

	if !hasEdge || edge >= next {
		// Empty window: clocked zero, free run until the next edge.
		s.phaseAdj = 0
		return 0, next, true
	}

	// Transition inside the window: pull the next window boundary
	// toward the observed edge.
	delta := int64(edge) - (int64(next) - int64(s.period)/2)
	s.phaseAdj = delta * PHASE_ADJ_PCT / 100
	return 1, s.ctime, true
}
