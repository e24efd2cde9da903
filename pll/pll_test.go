package pll

import (
	"math/rand"
	"testing"
)

const neverNs = ^uint64(0)

// makeTransitions lays out the given half-bitcell values as flux
// transitions: bit i of the stream, when set, produces a transition in
// the middle of half-bitcell window i.
func makeTransitions(bits []int, halfCellNs uint64) []uint64 {
	var transitions []uint64
	tm := uint64(0)
	for _, b := range bits {
		if b != 0 {
			transitions = append(transitions, tm+halfCellNs/2)
		}
		tm += halfCellNs
	}
	return transitions
}

// Verify that NextBit recovers an exact bit stream from perfectly
// timed transitions.
func TestNextBitExactTiming(t *testing.T) {
	halfCell := uint64(2000)
	bits := []int{0, 1, 0, 1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 0, 1}
	src := NewTimeline(makeTransitions(bits, halfCell))

	var s State
	s.SetClock(halfCell)
	s.ReadReset(0)

	for i, expected := range bits {
		bit, at, ok := s.NextBit(src, neverNs)
		if !ok {
			t.Fatalf("NextBit() underran at bit %d", i)
		}
		if bit != expected {
			t.Errorf("bit %d = %d, expected %d", i, bit, expected)
		}
		if at != s.Time() {
			t.Errorf("bit %d: returned time %d does not match cursor %d", i, at, s.Time())
		}
	}
}

// Verify that NextBit tracks transitions with random timing jitter up
// to 20% of the half-bitcell period.
func TestNextBitJitter(t *testing.T) {
	halfCell := uint64(2000)

	// MFM-legal stream: no two adjacent ones.
	bits := make([]int, 256)
	rng := rand.New(rand.NewSource(42))
	for i := 2; i < len(bits); i += 2 {
		if rng.Intn(2) == 1 {
			bits[i] = 1
		} else {
			bits[i+1] = 1
		}
	}

	transitions := makeTransitions(bits, halfCell)
	maxJitter := float64(halfCell) * 0.20
	prev := uint64(0)
	for i := range transitions {
		jitter := (rng.Float64()*2 - 1) * maxJitter
		tm := float64(transitions[i]) + jitter
		if tm < float64(prev)+1 {
			tm = float64(prev) + 1
		}
		transitions[i] = uint64(tm)
		prev = transitions[i]
	}

	var s State
	s.SetClock(halfCell)
	s.ReadReset(0)
	src := NewTimeline(transitions)

	for i, expected := range bits {
		bit, _, ok := s.NextBit(src, neverNs)
		if !ok {
			t.Fatalf("NextBit() underran at bit %d", i)
		}
		if bit != expected {
			t.Fatalf("bit %d = %d, expected %d", i, bit, expected)
		}
	}
}

// Verify that NextBit refuses to advance past the limit and leaves the
// time cursor where it was.
func TestNextBitLimit(t *testing.T) {
	halfCell := uint64(2000)
	src := NewTimeline([]uint64{1000, 5000})

	var s State
	s.SetClock(halfCell)
	s.ReadReset(0)

	if _, _, ok := s.NextBit(src, halfCell-1); ok {
		t.Error("NextBit() advanced past the limit")
	}
	if s.Time() != 0 {
		t.Errorf("cursor moved to %d on underrun, expected 0", s.Time())
	}

	bit, at, ok := s.NextBit(src, halfCell)
	if !ok || bit != 1 || at != halfCell {
		t.Errorf("NextBit() = (%d, %d, %v), expected (1, %d, true)", bit, at, ok, halfCell)
	}
}

// Verify NextTransition over a sorted timeline.
func TestTimeline(t *testing.T) {
	tl := NewTimeline([]uint64{100, 200, 300})

	cases := []struct {
		after    uint64
		expected uint64
		ok       bool
	}{
		{0, 100, true},
		{99, 100, true},
		{100, 200, true},
		{250, 300, true},
		{300, 0, false},
	}
	for _, c := range cases {
		got, ok := tl.NextTransition(c.after)
		if ok != c.ok || got != c.expected {
			t.Errorf("NextTransition(%d) = (%d, %v), expected (%d, %v)", c.after, got, ok, c.expected, c.ok)
		}
	}
}
