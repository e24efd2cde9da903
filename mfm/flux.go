package mfm

// CellFluxTransitions converts one 16-bit MFM cell to flux transition
// times. Each set bit, MSB first, produces a transition in the middle of
// its half-bitcell window. Transition times are absolute nanoseconds.
// An MFM cell never has two adjacent set bits, so at most 8 transitions
// result.
func CellFluxTransitions(cell uint16, start, halfCellNs uint64) []uint64 {
	transitions := make([]uint64, 0, 8)
	tm := start
	for i := 15; i >= 0; i-- {
		if cell&(1<<uint(i)) != 0 {
			transitions = append(transitions, tm+halfCellNs/2)
		}
		tm += halfCellNs
	}
	return transitions
}

// AppendStreamCells encodes a byte stream into MFM cells, threading the
// previous data byte through for correct clock context at every byte
// boundary. Returns the extended cell slice and the new context byte.
func AppendStreamCells(cells []uint16, data []byte, prev byte) ([]uint16, byte) {
	for _, b := range data {
		cells = append(cells, EncodeByte(b, prev))
		prev = b
	}
	return cells, prev
}

// StreamFluxTransitions lays out a cell stream as flux transitions
// starting at the given time. The returned times are absolute
// nanoseconds; the stream occupies len(cells)*16 half-bitcells.
func StreamFluxTransitions(cells []uint16, start, halfCellNs uint64) []uint64 {
	transitions := make([]uint64, 0, len(cells)*8)
	tm := start
	for _, cell := range cells {
		transitions = append(transitions, CellFluxTransitions(cell, tm, halfCellNs)...)
		tm += 16 * halfCellNs
	}
	return transitions
}
