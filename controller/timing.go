package controller

// Timing holds the hardware-derived timing constants. The values are
// empirical calibrations of the original board's one-shots and delay
// lines; change them only to match measured hardware.
type Timing struct {
	// FddHalfCellNs is the floppy half-bitcell period (250 kbps MFM).
	FddHalfCellNs uint64
	// HddHalfCellNs is the hard disk half-bitcell period (5 Mbps MFM).
	HddHalfCellNs uint64
	// MotorOnNs is the motor one-shot duration, retriggered by every
	// control-0 write (74LS123, 100uF/100k).
	MotorOnNs uint64
	// DebounceNs is the minimum interval between floppy sector pulses;
	// a pulse arriving sooner is noise (74LS221, 61.9k * 0.22uF * .75).
	DebounceNs uint64
	// SyncWindowBytes is how many byte-times the read path scans for
	// the sync pattern before giving up until the next sector.
	SyncWindowBytes uint64
}

// DefaultTiming returns the timing of the production board.
func DefaultTiming() Timing {
	return Timing{
		FddHalfCellNs:   2000,
		HddHalfCellNs:   100,
		MotorOnNs:       2819600000,
		DebounceNs:      10213500,
		SyncWindowBytes: 30,
	}
}
