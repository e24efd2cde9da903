// Package controller emulates the Vector dual-mode disk controller: a
// hard-sectored MFM controller driving up to four 5.25" floppy drives,
// with an ST506-style hard disk replacing drive 0 when attached. The
// floppy uses 16 physical hard sectors; the hard disk is a soft-sectored
// drive from which the controller synthesizes 32 sectors per revolution
// off the index pulse. Formatting is Micropolis style (0x00 preamble,
// 0xFF sync byte), not IBM compatible.
package controller

import "github.com/sergev/dualmode/pll"

// Never is the "no deadline" time limit for media reads.
const Never = ^uint64(0)

// PulseSink receives pulse notifications from attached media. The
// controller implements it; media implementations hold the sink they
// were attached to and call it at the simulated time of each pulse.
type PulseSink interface {
	// OnIndexPulse reports the hard disk's once-per-revolution index
	// pulse.
	OnIndexPulse(now uint64)
	// OnSectorPulse reports a floppy hard-sector hole pulse. from
	// identifies the drive so pulses from unselected units are ignored.
	OnSectorPulse(now uint64, from FloppyDrive)
}

// FloppyDrive is the media abstraction for one floppy unit. Reads go
// through the flux transition timeline (pll.FluxSource); writes deliver
// timestamped transition lists.
type FloppyDrive interface {
	pll.FluxSource

	// WriteFlux records the given transitions over the [start, end)
	// window, replacing whatever flux was there.
	WriteFlux(start, end uint64, transitions []uint64)

	WriteProtected() bool
	Track0() bool
	SetMotor(on bool)
	SetSide(side int)
	Step(assert bool)
	StepIn(in bool)
	SetPulseSink(sink PulseSink)
}

// HardDisk is the media abstraction for the ST506-style drive. The
// drive carries its own data separator, so reads return whole 16-bit
// cells already synchronized to cell boundaries.
type HardDisk interface {
	// ReadCell returns the next complete cell after time from, and the
	// time at which that cell ends. ok=false when the cell would not
	// complete before limit.
	ReadCell(from, limit uint64) (cell uint16, at uint64, ok bool)

	// WriteCell records one cell starting at time at, with the write
	// precompensation and reduced write current lines as given.
	WriteCell(at uint64, cell uint16, wpcom, reducedWC bool)

	Ready() bool
	Track0() bool
	SeekComplete() bool
	SelectHead(head int)
	Step(assert bool)
	StepIn(in bool)
	SetPulseSink(sink PulseSink)
}
