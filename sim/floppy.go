// Package sim provides in-memory media for the dual-mode controller: a
// hard-sectored floppy modeled as a flux transition timeline and an
// ST506-style hard disk modeled as a cell store. Both run off the same
// simulated-time queue as the controller and deliver their pulses
// through the controller's PulseSink.
package sim

import (
	"sort"

	"github.com/sergev/dualmode/controller"
	"github.com/sergev/dualmode/mfm"
	"github.com/sergev/dualmode/sched"
)

// FloppyGeometry describes one simulated floppy medium.
type FloppyGeometry struct {
	SectorsPerTrack int
	Tracks          int
	Sides           int
	RotationNs      uint64 // one revolution
	HalfCellNs      uint64
	PreambleBytes   int // 0x00 bytes before the sync byte
}

// DefaultFloppyGeometry is a 300 RPM 16-hard-sector 5.25" medium in the
// Micropolis layout the controller was built for.
func DefaultFloppyGeometry() FloppyGeometry {
	return FloppyGeometry{
		SectorsPerTrack: 16,
		Tracks:          77,
		Sides:           2,
		RotationNs:      200000000,
		HalfCellNs:      2000,
		PreambleBytes:   40,
	}
}

// SectorPeriodNs returns the interval between sector pulses.
func (g FloppyGeometry) SectorPeriodNs() uint64 {
	return g.RotationNs / uint64(g.SectorsPerTrack)
}

// sectorCells returns how many MFM cells fit in one sector window.
func (g FloppyGeometry) sectorCells() int {
	return int(g.SectorPeriodNs() / (16 * g.HalfCellNs))
}

// Floppy is a simulated hard-sectored floppy drive. Flux is stored per
// track side as sorted transition offsets within one revolution; the
// medium rotates from simulated time zero, so absolute times map to
// offsets modulo the rotation period.
type Floppy struct {
	q    *sched.Queue
	sink controller.PulseSink
	geo  FloppyGeometry

	tracks [][]uint64 // [track*sides+side] -> transition offsets
	track  int
	side   int

	motor     bool
	protected bool
	stepLine  bool
	dirIn     bool

	pulse *sched.Event // 16 sector holes per revolution
	index *sched.Event // index hole, offset half a sector before sector 0
}

// NewFloppy creates an unformatted floppy in the given drive geometry.
func NewFloppy(q *sched.Queue, geo FloppyGeometry) *Floppy {
	f := &Floppy{
		q:      q,
		geo:    geo,
		tracks: make([][]uint64, geo.Tracks*geo.Sides),
	}
	f.pulse = q.NewEvent(controller.PrioPulse, f.sectorPulse)
	f.index = q.NewEvent(controller.PrioPulse, f.sectorPulse)
	return f
}

func (f *Floppy) sectorPulse(now uint64) {
	if f.sink != nil {
		f.sink.OnSectorPulse(now, f)
	}
}

func (f *Floppy) surface() []uint64 {
	return f.tracks[f.track*f.geo.Sides+f.side]
}

// SetPulseSink registers the controller as the pulse observer.
func (f *Floppy) SetPulseSink(sink controller.PulseSink) {
	f.sink = sink
}

// SetMotor gates the hole pulses: the medium notionally spins all the
// time, but the sensor only reports holes while the motor runs. The
// index hole sits half a sector period before sector 0; the controller
// debounces it into a counter saturation, which is what re-synchronizes
// the sector counter to the physical sector 0.
func (f *Floppy) SetMotor(on bool) {
	if on == f.motor {
		return
	}
	f.motor = on
	if !on {
		f.pulse.Disarm()
		f.index.Disarm()
		return
	}
	period := f.geo.SectorPeriodNs()
	delay := period - f.q.Now()%period
	f.pulse.ArmPeriodic(delay, period)

	rot := f.geo.RotationNs
	indexOffset := rot - period/2
	indexDelay := (indexOffset + rot - f.q.Now()%rot) % rot
	if indexDelay == 0 {
		indexDelay = rot
	}
	f.index.ArmPeriodic(indexDelay, rot)
}

// SetWriteProtect sets the write protect tab.
func (f *Floppy) SetWriteProtect(on bool) {
	f.protected = on
}

func (f *Floppy) WriteProtected() bool { return f.protected }
func (f *Floppy) Track0() bool         { return f.track == 0 }

// CurrentTrack returns the head position, for tests and the CLI.
func (f *Floppy) CurrentTrack() int { return f.track }

func (f *Floppy) SetSide(side int) {
	if side < f.geo.Sides {
		f.side = side
	}
}

// Step moves the head one track on the asserting edge of the step
// line, in the direction set by StepIn.
func (f *Floppy) Step(assert bool) {
	if assert && !f.stepLine {
		if f.dirIn {
			if f.track < f.geo.Tracks-1 {
				f.track++
			}
		} else if f.track > 0 {
			f.track--
		}
	}
	f.stepLine = assert
}

func (f *Floppy) StepIn(in bool) {
	f.dirIn = in
}

// NextTransition returns the first flux transition strictly after the
// given absolute time, unrolling the stored revolution as the medium
// rotates. Implements pll.FluxSource.
func (f *Floppy) NextTransition(after uint64) (uint64, bool) {
	flux := f.surface()
	if len(flux) == 0 {
		return 0, false
	}
	rev := after / f.geo.RotationNs
	off := after % f.geo.RotationNs
	i := sort.Search(len(flux), func(i int) bool { return flux[i] > off })
	if i < len(flux) {
		return rev*f.geo.RotationNs + flux[i], true
	}
	return (rev+1)*f.geo.RotationNs + flux[0], true
}

// WriteFlux replaces the flux in the [start, end) window with the
// given transitions. The window is at most one cell long in practice,
// far shorter than a revolution.
func (f *Floppy) WriteFlux(start, end uint64, transitions []uint64) {
	idx := f.track*f.geo.Sides + f.side
	flux := f.tracks[idx]
	rot := f.geo.RotationNs

	inWindow := func(off uint64) bool {
		s := start % rot
		e := end % rot
		if s <= e {
			return off >= s && off < e
		}
		return off >= s || off < e // window straddles the index
	}

	kept := flux[:0]
	for _, off := range flux {
		if !inWindow(off) {
			kept = append(kept, off)
		}
	}
	for _, t := range transitions {
		kept = append(kept, t%rot)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	f.tracks[idx] = kept
}

// LoadTrack formats one track side from sector payloads: each hard
// sector carries a 0x00 preamble, the 0xFF sync byte, the payload, a
// two-byte ECC placeholder and a 0x00 fill out to the sector window.
func (f *Floppy) LoadTrack(track, side int, sectors [][]byte) {
	cellsPerSector := f.geo.sectorCells()
	var flux []uint64
	for s, payload := range sectors {
		data := make([]byte, 0, cellsPerSector)
		for i := 0; i < f.geo.PreambleBytes; i++ {
			data = append(data, 0x00)
		}
		data = append(data, 0xff)
		data = append(data, payload...)
		data = append(data, 0x00, 0x00) // ECC, not computed
		for len(data) < cellsPerSector {
			data = append(data, 0x00)
		}
		cells, _ := mfm.AppendStreamCells(nil, data[:cellsPerSector], 0)
		start := uint64(s) * f.geo.SectorPeriodNs()
		flux = append(flux, mfm.StreamFluxTransitions(cells, start, f.geo.HalfCellNs)...)
	}
	f.tracks[track*f.geo.Sides+side] = flux
}
