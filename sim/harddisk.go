package sim

import (
	"github.com/sergev/dualmode/controller"
	"github.com/sergev/dualmode/mfm"
	"github.com/sergev/dualmode/sched"
)

// HardDiskGeometry describes one simulated ST506-style drive. The
// controller divides each revolution into 32 synthetic sectors off the
// index pulse.
type HardDiskGeometry struct {
	Cylinders     int
	Heads         int
	CellsPerTrack int // 16-bit MFM cells per revolution
	HalfCellNs    uint64
	PreambleBytes int
}

// DefaultHardDiskGeometry is a nominal 3600 RPM generic drive: 10400
// cells per revolution at 100 ns half-bitcells, kept divisible by 32
// so the synthetic sectors land on cell boundaries.
func DefaultHardDiskGeometry() HardDiskGeometry {
	return HardDiskGeometry{
		Cylinders:     153,
		Heads:         4,
		CellsPerTrack: 10400,
		HalfCellNs:    100,
		PreambleBytes: 20,
	}
}

// RotationNs returns the revolution period.
func (g HardDiskGeometry) RotationNs() uint64 {
	return uint64(g.CellsPerTrack) * 16 * g.HalfCellNs
}

// SectorCells returns how many cells fall in one synthetic sector.
func (g HardDiskGeometry) SectorCells() int {
	return g.CellsPerTrack / 32
}

// HardDisk is a simulated hard disk. The drive's on-board data
// separator is implied: reads return whole cells aligned to the cell
// grid, which runs from simulated time zero.
type HardDisk struct {
	q    *sched.Queue
	sink controller.PulseSink
	geo  HardDiskGeometry

	tracks   [][]uint16 // [cyl*heads+head] -> cells
	cyl      int
	head     int
	stepLine bool
	dirIn    bool
	seeking  bool

	index *sched.Event
}

// NewHardDisk creates a spun-up drive; the index pulse starts firing
// once per revolution as soon as the queue advances.
func NewHardDisk(q *sched.Queue, geo HardDiskGeometry) *HardDisk {
	d := &HardDisk{
		q:      q,
		geo:    geo,
		tracks: make([][]uint16, geo.Cylinders*geo.Heads),
	}
	for i := range d.tracks {
		d.tracks[i] = make([]uint16, geo.CellsPerTrack)
	}
	d.index = q.NewEvent(controller.PrioPulse, d.indexPulse)
	d.index.ArmPeriodic(geo.RotationNs(), geo.RotationNs())
	return d
}

func (d *HardDisk) indexPulse(now uint64) {
	if d.sink != nil {
		d.sink.OnIndexPulse(now)
	}
}

func (d *HardDisk) SetPulseSink(sink controller.PulseSink) {
	d.sink = sink
}

func (d *HardDisk) Ready() bool        { return true }
func (d *HardDisk) Track0() bool       { return d.cyl == 0 }
func (d *HardDisk) SeekComplete() bool { return !d.seeking }

// CurrentCylinder returns the head position, for tests and the CLI.
func (d *HardDisk) CurrentCylinder() int { return d.cyl }

func (d *HardDisk) SelectHead(head int) {
	if head < d.geo.Heads {
		d.head = head
	}
}

func (d *HardDisk) Step(assert bool) {
	if assert && !d.stepLine {
		if d.dirIn {
			if d.cyl < d.geo.Cylinders-1 {
				d.cyl++
			}
		} else if d.cyl > 0 {
			d.cyl--
		}
	}
	d.stepLine = assert
}

func (d *HardDisk) StepIn(in bool) {
	d.dirIn = in
}

func (d *HardDisk) surface() []uint16 {
	return d.tracks[d.cyl*d.geo.Heads+d.head]
}

// ReadCell returns the first cell that completes after time from, or
// ok=false when it would not complete before limit.
func (d *HardDisk) ReadCell(from, limit uint64) (uint16, uint64, bool) {
	cellPeriod := 16 * d.geo.HalfCellNs
	pos := from / cellPeriod // cell under the head at time from
	at := (pos + 1) * cellPeriod
	if at > limit {
		return 0, 0, false
	}
	cell := d.surface()[pos%uint64(d.geo.CellsPerTrack)]
	return cell, at, true
}

// WriteCell stores one cell at the grid position covering time at. The
// precompensation and reduced write current lines only shape the
// analog signal, so the simulation accepts and ignores them.
func (d *HardDisk) WriteCell(at uint64, cell uint16, wpcom, reducedWC bool) {
	cellPeriod := 16 * d.geo.HalfCellNs
	pos := at / cellPeriod
	d.surface()[pos%uint64(d.geo.CellsPerTrack)] = cell
}

// LoadTrack formats one track from sector payloads in the same
// preamble/sync/payload layout as the floppy, cell aligned.
func (d *HardDisk) LoadTrack(cyl, head int, sectors [][]byte) {
	cells := make([]uint16, d.geo.CellsPerTrack)
	sectorCells := d.geo.SectorCells()
	for s, payload := range sectors {
		data := make([]byte, 0, sectorCells)
		for i := 0; i < d.geo.PreambleBytes; i++ {
			data = append(data, 0x00)
		}
		data = append(data, 0xff)
		data = append(data, payload...)
		data = append(data, 0x00, 0x00)
		for len(data) < sectorCells {
			data = append(data, 0x00)
		}
		enc, _ := mfm.AppendStreamCells(nil, data[:sectorCells], 0)
		copy(cells[s*sectorCells:], enc)
	}
	d.tracks[cyl*d.geo.Heads+head] = cells
}
