package controller

import "github.com/sergev/dualmode/mfm"

// Recognized sync patterns in the recovered bit stream. Both encode the
// 0xFF sync byte after the 0x00 preamble; they differ because the
// floppy match happens mid-cell on the raw half-bit stream while the
// hard disk delivers cell-aligned values.
const (
	fddSyncPattern = 0x5554
	hddSyncPattern = 0x5555
)

// getNextBit recovers one bit through the PLL into the accumulator.
// Returns the time the bit window closed; ok=false on underrun.
func (c *Controller) getNextBit(src FloppyDrive, limit uint64) (uint64, bool) {
	bit, at, ok := c.pll.NextBit(src, limit)
	if !ok {
		return 0, false
	}
	c.pendingByte = c.pendingByte<<1 | uint16(bit)
	c.pendingSize++
	return at, true
}

// startRead begins the sync search for a read at the sector boundary.
// If the sync pattern is not found within the search window the attempt
// is dropped silently; the operation retries on the next matching
// sector tick, just like the hardware retrying on the next revolution.
func (c *Controller) startRead(now uint64) {
	if c.hddSelected() {
		// The drive's own data separator is already locked; skip the
		// preamble region, then scan whole cells for the sync byte.
		half := c.timing.HddHalfCellNs
		tm := now + half*256
		limit := tm + half*16*c.timing.SyncWindowBytes
		for c.pendingByte != hddSyncPattern {
			cell, at, ok := c.hdd.ReadCell(tm, limit)
			if !ok {
				return
			}
			c.pendingByte = cell
			tm = at
		}
		c.pendingSize = 16
		c.byteTimer.Arm(tm - now)
		return
	}

	f := c.selectedFloppy()
	if f == nil {
		return
	}
	half := c.timing.FddHalfCellNs
	c.pll.SetClock(half)
	c.pll.ReadReset(now)

	// Run the PLL over the preamble to settle its phase.
	tm := now
	limit := now + half*512
	for {
		at, ok := c.getNextBit(f, limit)
		if !ok {
			break
		}
		tm = at
	}

	limit += half * 16 * c.timing.SyncWindowBytes
	for c.pendingByte != fddSyncPattern {
		at, ok := c.getNextBit(f, limit)
		if !ok {
			return
		}
		tm = at
	}
	// The match lands one half-bit past the sync cell: that bit already
	// belongs to the first data byte.
	c.pendingSize = 1
	c.byteTimer.Arm(tm - now)
}

// startWrite begins a write at the sector boundary. No sync search:
// encoding starts immediately from the buffer's current byte.
func (c *Controller) startWrite(now uint64) {
	c.pendingSize = 0
	c.byteTimer.Arm(0)
}

// byteTick moves one byte between the accumulator and the media. The
// transfer has no byte count of its own; it runs until the sector
// timing engine sees the next sector boundary.
func (c *Controller) byteTick(now uint64) {
	if c.readMode {
		c.byteTickRead(now)
	} else {
		c.byteTickWrite(now)
	}
}

func (c *Controller) byteTickRead(now uint64) {
	if c.pendingSize == 16 {
		c.pendingSize = 0
		c.ram[c.cmar] = mfm.DecodeCell(c.pendingByte)
		c.cmar = (c.cmar + 1) & cmarMask
	}

	tm := now
	if c.hddSelected() {
		cell, at, ok := c.hdd.ReadCell(tm, Never)
		if ok {
			c.pendingByte = cell
			c.pendingSize = 16
			tm = at
		}
	} else {
		f := c.selectedFloppy()
		for c.pendingSize != 16 {
			at, ok := c.getNextBit(f, Never)
			if !ok {
				break
			}
			tm = at
		}
	}
	c.byteTimer.Arm(tm - now)
}

func (c *Controller) byteTickWrite(now uint64) {
	half := c.timing.FddHalfCellNs
	if c.hddSelected() {
		half = c.timing.HddHalfCellNs
	}

	if c.pendingSize == 16 {
		// The pending cell's window just elapsed; commit it.
		start := now - half*16
		if c.hddSelected() {
			c.hdd.WriteCell(start, c.pendingByte, c.wpcom, c.reducedWC)
		} else if f := c.selectedFloppy(); f != nil {
			transitions := mfm.CellFluxTransitions(c.pendingByte, start, half)
			f.WriteFlux(start, now, transitions)
		}
	}

	// Encode the next buffer byte with the previous byte as MFM clock
	// context, so cell boundaries stay continuous.
	var prev byte
	if c.cmar > 0 {
		prev = c.ram[c.cmar-1]
	}
	c.pendingByte = mfm.EncodeByte(c.ram[c.cmar], prev)
	c.pendingSize = 16
	c.cmar = (c.cmar + 1) & cmarMask
	c.byteTimer.Arm(half * 16)
}
