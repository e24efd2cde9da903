package controller

// OnSectorPulse handles a floppy hard-sector hole pulse. A pulse
// arriving sooner than the debounce interval after the previous one is
// noise from the index hole region: it saturates the counter instead
// of advancing it, so the next clean pulse restarts at sector 0.
func (c *Controller) OnSectorPulse(now uint64, from FloppyDrive) {
	if c.hddSelected() || c.selectedFloppy() != from {
		return
	}
	if now-c.lastSectorPulse < c.timing.DebounceNs {
		c.sectorCounter = 0x0f
		return
	}
	c.lastSectorPulse = now
	c.sectorTick(now)
}

// OnIndexPulse handles the hard disk's once-per-revolution index
// pulse. The controller's PLL multiplies it by 32: the sector timer is
// re-armed at (index interval)/32 and the counter is preloaded so the
// tick below lands on sector 0.
func (c *Controller) OnIndexPulse(now uint64) {
	if !c.hddSelected() {
		return
	}
	c.sectorCounter = 0x1f
	sectorTime := (now - c.lastIndexPulse) / 32
	c.lastIndexPulse = now
	c.sectorTimer.ArmPeriodic(sectorTime, sectorTime)
	c.sectorTick(now)
}

// sectorTick is the common sector boundary handler, driven directly by
// floppy sector pulses and by the synthetic hard disk sector timer.
func (c *Controller) sectorTick(now uint64) {
	c.sectorCounter++
	if c.hddSelected() {
		c.sectorCounter &= 0x1f
		if c.sectorCounter == 0x1f {
			// Stop the synthetic timer at the wrap and wait for the
			// index pulse to re-derive the period, bounding drift.
			c.sectorTimer.Disarm()
		}
	} else {
		c.sectorCounter &= 0x0f
	}
	if !c.busy {
		return
	}

	if c.byteTimer.Armed() {
		// The transfer ran into this sector boundary: operation done.
		c.byteTimer.Disarm()
		c.busy = false
		c.completed = true
		if c.readMode && !c.hddSelected() {
			// The controller does not compute ECC on floppy reads.
			c.ram[eccOffset] = 0
			c.ram[eccOffset+1] = 0
		}
		return
	}

	if c.sectorCounter == c.sector {
		if c.readMode {
			c.startRead(now)
		} else {
			c.startWrite(now)
		}
	}
}
