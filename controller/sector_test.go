package controller

import (
	"testing"

	"github.com/sergev/dualmode/sched"
)

// pulse advances the queue to t and delivers a floppy sector pulse, the
// way a drive model does from its own event.
func pulse(q *sched.Queue, c *Controller, f *fakeFloppy, t uint64) {
	q.RunUntil(t)
	c.OnSectorPulse(t, f)
}

// Verify the floppy sector counter counts 0..15 and wraps.
func TestFloppySectorCounterWrap(t *testing.T) {
	q, c, f := newTestController()
	c.Out(0, PortControl0, 0x01)

	const period = 12500000 // 16 sectors at 300 rpm
	for i := 1; i <= 33; i++ {
		pulse(q, c, f, uint64(i)*period)
		want := uint8(i % 16)
		if c.sectorCounter != want {
			t.Fatalf("after pulse %d counter = %d, expected %d", i, c.sectorCounter, want)
		}
	}
}

// Verify the index hole region: a pulse closer than the debounce
// interval saturates the counter to 15, and the next clean pulse lands
// on sector 0 regardless of where the counter was before.
func TestFloppyDebounceResync(t *testing.T) {
	q, c, f := newTestController()
	c.Out(0, PortControl0, 0x01)

	const period = 12500000
	t0 := uint64(20000000)
	pulse(q, c, f, t0)
	pulse(q, c, f, t0+period)
	if c.sectorCounter != 2 {
		t.Fatalf("counter = %d before index region", c.sectorCounter)
	}

	// Index hole: 6.25 ms after the last sector hole.
	pulse(q, c, f, t0+period+period/2)
	if c.sectorCounter != 0x0f {
		t.Fatalf("counter = %d after debounced pulse, expected 15", c.sectorCounter)
	}

	// The debounced pulse did not count as "last pulse", so this one is
	// 1.5 periods after it and passes the debounce check.
	pulse(q, c, f, t0+2*period)
	if c.sectorCounter != 0 {
		t.Errorf("counter = %d after resync pulse, expected 0", c.sectorCounter)
	}
}

// Verify sector pulses from a non-selected drive are ignored, and all
// floppy pulses are ignored while the hard disk is selected.
func TestSectorPulseSelection(t *testing.T) {
	q, c, f := newTestController()
	other := &fakeFloppy{}
	c.AttachFloppy(2, other)
	c.AttachHardDisk(&fakeHardDisk{})

	c.Out(0, PortControl0, 0x01)
	pulse(q, c, other, 20000000)
	if c.sectorCounter != 0 {
		t.Error("pulse from non-selected drive advanced the counter")
	}

	c.Out(q.Now(), PortControl0, 0x00) // hard disk
	pulse(q, c, f, 40000000)
	if c.sectorCounter != 0 {
		t.Error("floppy pulse advanced the counter with hard disk selected")
	}
}

// Verify the hard disk index pulse synthesizes 32 sector boundaries per
// revolution and the synthetic timer parks at the wrap until the next
// index pulse re-derives the period.
func TestHardDiskIndexSynthesis(t *testing.T) {
	q := sched.NewQueue()
	c := New(q, DefaultTiming())
	c.AttachHardDisk(&fakeHardDisk{})
	c.Out(0, PortControl0, 0x00)

	const rotation = 16640000
	q.RunUntil(rotation)
	c.OnIndexPulse(rotation)
	if c.sectorCounter != 0 {
		t.Fatalf("counter = %d at index, expected 0", c.sectorCounter)
	}
	if !c.sectorTimer.Armed() {
		t.Fatal("synthetic sector timer not armed by index pulse")
	}

	sectorTime := uint64(rotation / 32)
	for i := 1; i <= 30; i++ {
		q.RunUntil(rotation + uint64(i)*sectorTime)
		if c.sectorCounter != uint8(i) {
			t.Fatalf("counter = %d after tick %d, expected %d", c.sectorCounter, i, i)
		}
	}

	// Tick 31 parks the timer at the wrap value.
	q.RunUntil(rotation + 31*sectorTime)
	if c.sectorCounter != 0x1f {
		t.Errorf("counter = %d at wrap, expected 31", c.sectorCounter)
	}
	if c.sectorTimer.Armed() {
		t.Error("synthetic timer still armed after the wrap")
	}

	// The next index pulse restarts the cycle at sector 0.
	q.RunUntil(2 * rotation)
	c.OnIndexPulse(2 * rotation)
	if c.sectorCounter != 0 {
		t.Errorf("counter = %d at second index, expected 0", c.sectorCounter)
	}
	if !c.sectorTimer.Armed() {
		t.Error("synthetic timer not re-armed by second index")
	}
}

// Verify switching selection back to a floppy drops the synthetic
// sector timer left over from the hard disk.
func TestFloppySelectDropsSyntheticTimer(t *testing.T) {
	q := sched.NewQueue()
	c := New(q, DefaultTiming())
	c.AttachFloppy(1, &fakeFloppy{})
	c.AttachHardDisk(&fakeHardDisk{})
	c.Out(0, PortControl0, 0x00)

	q.RunUntil(16640000)
	c.OnIndexPulse(16640000)
	if !c.sectorTimer.Armed() {
		t.Fatal("synthetic timer not armed")
	}
	c.Out(q.Now(), PortControl0, 0x01)
	if c.sectorTimer.Armed() {
		t.Error("synthetic timer survived floppy selection")
	}
}

// Verify a completed floppy read clears the two ECC bytes: the
// controller never computes ECC on the floppy side.
func TestFloppyReadClearsEcc(t *testing.T) {
	q, c, f := newTestController()
	c.Out(0, PortControl0, 0x01)
	c.Out(0, PortControl1, 0x20|0x01) // read, sector 1
	c.Out(0, PortStart, 0)

	c.ram[eccOffset] = 0xde
	c.ram[eccOffset+1] = 0xad
	c.busy = true
	c.byteTimer.Arm(30000000) // transfer in flight past the pulse below

	pulse(q, c, f, 20000000)
	if c.busy {
		t.Error("busy still set after the terminating sector pulse")
	}
	if c.byteTimer.Armed() {
		t.Error("byte timer still armed after completion")
	}
	if c.ram[eccOffset] != 0 || c.ram[eccOffset+1] != 0 {
		t.Error("ECC bytes not cleared on floppy read completion")
	}
}
