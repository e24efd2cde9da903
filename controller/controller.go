package controller

import (
	"github.com/sergev/dualmode/pll"
	"github.com/sergev/dualmode/sched"
)

// Event priorities: pulse delivery runs before controller timers at the
// same instant, so sector counters update before buffered transfer
// steps proceed.
const (
	PrioPulse = 0
	PrioTimer = 1
)

// Host-visible port numbers.
const (
	PortStatus0  = 0xc0 // in: drive status lines
	PortStatus1  = 0xc1 // in: controller status
	PortData     = 0xc2 // in/out: buffer byte at current address
	PortReset    = 0xc3 // in: reset buffer address
	PortControl0 = 0xc0 // out: drive/head select, step, reduced write current
	PortControl1 = 0xc1 // out: sector, mode, ECC, write precompensation
	PortStart    = 0xc3 // out: latch busy if motor on
)

const (
	ramSize   = 512
	cmarMask  = 0x1ff
	eccOffset = 274 // two-byte ECC field position in the buffer
)

// Controller is one dual-mode disk controller instance. All methods
// take or derive explicit simulated times; nothing here touches the
// wall clock. Not safe for concurrent use: the emulation is a single
// event-driven thread.
type Controller struct {
	timing Timing
	q      *sched.Queue

	floppy [4]FloppyDrive
	hdd    HardDisk

	// Host-visible state, all covered by Snapshot.
	ram           [ramSize]byte
	cmar          uint16 // 9-bit circular buffer address
	drive         uint8
	head          uint8
	reducedWC     bool
	sector        uint8 // target sector register
	sectorCounter uint8
	readMode      bool
	eccIgnore     bool
	wpcom         bool
	busy          bool
	completed     bool   // last started operation reached its terminal sector tick
	pendingByte   uint16 // bit accumulator, one MFM cell
	pendingSize   int

	// Transient state, rebuilt by the event flow.
	lastSectorPulse uint64
	lastIndexPulse  uint64
	pll             pll.State

	motorTimer  *sched.Event
	sectorTimer *sched.Event
	byteTimer   *sched.Event
}

// New creates a controller with its three timers allocated on the
// queue. Attach media before driving the ports.
func New(q *sched.Queue, timing Timing) *Controller {
	c := &Controller{timing: timing, q: q}
	c.motorTimer = q.NewEvent(PrioTimer, c.motorOff)
	c.sectorTimer = q.NewEvent(PrioTimer, c.sectorTick)
	c.byteTimer = q.NewEvent(PrioTimer, c.byteTick)
	return c
}

// AttachFloppy connects a floppy drive to unit 0-3 and subscribes the
// controller to its sector pulses.
func (c *Controller) AttachFloppy(unit int, d FloppyDrive) {
	c.floppy[unit] = d
	d.SetPulseSink(c)
}

// AttachHardDisk connects the hard disk. When present it replaces
// floppy unit 0 as drive 0.
func (c *Controller) AttachHardDisk(d HardDisk) {
	c.hdd = d
	d.SetPulseSink(c)
}

// Reset applies the power-on-clear state: drive 0 selected, sector 0,
// write mode, motor one-shot cleared.
func (c *Controller) Reset() {
	c.drive = 0
	c.sector = 0
	c.readMode = false
	c.motorTimer.Disarm()
}

// Busy reports the controller busy flag.
func (c *Controller) Busy() bool {
	return c.busy
}

// Completed reports whether the last started operation ran to its
// terminal sector boundary. False when the start never latched or the
// motor one-shot abandoned the transfer; busy must have cleared for the
// answer to be final.
func (c *Controller) Completed() bool {
	return c.completed
}

func (c *Controller) hddSelected() bool {
	return c.drive == 0 && c.hdd != nil
}

func (c *Controller) selectedFloppy() FloppyDrive {
	return c.floppy[c.drive]
}

// In performs a host port read at the given simulated time, first
// dispatching any scheduled work due before then. While busy every
// port except the status ports reads as 0xFF with no side effect.
func (c *Controller) In(now uint64, port uint8) uint8 {
	c.q.RunUntil(now)
	switch port {
	case PortStatus0:
		return c.status0()
	case PortStatus1:
		return c.status1()
	case PortData:
		if c.busy {
			return 0xff
		}
		data := c.ram[c.cmar]
		c.cmar = (c.cmar + 1) & cmarMask
		return data
	case PortReset:
		if c.busy {
			return 0xff
		}
		c.cmar = 0
	}
	return 0xff
}

// Out performs a host port write at the given simulated time, first
// dispatching any scheduled work due before then. Writes while busy
// are dropped.
func (c *Controller) Out(now uint64, port uint8, data uint8) {
	c.q.RunUntil(now)
	if c.busy {
		return
	}
	switch port {
	case PortControl0:
		c.drive = data & 0x03
		c.head = (data >> 2) & 0x07
		step := data&0x20 != 0
		stepIn := data&0x40 != 0
		c.reducedWC = data&0x80 != 0

		if f := c.selectedFloppy(); f != nil {
			f.SetMotor(true)
		}
		c.motorTimer.Arm(c.timing.MotorOnNs)

		if c.hddSelected() {
			// Direction must be stable before the step edge samples it.
			c.hdd.SelectHead(int(c.head))
			c.hdd.StepIn(stepIn)
			c.hdd.Step(step)
		} else {
			if f := c.selectedFloppy(); f != nil {
				f.SetSide(int(c.head & 1))
				f.StepIn(stepIn)
				f.Step(step)
			}
			// Changing selection mid-wait drops any synthetic sector
			// timing left over from the hard disk.
			if c.sectorTimer.Armed() {
				c.sectorTimer.Disarm()
			}
		}
	case PortControl1:
		c.sector = data & 0x1f
		c.readMode = data&0x20 != 0
		c.eccIgnore = data&0x40 != 0
		c.wpcom = data&0x80 != 0
	case PortData:
		c.ram[c.cmar] = data
		c.cmar = (c.cmar + 1) & cmarMask
	case PortStart:
		c.busy = c.motorTimer.Armed()
		c.completed = false
	}
}

// status0 assembles the drive status lines. Which lines mean anything
// depends on the selected media type.
func (c *Controller) status0() uint8 {
	var writeProtect bool // FDD
	var ready bool        // HDD
	var track0 bool
	var writeFault bool // HDD
	var seekComplete bool
	var lossOfSync bool
	if c.hddSelected() {
		ready = c.hdd.Ready()
		track0 = c.hdd.Track0()
		seekComplete = c.hdd.SeekComplete()
		lossOfSync = true
	} else if f := c.selectedFloppy(); f != nil {
		writeProtect = f.WriteProtected()
		track0 = f.Track0()
	}

	var data uint8 = 0xc0
	if writeProtect {
		data |= 0x01
	}
	if ready {
		data |= 0x02
	}
	if track0 {
		data |= 0x04
	}
	if writeFault {
		data |= 0x08
	}
	if seekComplete {
		data |= 0x10
	}
	if lossOfSync {
		data |= 0x20
	}
	return data
}

func (c *Controller) status1() uint8 {
	floppySelected := !c.hddSelected()
	motorOn := floppySelected && c.motorTimer.Armed()

	var data uint8 = 0xf0
	if floppySelected {
		data |= 0x01
	}
	if c.busy {
		data |= 0x02
	}
	if motorOn {
		data |= 0x04
	}
	data |= 0x08 // type of hard disk
	return data
}

// motorOff fires when the motor one-shot elapses: motors stop, any
// in-flight transfer is abandoned and busy clears.
func (c *Controller) motorOff(now uint64) {
	for _, f := range c.floppy {
		if f != nil {
			f.SetMotor(false)
		}
	}
	c.byteTimer.Disarm()
	c.busy = false
}
