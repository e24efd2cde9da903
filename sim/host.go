package sim

import (
	"github.com/sergev/dualmode/controller"
	"github.com/sergev/dualmode/sched"
)

// Host drives the controller's ports the way the Vector 4 boot code
// does: select the drive, prepare the buffer, start, poll status until
// busy clears. Each port access advances simulated time by a few
// microseconds of host CPU work.
type Host struct {
	q *sched.Queue
	c *controller.Controller

	ctrl0 uint8 // last control-0 value, kept stable while pulsing step
}

const (
	accessNs = 4000   // host CPU time per port access
	pollNs   = 100000 // status poll interval
)

// NewHost wraps a controller and its queue.
func NewHost(q *sched.Queue, c *controller.Controller) *Host {
	return &Host{q: q, c: c}
}

func (h *Host) out(port, data uint8) {
	h.c.Out(h.q.Now()+accessNs, port, data)
}

func (h *Host) in(port uint8) uint8 {
	return h.c.In(h.q.Now()+accessNs, port)
}

// Select picks the drive and head and restarts the motor one-shot.
func (h *Host) Select(drive, head int) {
	h.ctrl0 = uint8(drive&0x03) | uint8(head&0x07)<<2
	h.out(controller.PortControl0, h.ctrl0)
}

// Seek issues n step pulses toward higher tracks when in is true,
// toward track 0 otherwise.
func (h *Host) Seek(n int, in bool) {
	var dir uint8
	if in {
		dir = 0x40
	}
	for i := 0; i < n; i++ {
		h.out(controller.PortControl0, h.ctrl0|dir|0x20)
		h.out(controller.PortControl0, h.ctrl0|dir)
	}
}

// SetOperation programs the target sector and transfer direction.
func (h *Host) SetOperation(sector int, read bool) {
	v := uint8(sector & 0x1f)
	if read {
		v |= 0x20
	}
	h.out(controller.PortControl1, v)
}

// ResetBuffer rewinds the buffer address to zero.
func (h *Host) ResetBuffer() {
	h.in(controller.PortReset)
}

// LoadBuffer writes bytes through the data port.
func (h *Host) LoadBuffer(data []byte) {
	for _, b := range data {
		h.out(controller.PortData, b)
	}
}

// ReadBuffer reads n bytes through the data port.
func (h *Host) ReadBuffer(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = h.in(controller.PortData)
	}
	return data
}

// Start latches busy if the motor one-shot is still running.
func (h *Host) Start() {
	h.out(controller.PortStart, 0)
}

// WaitDone polls the busy bit until it clears or maxNs of simulated
// time elapses, then reports whether the operation actually reached its
// terminal sector boundary. Busy also clears when the motor one-shot
// abandons a transfer that never found sync; that counts as failure,
// not completion.
func (h *Host) WaitDone(maxNs uint64) bool {
	deadline := h.q.Now() + maxNs
	for h.q.Now() < deadline {
		if h.in(controller.PortStatus1)&0x02 == 0 {
			return h.c.Completed()
		}
		h.q.RunUntil(h.q.Now() + pollNs)
	}
	return false
}

// ReadSector runs the full read protocol against the selected drive
// and returns the first n buffer bytes. On both media the sync mark
// lands in the first buffer position; the payload follows it.
func (h *Host) ReadSector(drive, head, sector, n int) ([]byte, bool) {
	h.Select(drive, head)
	h.SetOperation(sector, true)
	// Rewind the buffer address so the transfer engine fills from the
	// top; it decodes into whatever address the last operation left.
	h.ResetBuffer()
	h.Start()
	if !h.WaitDone(3000000000) {
		return nil, false
	}
	h.ResetBuffer()
	return h.ReadBuffer(n), true
}

// WriteSector writes a sector image through the controller. The buffer
// is the on-disk byte stream, so it carries the preamble and sync mark
// in front of the payload; preamble must be long enough for the read
// side's PLL settling window.
func (h *Host) WriteSector(drive, head, sector, preamble int, payload []byte) bool {
	buf := make([]byte, 512)
	buf[preamble] = 0xff
	copy(buf[preamble+1:], payload)

	h.Select(drive, head)
	h.SetOperation(sector, false)
	h.ResetBuffer()
	h.LoadBuffer(buf)
	h.Start()
	return h.WaitDone(3000000000)
}
