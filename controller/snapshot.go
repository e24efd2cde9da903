package controller

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// snapshot is the serialized controller state: transfer buffer, buffer
// address, selection registers, mode flags and the pending bit
// accumulator. Pulse timestamps and event deadlines are transient and
// rebuilt by the event flow after restore.
type snapshot struct {
	Ram           [ramSize]byte
	Cmar          uint16
	Drive         uint8
	Head          uint8
	Sector        uint8
	SectorCounter uint8
	ReducedWC     uint8
	ReadMode      uint8
	EccIgnore     uint8
	Wpcom         uint8
	Busy          uint8
	PendingByte   uint16
	PendingSize   uint32
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Snapshot serializes the controller's persistent state.
func (c *Controller) Snapshot() []byte {
	s := snapshot{
		Ram:           c.ram,
		Cmar:          c.cmar,
		Drive:         c.drive,
		Head:          c.head,
		Sector:        c.sector,
		SectorCounter: c.sectorCounter,
		ReducedWC:     boolByte(c.reducedWC),
		ReadMode:      boolByte(c.readMode),
		EccIgnore:     boolByte(c.eccIgnore),
		Wpcom:         boolByte(c.wpcom),
		Busy:          boolByte(c.busy),
		PendingByte:   c.pendingByte,
		PendingSize:   uint32(c.pendingSize),
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, &s)
	return buf.Bytes()
}

// Restore loads state produced by Snapshot.
func (c *Controller) Restore(data []byte) error {
	var s snapshot
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &s); err != nil {
		return fmt.Errorf("restore controller state: %w", err)
	}
	c.ram = s.Ram
	c.cmar = s.Cmar & cmarMask
	c.drive = s.Drive & 0x03
	c.head = s.Head & 0x07
	c.sector = s.Sector & 0x1f
	c.sectorCounter = s.SectorCounter & 0x1f
	c.reducedWC = s.ReducedWC != 0
	c.readMode = s.ReadMode != 0
	c.eccIgnore = s.EccIgnore != 0
	c.wpcom = s.Wpcom != 0
	c.busy = s.Busy != 0
	c.pendingByte = s.PendingByte
	c.pendingSize = int(s.PendingSize)
	return nil
}
