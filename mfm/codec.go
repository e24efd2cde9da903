// Package mfm implements the Micropolis-style MFM byte codec used by the
// Vector dual-mode disk controller. A data byte is encoded as a 16-bit
// cell: eight data bits interleaved with eight clock bits, where a clock
// bit is suppressed next to any data "1" bit. No out-of-band clock
// violations are used, so encode and decode are pure bit transforms.
package mfm

// Interleave spreads 8 bits with an inserted zero between each:
// abcdefgh -> 0a0b0c0d0e0f0g0h.
func Interleave(data byte) uint16 {
	d := uint32(data)
	d = ((d & 0xf0) << 4) | (d & 0x0f)
	d = ((d << 2) | d) & 0x3333
	d = ((d << 1) | d) & 0x5555
	return uint16(d)
}

// EncodeByte encodes one data byte as a 16-bit MFM cell. The previous
// data byte supplies the MFM context: the clock bit between two bytes
// depends on the last bit of the byte before. Clock bits are the
// complement of (data | data>>1) over the extended prev:data window.
func EncodeByte(data, prev byte) uint16 {
	ext := uint32(data) | uint32(prev)<<8
	clock := ^(ext | ext>>1)
	return Interleave(byte(clock))<<1 | Interleave(byte(ext))
}

// DecodeCell extracts the data byte from a 16-bit MFM cell by dropping
// the clock track (the odd bit positions). Inverse of the data half of
// EncodeByte: DecodeCell(EncodeByte(d, p)) == d for any p.
func DecodeCell(cell uint16) byte {
	d := uint32(cell)
	d &= 0x5555
	d = ((d >> 1) | d) & 0x3333
	d = ((d >> 2) | d) & 0x0f0f
	d = ((d >> 4) | d) & 0x00ff
	return byte(d)
}
