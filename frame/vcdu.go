/*
NAME
  vcdu.go - VCDU accessors.

DESCRIPTION
  VCDU is a thin view over a fixed 892-byte virtual channel data unit,
  exposing its bit-exact header fields and the M_PDU payload beneath
  it, per spec §3/§6.

AUTHORS
  Grounded on the small read-only accessor-struct style of
  ausocean-av/container/mts (packet/header field accessors over a byte
  slice) applied to original_source/src/assembler/virtual_channel.h's
  VCDU header layout.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame implements the GOES downlink's frame acquisition layer:
// sync-word correlation, Viterbi decode and Reed-Solomon decode of raw
// symbol frames into fixed-size VCDUs.
package frame

// Size is the fixed VCDU length in bytes.
const Size = 892

// HeaderLen is the VCDU header length in bytes.
const HeaderLen = 6

// PayloadLen is the channel-data length following the header.
const PayloadLen = Size - HeaderLen // 886

// FillVCID marks a fill frame, discarded at ingress.
const FillVCID = 63

// VCDU views a fixed-size 892-byte virtual channel data unit.
type VCDU [Size]byte

// Version returns the 2-bit VCDU version number.
func (v *VCDU) Version() uint8 {
	return v[0] >> 6
}

// SCID returns the 10-bit spacecraft ID.
func (v *VCDU) SCID() uint16 {
	return (uint16(v[0]&0x3f) << 4) | uint16(v[1]>>4)
}

// VCID returns the 6-bit virtual channel ID.
func (v *VCDU) VCID() uint8 {
	return ((v[1] & 0x0f) << 2) | (v[2] >> 6)
}

// Counter returns the 24-bit VCDU counter.
func (v *VCDU) Counter() uint32 {
	return uint32(v[3])<<16 | uint32(v[4])<<8 | uint32(v[5])
}

// IsFill reports whether this VCDU is a fill frame (VCID==63).
func (v *VCDU) IsFill() bool {
	return v.VCID() == FillVCID
}

// FirstHeaderPointer returns the 11-bit first-header pointer from the
// M_PDU header (the first 2 bytes of the channel payload).
func (v *VCDU) FirstHeaderPointer() uint16 {
	return (uint16(v[HeaderLen]&0x07) << 8) | uint16(v[HeaderLen+1])
}

// Payload returns the 886-byte channel data field, M_PDU header
// included.
func (v *VCDU) Payload() []byte {
	return v[HeaderLen:]
}

// MPDUData returns the channel data past the 2-byte M_PDU header, i.e.
// the 884 bytes a TP_PDU stream may occupy.
func (v *VCDU) MPDUData() []byte {
	return v[HeaderLen+2:]
}

// NoNewHeader is the sentinel first-header-pointer value meaning "no
// new TP_PDU starts inside this VCDU".
const NoNewHeader = 2047

// wrapdiff returns the forward distance from a to b over a counter
// that wraps at 2^bits, i.e. (b-a) mod 2^bits.
func wrapdiff(a, b uint32, bits uint) uint32 {
	mod := uint32(1) << bits
	return (b - a + mod) % mod
}

// WrapDiff24 computes wrapdiff for the 24-bit VCDU counter.
func WrapDiff24(a, b uint32) uint32 { return wrapdiff(a, b, 24) }

// WrapDiff14 computes wrapdiff for the 14-bit TP_PDU sequence count.
func WrapDiff14(a, b uint32) uint32 { return wrapdiff(a, b, 14) }
