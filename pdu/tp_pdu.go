/*
NAME
  tp_pdu.go - transfer PDU header parsing and CRC verification.

DESCRIPTION
  TPPDU wraps an accumulated transfer PDU buffer (header plus user
  data plus trailing CRC-16) and exposes its bit-exact header fields
  per spec §3/§6.

AUTHORS
  Grounded on original_source/src/assembler/virtual_channel.h's
  transfer-PDU header bitfield layout, following the same small
  read-only accessor style as frame.VCDU.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pdu implements the GOES downlink's PDU layers: transfer PDU
// parsing, virtual channel demultiplexing and session PDU assembly.
package pdu

import "github.com/ausocean/goesrx/internal/crc"

// TPHeaderLen is the fixed transfer-PDU header length in bytes.
const TPHeaderLen = 6

// CRCLen is the trailing CRC-16 length in bytes.
const CRCLen = 2

// FillAPID marks a fill transfer PDU, discarded at ingress.
const FillAPID = 2047

// SeqFlag identifies a transfer PDU's position within its session PDU.
type SeqFlag uint8

const (
	SeqContinuation SeqFlag = 0
	SeqFirst        SeqFlag = 1
	SeqLast         SeqFlag = 2
	SeqComplete     SeqFlag = 3
)

// TPPDU views a fully-accumulated transfer PDU: a 6-byte header
// followed by user data and a 2-byte CRC-16 trailer.
type TPPDU []byte

// Version returns the 3-bit version field.
func (t TPPDU) Version() uint8 { return t[0] >> 5 }

// APID returns the 11-bit application process ID.
func (t TPPDU) APID() uint16 {
	return (uint16(t[0]&0x07) << 8) | uint16(t[1])
}

// IsFill reports whether this transfer PDU is a fill PDU (APID==2047).
func (t TPPDU) IsFill() bool { return t.APID() == FillAPID }

// SequenceFlag returns the 2-bit sequence flag.
func (t TPPDU) SequenceFlag() SeqFlag {
	return SeqFlag(t[2] >> 6)
}

// SequenceCount returns the 14-bit sequence count.
func (t TPPDU) SequenceCount() uint16 {
	return (uint16(t[2]&0x3f) << 8) | uint16(t[3])
}

// Length returns the reconstructed user-data+CRC length in bytes, i.e.
// the wire length field plus one.
func (t TPPDU) Length() int {
	return int(uint16(t[4])<<8|uint16(t[5])) + 1
}

// TotalLen returns the full transfer PDU length (header + user data +
// CRC) this header declares.
func (t TPPDU) TotalLen() int {
	return TPHeaderLen + t.Length()
}

// UserData returns the payload bytes between the header and the
// trailing CRC.
func (t TPPDU) UserData() []byte {
	return t[TPHeaderLen : len(t)-CRCLen]
}

// VerifyCRC reports whether the trailing CRC-16 matches the user data
// preceding it.
func (t TPPDU) VerifyCRC() bool {
	return crc.VerifyTrailer(t[TPHeaderLen:])
}
