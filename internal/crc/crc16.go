/*
NAME
  crc16.go - CRC-16/CCITT-FALSE for TP_PDU verification.

DESCRIPTION
  Checksum computes the CRC-16 trailer CCSDS appends to every transfer
  PDU; VerifyTrailer checks a received TP_PDU's trailing two bytes
  against a checksum of everything preceding them.

AUTHORS
  Grounded on original_source/src/assembler/virtual_channel.cc's use of
  a CRC-16/CCITT-FALSE table (poly 0x1021, init 0xFFFF, no reflect, no
  xorout) to validate each reassembled TP_PDU; table-driven update
  style follows the small package-level lookup tables used throughout
  ausocean-av/codec.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package crc implements the CRC-16 used to verify reassembled
// transfer PDUs on the GOES downlink.
package crc

const (
	poly    = 0x1021
	initVal = 0xffff
)

var table [256]uint16

func initTable() [256]uint16 {
	var t [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

func init() {
	table = initTable()
}

// Checksum computes the CRC-16/CCITT-FALSE checksum of data.
func Checksum(data []byte) uint16 {
	crc := uint16(initVal)
	for _, b := range data {
		crc = (crc << 8) ^ table[byte(crc>>8)^b]
	}
	return crc
}

// VerifyTrailer reports whether the last two bytes of pdu (big-endian)
// match the CRC-16 checksum of everything preceding them. A pdu shorter
// than 2 bytes is never valid.
func VerifyTrailer(pdu []byte) bool {
	if len(pdu) < 2 {
		return false
	}
	body := pdu[:len(pdu)-2]
	want := uint16(pdu[len(pdu)-2])<<8 | uint16(pdu[len(pdu)-1])
	return Checksum(body) == want
}
