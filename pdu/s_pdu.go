/*
NAME
  s_pdu.go - session PDU assembly and Rice decode, per spec §4.9.

DESCRIPTION
  SPDU incrementally accumulates a session PDU's primary header,
  secondary header tree, and data body across a sequence of TP_PDU
  appends, initializing a Rice decoder as soon as the header declares a
  Rice-compressed image, and synthesizing missing scan lines on a
  detected drop.

AUTHORS
  Grounded on original_source/src/assembler/session_pdu.h/.cc's
  SessionPDU (header/body accumulation split, finish()/skipLines()
  salvage logic, Rice decoder lifecycle).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pdu

import (
	"github.com/ausocean/goesrx/lrit"
	"github.com/ausocean/goesrx/rice"
)

// riceRawMask is ORed into the Rice parameter flags read from the
// RiceCompression header, per spec §4.9.
const riceRawMask = 0x01

// primaryHeaderLen is the fixed length of the LRIT primary header.
const primaryHeaderLen = 16

// SPDU accumulates one session PDU (one reassembled LRIT file).
type SPDU struct {
	VCID uint8
	APID uint16

	buf []byte // user data received until the header tree is complete, including any bytes past it

	havePrimary bool
	primary     lrit.Primary
	headerMap   lrit.HeaderMap
	haveHeaders bool

	riceParams    rice.Params
	riceConfiged  bool
	pixelsPerLine int
	imageLines    int
	linesDone     int
	lastLine      []byte

	body []byte // body accumulator: verbatim data, or decoded and synthesized scan lines when Rice is configured
}

// NewSPDU creates an empty session PDU accumulator for the given
// virtual channel and application process.
func NewSPDU(vcid uint8, apid uint16) *SPDU {
	return &SPDU{VCID: vcid, APID: apid}
}

// Append incorporates one TP_PDU's user data into the session PDU,
// reporting false if the data could not be incorporated (malformed
// header, or a Rice block that fails to decompress). The first TP_PDU's
// user data is read as header from its first byte; no leading bytes
// are skipped.
func (s *SPDU) Append(data []byte) bool {
	if !s.havePrimary {
		s.buf = append(s.buf, data...)
		if len(s.buf) >= primaryHeaderLen {
			s.primary = lrit.ReadPrimary(s.buf, 0)
			s.havePrimary = true
			if len(s.buf) >= int(s.primary.TotalHeaderLength) {
				return s.completeHeaders()
			}
		}
		return true
	}

	if !s.haveHeaders {
		s.buf = append(s.buf, data...)
		if len(s.buf) >= int(s.primary.TotalHeaderLength) {
			return s.completeHeaders()
		}
		return true
	}

	return s.appendBody(data)
}

// completeHeaders is called exactly once, as soon as buf holds the
// full secondary header tree, and configures the Rice decoder if the
// file declares Rice-compressed image data.
func (s *SPDU) completeHeaders() bool {
	if len(s.buf) < int(s.primary.TotalHeaderLength) {
		return false
	}
	s.headerMap = lrit.ParseHeaders(s.buf, int(s.primary.TotalHeaderLength))
	s.haveHeaders = true
	if len(s.headerMap) == 0 {
		return false
	}

	if s.primary.FileType != 0 {
		return true
	}
	isPos, hasIS := s.headerMap[lrit.CodeImageStructure]
	rcPos, hasRC := s.headerMap[lrit.CodeRiceCompression]
	if !hasIS || !hasRC {
		return true
	}
	is := lrit.ReadImageStructure(s.buf, isPos)
	if is.Compression != 1 {
		return true
	}
	rc := lrit.ReadRiceCompression(s.buf, rcPos)

	s.riceParams = rice.Params{
		Options:        rc.Flags | riceRawMask,
		BitsPerPixel:   int(is.BitsPerPixel),
		PixelsPerBlock: int(rc.PixelsPerBlock),
	}
	s.pixelsPerLine = int(is.Columns)
	s.imageLines = int(is.Lines)
	s.riceConfiged = true
	return true
}

// appendBody incorporates one TP_PDU's user data into the data region,
// either verbatim or as one compressed scan line.
func (s *SPDU) appendBody(data []byte) bool {
	if !s.riceConfiged {
		s.body = append(s.body, data...)
		return true
	}
	if s.linesDone >= s.imageLines {
		return true
	}
	line, err := rice.Decode(s.riceParams, data, s.pixelsPerLine)
	if err != nil {
		return false
	}
	s.body = append(s.body, line...)
	s.lastLine = line
	s.linesDone++
	return true
}

// SkipLines synthesizes skip missing scan lines following a detected
// TP_PDU drop: the first synthesized line duplicates the last decoded
// line (or is a zero row if none has been decoded yet), and subsequent
// lines duplicate that synthesized line, per spec §4.9's line
// synthesis rule. It only applies to file_type==0 images with a
// configured Rice decoder, and only while remaining capacity allows
// it; it reports whether synthesis was applied.
func (s *SPDU) SkipLines(skip int) bool {
	if !s.riceConfiged || skip <= 0 {
		return false
	}
	remaining := s.imageLines - s.linesDone
	if skip > remaining {
		return false
	}
	row := s.lastLine
	if row == nil {
		row = make([]byte, s.pixelsPerLine)
	}
	for i := 0; i < skip; i++ {
		s.body = append(s.body, row...)
		s.linesDone++
	}
	s.lastLine = row
	return true
}

// Finish salvages an S_PDU whose tail TP_PDUs were dropped, filling
// every remaining scan line synthetically. It succeeds only for a
// file_type==0 image with a configured Rice decoder and a complete
// header.
func (s *SPDU) Finish() bool {
	if !s.haveHeaders || s.primary.FileType != 0 || !s.riceConfiged {
		return false
	}
	remaining := s.imageLines - s.linesDone
	if remaining <= 0 {
		return true
	}
	return s.SkipLines(remaining)
}

// Size returns the number of accumulated bytes: header plus body.
func (s *SPDU) Size() int {
	return len(s.buf) + len(s.body)
}

// Valid reports whether this session PDU is complete and ready for
// emission, per spec §4.8's emission rule: a complete header, and
// total_header_length + ceil(data_length/8) == size.
func (s *SPDU) Valid() bool {
	if !s.haveHeaders {
		return false
	}
	dataBytes := (int(s.primary.DataLength) + 7) / 8
	return int(s.primary.TotalHeaderLength)+dataBytes == s.Size()
}

// Bytes returns the full accumulated file: header followed by body.
func (s *SPDU) Bytes() []byte {
	out := make([]byte, 0, s.Size())
	out = append(out, s.buf...)
	out = append(out, s.body...)
	return out
}

// HeaderMap returns the parsed secondary header map, valid once
// haveHeaders is true.
func (s *SPDU) HeaderMap() lrit.HeaderMap { return s.headerMap }

// Primary returns the parsed primary header.
func (s *SPDU) Primary() lrit.Primary { return s.primary }
