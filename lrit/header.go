/*
NAME
  header.go - LRIT header tree parsing and typed accessors.

DESCRIPTION
  ParseHeaders linearly scans an LRIT header tree, producing a map
  from header type code to byte offset; the typed accessor functions
  then read one specific header's fields at a given offset, per spec
  §3's header kind table and §9's "code-to-offset map plus decoder per
  code" design note.

AUTHORS
  Grounded field-for-field on original_source/src/lib/lrit.h/.cc's
  HeaderReader<H> template and getHeaderMap, reimplemented as plain
  big-endian reads (Go has no portable struct-punning equivalent to the
  original's reinterpret_cast+bswap reads) in the small accessor-struct
  style of frame.VCDU/pdu.TPPDU.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package lrit parses the LRIT header tree carried at the start of a
// reassembled session PDU.
package lrit

import "encoding/binary"

// Known header type codes, per spec §3.
const (
	CodePrimary               = 0
	CodeImageStructure        = 1
	CodeImageNavigation       = 2
	CodeImageDataFunction     = 3
	CodeAnnotation            = 4
	CodeTimeStamp             = 5
	CodeAncillaryText         = 6
	CodeKey                   = 7
	CodeSegmentIdentification = 128
	CodeNOAA                  = 129
	CodeHeaderStructureRecord = 130
	CodeRiceCompression       = 131
	CodeDCSFileName           = 132
)

// HeaderMap maps a header type code to its byte offset within the
// buffer passed to ParseHeaders.
type HeaderMap map[int]int

// ParseHeaders linearly scans the LRIT header tree occupying
// buf[0:totalHeaderLength], returning a map from type code to offset.
// A record with length==0 is malformed; ParseHeaders returns an empty
// map in that case, per spec §6.
func ParseHeaders(buf []byte, totalHeaderLength int) HeaderMap {
	m := make(HeaderMap)
	pos := 0
	for pos < totalHeaderLength {
		if pos+3 > len(buf) {
			return HeaderMap{}
		}
		headerType := int(buf[pos])
		headerLength := int(binary.BigEndian.Uint16(buf[pos+1:]))
		if headerLength == 0 {
			return HeaderMap{}
		}
		m[headerType] = pos
		pos += headerLength
	}
	return m
}

// Primary is the LRIT primary header (type 0).
type Primary struct {
	FileType          uint8
	TotalHeaderLength uint32
	DataLength        uint64 // bits
}

// ReadPrimary reads the primary header at pos.
func ReadPrimary(buf []byte, pos int) Primary {
	return Primary{
		FileType:          buf[pos+3],
		TotalHeaderLength: binary.BigEndian.Uint32(buf[pos+4:]),
		DataLength:        binary.BigEndian.Uint64(buf[pos+8:]),
	}
}

// ImageStructure is the LRIT image structure header (type 1).
type ImageStructure struct {
	BitsPerPixel uint8
	Columns      uint16
	Lines        uint16
	Compression  uint8
}

// ReadImageStructure reads the image structure header at pos.
func ReadImageStructure(buf []byte, pos int) ImageStructure {
	return ImageStructure{
		BitsPerPixel: buf[pos+3],
		Columns:      binary.BigEndian.Uint16(buf[pos+4:]),
		Lines:        binary.BigEndian.Uint16(buf[pos+6:]),
		Compression:  buf[pos+8],
	}
}

// ImageNavigation is the LRIT image navigation header (type 2).
type ImageNavigation struct {
	ProjectionName string
	ColumnScaling  uint32
	LineScaling    uint32
	ColumnOffset   uint32
	LineOffset     uint32
}

// ReadImageNavigation reads the image navigation header at pos.
func ReadImageNavigation(buf []byte, pos int) ImageNavigation {
	return ImageNavigation{
		ProjectionName: trimNulls(buf[pos+3 : pos+35]),
		ColumnScaling:  binary.BigEndian.Uint32(buf[pos+35:]),
		LineScaling:    binary.BigEndian.Uint32(buf[pos+39:]),
		ColumnOffset:   binary.BigEndian.Uint32(buf[pos+43:]),
		LineOffset:     binary.BigEndian.Uint32(buf[pos+47:]),
	}
}

// ReadImageDataFunction returns the opaque byte blob of an image data
// function header (type 3).
func ReadImageDataFunction(buf []byte, pos int) []byte {
	length := recordLength(buf, pos)
	return buf[pos+3 : pos+length]
}

// ReadAnnotation returns the filename text of an annotation header
// (type 4).
func ReadAnnotation(buf []byte, pos int) string {
	length := recordLength(buf, pos)
	return string(buf[pos+3 : pos+length])
}

// ReadTimeStamp returns the raw 7-byte CCSDS timestamp of a time stamp
// header (type 5).
func ReadTimeStamp(buf []byte, pos int) [7]byte {
	var ts [7]byte
	copy(ts[:], buf[pos+3:pos+10])
	return ts
}

// ReadAncillaryText returns the key=value text of an ancillary text
// header (type 6).
func ReadAncillaryText(buf []byte, pos int) string {
	length := recordLength(buf, pos)
	return string(buf[pos+3 : pos+length])
}

// SegmentIdentification is the mission-specific segment identification
// header (type 128).
type SegmentIdentification struct {
	ImageIdentifier    uint16
	SegmentNumber      uint16
	SegmentStartColumn uint16
	SegmentStartLine   uint16
	MaxSegment         uint16
	MaxColumn          uint16
	MaxLine            uint16
}

// ReadSegmentIdentification reads the segment identification header at
// pos.
func ReadSegmentIdentification(buf []byte, pos int) SegmentIdentification {
	return SegmentIdentification{
		ImageIdentifier:    binary.BigEndian.Uint16(buf[pos+3:]),
		SegmentNumber:      binary.BigEndian.Uint16(buf[pos+5:]),
		SegmentStartColumn: binary.BigEndian.Uint16(buf[pos+7:]),
		SegmentStartLine:   binary.BigEndian.Uint16(buf[pos+9:]),
		MaxSegment:         binary.BigEndian.Uint16(buf[pos+11:]),
		MaxColumn:          binary.BigEndian.Uint16(buf[pos+13:]),
		MaxLine:            binary.BigEndian.Uint16(buf[pos+15:]),
	}
}

// NOAA is the NOAA-specific LRIT header (type 129).
type NOAA struct {
	AgencySignature string
	ProductID       uint16
	ProductSubID    uint16
	Parameter       uint16
	Compression     uint8
}

// ReadNOAA reads the NOAA header at pos.
func ReadNOAA(buf []byte, pos int) NOAA {
	return NOAA{
		AgencySignature: trimNulls(buf[pos+3 : pos+7]),
		ProductID:       binary.BigEndian.Uint16(buf[pos+7:]),
		ProductSubID:    binary.BigEndian.Uint16(buf[pos+9:]),
		Parameter:       binary.BigEndian.Uint16(buf[pos+11:]),
		Compression:     buf[pos+13],
	}
}

// RiceCompression is the Rice/SZIP compression parameter header (type
// 131).
type RiceCompression struct {
	Flags              uint16
	PixelsPerBlock     uint8
	ScanLinesPerPacket uint8
}

// ReadRiceCompression reads the Rice compression header at pos.
func ReadRiceCompression(buf []byte, pos int) RiceCompression {
	return RiceCompression{
		Flags:              binary.BigEndian.Uint16(buf[pos+3:]),
		PixelsPerBlock:     buf[pos+5],
		ScanLinesPerPacket: buf[pos+6],
	}
}

// ReadDCSFileName returns the filename text of a DCS filename header
// (type 132).
func ReadDCSFileName(buf []byte, pos int) string {
	length := recordLength(buf, pos)
	return string(buf[pos+3 : pos+length])
}

func recordLength(buf []byte, pos int) int {
	return int(binary.BigEndian.Uint16(buf[pos+1:]))
}

func trimNulls(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}
