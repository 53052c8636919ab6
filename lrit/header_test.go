package lrit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildPrimary(fileType uint8, totalHeaderLen uint32, dataLen uint64) []byte {
	buf := make([]byte, 16)
	buf[0] = CodePrimary
	buf[1], buf[2] = 0, 16
	buf[3] = fileType
	buf[4] = byte(totalHeaderLen >> 24)
	buf[5] = byte(totalHeaderLen >> 16)
	buf[6] = byte(totalHeaderLen >> 8)
	buf[7] = byte(totalHeaderLen)
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(dataLen >> uint(8*(7-i)))
	}
	return buf
}

func TestParseHeadersPrimaryPlusAnnotation(t *testing.T) {
	primary := buildPrimary(0, 32, 0)
	annotation := []byte{CodeAnnotation, 0, 16, 'D', 'S', 'K', '_', 't', 'e', 's', 't', '.', 'l', 'r', 'i', 't'}
	buf := append(primary, annotation...)

	m := ParseHeaders(buf, 32)
	if _, ok := m[CodePrimary]; !ok {
		t.Fatalf("primary header missing from map")
	}
	off, ok := m[CodeAnnotation]
	if !ok {
		t.Fatalf("annotation header missing from map")
	}

	text := ReadAnnotation(buf, off)
	if text != "DSK_test.lrit" {
		t.Fatalf("ReadAnnotation() = %q, want %q", text, "DSK_test.lrit")
	}

	p := ReadPrimary(buf, m[CodePrimary])
	if p.TotalHeaderLength != 32 {
		t.Fatalf("TotalHeaderLength = %d, want 32", p.TotalHeaderLength)
	}
}

func TestParseHeadersOffsetsMatchLayout(t *testing.T) {
	primary := buildPrimary(0, 35, 0)
	annotation := []byte{CodeAnnotation, 0, 16, 'D', 'S', 'K', '_', 't', 'e', 's', 't', '.', 'l', 'r', 'i', 't'}
	imageStructure := []byte{CodeImageStructure, 0, 3}
	buf := append(append(primary, annotation...), imageStructure...)

	got := ParseHeaders(buf, 35)
	want := HeaderMap{CodePrimary: 0, CodeAnnotation: 16, CodeImageStructure: 32}
	if !cmp.Equal(got, want) {
		t.Fatalf("ParseHeaders() offsets mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}

func TestParseHeadersRejectsZeroLengthRecord(t *testing.T) {
	primary := buildPrimary(0, 19, 0)
	buf := append(primary, []byte{CodeAnnotation, 0, 0}...)

	m := ParseHeaders(buf, 19)
	if len(m) != 0 {
		t.Fatalf("expected empty map for a malformed zero-length record, got %v", m)
	}
}

func TestReadRiceCompression(t *testing.T) {
	buf := []byte{CodeRiceCompression, 0, 7, 0x00, 0x01, 8, 1}
	rc := ReadRiceCompression(buf, 0)
	if rc.Flags != 1 || rc.PixelsPerBlock != 8 || rc.ScanLinesPerPacket != 1 {
		t.Fatalf("unexpected RiceCompression: %+v", rc)
	}
}
