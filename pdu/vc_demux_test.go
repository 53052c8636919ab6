package pdu

import (
	"encoding/binary"
	"testing"

	"github.com/ausocean/goesrx/frame"
	"github.com/ausocean/goesrx/internal/crc"
)

// buildTPPDU constructs one complete transfer PDU with a valid CRC-16
// trailer.
func buildTPPDU(apid uint16, flag SeqFlag, seq uint16, data []byte) []byte {
	body := make([]byte, TPHeaderLen+len(data)+CRCLen)
	body[0] = byte(apid >> 8 & 0x07)
	body[1] = byte(apid)
	body[2] = byte(flag)<<6 | byte(seq>>8&0x3f)
	body[3] = byte(seq)
	length := len(data) + CRCLen - 1
	body[4] = byte(length >> 8)
	body[5] = byte(length)
	copy(body[TPHeaderLen:], data)
	c := crc.Checksum(body[TPHeaderLen : TPHeaderLen+len(data)])
	binary.BigEndian.PutUint16(body[len(body)-CRCLen:], c)
	return body
}

// fillTPPDU constructs a fill (APID==2047) transfer PDU of exactly n
// bytes, used to pad a VCDU's M_PDU data region out to its fixed size
// the way a real downlink packs unused channel capacity.
func fillTPPDU(n int) []byte {
	buf := make([]byte, n)
	buf[0] = 0x07
	buf[1] = 0xff
	length := n - TPHeaderLen - 1
	buf[4] = byte(length >> 8)
	buf[5] = byte(length)
	return buf
}

// buildVCDU places mpdu at byte offset mpduOffset within a VCDU's
// 884-byte M_PDU data region, pads any remaining space with a fill
// transfer PDU, and sets the given first-header-pointer.
func buildVCDU(vcid uint8, counter uint32, fhp uint16, mpduOffset int, mpdu []byte) *frame.VCDU {
	var v frame.VCDU
	v[0] = 0
	// VCID is 6 bits split across byte1's low nibble and byte2's top 2
	// bits, per VCDU.VCID().
	v[1] = vcid >> 2
	v[2] = (vcid & 0x03) << 6
	v[3] = byte(counter >> 16)
	v[4] = byte(counter >> 8)
	v[5] = byte(counter)
	v[6] = byte(fhp >> 8 & 0x07)
	v[7] = byte(fhp)

	payload := make([]byte, frame.PayloadLen-2)
	copy(payload[mpduOffset:], mpdu)
	if end := mpduOffset + len(mpdu); end < len(payload) && len(payload)-end >= TPHeaderLen {
		copy(payload[end:], fillTPPDU(len(payload)-end))
	}
	copy(v[8:], payload)
	return &v
}

func TestDemuxCompleteSinglePDU(t *testing.T) {
	var emitted *SPDU
	d := NewDemux(nil)
	d.Emit = func(vcid uint8, apid uint16, s *SPDU) { emitted = s }

	primary := buildPrimaryFile(1, 16, 0)
	tp := buildTPPDU(7, SeqComplete, 0, primary)
	v := buildVCDU(1, 0, 0, 0, tp)

	d.Feed(v)

	if emitted == nil {
		t.Fatalf("expected a session PDU to be emitted")
	}
	if emitted.Primary().FileType != 1 {
		t.Fatalf("FileType = %d, want 1", emitted.Primary().FileType)
	}
}

// buildPrimaryFile constructs a minimal 16-byte LRIT primary header
// declaring no secondary headers beyond itself and the given data
// length (in bits).
func buildPrimaryFile(fileType uint8, totalHeaderLen uint32, dataLenBits uint64) []byte {
	buf := make([]byte, 16)
	buf[0] = 0 // CodePrimary
	binary.BigEndian.PutUint16(buf[1:], 16)
	buf[3] = fileType
	binary.BigEndian.PutUint32(buf[4:], totalHeaderLen)
	binary.BigEndian.PutUint64(buf[8:], dataLenBits)
	return buf
}

func TestDemuxFillVCDUIgnored(t *testing.T) {
	d := NewDemux(nil)
	called := false
	d.Emit = func(uint8, uint16, *SPDU) { called = true }

	var v frame.VCDU
	v[1] = 0x0f
	v[2] = 0xc0 // VCID = 63 (fill)
	d.Feed(&v)

	if called {
		t.Fatalf("fill VCDU should never emit")
	}
}

func TestDemuxStraddlingTPPDU(t *testing.T) {
	var emitted *SPDU
	d := NewDemux(nil)
	d.Emit = func(vcid uint8, apid uint16, s *SPDU) { emitted = s }

	primary := buildPrimaryFile(1, 16, 0)
	tp := buildTPPDU(9, SeqComplete, 0, primary)

	payloadLen := frame.PayloadLen - 2
	split := 10
	first := buildVCDU(2, 0, uint16(payloadLen-split), payloadLen-split, tp[:split])
	second := buildVCDU(2, 1, frame.NoNewHeader, 0, tp[split:])

	d.Feed(first)
	if emitted != nil {
		t.Fatalf("should not emit before the straddling transfer PDU completes")
	}
	d.Feed(second)
	if emitted == nil {
		t.Fatalf("expected emission once the straddling transfer PDU completes")
	}
}

func TestDemuxCRCFailureClearsState(t *testing.T) {
	d := NewDemux(nil)
	called := false
	d.Emit = func(uint8, uint16, *SPDU) { called = true }

	primary := buildPrimaryFile(1, 16, 0)
	tp := buildTPPDU(11, SeqComplete, 0, primary)
	tp[len(tp)-1] ^= 0xff // corrupt the CRC trailer

	v := buildVCDU(3, 0, 0, 0, tp)
	d.Feed(v)

	if called {
		t.Fatalf("a CRC-failed transfer PDU must not produce an emission")
	}
}

func TestDemuxFirstFlagFinishesPreviousSPDU(t *testing.T) {
	var emissions int
	d := NewDemux(nil)
	d.Emit = func(uint8, uint16, *SPDU) { emissions++ }

	primary := buildPrimaryFile(1, 16, 0)
	first := buildTPPDU(13, SeqFirst, 0, primary)
	v1 := buildVCDU(4, 0, 0, 0, first)
	d.Feed(v1)

	// A second "first" transfer PDU on the same APID before the
	// first session PDU closes; file_type!=0 means Finish() cannot
	// salvage it, so no emission should occur for the abandoned one.
	second := buildTPPDU(13, SeqFirst, 1, primary)
	v2 := buildVCDU(4, 1, 0, 0, second)
	d.Feed(v2)

	if emissions != 0 {
		t.Fatalf("emissions = %d, want 0 (non-Rice file_type can't be salvaged by Finish)", emissions)
	}
}
