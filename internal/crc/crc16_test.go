package crc

import "testing"

func TestKnownVector(t *testing.T) {
	// "123456789" is the standard CRC-16/CCITT-FALSE test vector.
	got := Checksum([]byte("123456789"))
	const want = 0x29b1
	if got != want {
		t.Fatalf("Checksum(\"123456789\") = %#x, want %#x", got, want)
	}
}

func TestVerifyTrailer(t *testing.T) {
	body := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	c := Checksum(body)
	pdu := append(append([]byte{}, body...), byte(c>>8), byte(c))

	if !VerifyTrailer(pdu) {
		t.Fatalf("VerifyTrailer rejected a correctly-appended trailer")
	}

	pdu[len(pdu)-1] ^= 0xff
	if VerifyTrailer(pdu) {
		t.Fatalf("VerifyTrailer accepted a corrupted trailer")
	}
}

func TestVerifyTrailerTooShort(t *testing.T) {
	if VerifyTrailer([]byte{0x01}) {
		t.Fatalf("VerifyTrailer accepted a 1-byte PDU")
	}
}
