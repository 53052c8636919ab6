package source

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/ausocean/goesrx/internal/queue"
)

func encodeSamples(samples []complex128) []byte {
	buf := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(float32(real(s))))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(float32(imag(s))))
	}
	return buf
}

func TestFileSourceProducesSamples(t *testing.T) {
	want := []complex128{1, 1i, -1, -1i}
	src := NewFileSource(bytes.NewReader(encodeSamples(want)), 1000)

	q := queue.New[complex128](2, 4)
	errc := make(chan error, 1)
	if err := src.Start(q, 4, errc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	buf, ok := q.PopForRead()
	if !ok {
		t.Fatalf("PopForRead() returned ok=false")
	}
	if len(buf) != len(want) {
		t.Fatalf("got %d samples, want %d", len(buf), len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
	q.PushRead(buf)

	src.Stop()
	select {
	case err := <-errc:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFileSourceClosesQueueAtEOF(t *testing.T) {
	src := NewFileSource(bytes.NewReader(nil), 1000)
	q := queue.New[complex128](2, 4)
	errc := make(chan error, 1)
	src.Start(q, 4, errc)

	if _, ok := q.PopForRead(); ok {
		t.Fatalf("expected PopForRead to fail once the source is exhausted")
	}
}
