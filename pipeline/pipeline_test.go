package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/ausocean/goesrx/config"
	"github.com/ausocean/goesrx/pdu"
	"github.com/ausocean/goesrx/source"
)

// discardLogger implements logging.Logger for tests, in the style of
// revid/utils.go's testLogger but discarding rather than routing
// through testing.T (the pipeline's stage goroutines outlive any
// single test assertion, so logging into a *testing.T after the test
// returns would panic).
type discardLogger struct{ level int8 }

func (l *discardLogger) SetLevel(level int8)                     { l.level = level }
func (l *discardLogger) Debug(msg string, args ...interface{})    {}
func (l *discardLogger) Info(msg string, args ...interface{})    {}
func (l *discardLogger) Warning(msg string, args ...interface{}) {}
func (l *discardLogger) Error(msg string, args ...interface{})   {}
func (l *discardLogger) Fatal(msg string, args ...interface{})   {}

func testConfig() config.Config {
	cfg := config.Config{
		Downlink:            config.LRIT,
		SampleRate:          4 * config.LRITSymbolRate,
		QueueCapacity:       2,
		QueueElementSamples: 4096,
		Logger:              &discardLogger{},
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// TestPipelineStartStopWithEmptyCapture exercises the full stage graph
// (source -> AGC -> RRC -> Costas -> clock -> reassembly -> demux)
// against an all-zero capture: no VCDU will ever lock, but every
// stage's queue handoff and bottom-up shutdown on Stop must still
// behave cleanly, with no goroutine left blocked.
func TestPipelineStartStopWithEmptyCapture(t *testing.T) {
	raw := make([]byte, 8*4096*8) // a handful of zero blocks, 8 bytes/complex sample
	src := source.NewFileSource(bytes.NewReader(raw), 4*config.LRITSymbolRate)

	p := New(testConfig(), src)

	var pduCount int
	p.OnSessionPDU = func(vcid uint8, apid uint16, s *pdu.SPDU) {
		pduCount++
	}

	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Stop() did not return: a stage goroutine is stuck")
	}

	select {
	case err := <-p.Errors():
		t.Fatalf("unexpected pipeline error: %v", err)
	default:
	}
}

// TestPipelineQualityStartsAtZero checks that a freshly constructed
// pipeline reports no signal-quality telemetry before any block has
// been quantized.
func TestPipelineQualityStartsAtZero(t *testing.T) {
	src := source.NewFileSource(bytes.NewReader(nil), 4*config.LRITSymbolRate)
	p := New(testConfig(), src)

	mean, variance := p.Quality()
	if mean != 0 || variance != 0 {
		t.Fatalf("Quality() = (%v, %v), want (0, 0) before any samples are processed", mean, variance)
	}
}
