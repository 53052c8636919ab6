/*
DESCRIPTION
  Goesrx is a command-line GOES LRIT/HRIT receiver. It reads a recorded
  baseband I/Q capture (interleaved little-endian float32 pairs) from a
  file, runs it through the full DSP and reassembly pipeline, and writes
  each emitted session PDU (headers and data) to a file under -out.

AUTHORS
  Grounded on cmd/looper/main.go and cmd/rv/main.go's flag-driven,
  single-purpose CLI shape; simplified since goesrx has no netsender
  cloud control plane to wire up.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command goesrx demodulates a recorded GOES LRIT/HRIT baseband capture
// and writes out the session PDUs it reassembles.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/goesrx/config"
	"github.com/ausocean/goesrx/internal/stats"
	"github.com/ausocean/goesrx/pdu"
	"github.com/ausocean/goesrx/source"

	"github.com/ausocean/goesrx/pipeline"
)

// Logging related constants, per cmd/looper's convention.
const (
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	inPath := flag.String("in", "", "path to a raw I/Q capture (interleaved little-endian float32 pairs)")
	outDir := flag.String("out", ".", "directory to write reassembled session PDUs to")
	downlink := flag.String("downlink", "lrit", "downlink type: lrit or hrit")
	sampleRate := flag.Int("rate", 0, "I/Q sample rate of the capture, in samples/sec (required)")
	logLevel := flag.Int("log", int(logVerbosity), "log verbosity (see ausocean/utils/logging)")
	flag.Parse()

	log := logging.New(int8(*logLevel), os.Stderr, logSuppress)

	if *inPath == "" || *sampleRate <= 0 {
		log.Fatal("in and rate are required")
	}

	var dl config.Downlink
	switch *downlink {
	case "lrit":
		dl = config.LRIT
	case "hrit":
		dl = config.HRIT
	default:
		log.Fatal("downlink must be lrit or hrit", "downlink", *downlink)
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatal("could not open capture", "path", *inPath, "error", err)
	}
	defer f.Close()

	cfg := config.Config{
		Downlink:   dl,
		SampleRate: *sampleRate,
		Logger:     log,
		LogLevel:   int8(*logLevel),
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	src := source.NewFileSource(f, *sampleRate)
	p := pipeline.New(cfg, src)

	n := 0
	p.OnSessionPDU = func(vcid uint8, apid uint16, s *pdu.SPDU) {
		n++
		name := filepath.Join(*outDir, fmt.Sprintf("pdu_%04d_vc%d_ap%d.bin", n, vcid, apid))
		if err := os.WriteFile(name, s.Bytes(), 0644); err != nil {
			log.Error("could not write session PDU", "path", name, "error", err)
			return
		}
		log.Info("wrote session PDU", "path", name, "vcid", vcid, "apid", apid, "size", s.Size())
	}

	frames := p.FramePublisher.Subscribe(64)
	go logFrameStats(log, frames)

	if err := p.Start(); err != nil {
		log.Fatal("could not start pipeline", "error", err)
	}

	finished := make(chan struct{})
	go func() {
		p.Wait()
		close(finished)
	}()

	for {
		select {
		case err := <-p.Errors():
			log.Error("pipeline error", "error", err)
		case <-finished:
			log.Info("capture exhausted, shutting down", "sessionPDUs", n)
			p.Stop()
			return
		}
	}
}

// logFrameStats reports a running count of locked and unlocked VCDU
// frames, mirroring revid's bitrate-reporting goroutine pattern
// (see revid/pipeline.go's withReportCallback usage).
func logFrameStats(log logging.Logger, frames <-chan stats.Frame) {
	var locked, unlocked int
	for f := range frames {
		if f.Locked {
			locked++
		} else {
			unlocked++
		}
		log.Debug("frame", "locked", f.Locked, "viterbiErrors", f.ViterbiBitErrors, "rsErrors", f.ReedSolomonByteErrors, "totalLocked", locked, "totalUnlocked", unlocked)
	}
}
