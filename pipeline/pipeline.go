/*
NAME
  pipeline.go - receive pipeline wiring.

DESCRIPTION
  Pipeline wires a Source through the DSP chain (AGC, RRC, Costas,
  clock recovery, quantizer), the frame packetizer and the virtual
  channel demultiplexer, per spec §5's concurrency model: the DSP
  stages run in their own goroutines, except that the quantizer runs
  on the clock-recovery goroutine, and the packetizer and demultiplexer
  share one final goroutine. Goroutines communicate through bounded
  queues, with bottom-up shutdown driven by closing the head queue.

AUTHORS
  Grounded on revid.Revid.setupPipeline's stage wiring and
  handleErrors pattern (ausocean-av/revid/pipeline.go,
  ausocean-av/revid/revid.go), adapted from revid's encoder/sender
  graph to this receiver's fixed DSP-to-reassembly chain.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline assembles the goesrx receive chain: a Source feeds
// a cascade of DSP stages, a frame packetizer, and a virtual channel
// demultiplexer that emits reassembled session PDUs.
package pipeline

import (
	"sync"

	"github.com/ausocean/goesrx/config"
	"github.com/ausocean/goesrx/dsp/agc"
	"github.com/ausocean/goesrx/dsp/clock"
	"github.com/ausocean/goesrx/dsp/costas"
	"github.com/ausocean/goesrx/dsp/quant"
	"github.com/ausocean/goesrx/dsp/rrc"
	"github.com/ausocean/goesrx/frame"
	"github.com/ausocean/goesrx/internal/queue"
	"github.com/ausocean/goesrx/internal/stats"
	"github.com/ausocean/goesrx/pdu"
	"github.com/ausocean/goesrx/source"
	"github.com/ausocean/utils/logging"
)

// Pipeline owns every stage's queues and goroutines for one receive
// session.
type Pipeline struct {
	cfg config.Config
	src source.Source

	agc    *queue.Queue[complex128]
	rrcOut *queue.Queue[complex128]
	costas *queue.Queue[complex128]
	clock  *queue.Queue[complex128]
	soft   *queue.Queue[int8]

	demux   *pdu.Demux
	quality *stats.QualityTracker

	wg   sync.WaitGroup
	err  chan error
	stop chan struct{}

	// FramePublisher and PDUPublisher expose telemetry to callers, per
	// spec §6's publisher model.
	FramePublisher stats.Publisher[stats.Frame]
	PDUPublisher   stats.Publisher[stats.PDU]

	// OnSessionPDU, if set before Start, is called from the demux's
	// goroutine for every session PDU that passes emission validity.
	// Implementations must not block significantly, since this runs on
	// the pipeline's only reassembly goroutine.
	OnSessionPDU func(vcid uint8, apid uint16, s *pdu.SPDU)
}

// New builds a Pipeline from a validated configuration and a sample
// source, wiring the full DSP chain down to the virtual channel
// demultiplexer. Call Start to begin processing.
func New(cfg config.Config, src source.Source) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		src:     src,
		agc:     queue.New[complex128](cfg.QueueCapacity, cfg.QueueElementSamples),
		rrcOut:  queue.New[complex128](cfg.QueueCapacity, cfg.QueueElementSamples),
		costas:  queue.New[complex128](cfg.QueueCapacity, cfg.QueueElementSamples),
		clock:   queue.New[complex128](cfg.QueueCapacity, cfg.QueueElementSamples),
		soft:    queue.New[int8](cfg.QueueCapacity, cfg.QueueElementSamples),
		err:     make(chan error, 16),
		stop:    make(chan struct{}),
		quality: stats.NewQualityTracker(4 * cfg.QueueElementSamples),
	}
	p.demux = pdu.NewDemux(func(lvl int8, msg string, args ...interface{}) {
		switch lvl {
		case logging.Debug:
			cfg.Logger.Debug(msg, args...)
		case logging.Warning:
			cfg.Logger.Warning(msg, args...)
		case logging.Error:
			cfg.Logger.Error(msg, args...)
		case logging.Fatal:
			cfg.Logger.Fatal(msg, args...)
		default:
			cfg.Logger.Info(msg, args...)
		}
	})
	p.demux.Emit = func(vcid uint8, apid uint16, s *pdu.SPDU) {
		p.PDUPublisher.Publish(stats.PDU{VCID: vcid, APID: apid, Size: s.Size(), Emitted: true})
		if p.OnSessionPDU != nil {
			p.OnSessionPDU(vcid, apid, s)
		}
	}
	return p
}

// Start launches every stage's goroutine and begins pulling samples
// from the source. Errors encountered by any stage are delivered on
// the channel returned by Errors.
func (p *Pipeline) Start() error {
	qSoftSamples := p.cfg.QueueElementSamples

	if err := p.src.Start(p.agc, qSoftSamples, p.err); err != nil {
		return err
	}

	p.wg.Add(1)
	go p.runAGC()

	p.wg.Add(1)
	go p.runRRC()

	p.wg.Add(1)
	go p.runCostas()

	p.wg.Add(1)
	go p.runClock()

	p.wg.Add(1)
	go p.runReassembly()

	return nil
}

// Errors returns the channel stages report asynchronous errors on.
func (p *Pipeline) Errors() <-chan error { return p.err }

// Stop halts the source; every downstream stage observes its input
// queue close, drains it, closes its own output queue, and exits.
// Stop blocks until every stage has exited (bottom-up join).
func (p *Pipeline) Stop() {
	p.src.Stop()
	p.wg.Wait()
}

// Wait blocks until every stage has exited on its own, which happens
// once the source runs out of input (e.g. a file source reaching EOF)
// without Stop ever being called. Callers driving a finite capture
// should select on Wait and Errors rather than ranging over Errors
// alone, since Errors is never closed.
func (p *Pipeline) Wait() { p.wg.Wait() }

func (p *Pipeline) runAGC() {
	defer p.wg.Done()
	defer p.rrcOut.Close()

	a := agc.New(p.cfg.AGCAlpha, p.cfg.AGCMin, p.cfg.AGCMax, p.cfg.AGCInitGain)
	for {
		buf, ok := p.agc.PopForRead()
		if !ok {
			return
		}
		a.Process(buf, buf)

		out, ok := p.rrcOut.PopForWrite()
		if !ok {
			p.agc.PushRead(buf)
			return
		}
		out = append(out[:0], buf...)
		p.rrcOut.PushWrite(out)
		p.agc.PushRead(buf)
	}
}

func (p *Pipeline) runRRC() {
	defer p.wg.Done()
	defer p.costas.Close()

	f := rrc.New(float64(p.cfg.SampleRate), float64(p.cfg.SymbolRate), p.cfg.RRCRolloff, p.cfg.RRCTaps, p.cfg.RRCDecimation)
	for {
		buf, ok := p.rrcOut.PopForRead()
		if !ok {
			return
		}

		out, ok := p.costas.PopForWrite()
		if !ok {
			p.rrcOut.PushRead(buf)
			return
		}
		out = f.Process(out[:0], buf)
		p.costas.PushWrite(out)
		p.rrcOut.PushRead(buf)
	}
}

func (p *Pipeline) runCostas() {
	defer p.wg.Done()
	defer p.clock.Close()

	loop := costas.New(p.cfg.CostasDamping, p.cfg.CostasBandwidth, p.cfg.CostasMaxDeviation)
	for {
		buf, ok := p.costas.PopForRead()
		if !ok {
			return
		}

		out, ok := p.clock.PopForWrite()
		if !ok {
			p.costas.PushRead(buf)
			return
		}
		out = out[:len(buf)]
		loop.Process(out, buf)
		p.clock.PushWrite(out)
		p.costas.PushRead(buf)
	}
}

func (p *Pipeline) runClock() {
	defer p.wg.Done()
	defer p.soft.Close()

	rec := clock.New(float64(p.cfg.SampleRate)/float64(p.cfg.SymbolRate), p.cfg.ClockGainMu, p.cfg.ClockGainOmega, p.cfg.ClockOmegaTol)
	var symbolBuf []complex128
	for {
		buf, ok := p.clock.PopForRead()
		if !ok {
			return
		}
		symbolBuf = rec.Process(symbolBuf[:0], buf)

		out, ok := p.soft.PopForWrite()
		if !ok {
			p.clock.PushRead(buf)
			return
		}
		out = quant.Process(out[:0], symbolBuf, 127)
		p.quality.Add(out)
		p.soft.PushWrite(out)
		p.clock.PushRead(buf)
	}
}

// Quality returns the mean and variance of recent quantizer soft-bit
// magnitudes, a coarse EVM-like lock-quality indicator.
func (p *Pipeline) Quality() (mean, variance float64) { return p.quality.MeanVariance() }

// runReassembly is the pipeline's final stage: it drains quantized soft
// symbols, feeds them through the frame packetizer (sync correlation,
// Viterbi, derandomization and Reed-Solomon), and hands every resulting
// VCDU to the virtual channel demultiplexer. Packetizer output
// cardinality differs from its input (many symbol blocks per packet),
// so unlike the fixed-ratio DSP stages above it has no output queue of
// its own — the demux call is the sink.
func (p *Pipeline) runReassembly() {
	defer p.wg.Done()

	pk := frame.NewPacketizer(float64(p.cfg.SymbolRate))
	for {
		buf, ok := p.soft.PopForRead()
		if !ok {
			p.drainPacketizer(pk)
			return
		}
		pk.Feed(buf)
		p.soft.PushRead(buf)
		p.drainPacketizer(pk)
	}
}

// drainPacketizer pulls every packet the packetizer can currently
// produce and feeds completed VCDUs into the virtual channel demux.
func (p *Pipeline) drainPacketizer(pk *frame.Packetizer) {
	for {
		pkt, ok := pk.Next()
		if !ok {
			return
		}
		p.FramePublisher.Publish(stats.Frame{
			Locked:                pkt.OK,
			ViterbiBitErrors:      pkt.ViterbiBitErrors,
			ReedSolomonByteErrors: pkt.ReedSolomonByteErrors,
			SkippedSymbols:        pkt.SkippedSymbols,
		})
		if !pkt.OK {
			continue
		}
		var v frame.VCDU
		copy(v[:], pkt.Bytes[:])
		p.demux.Feed(&v)
	}
}
