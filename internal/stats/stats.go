/*
NAME
  stats.go - pipeline telemetry publishers.

DESCRIPTION
  Frame and PDU are the compact per-event telemetry records each
  pipeline stage MAY push to an attached sink, per spec §6 Publishers.
  Publisher is a single-producer, non-blocking fan-out: a Publisher
  with no subscribers performs no work, and a slow subscriber never
  blocks the stage that owns it.

AUTHORS
  Grounded on ausocean-av/revid.Revid's bitrate.Calculator field
  (github.com/ausocean/utils/bitrate) for the throughput half of the
  telemetry, generalized into a typed non-blocking pub/sub the way
  revid's report callbacks (withReportCallback) decouple senders from
  the bitrate tracker without the sender blocking on it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package stats carries the pipeline's telemetry types: compact
// per-frame and per-PDU records, and a non-blocking publisher used to
// expose them from each stage without putting telemetry in the data
// path.
package stats

import (
	"sync"
	"time"

	"github.com/ausocean/utils/bitrate"
)

// Frame is pushed by the packetizer for every frame cycle it
// processes, successful or not.
type Frame struct {
	Time                   time.Time
	Locked                 bool
	ViterbiBitErrors       int
	ReedSolomonByteErrors  int
	ReedSolomonUncorrected bool
	SkippedSymbols         int
}

// PDU describes one session PDU. The pipeline publishes one for each
// session PDU the demultiplexer emits; transfer PDUs and dropped
// session PDUs are not published.
type PDU struct {
	Time    time.Time
	VCID    uint8
	APID    uint16
	Size    int
	Emitted bool
}

// Publisher is a single-producer, multi-subscriber fan-out of T. A
// Publisher with no subscribers performs no work; a subscriber that
// falls behind has its oldest unread value dropped rather than
// blocking the publisher.
type Publisher[T any] struct {
	mu   sync.Mutex
	subs []chan T
}

// Subscribe returns a channel that receives every value subsequently
// published, with a bounded backlog of depth. The caller must drain it
// or call Unsubscribe to avoid an unbounded number of stale channels
// accumulating.
func (p *Publisher[T]) Subscribe(depth int) <-chan T {
	if depth <= 0 {
		depth = 1
	}
	ch := make(chan T, depth)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// Unsubscribe detaches and closes a channel previously returned by
// Subscribe.
func (p *Publisher[T]) Unsubscribe(ch <-chan T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.subs {
		if c == ch {
			close(c)
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every current subscriber without blocking: a
// full subscriber channel has its oldest entry dropped to make room.
// A Publisher with no subscribers returns immediately.
func (p *Publisher[T]) Publish(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// ThroughputTracker wraps a bitrate.Calculator to report the receive
// pipeline's effective byte rate, mirroring how revid.Revid tracks
// sender throughput from the same package.
type ThroughputTracker struct {
	calc bitrate.Calculator
}

// Report records n bytes produced since the last call.
func (t *ThroughputTracker) Report(n int) { t.calc.Report(n) }

// Bitrate returns the most recently computed bitrate, in bits/sec.
func (t *ThroughputTracker) Bitrate() int { return t.calc.Bitrate() }
