/*
NAME
  queue.go - bounded producer/consumer queue shared between pipeline stages.

DESCRIPTION
  Queue implements the pop_for_write/push_write/pop_for_read/push_read
  contract: a pair of pools (free buffers available for writing, filled
  buffers available for reading) connected by channels. Ownership of a
  buffer is exclusive at every moment: a stage either holds it for
  writing (between PopForWrite and PushWrite) or for reading (between
  PopForRead and PushRead), never both.

AUTHORS
  Adapted from the pool buffer handed between revid's encoders and
  senders (github.com/ausocean/utils/pool), generalized to a typed,
  generic buffer for use between every stage of the receive pipeline.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package queue provides a bounded, typed buffer queue used to connect
// concurrent pipeline stages without sharing mutable state.
package queue

import "sync"

// Queue is a FIFO channel of fixed-size []T buffers split into a
// write-pool (buffers free for a producer to fill) and a read-pool
// (buffers filled and ready for a consumer). Close is sticky: once
// closed, PopForWrite always fails and PopForRead fails once the
// read-pool has been drained.
type Queue[T any] struct {
	elemLen int
	free    chan []T
	filled  chan []T

	closeOnce sync.Once
	closeCh   chan struct{}
}

// New returns a Queue with capacity buffers, each of length elemLen,
// pre-allocated into the write-pool.
func New[T any](capacity, elemLen int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	q := &Queue[T]{
		elemLen: elemLen,
		free:    make(chan []T, capacity),
		filled:  make(chan []T, capacity),
		closeCh: make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		q.free <- make([]T, elemLen)
	}
	return q
}

// PopForWrite blocks until a free buffer is available and returns it for
// the caller to fill, or returns ok=false if the queue has been closed.
func (q *Queue[T]) PopForWrite() (buf []T, ok bool) {
	select {
	case <-q.closeCh:
		return nil, false
	default:
	}
	select {
	case <-q.closeCh:
		return nil, false
	case buf := <-q.free:
		return buf, true
	}
}

// PushWrite moves a buffer obtained from PopForWrite into the read-pool,
// waking a blocked reader. It is a no-op once the queue is closed.
func (q *Queue[T]) PushWrite(buf []T) {
	select {
	case <-q.closeCh:
		return
	default:
	}
	select {
	case <-q.closeCh:
	case q.filled <- buf:
	}
}

// PopForRead blocks until a filled buffer is available, or returns
// ok=false once the queue is closed and the read-pool has drained.
func (q *Queue[T]) PopForRead() (buf []T, ok bool) {
	select {
	case buf := <-q.filled:
		return buf, true
	case <-q.closeCh:
		select {
		case buf := <-q.filled:
			return buf, true
		default:
			return nil, false
		}
	}
}

// PushRead returns a buffer consumed via PopForRead to the write-pool,
// waking a blocked writer. It is a no-op once the queue is closed.
func (q *Queue[T]) PushRead(buf []T) {
	select {
	case <-q.closeCh:
		return
	default:
	}
	select {
	case <-q.closeCh:
	case q.free <- buf[:cap(buf)][:q.elemLen]:
	}
}

// Close wakes all current and future waiters. Close is idempotent.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.closeCh) })
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.closeCh:
		return true
	default:
		return false
	}
}
