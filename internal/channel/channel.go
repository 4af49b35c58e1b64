// Package channel provides generic channel interfaces for decoupled communication.
package channel

import (
	"sync"
	"sync/atomic"
)

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T) bool
	TrySend(T) bool
	Dropped() uint64
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}

// Chan wraps a Go channel so that sends after Close are rejected instead of
// panicking. Values rejected by TrySend are counted.
type Chan[T any] struct {
	ch      chan T
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewBuffered creates a channel holding up to size values. A size below one
// yields an unbuffered channel.
func NewBuffered[T any](size int) *Chan[T] {
	if size < 0 {
		size = 0
	}
	return &Chan[T]{ch: make(chan T, size)}
}

// NewUnbuffered creates a channel where every send waits for a receiver.
func NewUnbuffered[T any]() *Chan[T] {
	return NewBuffered[T](0)
}

// Send blocks until v is received or buffered. It returns false when the
// channel is closed.
func (c *Chan[T]) Send(v T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	c.ch <- v
	return true
}

// TrySend sends without blocking and reports whether the value was accepted.
func (c *Chan[T]) TrySend(v T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- v:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped returns how many values TrySend rejected because the buffer was full.
func (c *Chan[T]) Dropped() uint64 {
	return c.dropped.Load()
}

// Receive returns the receive-only channel.
func (c *Chan[T]) Receive() <-chan T {
	return c.ch
}

// Len returns the number of buffered values.
func (c *Chan[T]) Len() int {
	return len(c.ch)
}

// Close closes the channel. Calling it more than once is a no-op.
func (c *Chan[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
