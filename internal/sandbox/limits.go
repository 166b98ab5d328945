// Package sandbox provides the resource caps applied to in-process tool
// execution, where the operating system cannot enforce them for us.
package sandbox

import (
	"bytes"
	"errors"
)

// ErrOutputLimit is returned when a bounded writer exceeds its configured cap.
var ErrOutputLimit = errors.New("output limit exceeded")

// BoundedBuffer is an io.Writer that caps total bytes written. Once the cap
// is reached further input is truncated and ErrOutputLimit is returned. The
// buffer never grows beyond the configured capacity in memory.
type BoundedBuffer struct {
	buf       bytes.Buffer
	capBytes  int
	truncated bool
}

// NewBoundedBuffer creates a buffer capped at maxKB kibibytes. A zero or
// negative maxKB defaults to 64 KiB.
func NewBoundedBuffer(maxKB int) *BoundedBuffer {
	if maxKB <= 0 {
		maxKB = 64
	}
	return &BoundedBuffer{capBytes: maxKB * 1024}
}

// Write appends p up to the remaining capacity. A write that crosses the cap
// is truncated and reports ErrOutputLimit.
func (b *BoundedBuffer) Write(p []byte) (int, error) {
	remaining := b.capBytes - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return 0, ErrOutputLimit
	}
	if len(p) > remaining {
		_, _ = b.buf.Write(p[:remaining])
		b.truncated = true
		return remaining, ErrOutputLimit
	}
	return b.buf.Write(p)
}

// Bytes returns the accumulated contents, possibly truncated.
func (b *BoundedBuffer) Bytes() []byte { return b.buf.Bytes() }

// String returns the accumulated contents as a string.
func (b *BoundedBuffer) String() string { return b.buf.String() }

// Truncated reports whether any write exceeded the cap.
func (b *BoundedBuffer) Truncated() bool { return b.truncated }
