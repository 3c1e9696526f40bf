// SPDX-License-Identifier: MIT
/*
Package capture defines where frames come from. A Source is owned by a
single goroutine, the capture worker, until the worker has been joined;
only then is it closed.
*/
package capture

import (
	"ddm/internal/numeric"
)

// Source yields grayscale frames in acquisition order.
type Source interface {
	// FrameRate returns frames per second reported by the source.
	FrameRate() float64

	// FrameCount returns the total frames for file sources, 0 when unknown
	// or live.
	FrameCount() int

	// Next blocks until the next frame is available. It returns io.EOF
	// once the stream is exhausted.
	Next() (*numeric.Frame, error)

	// Close releases the underlying handle.
	Close() error
}
