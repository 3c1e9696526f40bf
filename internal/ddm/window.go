// SPDX-License-Identifier: MIT
package ddm

import (
	"fmt"

	"ddm/internal/numeric"
)

// Window is a bounded FIFO of transformed frames backed by a ring buffer.
// Once full, each push evicts the oldest entry, so it always holds the
// most recent Cap() frames in arrival order.
type Window struct {
	buf  []*numeric.Spectrum
	head int // Index of the oldest frame
	size int
}

// NewWindow creates an empty window holding at most capacity frames.
func NewWindow(capacity int) (*Window, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("window capacity must be at least 1, got %d", capacity)
	}
	return &Window{buf: make([]*numeric.Spectrum, capacity)}, nil
}

// Push appends s at the back, evicting the front when over capacity.
func (w *Window) Push(s *numeric.Spectrum) {
	capacity := len(w.buf)
	if w.size < capacity {
		w.buf[(w.head+w.size)%capacity] = s
		w.size++
		return
	}
	w.buf[w.head] = s
	w.head = (w.head + 1) % capacity
}

// Len returns the number of frames held.
func (w *Window) Len() int {
	return w.size
}

// Cap returns the capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Full reports whether Len() == Cap().
func (w *Window) Full() bool {
	return w.size == len(w.buf)
}

// Frames returns the held frames ordered oldest to newest. The slice is
// fresh on every call; the spectra are shared and must not be modified.
func (w *Window) Frames() []*numeric.Spectrum {
	out := make([]*numeric.Spectrum, w.size)
	for i := range out {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
