// SPDX-License-Identifier: MIT
package capture

import (
	"io"
	"sync/atomic"

	"ddm/internal/numeric"
)

// Synthetic replays an in-memory list of frames. It is used for tests,
// benchmarks and dry runs without a capture device.
type Synthetic struct {
	frames []*numeric.Frame
	rate   float64
	loop   bool
	pos    int

	nexts  atomic.Int64 // Frames handed out
	closes atomic.Int32 // Close calls
}

// Compile-time check for interface implementation.
var _ Source = (*Synthetic)(nil)

// NewSynthetic creates a source that yields frames once at the given rate.
func NewSynthetic(rate float64, frames ...*numeric.Frame) *Synthetic {
	return &Synthetic{frames: frames, rate: rate}
}

// Loop makes the source cycle through its frames forever, like a live camera.
func (s *Synthetic) Loop() *Synthetic {
	s.loop = true
	return s
}

func (s *Synthetic) FrameRate() float64 {
	return s.rate
}

func (s *Synthetic) FrameCount() int {
	if s.loop {
		return 0
	}
	return len(s.frames)
}

// Next returns a copy of the next frame so consumers may modify it.
func (s *Synthetic) Next() (*numeric.Frame, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	if s.pos >= len(s.frames) {
		if !s.loop {
			return nil, io.EOF
		}
		s.pos = 0
	}
	src := s.frames[s.pos]
	s.pos++
	s.nexts.Add(1)

	f := &numeric.Frame{Rows: src.Rows, Cols: src.Cols, Data: make([]float64, len(src.Data))}
	copy(f.Data, src.Data)
	return f, nil
}

func (s *Synthetic) Close() error {
	s.closes.Add(1)
	return nil
}

// Delivered returns how many frames Next has handed out.
func (s *Synthetic) Delivered() int {
	return int(s.nexts.Load())
}

// Closes returns how many times Close was called.
func (s *Synthetic) Closes() int {
	return int(s.closes.Load())
}
