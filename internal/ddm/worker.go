// SPDX-License-Identifier: MIT
package ddm

import (
	"errors"
	"fmt"
	"io"

	"ddm/internal/capture"
	applog "ddm/internal/log"
	"ddm/internal/numeric"
	"ddm/pkg/fftsize"

	"golang.org/x/sync/errgroup"
)

// worker reads frames from the source, transforms them and hands the
// centred spectra to the driver. It owns the source until joined.
type worker struct {
	source    capture.Source
	rt        *numeric.Runtime
	scale     float64
	rowDiv    int
	colDiv    int
	window    numeric.WindowFunc
	ringWidth int

	frames chan<- *numeric.Spectrum // nil value marks the end of the stream
	stop   <-chan struct{}
	gone   <-chan struct{} // Closed once the driver stops receiving
	bins   chan<- binResult

	group   *errgroup.Group
	timings *Timings

	dimension int
	sent      int
}

// run loops until the source is exhausted, fails or a stop is requested.
// The frame channel is always closed on return, and the bin channel too
// when no bin set was ever requested.
func (w *worker) run() error {
	binsRequested := false
	defer func() {
		close(w.frames)
		if !binsRequested {
			close(w.bins)
		}
		applog.Debugf("Worker: exiting after %d frames", w.sent)
	}()

	for {
		frame, err := w.source.Next()
		if err != nil {
			w.send(nil)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read frame %d: %w", w.sent, err)
		}

		if w.dimension == 0 {
			dim, err := fftsize.ClosestEfficientSize(max(frame.Rows, frame.Cols))
			if err != nil {
				w.send(nil)
				return fmt.Errorf("pad %dx%d frame: %w", frame.Rows, frame.Cols, err)
			}
			w.dimension = dim
			binsRequested = true
			w.group.Go(func() error {
				w.generateBins(dim)
				return nil
			})
			applog.Debugf("Worker: %dx%d frames padded to %dx%d", frame.Rows, frame.Cols, dim, dim)
		}

		spectrum, err := w.transform(frame)
		if err != nil {
			w.send(nil)
			return fmt.Errorf("transform frame %d: %w", w.sent, err)
		}
		w.send(spectrum)

		select {
		case <-w.stop:
			applog.Debugf("Worker: stop requested")
			return nil
		default:
		}
	}
}

func (w *worker) transform(frame *numeric.Frame) (*numeric.Spectrum, error) {
	defer w.timings.Track(StageFFT)()

	numeric.ApplyWindow(frame, w.window)
	s, err := w.rt.FFT2(frame, w.dimension, w.scale)
	if err != nil {
		return nil, err
	}
	return w.rt.CenterShift(s, w.rowDiv, w.colDiv)
}

// send blocks while the frame channel is full. A spectrum nobody will
// receive any more is dropped with a warning.
func (w *worker) send(s *numeric.Spectrum) {
	select {
	case w.frames <- s:
		if s != nil {
			w.sent++
			applog.Debugf("Worker: frame %d queued", w.sent)
		}
	case <-w.gone:
		if s != nil {
			applog.Warnf("Worker: driver stopped receiving, dropping frame %d", w.sent+1)
		}
	}
}

// generateBins publishes exactly one result and closes the channel.
func (w *worker) generateBins(dim int) {
	set, err := GenerateBins(dim, w.ringWidth)
	w.bins <- binResult{bins: set, err: err}
	close(w.bins)
}
