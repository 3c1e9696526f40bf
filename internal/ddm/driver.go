// SPDX-License-Identifier: MIT
package ddm

import (
	"context"
	"fmt"

	applog "ddm/internal/log"
	"ddm/internal/numeric"
	"ddm/internal/transport"
)

// driver consumes spectra, maintains the sliding window and runs the
// accumulation passes. It lives on the pipeline's calling goroutine.
type driver struct {
	rt      *numeric.Runtime
	window  *Window
	acc     Accumulator
	stride  int
	timings *Timings
	publish func(transport.PassEvent)

	passes    int
	frames    int
	sincePass int
	ended     bool // End marker seen
}

func newDriver(rt *numeric.Runtime, capacity, stride int, timings *Timings, publish func(transport.PassEvent)) (*driver, error) {
	window, err := NewWindow(capacity)
	if err != nil {
		return nil, err
	}
	if stride < 1 {
		stride = capacity
	}
	if publish == nil {
		publish = func(transport.PassEvent) {}
	}
	return &driver{rt: rt, window: window, stride: stride, timings: timings, publish: publish}, nil
}

// drain receives until in is closed. Cancelling ctx asks the worker to
// stop; draining continues so the worker can exit without blocking.
// The first pass error is returned once the channel is closed.
func (d *driver) drain(ctx context.Context, in <-chan *numeric.Spectrum, stop chan<- struct{}) error {
	var firstErr error
	done := ctx.Done()
	for {
		select {
		case <-done:
			applog.Infof("Driver: interrupted after %d frames, stopping capture", d.frames)
			signalStop(stop)
			done = nil
		case s, ok := <-in:
			if !ok {
				if !d.ended {
					applog.Debugf("Driver: capture stopped before the end of the stream")
				}
				return firstErr
			}
			if s == nil {
				d.ended = true
				continue
			}
			if firstErr != nil {
				continue
			}
			if err := d.receive(s); err != nil {
				firstErr = err
				signalStop(stop)
			}
		}
	}
}

func (d *driver) receive(s *numeric.Spectrum) error {
	d.frames++
	d.sincePass++
	d.window.Push(s)
	if !d.window.Full() || d.sincePass < d.stride {
		return nil
	}
	return d.pass()
}

func (d *driver) pass() error {
	defer d.timings.Track(StagePass)()

	var (
		acc Accumulator
		err error
	)
	if d.acc == nil {
		acc, err = Init(d.rt, d.window.Frames())
	} else {
		acc, err = Merge(d.rt, d.acc, d.window.Frames())
	}
	if err != nil {
		return fmt.Errorf("pass %d: %w", d.passes+1, err)
	}
	d.acc = acc

	d.passes++
	d.sincePass = 0
	applog.Infof("Driver: pass %d complete after %d frames", d.passes, d.frames)
	d.publish(transport.PassEvent{Pass: d.passes, Frames: d.frames, Lags: d.window.Cap()})
	return nil
}

// signalStop never blocks; a pending stop is as good as a new one.
func signalStop(stop chan<- struct{}) {
	select {
	case stop <- struct{}{}:
	default:
	}
}
