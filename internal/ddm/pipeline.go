// SPDX-License-Identifier: MIT
/*
Package ddm runs online differential dynamic microscopy over a frame source.

Two goroutines cooperate:
- The worker reads frames, zero-pads them to an FFT-friendly square, takes the
  2-D FFT, centres it and queues the spectrum on a bounded channel
- The driver, on the caller's goroutine, keeps the most recent Capacity spectra
  in a sliding window and folds every full window into per-lag sums of
  |F(t0+lag) - F(t0)|^2

When the stream ends the sums are normalized by the number of passes, averaged
over concentric frequency rings and saved as two plots: intensity against ring
radius for every lag, and intensity against lag time for every ring.

Channels:
- frames: worker to driver, bounded; a nil spectrum marks the end, closing it
  is the authoritative end
- stop: driver to worker, capacity 1, polled by the worker after every frame
- bins: one-shot bin set, closed after its only value or when none was requested

The worker blocks when the frame channel is full, so a slow driver throttles
capture instead of growing memory without bound.
*/
package ddm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"ddm/internal/capture"
	applog "ddm/internal/log"
	"ddm/internal/numeric"
	"ddm/internal/plot"
	"ddm/internal/transport"

	"golang.org/x/sync/errgroup"
)

// ErrNoBins is returned when passes completed but no bin set was produced.
var ErrNoBins = errors.New("radial bin set was never produced")

// Options tunes a pipeline. Zero values fall back to the defaults noted.
type Options struct {
	Name            string             // Stream name used for plot files
	Capacity        int                // Window length in frames; 0 uses round(fps)
	Stride          int                // New frames between passes; 0 uses Capacity
	RingWidth       int                // Radial bin width in frequency pixels (20)
	FrameBuffer     int                // Frame channel capacity (16)
	FFTScale        float64            // Multiplier applied to every spectrum (1)
	ShiftRowDivisor int                // Centring shift is N/divisor rows (2)
	ShiftColDivisor int                // and N/divisor columns (2)
	Window          numeric.WindowFunc // Applied to frames before the FFT
}

// DefaultOptions returns options for a stream called name.
func DefaultOptions(name string) Options {
	return Options{
		Name:            name,
		RingWidth:       20,
		FrameBuffer:     16,
		FFTScale:        1,
		ShiftRowDivisor: 2,
		ShiftColDivisor: 2,
		Window:          numeric.NoWindow,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions(o.Name)
	if o.RingWidth == 0 {
		o.RingWidth = d.RingWidth
	}
	if o.FrameBuffer == 0 {
		o.FrameBuffer = d.FrameBuffer
	}
	if o.FFTScale == 0 {
		o.FFTScale = d.FFTScale
	}
	if o.ShiftRowDivisor == 0 {
		o.ShiftRowDivisor = d.ShiftRowDivisor
	}
	if o.ShiftColDivisor == 0 {
		o.ShiftColDivisor = d.ShiftColDivisor
	}
}

// Result summarises a finished run. Accumulator and the reductions are
// nil when no pass ran.
type Result struct {
	Name          string
	Frames        int
	Passes        int
	Capacity      int
	Dimension     int
	Accumulator   Accumulator
	Bins          *BinSet
	RadialAverage [][]float64 // [lag][bin]
	Transposed    [][]float64 // [bin][lag]
}

// Pipeline wires a source to the worker, the driver and the outputs.
// A Pipeline runs once.
type Pipeline struct {
	source    capture.Source
	rt        *numeric.Runtime
	saver     plot.Saver
	transport transport.Transport
	opts      Options
	timings   *Timings

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a pipeline. tr may be nil when progress is not published.
func New(source capture.Source, rt *numeric.Runtime, saver plot.Saver, tr transport.Transport, opts Options) (*Pipeline, error) {
	switch {
	case source == nil:
		return nil, errors.New("pipeline needs a frame source")
	case rt == nil:
		return nil, errors.New("pipeline needs a numeric runtime")
	case saver == nil:
		return nil, errors.New("pipeline needs a plot saver")
	}
	opts.applyDefaults()
	if opts.RingWidth < 0 || opts.FrameBuffer < 0 || opts.Capacity < 0 || opts.Stride < 0 {
		return nil, fmt.Errorf("negative pipeline option in %+v", opts)
	}

	return &Pipeline{
		source:    source,
		rt:        rt,
		saver:     saver,
		transport: tr,
		opts:      opts,
		timings:   NewTimings(),
		stop:      make(chan struct{}, 1),
	}, nil
}

// Run analyses the stream until it ends, fails or ctx is cancelled, and
// saves the plots when at least one pass completed. Shutdown always runs;
// every error met on the way is joined into the returned one.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	fps := p.source.FrameRate()
	capacity := p.opts.Capacity
	if capacity == 0 {
		capacity = int(math.Round(fps))
	}

	d, err := newDriver(p.rt, capacity, p.opts.Stride, p.timings, p.publish)
	if err != nil {
		p.closeSource()
		return nil, fmt.Errorf("window for %.2f fps stream: %w", fps, err)
	}

	applog.Infof("Analysis of %s stream started!", p.opts.Name)
	if count := p.source.FrameCount(); count > 0 && fps > 0 {
		applog.Infof("The stream is about %.2f seconds long, containing %d frames", float64(count)/fps, count)
	}

	frames := make(chan *numeric.Spectrum, p.opts.FrameBuffer)
	gone := make(chan struct{})
	bins := make(chan binResult, 1)

	var g errgroup.Group
	w := &worker{
		source:    p.source,
		rt:        p.rt,
		scale:     p.opts.FFTScale,
		rowDiv:    p.opts.ShiftRowDivisor,
		colDiv:    p.opts.ShiftColDivisor,
		window:    p.opts.Window,
		ringWidth: p.opts.RingWidth,
		frames:    frames,
		stop:      p.stop,
		gone:      gone,
		bins:      bins,
		group:     &g,
		timings:   p.timings,
	}
	g.Go(w.run)

	drainErr := d.drain(ctx, frames, p.stop)
	close(gone)

	res := &Result{
		Name:     p.opts.Name,
		Frames:   d.frames,
		Passes:   d.passes,
		Capacity: capacity,
	}

	var finalErr error
	if d.passes > 0 {
		finalErr = p.finalize(res, d.acc, bins, fps)
	} else {
		applog.Infof("No full window of %d frames after %d frames, nothing to save", capacity, d.frames)
	}

	shutdownErr := p.shutdown(&g)
	if err := errors.Join(drainErr, finalErr, shutdownErr); err != nil {
		return res, err
	}
	applog.Infof("Analysis of %s stream complete: %d frames, %d passes", p.opts.Name, res.Frames, res.Passes)
	return res, nil
}

func (p *Pipeline) finalize(res *Result, acc Accumulator, bins <-chan binResult, fps float64) error {
	defer p.timings.Track(StageFinalize)()

	if err := Normalize(acc, res.Passes); err != nil {
		return err
	}
	res.Accumulator = acc

	br, ok := <-bins
	if !ok {
		return ErrNoBins
	}
	if br.err != nil {
		return fmt.Errorf("%w: %w", ErrNoBins, br.err)
	}
	res.Bins = br.bins
	res.Dimension = br.bins.Dimension

	radial, err := RadialAverage(acc, br.bins)
	if err != nil {
		return fmt.Errorf("radial average: %w", err)
	}
	transposed, err := Transpose(radial)
	if err != nil {
		return fmt.Errorf("transpose radial average: %w", err)
	}
	res.RadialAverage = radial
	res.Transposed = transposed

	taus, tauLabel := lagTimes(len(acc), fps)
	lagLabels := make([]string, len(acc))
	for i, tau := range taus {
		lagLabels[i] = fmt.Sprintf("tau=%.3g", tau)
	}
	radii := br.bins.Radii()
	binLabels := make([]string, len(radii))
	for i, r := range radii {
		binLabels[i] = fmt.Sprintf("q=%g", r)
	}

	err = p.saver.Save(p.opts.Name, radial, plot.Axis{
		Title:  p.opts.Name,
		XLabel: "q (frequency pixels)",
		YLabel: "intensity",
		X:      radii,
		Labels: lagLabels,
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", p.opts.Name, err)
	}

	name := p.opts.Name + "_vs_tau"
	err = p.saver.Save(name, transposed, plot.Axis{
		Title:  name,
		XLabel: tauLabel,
		YLabel: "intensity",
		X:      taus,
		Labels: binLabels,
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// lagTimes converts lag indices to seconds, or leaves them in frames when
// the source reports no rate.
func lagTimes(lags int, fps float64) ([]float64, string) {
	out := make([]float64, lags)
	for i := range out {
		out[i] = float64(i)
	}
	if fps <= 0 {
		return out, "tau (frames)"
	}
	for i := range out {
		out[i] /= fps
	}
	return out, "tau (s)"
}

func (p *Pipeline) publish(ev transport.PassEvent) {
	if p.transport == nil {
		return
	}
	ev.Stream = p.opts.Name
	ev.Time = time.Now()
	if err := p.transport.Send(ev); err != nil {
		applog.Warnf("Pipeline: failed to publish pass %d: %v", ev.Pass, err)
	}
}

// shutdown stops and joins the worker, then releases the source and the
// transport. It is safe to reach on every path.
func (p *Pipeline) shutdown(g *errgroup.Group) error {
	signalStop(p.stop)
	workerErr := g.Wait()
	if workerErr != nil {
		applog.Errorf("Pipeline: worker failed: %v", workerErr)
	}
	p.closeSource()
	p.timings.Flush()

	if p.transport != nil {
		if err := p.transport.Close(); err != nil {
			applog.Warnf("Pipeline: closing transport: %v", err)
		}
	}
	return workerErr
}

func (p *Pipeline) closeSource() {
	p.closeOnce.Do(func() {
		if err := p.source.Close(); err != nil {
			applog.Warnf("Pipeline: closing source: %v", err)
		}
	})
}
