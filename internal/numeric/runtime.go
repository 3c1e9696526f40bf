// SPDX-License-Identifier: MIT
/*
Package numeric is the array runtime behind the DDM pipeline:
- Zero-padded 2-D complex FFTs (gonum fourier, row/column passes)
- Circular and centring shifts of spectra
- Elementwise squared-magnitude differences

A Runtime is resolved once at startup and handed to every stage that does
arithmetic. Nothing in this package keeps global state.

Thread Safety:
- A Runtime is immutable after construction and safe for concurrent use
- Work is split into disjoint row or column ranges, one FFT plan per range
*/
package numeric

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Runtime is the capability handle for numeric operations.
type Runtime struct {
	backend Backend
	workers int
}

// NewRuntime creates a runtime on the given backend. workers bounds the
// number of goroutines used per operation; zero or less means GOMAXPROCS.
func NewRuntime(backend Backend, workers int) (*Runtime, error) {
	if backend == Auto {
		backend = SelectBackend(Auto, Available())
	}
	if backend != CPU {
		return nil, fmt.Errorf("backend %s has no kernels in this build", backend)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runtime{backend: backend, workers: workers}, nil
}

// Backend returns the backend the runtime was resolved to.
func (r *Runtime) Backend() Backend {
	return r.backend
}

// Workers returns the per-operation goroutine bound.
func (r *Runtime) Workers() int {
	return r.workers
}

// parallel splits [0, n) into at most r.workers contiguous ranges and runs
// fn on each concurrently.
func (r *Runtime) parallel(n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	chunks := min(r.workers, n)
	step := (n + chunks - 1) / chunks

	var g errgroup.Group
	for lo := 0; lo < n; lo += step {
		hi := min(lo+step, n)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

// FFT2 returns the 2-D forward FFT of f zero-padded to n x n, multiplied
// by scale.
func (r *Runtime) FFT2(f *Frame, n int, scale float64) (*Spectrum, error) {
	if n <= 0 || n < f.Rows || n < f.Cols {
		return nil, fmt.Errorf("fft size %d cannot hold %dx%d frame", n, f.Rows, f.Cols)
	}

	out := NewSpectrum(n)
	for row := 0; row < f.Rows; row++ {
		for col := 0; col < f.Cols; col++ {
			out.Data[row*n+col] = complex(f.Data[row*f.Cols+col], 0)
		}
	}

	// Rows past f.Rows are all zero and transform to zero.
	err := r.parallel(f.Rows, func(lo, hi int) error {
		plan := fourier.NewCmplxFFT(n)
		buf := make([]complex128, n)
		for row := lo; row < hi; row++ {
			seq := out.Data[row*n : (row+1)*n]
			plan.Coefficients(buf, seq)
			copy(seq, buf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.parallel(n, func(lo, hi int) error {
		plan := fourier.NewCmplxFFT(n)
		seq := make([]complex128, n)
		buf := make([]complex128, n)
		for col := lo; col < hi; col++ {
			for row := range n {
				seq[row] = out.Data[row*n+col]
			}
			plan.Coefficients(buf, seq)
			for row := range n {
				out.Data[row*n+col] = buf[row]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if scale != 1 {
		s := complex(scale, 0)
		for i := range out.Data {
			out.Data[i] *= s
		}
	}
	return out, nil
}

// Shift circularly shifts s by dy rows and dx columns. The element at
// (r, c) moves to ((r+dy) mod n, (c+dx) mod n).
func (r *Runtime) Shift(s *Spectrum, dy, dx int) *Spectrum {
	n := s.N
	out := NewSpectrum(n)
	if n == 0 {
		return out
	}
	dy = ((dy % n) + n) % n
	dx = ((dx % n) + n) % n
	for row := range n {
		dst := ((row + dy) % n) * n
		src := row * n
		for col := range n {
			out.Data[dst+(col+dx)%n] = s.Data[src+col]
		}
	}
	return out
}

// CenterShift moves the zero-frequency coefficient towards the middle by
// shifting n/rowDiv rows and n/colDiv columns. Divisors of 2 give the
// conventional symmetric fftshift.
func (r *Runtime) CenterShift(s *Spectrum, rowDiv, colDiv int) (*Spectrum, error) {
	if rowDiv <= 0 || colDiv <= 0 {
		return nil, fmt.Errorf("shift divisors must be positive, got %d and %d", rowDiv, colDiv)
	}
	return r.Shift(s, s.N/rowDiv, s.N/colDiv), nil
}

// SquaredDiff returns |a - b|^2 elementwise.
func (r *Runtime) SquaredDiff(a, b *Spectrum) (*Matrix, error) {
	dst := NewMatrix(a.N)
	if err := r.AddSquaredDiff(dst, a, b); err != nil {
		return nil, err
	}
	return dst, nil
}

// AddSquaredDiff adds |a - b|^2 elementwise into dst.
func (r *Runtime) AddSquaredDiff(dst *Matrix, a, b *Spectrum) error {
	if err := checkSameSize(a, b); err != nil {
		return err
	}
	if dst.N != a.N {
		return fmt.Errorf("accumulator size mismatch: %d != %d", dst.N, a.N)
	}

	n := a.N
	return r.parallel(n, func(lo, hi int) error {
		for i := lo * n; i < hi*n; i++ {
			d := a.Data[i] - b.Data[i]
			dst.Data[i] += real(d)*real(d) + imag(d)*imag(d)
		}
		return nil
	})
}
