// SPDX-License-Identifier: MIT
package numeric

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"
)

const tolerance = 1e-9

func newTestRuntime(t testing.TB, workers int) *Runtime {
	t.Helper()
	rt, err := NewRuntime(CPU, workers)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return rt
}

// naiveDFT2 is the O(n^4) reference transform of f zero-padded to n x n.
func naiveDFT2(f *Frame, n int) []complex128 {
	out := make([]complex128, n*n)
	for u := range n {
		for v := range n {
			var sum complex128
			for r := 0; r < f.Rows; r++ {
				for c := 0; c < f.Cols; c++ {
					phase := -2 * math.Pi * (float64(u*r)/float64(n) + float64(v*c)/float64(n))
					sum += complex(f.At(r, c), 0) * cmplx.Exp(complex(0, phase))
				}
			}
			out[u*n+v] = sum
		}
	}
	return out
}

func TestFFT2MatchesNaiveDFT(t *testing.T) {
	tests := []struct {
		rows, cols, n, workers int
	}{
		{4, 4, 4, 1},
		{3, 5, 6, 2},
		{5, 2, 5, 8},
		{6, 6, 8, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d→%d/w%d", tt.rows, tt.cols, tt.n, tt.workers), func(t *testing.T) {
			rt := newTestRuntime(t, tt.workers)
			f := NewFrame(tt.rows, tt.cols)
			for i := range f.Data {
				f.Data[i] = float64((i*7)%11) - 3.5
			}

			got, err := rt.FFT2(f, tt.n, 1.0)
			if err != nil {
				t.Fatalf("FFT2 error: %v", err)
			}
			want := naiveDFT2(f, tt.n)
			for i := range want {
				if cmplx.Abs(got.Data[i]-want[i]) > 1e-6 {
					t.Fatalf("coefficient %d = %v, want %v", i, got.Data[i], want[i])
				}
			}
		})
	}
}

func TestFFT2UniformFrameIsDCOnly(t *testing.T) {
	rt := newTestRuntime(t, 0)
	f := NewFrame(4, 4)
	for i := range f.Data {
		f.Data[i] = 3
	}

	s, err := rt.FFT2(f, 4, 0.5)
	if err != nil {
		t.Fatalf("FFT2 error: %v", err)
	}
	if cmplx.Abs(s.At(0, 0)-complex(24, 0)) > tolerance {
		t.Errorf("DC = %v, want 24 (16 samples * 3 * 0.5)", s.At(0, 0))
	}
	for i := 1; i < len(s.Data); i++ {
		if cmplx.Abs(s.Data[i]) > tolerance {
			t.Errorf("coefficient %d = %v, want 0", i, s.Data[i])
		}
	}
}

func TestFFT2RejectsSmallSize(t *testing.T) {
	rt := newTestRuntime(t, 1)
	if _, err := rt.FFT2(NewFrame(4, 6), 5, 1); err == nil {
		t.Error("expected error for n smaller than frame width")
	}
	if _, err := rt.FFT2(NewFrame(1, 1), 0, 1); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestShift(t *testing.T) {
	rt := newTestRuntime(t, 1)
	s := NewSpectrum(3)
	for i := range s.Data {
		s.Data[i] = complex(float64(i), 0)
	}

	tests := []struct {
		dy, dx int
		r, c   int // where the original (0, 0) lands
	}{
		{0, 0, 0, 0},
		{1, 0, 1, 0},
		{0, 2, 0, 2},
		{4, -1, 1, 2}, // Wraps both ways
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d,%d", tt.dy, tt.dx), func(t *testing.T) {
			out := rt.Shift(s, tt.dy, tt.dx)
			if out.At(tt.r, tt.c) != 0 {
				t.Errorf("origin moved to (%d,%d) holds %v, want 0", tt.r, tt.c, out.At(tt.r, tt.c))
			}
			var sum complex128
			for _, v := range out.Data {
				sum += v
			}
			if sum != complex(36, 0) {
				t.Errorf("shift lost elements: sum %v, want 36", sum)
			}
		})
	}
}

func TestCenterShiftIsSymmetric(t *testing.T) {
	rt := newTestRuntime(t, 1)
	for _, n := range []int{4, 5, 6, 9} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := NewSpectrum(n)
			s.Data[0] = 1 // DC
			out, err := rt.CenterShift(s, 2, 2)
			if err != nil {
				t.Fatalf("CenterShift error: %v", err)
			}
			if out.At(n/2, n/2) != 1 {
				t.Errorf("DC not centred at (%d,%d)", n/2, n/2)
			}
		})
	}

	if _, err := rt.CenterShift(NewSpectrum(4), 0, 2); err == nil {
		t.Error("expected error for zero divisor")
	}
}

func TestSquaredDiff(t *testing.T) {
	rt := newTestRuntime(t, 2)
	a := NewSpectrum(2)
	b := NewSpectrum(2)
	a.Data = []complex128{3 + 4i, 1, 0, 2i}
	b.Data = []complex128{0, 1, 1, 0}

	m, err := rt.SquaredDiff(a, b)
	if err != nil {
		t.Fatalf("SquaredDiff error: %v", err)
	}
	want := []float64{25, 0, 1, 4}
	for i := range want {
		if math.Abs(m.Data[i]-want[i]) > tolerance {
			t.Errorf("element %d = %v, want %v", i, m.Data[i], want[i])
		}
	}

	if err := rt.AddSquaredDiff(m, a, b); err != nil {
		t.Fatalf("AddSquaredDiff error: %v", err)
	}
	if m.Data[0] != 50 {
		t.Errorf("accumulated element = %v, want 50", m.Data[0])
	}

	if err := rt.AddSquaredDiff(m, a, NewSpectrum(3)); err == nil {
		t.Error("expected size mismatch error")
	}
}

func BenchmarkFFT2(b *testing.B) {
	rt := newTestRuntime(b, 0)
	f := NewFrame(480, 640)
	for i := range f.Data {
		f.Data[i] = float64(i % 255)
	}

	b.ReportAllocs()
	for b.Loop() {
		_, _ = rt.FFT2(f, 640, 1.0)
	}
}
