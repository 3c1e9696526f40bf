// SPDX-License-Identifier: MIT
package numeric

import "fmt"

// Frame is a raw grayscale image stored row-major.
type Frame struct {
	Rows int
	Cols int
	Data []float64
}

// NewFrame allocates a zeroed rows x cols frame.
func NewFrame(rows, cols int) *Frame {
	return &Frame{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the sample at row r, column c.
func (f *Frame) At(r, c int) float64 {
	return f.Data[r*f.Cols+c]
}

// Set stores v at row r, column c.
func (f *Frame) Set(r, c int, v float64) {
	f.Data[r*f.Cols+c] = v
}

// Spectrum is a square N x N complex array, the centred 2-D FFT of a padded frame.
type Spectrum struct {
	N    int
	Data []complex128
}

// NewSpectrum allocates a zeroed n x n spectrum.
func NewSpectrum(n int) *Spectrum {
	return &Spectrum{N: n, Data: make([]complex128, n*n)}
}

// At returns the coefficient at row r, column c.
func (s *Spectrum) At(r, c int) complex128 {
	return s.Data[r*s.N+c]
}

// Matrix is a square N x N real array. Accumulated structure functions live here.
type Matrix struct {
	N    int
	Data []float64
}

// NewMatrix allocates a zeroed n x n matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{N: n, Data: make([]float64, n*n)}
}

// At returns the value at row r, column c.
func (m *Matrix) At(r, c int) float64 {
	return m.Data[r*m.N+c]
}

func checkSameSize(a, b *Spectrum) error {
	if a.N != b.N {
		return fmt.Errorf("spectrum size mismatch: %d != %d", a.N, b.N)
	}
	return nil
}
