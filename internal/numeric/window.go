// SPDX-License-Identifier: MIT
package numeric

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the apodization applied to frames before the FFT.
type WindowFunc int

// Enum for available window functions.
const (
	NoWindow WindowFunc = iota
	BartlettHann
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Nuttall
)

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc.
// Unknown names return NoWindow and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return NoWindow, nil
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return NoWindow, fmt.Errorf("unknown window function name: '%s'", name)
	}
}

// ApplyWindow multiplies f in place by the separable 2-D window
// w(r) * w(c). NoWindow leaves the frame untouched.
func ApplyWindow(f *Frame, w WindowFunc) {
	if w == NoWindow || f.Rows == 0 || f.Cols == 0 {
		return
	}
	rowCoeffs := coefficients(f.Rows, w)
	colCoeffs := coefficients(f.Cols, w)
	for r := range f.Rows {
		wr := rowCoeffs[r]
		line := f.Data[r*f.Cols : (r+1)*f.Cols]
		for c := range line {
			line[c] *= wr * colCoeffs[c]
		}
	}
}

// coefficients returns n window coefficients. The gonum window functions
// scale their input in place, so they start from ones.
func coefficients(n int, w WindowFunc) []float64 {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch w {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	}
	return coeffs
}
