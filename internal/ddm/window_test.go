// SPDX-License-Identifier: MIT
package ddm

import (
	"testing"

	"ddm/internal/numeric"
)

func spectra(n int) []*numeric.Spectrum {
	out := make([]*numeric.Spectrum, n)
	for i := range out {
		out[i] = numeric.NewSpectrum(1)
		out[i].Data[0] = complex(float64(i), 0)
	}
	return out
}

func TestWindowKeepsMostRecent(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		pushes   int
	}{
		{"Partial", 4, 2},
		{"Exactly full", 4, 4},
		{"Wrapped once", 4, 6},
		{"Wrapped many times", 3, 20},
		{"Capacity one", 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWindow(tt.capacity)
			if err != nil {
				t.Fatalf("NewWindow: %v", err)
			}
			in := spectra(tt.pushes)
			for _, s := range in {
				w.Push(s)
			}

			wantLen := min(tt.pushes, tt.capacity)
			if w.Len() != wantLen {
				t.Errorf("Len() = %d, want %d", w.Len(), wantLen)
			}
			if w.Full() != (tt.pushes >= tt.capacity) {
				t.Errorf("Full() = %v after %d pushes", w.Full(), tt.pushes)
			}

			got := w.Frames()
			want := in[tt.pushes-wantLen:]
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("Frames()[%d] = frame %v, want frame %v", i, real(got[i].Data[0]), real(want[i].Data[0]))
				}
			}
		})
	}
}

func TestWindowFramesIsFresh(t *testing.T) {
	w, _ := NewWindow(2)
	in := spectra(2)
	w.Push(in[0])
	w.Push(in[1])

	view := w.Frames()
	view[0] = nil
	if w.Frames()[0] != in[0] {
		t.Error("modifying the returned slice changed the window")
	}
}

func TestNewWindowRejectsZeroCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		if _, err := NewWindow(c); err == nil {
			t.Errorf("NewWindow(%d) expected error", c)
		}
	}
}
