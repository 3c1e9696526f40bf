// SPDX-License-Identifier: MIT
package ddm

import (
	"fmt"
	"math"
)

// Bin is one ring of the centred frequency plane. Indices are flat
// row-major offsets into an N x N array, the sparse form of its mask.
type Bin struct {
	Radius  float64 // Inner radius in frequency pixels
	Indices []int
}

// BinSet partitions the frequency plane into concentric rings of equal width.
type BinSet struct {
	Dimension int
	Width     int
	Bins      []Bin
}

// Radii returns the inner radius of every bin.
func (b *BinSet) Radii() []float64 {
	out := make([]float64, len(b.Bins))
	for i, bin := range b.Bins {
		out[i] = bin.Radius
	}
	return out
}

// GenerateBins builds rings [r, r+width) around the zero-frequency pixel
// (dim/2, dim/2) for r = 0, width, 2*width, ... while r < dim/2. Pixels
// beyond the last ring belong to no bin.
func GenerateBins(dim, width int) (*BinSet, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("bin dimension must be positive, got %d", dim)
	}
	if width <= 0 {
		return nil, fmt.Errorf("ring width must be positive, got %d", width)
	}

	half := dim / 2
	count := (half + width - 1) / width
	set := &BinSet{Dimension: dim, Width: width, Bins: make([]Bin, count)}
	for k := range set.Bins {
		set.Bins[k].Radius = float64(k * width)
	}

	for row := range dim {
		dy := float64(row - half)
		for col := range dim {
			dx := float64(col - half)
			k := int(math.Hypot(dx, dy)) / width
			if k < count {
				set.Bins[k].Indices = append(set.Bins[k].Indices, row*dim+col)
			}
		}
	}
	return set, nil
}

// binResult is the one-shot message carrying a generated bin set.
type binResult struct {
	bins *BinSet
	err  error
}
