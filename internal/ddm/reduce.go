// SPDX-License-Identifier: MIT
package ddm

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// RadialAverage averages each lag's accumulator over every bin's pixels.
// The result is lag-major: out[lag][bin].
func RadialAverage(acc Accumulator, bins *BinSet) ([][]float64, error) {
	out := make([][]float64, len(acc))
	var buf []float64
	for lag, m := range acc {
		if m.N != bins.Dimension {
			return nil, fmt.Errorf("lag %d is %dx%d, bins cover %dx%d", lag, m.N, m.N, bins.Dimension, bins.Dimension)
		}
		row := make([]float64, len(bins.Bins))
		for b, bin := range bins.Bins {
			if len(bin.Indices) == 0 {
				continue
			}
			buf = buf[:0]
			for _, idx := range bin.Indices {
				buf = append(buf, m.Data[idx])
			}
			row[b] = stat.Mean(buf, nil)
		}
		out[lag] = row
	}
	return out, nil
}

// Transpose reindexes a rectangular lag-major table as bin-major.
func Transpose(in [][]float64) ([][]float64, error) {
	if len(in) == 0 {
		return [][]float64{}, nil
	}
	cols := len(in[0])
	for i, row := range in {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	out := make([][]float64, cols)
	for c := range out {
		out[c] = make([]float64, len(in))
		for r := range in {
			out[c][r] = in[r][c]
		}
	}
	return out, nil
}
